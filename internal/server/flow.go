package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// flowTimeout bounds how long the loopback server waits for the redirect.
const flowTimeout = 2 * time.Minute

// RunLoopbackFlow executes the OAuth2 authorization code flow against a local
// callback server: start the server, open the provider's consent page, wait
// for the redirect, and return the exchanged token.
//
// openBrowser launches the consent URL; when it fails the URL is printed to
// out for manual use.
func RunLoopbackFlow(ctx context.Context, logger *log.Logger, config *oauth2.Config, addr string, openBrowser func(string) error, out io.Writer) (*oauth2.Token, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	handler := NewOAuthHandler(config, state)
	router := NewBasicRouter()
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting OAuth callback server at %v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	fmt.Fprintf(out, "→ Opening browser for authorization...\n")
	if err := openBrowser(authURL); err != nil {
		logger.Warnf("failed to open browser automatically %v", err)
		fmt.Fprintf(out, "⚠ Could not open browser automatically.\n")
		fmt.Fprintf(out, "Please open this URL in your browser:\n%s\n\n", authURL)
	}

	fmt.Fprintf(out, "→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(flowTimeout)
	defer timeout.Stop()

	var result OAuthResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("authorization timed out after %v", flowTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
