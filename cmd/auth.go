package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/server"
	"github.com/desertthunder/ytpl/internal/services"
	"github.com/desertthunder/ytpl/internal/shared"
)

const (
	loopbackAddr     = "localhost:8080"
	loopbackRedirect = "http://localhost:8080/callback"
)

// AuthLogin runs the browser OAuth2 flow and stores the resulting token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("run `ytpl setup config` first: %w", err)
	}

	creds := config.Credentials.YouTube
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: set credentials.youtube.client_id and client_secret in the config file", shared.ErrMissingCredentials)
	}

	oauthConfig := services.OAuthConfig(creds.ClientID, creds.ClientSecret, loopbackRedirect)

	token, err := server.RunLoopbackFlow(ctx, r.logger, oauthConfig, loopbackAddr, shared.OpenBrowser, r.output)
	if err != nil {
		return err
	}

	store := services.NewTokenStore(creds.TokenPath)
	if err := store.Save(token); err != nil {
		return err
	}

	r.logger.Info("authorization complete", "token_path", store.Path())
	return r.writePlain("✓ Logged in, token saved to %s\n", store.Path())
}

// AuthStatus reports whether a stored token exists and when it expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store := services.NewTokenStore(r.config.Credentials.YouTube.TokenPath)

	token, err := store.Load()
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("Not logged in. Run `ytpl auth login`.\n")
		}
		return err
	}

	r.writePlain("Logged in, token at %s\n", store.Path())
	if token.Expiry.IsZero() {
		return r.writePlain("Access token has no recorded expiry.\n")
	}
	if token.Valid() {
		return r.writePlain("Access token valid until %s\n", token.Expiry.Format(time.RFC1123))
	}
	return r.writePlain("Access token expired %s, it will refresh on next use.\n", token.Expiry.Format(time.RFC1123))
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store := services.NewTokenStore(r.config.Credentials.YouTube.TokenPath)
	if err := store.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out, token removed from %s\n", store.Path())
}
