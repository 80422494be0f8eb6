package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/ytpl/internal/shared"
)

// OAuthConfig builds the OAuth2 client configuration for the provider's data
// API. The scope covers playlist writes; redirectURL must point at the local
// callback server.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{youtube.YoutubeScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenStore persists an OAuth token as JSON on disk.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store at path, expanding a leading "~/".
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: shared.ExpandPath(path)}
}

// Load reads the persisted token. A missing file returns ErrNotAuthenticated.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no token at %s, run `ytpl auth login`", shared.ErrNotAuthenticated, s.path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Missing files are not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Path returns where the token is stored.
func (s *TokenStore) Path() string {
	return s.path
}

// persistingSource wraps a refreshing token source and writes every refreshed
// token back to the store, so the next process start skips the refresh.
type persistingSource struct {
	inner oauth2.TokenSource
	store *TokenStore
	last  string
}

// TokenSource returns a token source backed by the store: the persisted token
// is refreshed transparently and refreshed tokens are saved back.
func (s *TokenStore) TokenSource(ctx context.Context, config *oauth2.Config) (oauth2.TokenSource, error) {
	token, err := s.Load()
	if err != nil {
		return nil, err
	}

	return &persistingSource{
		inner: config.TokenSource(ctx, token),
		store: s,
		last:  token.AccessToken,
	}, nil
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.inner.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.Save(token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
	}
	return token, nil
}
