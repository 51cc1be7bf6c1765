package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider produces a bearer token for a set of authorization
// scopes. This abstraction allows different token sources (static,
// oauth2 token source, test fakes).
type TokenProvider interface {
	// Token returns a bearer token valid for the given scopes, or an
	// error when none can be produced.
	Token(ctx context.Context, scopes []string) (string, error)
}

// StaticTokenProvider returns a fixed, pre-acquired bearer token
// regardless of the requested scopes.
type StaticTokenProvider struct {
	AccessToken string
}

func (p StaticTokenProvider) Token(_ context.Context, _ []string) (string, error) {
	if p.AccessToken == "" {
		return "", errors.New("no access token configured")
	}
	return p.AccessToken, nil
}

// OAuthTokenProvider wraps an oauth2.TokenSource. The source's scopes
// are fixed when it is created, so the per-call scope set is checked to
// be a subset of the configured ones rather than re-negotiated.
type OAuthTokenProvider struct {
	Source oauth2.TokenSource
	// Scopes the underlying source was created with. Empty means the
	// provider accepts any requested scope set.
	Scopes []string
}

// NewOAuthTokenProvider builds a provider from an oauth2 config and a
// previously obtained token; the returned provider refreshes the token
// as needed.
func NewOAuthTokenProvider(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		Source: conf.TokenSource(ctx, token),
		Scopes: conf.Scopes,
	}
}

func (p *OAuthTokenProvider) Token(_ context.Context, scopes []string) (string, error) {
	if len(p.Scopes) > 0 {
		granted := make(map[string]bool, len(p.Scopes))
		for _, s := range p.Scopes {
			granted[s] = true
		}
		for _, s := range scopes {
			if !granted[s] {
				return "", fmt.Errorf("scope %q not granted to this token source", s)
			}
		}
	}

	token, err := p.Source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token from source: %w", err)
	}
	return token.AccessToken, nil
}
