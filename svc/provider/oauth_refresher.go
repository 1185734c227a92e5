package provider

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// OAuthRefresher implements the refresh capability over standard OAuth2
// token endpoints. Adapters whose providers speak plain OAuth2 refresh embed
// it instead of re-implementing the exchange.
type OAuthRefresher struct {
	config *oauth2.Config
}

// NewOAuthRefresher creates a refresher for the given OAuth2 client config.
func NewOAuthRefresher(config *oauth2.Config) *OAuthRefresher {
	return &OAuthRefresher{config: config}
}

// RefreshToken exchanges the account's refresh token for fresh credentials.
// The account must carry a plaintext refresh token.
func (r *OAuthRefresher) RefreshToken(ctx context.Context, account Account) (Token, error) {
	if account.RefreshToken == "" {
		return Token{}, ErrNoRefreshToken
	}

	src := r.config.TokenSource(ctx, &oauth2.Token{
		RefreshToken: account.RefreshToken,
		// Force the token source to hit the refresh endpoint.
		Expiry: time.Now().Add(-time.Minute),
	})

	fresh, err := src.Token()
	if err != nil {
		return Token{}, errors.Join(ErrTokenRefreshFailed, err)
	}

	token := Token{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
	}
	if !fresh.Expiry.IsZero() {
		expiry := fresh.Expiry
		token.ExpiresAt = &expiry
	}
	return token, nil
}
