// Package auth manages the Garmin Connect OAuth2 token. Obtaining the
// initial session is out of scope (use the separate setup tooling); this
// package only keeps an existing token fresh and persisted.
package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenURL is the Garmin SSO token exchange endpoint.
const TokenURL = "https://connectapi.garmin.com/oauth-service/token"

// refreshBuffer refreshes tokens this long before actual expiry.
const refreshBuffer = 60 * time.Second

// NewEndpointConfig returns the oauth2 config for Garmin token refresh.
// There is no authorization URL because interactive login is not handled
// here.
func NewEndpointConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// TokenSource wraps oauth2.TokenSource with persistence. It refreshes the
// token before expiry and calls onRefresh so the new token survives a
// process restart.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource that refreshes as needed and calls
// onRefresh to persist new tokens.
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired reports whether the current token is expired or about to be.
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= refreshBuffer
}

// CurrentToken returns the current token without refreshing.
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}
