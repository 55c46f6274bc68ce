// Package auth obtains valid Spotify access tokens. It refreshes the
// persisted credential record when possible and falls back to the
// interactive authorization-code flow through the user's browser.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/credential"
)

var (
	// ErrTimeout means no authorization code arrived before the deadline.
	ErrTimeout = errors.New("timed out waiting for spotify authorization")

	// ErrExchange means the token endpoint rejected the code or refresh token.
	ErrExchange = errors.New("spotify token exchange failed")

	// ErrDenied means the user or the provider refused the authorization.
	ErrDenied = errors.New("spotify authorization denied")
)

// Scopes lists the permissions the controller needs.
var Scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopeUserLibraryRead,
}

// NewOAuthConfig builds the OAuth2 client configuration for Spotify.
func NewOAuthConfig(cfg config.SpotifyConfig) *oauth2.Config {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Manager owns the credential record: it loads, refreshes, re-authorizes
// and persists it.
type Manager struct {
	oauth      *oauth2.Config
	store      credential.Store
	codes      CodeSource
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager.
func NewManager(oauthCfg *oauth2.Config, store credential.Store, codes CodeSource, opts ...Option) *Manager {
	m := &Manager{
		oauth: oauthCfg,
		store: store,
		codes: codes,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetValidAccessToken returns an access token that was just refreshed or granted.
func (m *Manager) GetValidAccessToken(ctx context.Context) (string, error) {
	rec, err := m.ValidRecord(ctx)
	if err != nil {
		return "", err
	}
	return rec.AccessToken, nil
}

// ValidRecord loads the persisted record and refreshes it. Any failure to
// load or refresh falls back to interactive authorization.
func (m *Manager) ValidRecord(ctx context.Context) (credential.Record, error) {
	rec, err := m.store.Load(ctx)
	switch {
	case err != nil:
		slog.Info("no usable stored credentials, starting authorization", "reason", err)
	case !rec.HasRefreshToken():
		slog.Info("stored credentials have no refresh token, starting authorization")
	default:
		refreshed, refreshErr := m.Refresh(ctx, rec)
		if refreshErr == nil {
			return refreshed, nil
		}
		if ctx.Err() != nil {
			return credential.Record{}, ctx.Err()
		}
		slog.Warn("token refresh failed, starting authorization", "error", refreshErr)
	}
	return m.Authorize(ctx)
}

// Refresh exchanges rec's refresh token for a new access token and persists
// the result. The previous refresh token is kept when the response omits one.
func (m *Manager) Refresh(ctx context.Context, rec credential.Record) (credential.Record, error) {
	src := m.oauth.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: rec.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return credential.Record{}, fmt.Errorf("%w: refresh: %w", ErrExchange, err)
	}

	next := m.recordFromToken(tok)
	if next.RefreshToken == "" {
		next.RefreshToken = rec.RefreshToken
	}
	if next.Scope == "" {
		next.Scope = rec.Scope
	}

	m.persist(ctx, next)
	slog.Debug("access token refreshed", "expires_at", next.ExpiresAt)
	return next, nil
}

// Authorize runs the interactive authorization-code flow and persists the
// granted token pair.
func (m *Manager) Authorize(ctx context.Context) (credential.Record, error) {
	state, err := NewState()
	if err != nil {
		return credential.Record{}, fmt.Errorf("generate oauth state: %w", err)
	}

	code, err := m.codes.AuthorizationCode(ctx, m.oauth.AuthCodeURL(state), state)
	if err != nil {
		return credential.Record{}, err
	}

	tok, err := m.oauth.Exchange(m.clientContext(ctx), code)
	if err != nil {
		return credential.Record{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	rec := m.recordFromToken(tok)
	m.persist(ctx, rec)
	slog.Info("spotify authorization complete")
	return rec, nil
}

func (m *Manager) persist(ctx context.Context, rec credential.Record) {
	if err := m.store.Save(ctx, rec); err != nil {
		slog.Error("saving credentials failed, continuing with in-memory token", "error", err)
	}
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) recordFromToken(tok *oauth2.Token) credential.Record {
	rec := credential.Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		rec.ExpiresIn = int64(tok.Expiry.Sub(m.now()).Round(time.Second).Seconds())
	}
	return rec
}
