// Package credential defines the persisted Spotify token pair and the port
// used to load and save it.
package credential

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means no credential record has been persisted yet.
	ErrNotFound = errors.New("credential record not found")

	// ErrCorrupt means a record exists but cannot be decoded.
	ErrCorrupt = errors.New("credential record is corrupt")
)

// Record is the access/refresh token pair plus expiry metadata.
type Record struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// HasRefreshToken reports whether the record can be refreshed without user interaction.
func (r Record) HasRefreshToken() bool {
	return r.RefreshToken != ""
}

// ExpiresWithin reports whether the access token expires within d of now.
// A record without expiry metadata is treated as already expired.
func (r Record) ExpiresWithin(now time.Time, d time.Duration) bool {
	if r.AccessToken == "" || r.ExpiresAt.IsZero() {
		return true
	}
	return !now.Add(d).Before(r.ExpiresAt)
}

// Store loads and saves the single credential record.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}
