package auth

import (
	"context"
	"sync"
	"time"

	"github.com/nadzzz/maestro/internal/credential"
)

// RecordSource yields a freshly validated credential record.
type RecordSource interface {
	ValidRecord(ctx context.Context) (credential.Record, error)
}

// Cache keeps the last valid record between commands and asks the source
// for a new one when it is about to expire or was invalidated.
type Cache struct {
	source RecordSource
	skew   time.Duration
	now    func() time.Time

	mu    sync.Mutex
	rec   credential.Record
	valid bool
}

// NewCache creates a token cache that refreshes skew before expiry.
func NewCache(source RecordSource, skew time.Duration) *Cache {
	return &Cache{source: source, skew: skew, now: time.Now}
}

// AccessToken returns a cached token or obtains a new one.
func (c *Cache) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && !c.rec.ExpiresWithin(c.now(), c.skew) {
		return c.rec.AccessToken, nil
	}

	rec, err := c.source.ValidRecord(ctx)
	if err != nil {
		return "", err
	}
	c.rec, c.valid = rec, true
	return rec.AccessToken, nil
}

// Invalidate drops the cached token; the next AccessToken call goes back to
// the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
