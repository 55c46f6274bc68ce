package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordExpiresWithin(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		name string
		rec  Record
		want bool
	}{
		{name: "no access token", rec: Record{ExpiresAt: now.Add(time.Hour)}, want: true},
		{name: "no expiry", rec: Record{AccessToken: "at"}, want: true},
		{name: "fresh", rec: Record{AccessToken: "at", ExpiresAt: now.Add(time.Hour)}, want: false},
		{name: "inside skew", rec: Record{AccessToken: "at", ExpiresAt: now.Add(30 * time.Second)}, want: true},
		{name: "expired", rec: Record{AccessToken: "at", ExpiresAt: now.Add(-time.Minute)}, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.rec.ExpiresWithin(now, time.Minute))
		})
	}
}

func TestRecordHasRefreshToken(t *testing.T) {
	t.Parallel()

	assert.False(t, Record{AccessToken: "at"}.HasRefreshToken())
	assert.True(t, Record{RefreshToken: "rt"}.HasRefreshToken())
}
