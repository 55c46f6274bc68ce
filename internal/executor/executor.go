// Package executor implements one routine per Action kind. Each routine
// performs a short fixed sequence of playback calls and returns a typed
// result or error; none of them retries an expired token.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadzzz/maestro/internal/playback"
)

var (
	// ErrNothingPlaying means the command needs a current track and there is none.
	ErrNothingPlaying = errors.New("nothing is playing")

	// ErrNoDevices means the account has no available playback devices.
	ErrNoDevices = errors.New("no playback devices available")

	// ErrNoActiveDevice means no device is currently active.
	ErrNoActiveDevice = errors.New("no active playback device")
)

// NotFoundError means a search returned no usable result.
type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %q", e.What, e.Query)
}

// DeviceTypeError means no available device has the requested type.
type DeviceTypeError struct {
	Type string
}

func (e *DeviceTypeError) Error() string {
	return fmt.Sprintf("no device of type %s available", e.Type)
}

// Config holds the timing and search constants shared by all executors.
type Config struct {
	// TransitionSettle is waited after a track change before re-reading state.
	TransitionSettle time.Duration

	// TransferSettle is waited after moving playback to another device.
	TransferSettle time.Duration

	// Market is the country used for artist top tracks.
	Market string

	// QueueLimit caps how many top tracks are queued after PlaySong.
	QueueLimit int

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the settle delays the playback service needs.
func DefaultConfig() Config {
	return Config{
		TransitionSettle: time.Second,
		TransferSettle:   2 * time.Second,
		Market:           "US",
		QueueLimit:       10,
	}
}

// Executor runs actions against one authorized Player.
type Executor struct {
	player playback.Player
	cfg    Config
}

// New creates an Executor. Zero fields in cfg take their DefaultConfig value,
// except the settle delays which may be zero on purpose.
func New(player playback.Player, cfg Config) *Executor {
	def := DefaultConfig()
	if cfg.Market == "" {
		cfg.Market = def.Market
	}
	if cfg.QueueLimit == 0 {
		cfg.QueueLimit = def.QueueLimit
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	return &Executor{player: player, cfg: cfg}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// snapshot reads the current track for feedback purposes. Failures other than
// an expired token are logged and reported as "no track".
func (e *Executor) snapshot(ctx context.Context) (*playback.Track, error) {
	snap, err := e.player.CurrentlyPlaying(ctx)
	if err != nil {
		if errors.Is(err, playback.ErrUnauthorized) {
			return nil, err
		}
		slog.Warn("reading current track failed", "error", err)
		return nil, nil
	}
	return snap.Track, nil
}
