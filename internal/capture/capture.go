// Package capture runs single-shot speech capture cycles and hands the
// recognized text to the main loop through a one-slot channel.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/maestro/internal/audio"
	"github.com/nadzzz/maestro/internal/state"
)

// ErrNoSpeech means a capture cycle ended without a recognized phrase.
var ErrNoSpeech = audio.ErrNoSpeech

// Listener performs one bounded listen attempt and returns the recognized
// text.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Channel owns the capture goroutine and the single-slot handoff queue.
type Channel struct {
	listener Listener
	session  *state.Session
	slot     chan string
	poll     time.Duration

	wg sync.WaitGroup
}

// NewChannel creates a Channel. The session's listening flag marks an
// active cycle.
func NewChannel(listener Listener, session *state.Session) *Channel {
	return &Channel{
		listener: listener,
		session:  session,
		slot:     make(chan string, 1),
		poll:     100 * time.Millisecond,
	}
}

// Start begins one capture cycle in the background. It returns false and
// does nothing if a cycle is already active.
func (c *Channel) Start(ctx context.Context) bool {
	if !c.session.BeginListening() {
		slog.Debug("capture already active")
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.session.EndListening()
		c.capture(ctx)
	}()
	return true
}

func (c *Channel) capture(ctx context.Context) {
	text, err := c.listener.Listen(ctx)
	switch {
	case errors.Is(err, ErrNoSpeech):
		slog.Info("no speech recognized")
		return
	case err != nil:
		slog.Error("speech capture failed", "error", err)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Info("no speech recognized")
		return
	}

	select {
	case c.slot <- text:
		slog.Debug("utterance captured", "text", text)
	default:
		// The main loop always drains the slot before starting a cycle.
		slog.Warn("capture slot full, dropping utterance", "text", text)
	}
}

// Wait polls the listening flag until the active cycle, if any, is over.
func (c *Channel) Wait(ctx context.Context) error {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for c.session.Listening() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Take returns the captured utterance, if one is waiting.
func (c *Channel) Take() (string, bool) {
	select {
	case text := <-c.slot:
		return text, true
	default:
		return "", false
	}
}

// Close waits for a running capture goroutine to exit. Cancel the context
// passed to Start first to cut a cycle short.
func (c *Channel) Close() {
	c.wg.Wait()
}
