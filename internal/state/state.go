// Package state holds the process-wide voice session flags shared by the
// main loop and the capture goroutine.
package state

import "sync/atomic"

// Session is the voice session state. The zero value is ready to use:
// not listening, not muted.
type Session struct {
	listening atomic.Bool
	muted     atomic.Bool
}

// BeginListening marks a capture cycle as active. It reports false if one
// was already active, in which case the caller must not start another.
func (s *Session) BeginListening() bool {
	return s.listening.CompareAndSwap(false, true)
}

// EndListening marks the current capture cycle as finished.
func (s *Session) EndListening() {
	s.listening.Store(false)
}

// Listening reports whether a capture cycle is in progress.
func (s *Session) Listening() bool {
	return s.listening.Load()
}

// SetMuted toggles spoken feedback.
func (s *Session) SetMuted(muted bool) {
	s.muted.Store(muted)
}

// Muted reports whether spoken feedback is suppressed.
func (s *Session) Muted() bool {
	return s.muted.Load()
}
