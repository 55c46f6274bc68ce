// Package feedback prints and speaks what maestro has to tell the user.
package feedback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nadzzz/maestro/internal/state"
	"github.com/nadzzz/maestro/internal/tts"
)

// AudioPlayer plays a WAV clip to completion.
type AudioPlayer interface {
	Play(ctx context.Context, wav []byte) error
}

// Sink prints every line and, unless the session is muted, speaks it.
type Sink struct {
	out     io.Writer
	session *state.Session
	synth   tts.Synthesizer // nil disables speech
	player  AudioPlayer
	opts    tts.SynthesizeOpts
	styles  styles

	mu sync.Mutex
}

// Option configures a Sink.
type Option func(*Sink)

// WithSpeech enables spoken output through synth and player.
func WithSpeech(synth tts.Synthesizer, player AudioPlayer, language string) Option {
	return func(s *Sink) {
		s.synth = synth
		s.player = player
		s.opts.Language = language
	}
}

// New creates a Sink writing to out.
func New(out io.Writer, session *state.Session, opts ...Option) *Sink {
	s := &Sink{out: out, session: session, styles: newStyles()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Say prints text and speaks it. Speech failures are logged; the printed
// line is always delivered.
func (s *Sink) Say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.out, s.styles.say.Render("♪ "+text))

	if s.synth == nil || s.session.Muted() {
		return
	}
	res, err := s.synth.Synthesize(ctx, text, s.opts)
	if err != nil {
		slog.Warn("speech synthesis failed", "backend", s.synth.Name(), "error", err)
		return
	}
	if err := s.player.Play(ctx, res.Audio); err != nil {
		slog.Warn("speech playback failed", "error", err)
	}
}

// Notice prints a status line that is never spoken.
func (s *Sink) Notice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.styles.notice.Render(text))
}

// Heard echoes a recognized utterance.
func (s *Sink) Heard(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.styles.heard.Render("> "+text))
}

// Warn prints a highlighted problem that is never spoken.
func (s *Sink) Warn(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.styles.warning.Render(text))
}
