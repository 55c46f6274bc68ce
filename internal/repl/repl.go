// Package repl runs the interactive session: it reads console commands,
// runs one-shot voice capture cycles on request, and hands every utterance
// to the dispatcher.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nadzzz/maestro/internal/feedback"
	"github.com/nadzzz/maestro/internal/message"
	"github.com/nadzzz/maestro/internal/state"
)

// Handler processes one utterance.
type Handler interface {
	Handle(ctx context.Context, u message.Utterance) message.Outcome
}

// Capturer runs single-shot voice capture cycles.
type Capturer interface {
	Start(ctx context.Context) bool
	Wait(ctx context.Context) error
	Take() (string, bool)
}

// Console is where the loop reports to the user.
type Console interface {
	Say(ctx context.Context, text string)
	Notice(text string)
	Heard(text string)
	Warn(text string)
}

// Loop is the main session loop.
type Loop struct {
	In      io.Reader
	Out     io.Writer
	Console Console
	Session *state.Session
	Handler Handler

	// Capture is nil when no recorder is configured.
	Capture Capturer

	// Spinner animates the listening wait instead of printing a line.
	Spinner bool
}

const help = "Type a command, 'q' to speak one, 'mute' or 'unmute' for spoken feedback, 'exit' to quit."

// Run processes commands until exit, end of input or ctx cancellation. With
// voiceFirst, one voice cycle runs before the first prompt.
func (l *Loop) Run(ctx context.Context, voiceFirst bool) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go read(l.In, lines, readErr, done)

	if voiceFirst {
		l.voiceCommand(ctx)
	}

	l.Console.Notice(help)
	for {
		fmt.Fprint(l.Out, "> ")

		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading console: %w", err)
			}
			return nil
		case line := <-lines:
			if quit := l.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

func read(in io.Reader, lines chan<- string, readErr chan<- error, done <-chan struct{}) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
	readErr <- scanner.Err()
}

func (l *Loop) handleLine(ctx context.Context, line string) (quit bool) {
	text := strings.TrimSpace(line)

	switch strings.ToLower(text) {
	case "":
	case "exit":
		l.Console.Notice("Shutting down.")
		return true
	case "mute":
		l.Session.SetMuted(true)
		l.Console.Notice("Spoken feedback muted.")
	case "unmute":
		l.Session.SetMuted(false)
		l.Console.Notice("Spoken feedback unmuted.")
	case "q":
		l.Console.Say(ctx, "Voice mode active. Please give a command.")
		l.voiceCommand(ctx)
		l.Console.Notice("Back to text mode.")
	default:
		l.Handler.Handle(ctx, message.NewUtterance(message.SourceText, text))
	}
	return false
}

// voiceCommand runs one capture cycle and dispatches its result.
func (l *Loop) voiceCommand(ctx context.Context) {
	if l.Capture == nil {
		l.Console.Warn("Voice capture is not configured.")
		return
	}

	// A stale utterance from an interrupted cycle must not be replayed.
	l.Capture.Take()

	if !l.Capture.Start(ctx) {
		return
	}

	var err error
	if l.Spinner {
		err = feedback.Spin(ctx, l.Out, "Listening... (say a command)", l.Capture.Wait)
	} else {
		l.Console.Notice("Listening... (say a command)")
		err = l.Capture.Wait(ctx)
	}
	if err != nil {
		return
	}

	text, ok := l.Capture.Take()
	if !ok {
		l.Console.Say(ctx, "I didn't recognize a voice command. Back to text mode.")
		return
	}
	l.Console.Heard(text)
	l.Handler.Handle(ctx, message.NewUtterance(message.SourceVoice, text))
}
