package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNoSpeech means the recorder finished without capturing a phrase.
var ErrNoSpeech = errors.New("no speech captured")

// Recorder captures one phrase as WAV from an external recorder that writes
// to stdout (sox "rec" by default).
type Recorder struct {
	Command string
	Args    []string

	// Timeout bounds the whole recording, from calibration to phrase end.
	Timeout time.Duration
}

// Record runs the recorder and returns the WAV it produced. A recorder that
// is stopped by the timeout without having produced samples yields
// ErrNoSpeech.
func (r *Recorder) Record(ctx context.Context) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("recording", "command", r.Command, "timeout", r.Timeout)
	err := cmd.Run()
	wav := stdout.Bytes()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if HasSamples(wav) {
				return wav, nil
			}
			return nil, ErrNoSpeech
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("running %s: %w: %s", r.Command, err, strings.TrimSpace(stderr.String()))
	}
	if !HasSamples(wav) {
		return nil, ErrNoSpeech
	}
	return wav, nil
}

// Player plays WAV audio by piping it to an external command's stdin.
type Player struct {
	Command string
	Args    []string
}

// Play blocks until the player exits.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.Stdin = bytes.NewReader(wav)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w: %s", p.Command, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
