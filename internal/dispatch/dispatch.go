// Package dispatch implements the command pipeline.
//
// The dispatcher receives utterances from the console, the capture channel
// or the remote surface, parses each into one Action, runs the matching
// executor with a fresh access token and announces the outcome. It is the
// only place where errors become user-facing text, and it never lets a
// failing command escape to the caller.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/maestro/internal/executor"
	"github.com/nadzzz/maestro/internal/intent"
	"github.com/nadzzz/maestro/internal/message"
	"github.com/nadzzz/maestro/internal/playback"
)

// Parser maps an utterance to one Action. It must never fail.
type Parser interface {
	Parse(ctx context.Context, utterance string) intent.Action
}

// TokenSource yields the access token for the next command.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)

	// Invalidate forces the next AccessToken call to revalidate.
	Invalidate()
}

// Sink announces text to the user.
type Sink interface {
	Say(ctx context.Context, text string)
}

// Dispatcher is the central command engine. Handle calls are serialized so
// no two executors ever run at the same time.
type Dispatcher struct {
	mu sync.Mutex

	parser  Parser
	tokens  TokenSource
	players playback.Factory
	execCfg executor.Config
	sink    Sink
}

// New creates a Dispatcher.
func New(parser Parser, tokens TokenSource, players playback.Factory, sink Sink, execCfg executor.Config) *Dispatcher {
	return &Dispatcher{
		parser:  parser,
		tokens:  tokens,
		players: players,
		execCfg: execCfg,
		sink:    sink,
	}
}

// Handle processes a single utterance through the full pipeline.
func (d *Dispatcher) Handle(ctx context.Context, u message.Utterance) message.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	logger := slog.With("message_id", u.ID, "source", u.Source)

	text := strings.TrimSpace(u.Text)
	out := message.Outcome{UtteranceID: u.ID, Utterance: text}
	if text == "" {
		out.Feedback = "I didn't catch a command."
		d.sink.Say(ctx, out.Feedback)
		return out
	}

	action := d.parser.Parse(ctx, text)
	out.Action = string(action.Kind())
	logger.Info("dispatch started", "action", out.Action)

	d.sink.Say(ctx, announce(action))

	feedback, err := d.run(ctx, action)
	if err != nil {
		out.Error = err.Error()
		out.Feedback = failureText(action, err)
		if errors.Is(err, playback.ErrUnauthorized) {
			d.tokens.Invalidate()
		}
		logger.Error("command failed", "action", out.Action, "error", err, "duration", time.Since(start))
	} else {
		out.Success = true
		out.Feedback = feedback
		logger.Info("dispatch complete", "action", out.Action, "duration", time.Since(start))
	}

	d.sink.Say(ctx, out.Feedback)
	return out
}

// run executes action and converts panics into errors.
func (d *Dispatcher) run(ctx context.Context, action intent.Action) (feedback string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("executor panicked", "action", action.Kind(), "panic", r)
			feedback, err = "", fmt.Errorf("executor panic: %v", r)
		}
	}()

	token, err := d.tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoToken, err)
	}
	exec := executor.New(d.players(token), d.execCfg)

	switch a := action.(type) {
	case intent.PlaySong:
		res, err := exec.PlaySong(ctx, a.Song, a.Artist)
		if err != nil {
			return "", err
		}
		return playText(res), nil

	case intent.NextSong:
		res, err := exec.Next(ctx)
		if err != nil {
			return "", err
		}
		return nextText(res), nil

	case intent.PausePlayback:
		res, err := exec.Pause(ctx)
		if err != nil {
			return "", err
		}
		return "Paused " + res.Track.String() + ".", nil

	case intent.ResumePlayback:
		res, err := exec.Resume(ctx)
		if err != nil {
			return "", err
		}
		if res.Track == nil {
			return "Playback resumed.", nil
		}
		return "Resuming " + res.Track.String() + ".", nil

	case intent.Recommendation:
		res, err := exec.Recommend(ctx, a.MoodText)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Playing the playlist %s.", res.Playlist.Name), nil

	case intent.SwitchDevice:
		res, err := exec.SwitchDevice(ctx, string(a.Device))
		if err != nil {
			return "", err
		}
		return "Switched playback to " + res.Device.Name + ".", nil

	case intent.Like:
		res, err := exec.Like(ctx)
		if err != nil {
			return "", err
		}
		if res.AlreadyLiked {
			return res.Track.String() + " is already in your liked songs.", nil
		}
		return "Added " + res.Track.String() + " to your liked songs.", nil

	case intent.VolumeUp:
		res, err := exec.VolumeUp(ctx, a.Delta)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Volume raised to %d%%.", res.Volume), nil

	case intent.VolumeDown:
		res, err := exec.VolumeDown(ctx, a.Delta)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Volume lowered to %d%%.", res.Volume), nil

	case intent.SetVolume:
		res, err := exec.SetVolume(ctx, a.Level)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Volume set to %d%%.", res.Volume), nil

	default:
		return "", fmt.Errorf("unsupported action %q", action.Kind())
	}
}
