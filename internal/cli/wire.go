package cli

import (
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/nadzzz/maestro/internal/audio"
	"github.com/nadzzz/maestro/internal/auth"
	"github.com/nadzzz/maestro/internal/capture"
	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/credential/file"
	"github.com/nadzzz/maestro/internal/dispatch"
	"github.com/nadzzz/maestro/internal/executor"
	"github.com/nadzzz/maestro/internal/feedback"
	"github.com/nadzzz/maestro/internal/intent"
	"github.com/nadzzz/maestro/internal/interpreter"
	localinterp "github.com/nadzzz/maestro/internal/interpreter/local"
	openaiinterp "github.com/nadzzz/maestro/internal/interpreter/openai"
	spotifyplayback "github.com/nadzzz/maestro/internal/playback/spotify"
	"github.com/nadzzz/maestro/internal/state"
	"github.com/nadzzz/maestro/internal/tts"
	ttsopenai "github.com/nadzzz/maestro/internal/tts/openai"
	"github.com/nadzzz/maestro/internal/tts/piper"
)

// tokenSkew is how close to expiry a cached access token is refreshed.
const tokenSkew = 60 * time.Second

type app struct {
	cfg        *config.Config
	session    *state.Session
	sink       *feedback.Sink
	tokens     *auth.Cache
	dispatcher *dispatch.Dispatcher

	// capture is nil when no recorder is available.
	capture *capture.Channel

	interp interpreter.Interpreter
	synth  tts.Synthesizer
}

func wireApp(cfg *config.Config, out io.Writer) (*app, error) {
	interp, err := newInterpreter(cfg.Interpreter)
	if err != nil {
		return nil, err
	}
	slog.Info("interpreter initialized", "backend", interp.Name())

	session := &state.Session{}

	var sinkOpts []feedback.Option
	synth := newSynthesizer(cfg)
	if synth != nil {
		player := &audio.Player{Command: cfg.TTS.PlayerCommand, Args: cfg.TTS.PlayerArgs}
		sinkOpts = append(sinkOpts, feedback.WithSpeech(synth, player, cfg.TTS.Language))
		slog.Info("speech feedback enabled", "backend", synth.Name(), "player", cfg.TTS.PlayerCommand)
	}
	sink := feedback.New(out, session, sinkOpts...)

	tokens := auth.NewCache(newAuthManager(cfg, out), tokenSkew)

	execCfg := executor.DefaultConfig()
	if cfg.Spotify.Market != "" {
		execCfg.Market = cfg.Spotify.Market
	}

	a := &app{
		cfg:        cfg,
		session:    session,
		sink:       sink,
		tokens:     tokens,
		dispatcher: dispatch.New(intent.NewParser(interp), tokens, spotifyplayback.NewFactory(cfg.Spotify.APIBaseURL), sink, execCfg),
		interp:     interp,
		synth:      synth,
	}

	if available(cfg.Capture.RecorderCommand) {
		recorder := &audio.Recorder{
			Command: cfg.Capture.RecorderCommand,
			Args:    cfg.Capture.RecorderArgs,
			Timeout: cfg.Capture.Calibration + cfg.Capture.Timeout + cfg.Capture.PhraseLimit,
		}
		a.capture = capture.NewChannel(&capture.TranscribingListener{
			Recorder:    recorder,
			Transcriber: interp,
			Language:    cfg.Capture.Language,
		}, session)
	} else {
		slog.Warn("voice capture disabled, recorder not found", "command", cfg.Capture.RecorderCommand)
	}

	return a, nil
}

func newInterpreter(cfg config.InterpreterConfig) (interpreter.Interpreter, error) {
	switch cfg.Backend {
	case "openai":
		return openaiinterp.New(cfg.OpenAI), nil
	case "local":
		return localinterp.New(cfg.Local), nil
	default:
		return nil, errors.New("unknown interpreter backend: " + cfg.Backend)
	}
}

// newSynthesizer returns nil when spoken feedback is off or cannot be played.
func newSynthesizer(cfg *config.Config) tts.Synthesizer {
	if !cfg.TTS.Enabled {
		return nil
	}
	if !available(cfg.TTS.PlayerCommand) {
		slog.Warn("speech feedback disabled, audio player not found", "command", cfg.TTS.PlayerCommand)
		return nil
	}

	switch cfg.TTS.Backend {
	case "piper":
		return piper.New(cfg.TTS.Piper, cfg.TTS.LeadSilence)
	default:
		return ttsopenai.New(cfg.Interpreter.OpenAI.APIKey, cfg.Interpreter.OpenAI.BaseURL, cfg.TTS.OpenAI, cfg.TTS.LeadSilence)
	}
}

func newAuthManager(cfg *config.Config, out io.Writer) *auth.Manager {
	flow := &auth.BrowserFlow{
		ListenAddr:   cfg.Spotify.ListenAddr,
		Timeout:      cfg.Spotify.AuthTimeout,
		PollInterval: cfg.Spotify.PollInterval,
		Out:          out,
	}
	return auth.NewManager(auth.NewOAuthConfig(cfg.Spotify), file.NewStore(cfg.Credentials.Path), flow)
}

func available(command string) bool {
	if command == "" {
		return false
	}
	_, err := exec.LookPath(command)
	return err == nil
}

// Close stops background capture and releases backend resources.
func (a *app) Close() error {
	if a.capture != nil {
		a.capture.Close()
	}
	var errs []error
	if a.synth != nil {
		errs = append(errs, a.synth.Close())
	}
	errs = append(errs, a.interp.Close())
	return errors.Join(errs...)
}
