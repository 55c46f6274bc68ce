// Package piper synthesizes speech on a local Piper server over the Wyoming
// protocol (TCP port 10200 by default), as an offline alternative to the
// OpenAI speech endpoint.
//
// Each Wyoming event is framed as
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"strings"
	"time"

	"github.com/nadzzz/maestro/internal/audio"
	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
var defaultVoices = map[string]string{
	"pl": "pl_PL-gosia-medium",
	"en": "en_US-lessac-medium",
	"de": "de_DE-thorsten-medium",
}

const defaultLanguage = "pl"

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint    string            // host:port used when a language has no own instance
	endpoints   map[string]string // language -> host:port
	voices      map[string]string // language -> voice name
	leadSilence time.Duration
}

// New creates a Piper synthesizer. leadSilence is prepended to every clip so
// the start of speech is not swallowed while the audio device wakes up.
func New(cfg config.PiperConfig, leadSilence time.Duration) *Synthesizer {
	voices := maps.Clone(defaultVoices)
	maps.Copy(voices, cfg.Voices)

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[lang] = hostPort(ep)
	}

	return &Synthesizer{
		endpoint:    hostPort(cfg.Endpoint),
		endpoints:   endpoints,
		voices:      voices,
		leadSilence: leadSilence,
	}
}

func hostPort(ep string) string {
	for _, scheme := range []string{"tcp://", "http://"} {
		ep = strings.TrimPrefix(ep, scheme)
	}
	return ep
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "piper" }

// Synthesize sends text to the Piper server and returns the clip as WAV.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text for synthesis")
	}

	lang := opts.Language
	if lang == "" {
		lang = defaultLanguage
	}
	voice := opts.Voice
	if voice == "" {
		voice = s.voices[lang]
	}
	if voice == "" {
		voice = s.voices[defaultLanguage]
	}

	endpoint := s.endpoints[lang]
	if endpoint == "" {
		endpoint = s.endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", lang)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = conn.SetDeadline(deadline)

	req := event{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := writeEvent(conn, req, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	clip, err := readClip(bufio.NewReader(conn))
	if err != nil {
		return nil, err
	}

	pcm := append(audio.Silence(s.leadSilence, clip.rate, clip.channels, clip.width), clip.pcm...)
	return &tts.SynthesizeResult{
		Audio:       audio.PCMToWAV(pcm, clip.rate, clip.channels, clip.width),
		ContentType: "audio/wav",
		SampleRate:  clip.rate,
		Channels:    clip.channels,
	}, nil
}

// Close does nothing; connections are per request.
func (s *Synthesizer) Close() error { return nil }

type clip struct {
	pcm                   []byte
	rate, channels, width int
}

// readClip consumes audio-start, audio-chunk* and audio-stop.
func readClip(r *bufio.Reader) (clip, error) {
	c := clip{rate: 22050, channels: 1, width: 2}
	var pcm bytes.Buffer

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return clip{}, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			c.rate = intField(evt.Data, "rate", c.rate)
			c.channels = intField(evt.Data, "channels", c.channels)
			c.width = intField(evt.Data, "width", c.width)
		case "audio-chunk":
			pcm.Write(payload)
		case "audio-stop":
			c.pcm = pcm.Bytes()
			slog.Debug("piper clip complete", "pcm_bytes", len(c.pcm), "rate", c.rate)
			return c, nil
		case "error":
			msg, _ := evt.Data["text"].(string)
			if msg == "" {
				msg = "unknown error"
			}
			return clip{}, fmt.Errorf("piper error: %s", msg)
		default:
			slog.Debug("piper event ignored", "type", evt.Type)
		}
	}
}

func intField(data map[string]any, key string, def int) int {
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return def
}

type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeEvent(w io.Writer, evt event, payload []byte) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(body), len(payload))
	buf.Write(body)
	buf.WriteByte('\n')
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

func readEvent(r *bufio.Reader) (event, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return event{}, nil, fmt.Errorf("reading header: %w", err)
	}

	var jsonLen, payloadLen int
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "%d %d", &jsonLen, &payloadLen); err != nil {
		return event{}, nil, fmt.Errorf("invalid wyoming header %q: %w", strings.TrimSpace(header), err)
	}

	body := make([]byte, jsonLen+1) // trailing newline
	if _, err := io.ReadFull(r, body); err != nil {
		return event{}, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt event
	if err := json.Unmarshal(body[:jsonLen], &evt); err != nil {
		return event{}, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return event{}, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return evt, payload, nil
}
