// Package openai synthesizes speech with OpenAI's speech endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/maestro/internal/audio"
	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/tts"
)

// The speech endpoint returns raw PCM as 24 kHz, 16-bit, mono.
const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmWidth      = 2
)

const defaultBaseURL = "https://api.openai.com/v1"

// Synthesizer implements tts.Synthesizer using the OpenAI speech API.
type Synthesizer struct {
	apiKey       string
	baseURL      string
	model        string
	voice        string
	speed        float64
	instructions string
	leadSilence  time.Duration
	client       *http.Client
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a synthesizer. apiKey and baseURL are shared with the
// interpreter's OpenAI settings.
func New(apiKey, baseURL string, cfg config.OpenAISpeechConfig, leadSilence time.Duration) *Synthesizer {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Synthesizer{
		apiKey:       apiKey,
		baseURL:      base,
		model:        cfg.Model,
		voice:        cfg.Voice,
		speed:        cfg.Speed,
		instructions: cfg.Instructions,
		leadSilence:  leadSilence,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "openai" }

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
	ResponseFormat string  `json:"response_format"`
}

// Synthesize requests PCM for text and returns it as WAV with the configured
// lead silence prepended.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text for synthesis")
	}

	voice := opts.Voice
	if voice == "" {
		voice = s.voice
	}

	bodyBytes, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          voice,
		Speed:          s.speed,
		Instructions:   s.instructions,
		ResponseFormat: "pcm",
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech failed (status %d): %s", resp.StatusCode, respBody)
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}
	slog.Debug("speech synthesized", "voice", voice, "pcm_bytes", len(pcm))

	pcm = append(audio.Silence(s.leadSilence, pcmSampleRate, pcmChannels, pcmWidth), pcm...)
	return &tts.SynthesizeResult{
		Audio:       audio.PCMToWAV(pcm, pcmSampleRate, pcmChannels, pcmWidth),
		ContentType: "audio/wav",
		SampleRate:  pcmSampleRate,
		Channels:    pcmChannels,
	}, nil
}

// Close is a no-op for the OpenAI synthesizer.
func (s *Synthesizer) Close() error { return nil }
