// Package local implements the interpreter ports using self-hosted models.
//
// It supports any Whisper-compatible transcription endpoint (e.g., whisper.cpp
// server, faster-whisper, whisper-asr-webservice) and any chat endpoint that
// speaks either the OpenAI chat completions format or Ollama's /api/generate.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/maestro/internal/config"
	"github.com/nadzzz/maestro/internal/interpreter"
)

// Interpreter uses self-hosted models for transcription and completion.
type Interpreter struct {
	whisperEndpoint string
	whisperType     string // "openai" or "asr"
	llmEndpoint     string
	llmModel        string
	vadFilter       bool
	defaultLanguage string
	client          *http.Client
}

var _ interpreter.Interpreter = (*Interpreter)(nil)

// New creates a new local interpreter from config.
func New(cfg config.LocalConfig) *Interpreter {
	wt := cfg.WhisperType
	if wt == "" {
		wt = "openai"
	}
	model := cfg.LLMModel
	if model == "" {
		model = "llama3"
	}
	return &Interpreter{
		whisperEndpoint: cfg.WhisperEndpoint,
		whisperType:     wt,
		llmEndpoint:     cfg.LLMEndpoint,
		llmModel:        model,
		vadFilter:       cfg.VADFilter,
		defaultLanguage: cfg.Language,
		client:          &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the backend identifier.
func (i *Interpreter) Name() string { return "local" }

// Transcribe sends audio to the local Whisper-compatible endpoint.
// Supports two flavors:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    whisper-asr-webservice (POST /asr with query params)
func (i *Interpreter) Transcribe(ctx context.Context, audio []byte, contentType string, opts interpreter.TranscribeOpts) (*interpreter.TranscribeResult, error) {
	if opts.Language == "" {
		opts.Language = i.defaultLanguage
	}

	var (
		req *http.Request
		err error
	)
	switch i.whisperType {
	case "asr":
		req, err = i.asrRequest(ctx, audio, contentType, opts)
	default:
		req, err = i.openAIRequest(ctx, audio, contentType, opts)
	}
	if err != nil {
		return nil, err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("local transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	// Both flavors return {"text": "...", "language": "..."} in verbose JSON mode.
	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	lang := interpreter.NormalizeLanguage(result.Language)
	if lang == "" {
		lang = opts.Language
	}

	slog.Debug("local transcription complete", "flavor", i.whisperType, "text_length", len(result.Text), "language", lang)
	return &interpreter.TranscribeResult{
		Text:     strings.TrimSpace(result.Text),
		Language: lang,
	}, nil
}

// asrRequest builds a whisper-asr-webservice request:
// POST /asr?task=transcribe&language=pl&output=json with field "audio_file".
func (i *Interpreter) asrRequest(ctx context.Context, audio []byte, contentType string, opts interpreter.TranscribeOpts) (*http.Request, error) {
	body, formType, err := multipartAudio("audio_file", audio, contentType, nil)
	if err != nil {
		return nil, err
	}

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	if i.vadFilter {
		q.Set("vad_filter", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.whisperEndpoint+"?"+q.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	return req, nil
}

func (i *Interpreter) openAIRequest(ctx context.Context, audio []byte, contentType string, opts interpreter.TranscribeOpts) (*http.Request, error) {
	fields := map[string]string{"response_format": "verbose_json"}
	if opts.Model != "" {
		fields["model"] = opts.Model
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	body, formType, err := multipartAudio("file", audio, contentType, fields)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.whisperEndpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	return req, nil
}

func multipartAudio(field string, audio []byte, contentType string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+interpreter.ExtFromContentType(contentType))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// Complete sends the prompt pair to the local LLM endpoint. An endpoint
// ending in /api/generate is addressed in Ollama's native format.
func (i *Interpreter) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]any{
		"model": i.llmModel,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0.2,
		"stream":          false,
	}
	if strings.HasSuffix(i.llmEndpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  i.llmModel,
			"system": system,
			"prompt": user,
			"stream": false,
			"format": "json",
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.llmEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := extractContent(respData)
	if content == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}

	slog.Debug("local completion received", "content_length", len(content))
	return content, nil
}

// Close is a no-op for the local interpreter.
func (i *Interpreter) Close() error { return nil }

func extractContent(data []byte) string {
	// OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return string(bytes.TrimSpace(data))
}
