// Package interpreter defines the language-model ports used by maestro.
//
// A Transcriber turns a recorded utterance into text and a Completer answers
// a system+user prompt pair. Two backends are provided: OpenAI (cloud) and
// Local (self-hosted via Ollama/whisper.cpp).
package interpreter

import "context"

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is the ISO-639-1 code (e.g., "pl", "en") to guide transcription.
	Language string

	// Prompt provides context to improve recognition of domain-specific terms.
	Prompt string

	// Model overrides the default transcription model.
	Model string
}

// TranscribeResult is the text recognized in an audio clip.
type TranscribeResult struct {
	Text string

	// Language is the ISO-639-1 code detected by the backend, if reported.
	Language string
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string, opts TranscribeOpts) (*TranscribeResult, error)
}

// Completer returns the model's answer to a system prompt plus one user message.
// Backends request a JSON object response where the API supports it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Interpreter is a backend that provides both capabilities.
type Interpreter interface {
	Transcriber
	Completer

	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Close releases any resources held by the interpreter.
	Close() error
}
