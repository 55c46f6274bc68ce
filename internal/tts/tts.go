// Package tts defines the interface for text-to-speech synthesis.
//
// Maestro speaks every announcement and outcome through a Synthesizer
// unless the session is muted. Backends return a complete WAV file that
// the feedback sink hands to the audio player.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "pl", "en") used to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "openai", "piper").
	Name() string

	// Synthesize generates a WAV file from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 24000).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}
