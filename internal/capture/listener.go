package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/nadzzz/maestro/internal/interpreter"
)

// Recorder captures one phrase as a WAV file.
type Recorder interface {
	Record(ctx context.Context) ([]byte, error)
}

// TranscribingListener records a phrase and transcribes it.
type TranscribingListener struct {
	Recorder    Recorder
	Transcriber interpreter.Transcriber

	// Language is the ISO-639-1 hint passed to the transcriber.
	Language string
}

// Listen records one phrase and returns its transcript. Silence and empty
// transcripts yield ErrNoSpeech.
func (l *TranscribingListener) Listen(ctx context.Context) (string, error) {
	wav, err := l.Recorder.Record(ctx)
	if err != nil {
		return "", err
	}

	res, err := l.Transcriber.Transcribe(ctx, wav, "audio/wav", interpreter.TranscribeOpts{
		Language: l.Language,
		Prompt:   "Spotify voice commands: play, pause, next, volume, like.",
	})
	if err != nil {
		return "", fmt.Errorf("transcribing phrase: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
