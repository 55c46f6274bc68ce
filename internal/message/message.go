// Package message defines the data types flowing from an input surface
// through the dispatcher to feedback.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the surface an utterance arrived on.
type Source string

const (
	// SourceText is a line typed at the console.
	SourceText Source = "text"

	// SourceVoice is a phrase recognized by the capture channel.
	SourceVoice Source = "voice"

	// SourceHTTP is a command posted to the remote HTTP surface.
	SourceHTTP Source = "http"
)

// Utterance is one raw user command.
type Utterance struct {
	// ID is a unique identifier for this utterance (UUID).
	ID string `json:"id"`

	// Source is where the utterance came from.
	Source Source `json:"source"`

	// Text is the command as typed or transcribed.
	Text string `json:"text"`

	// ReceivedAt is when the utterance entered the pipeline.
	ReceivedAt time.Time `json:"received_at"`
}

// NewUtterance stamps text with a fresh ID and the current time.
func NewUtterance(source Source, text string) Utterance {
	return Utterance{
		ID:         uuid.New().String(),
		Source:     source,
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

// Outcome is the result of handling one utterance.
type Outcome struct {
	// UtteranceID is the handled utterance's ID.
	UtteranceID string `json:"utterance_id"`

	// Utterance echoes the handled text.
	Utterance string `json:"utterance"`

	// Action is the resolved action kind (e.g. "play_song"). Empty if the
	// utterance was blank.
	Action string `json:"action,omitempty"`

	// Success reports whether the action's primary call succeeded.
	Success bool `json:"success"`

	// Feedback is the human-readable result line that was announced.
	Feedback string `json:"feedback"`

	// Error is the underlying failure, if any.
	Error string `json:"error,omitempty"`
}
