// Package transport defines the interface for remote command surfaces.
//
// A transport accepts utterances from outside the console session and hands
// them to the same dispatcher the console uses, so remote and local
// commands share one serialized pipeline.
package transport

import (
	"context"

	"github.com/nadzzz/maestro/internal/message"
)

// Handler processes an incoming utterance and returns its outcome.
type Handler func(ctx context.Context, u message.Utterance) message.Outcome

// Transport is the interface every remote surface implements.
type Transport interface {
	// Name returns the transport identifier (e.g., "http").
	Name() string

	// Listen starts accepting commands and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport.
	Close() error
}
