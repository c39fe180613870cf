// internal/notify/sink.go
package notify

import (
	"context"
	"errors"
)

// ErrDelivery is returned (wrapped) by a Sink when a message could not be delivered.
var ErrDelivery = errors.New("notification delivery failed")

// Sink delivers a message to a user's notification channel. A single call is
// a single delivery attempt; retrying is up to the caller.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(ctx context.Context, message string) error

func (f SinkFunc) Send(ctx context.Context, message string) error {
	return f(ctx, message)
}
