// Package live is the subscription channel for pushed record updates. No
// transport exists yet; Unsupported reports that instead of pretending.
package live

import (
	"context"
	"errors"
)

var ErrNotImplemented = errors.New("live updates not implemented")

// Subscription selects the records a caller wants pushed.
type Subscription struct {
	Resource string
	IDs      []string
}

// Event is one pushed change.
type Event struct {
	Resource string         `json:"resource"`
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Unsubscribe ends a subscription. It is always safe to call.
type Unsubscribe func()

type Channel interface {
	Subscribe(ctx context.Context, sub Subscription, onEvent func(Event)) (Unsubscribe, error)
	Supported() bool
}

// Unsupported is the channel in use until a websocket transport exists. URL
// records where it would connect.
type Unsupported struct {
	URL string
}

func (Unsupported) Subscribe(context.Context, Subscription, func(Event)) (Unsubscribe, error) {
	return func() {}, ErrNotImplemented
}

func (Unsupported) Supported() bool { return false }
