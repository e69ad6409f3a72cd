package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope published for every outbox event.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Handler consumes one message. Returning an error only logs it; pub/sub
// has no redelivery.
type Handler func(ctx context.Context, msg Message) error

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, msg Message) error
	// Subscribe blocks, feeding messages to handler until ctx is done.
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}
