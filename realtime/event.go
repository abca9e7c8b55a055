package realtime

import (
	"context"
	"time"
)

// Event is one row change delivered to subscribers.
type Event struct {
	Table    string      `json:"table"`
	Action   string      `json:"action"`
	RecordID int64       `json:"record_id"`
	Record   interface{} `json:"record,omitempty"`
	At       time.Time   `json:"at"`
}

// Sink receives change events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
