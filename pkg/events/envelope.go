package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event: metadata plus the JSON encoded
// event body.
type Envelope struct {
	OccurredAt    time.Time       `json:"occurred_at"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	Payload       json.RawMessage `json:"payload"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
}

// NewEnvelope wraps event for transport. The payload is produced by
// JSON-marshalling the event itself.
func NewEnvelope(event DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}

	return Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}, nil
}
