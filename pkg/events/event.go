package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. Concrete events
// embed it and carry their payload as exported, JSON tagged fields.
type BaseEvent struct {
	occurredAt    time.Time
	eventType     string
	aggregateType string
	id            uuid.UUID
	aggregateID   uuid.UUID
}

// NewBaseEvent creates a new BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now().UTC(),
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() uuid.UUID {
	return e.id
}

// EventType returns the type name of this event.
func (e BaseEvent) EventType() string {
	return e.eventType
}

// AggregateID returns the identifier of the aggregate that produced this event.
func (e BaseEvent) AggregateID() uuid.UUID {
	return e.aggregateID
}

// AggregateType returns the type name of the aggregate that produced this event.
func (e BaseEvent) AggregateType() string {
	return e.aggregateType
}

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
