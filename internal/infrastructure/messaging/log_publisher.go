package messaging

import (
	"context"
	"log/slog"

	"github.com/bibbank/credit-risk-service/pkg/events"
)

// LogPublisher implements port.EventPublisher by logging events. It is used
// when no Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the events.
func (p *LogPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		p.logger.InfoContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID().String(),
			"aggregate_id", evt.AggregateID().String(),
		)
	}
	return nil
}
