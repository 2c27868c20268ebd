package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/credit-risk-service/pkg/events"
	pkgkafka "github.com/bibbank/credit-risk-service/pkg/kafka"
)

// Producer is the part of *pkgkafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaPublisher implements port.EventPublisher by writing event envelopes to
// a single Kafka topic, keyed by aggregate ID.
type KafkaPublisher struct {
	producer Producer
	logger   *slog.Logger
	topic    string
}

// NewKafkaPublisher creates a new Kafka-backed event publisher.
func NewKafkaPublisher(producer Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serializes and sends domain events to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		envelope, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}

		value, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID().String()),
			Value: value,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"aggregate_type": evt.AggregateType(),
				"event_id":       evt.EventID().String(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}

	p.logger.DebugContext(ctx, "events published", "topic", p.topic, "count", len(messages))
	return nil
}
