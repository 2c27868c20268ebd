package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message represents a Kafka message.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// messageWriter is the part of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer wraps kafka-go writers for publishing messages, one writer per topic.
type Producer struct {
	mu        sync.Mutex
	writers   map[string]messageWriter
	newWriter func(topic string) messageWriter
	brokers   []string
}

// NewProducer creates a new Producer with the given configuration. It fails
// only when the SASL settings cannot be resolved.
func NewProducer(cfg Config) (*Producer, error) {
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}

	transport := &kafkago.Transport{
		TLS:  cfg.tlsConfig(),
		SASL: mechanism,
	}

	p := &Producer{
		writers: make(map[string]messageWriter),
		brokers: cfg.Brokers,
	}
	p.newWriter = func(topic string) messageWriter {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(p.brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
			Transport:    transport,
		}
	}
	return p, nil
}

// Publish sends messages to the specified topic.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w := p.getOrCreateWriter(topic)

	kafkaMessages := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		km := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
		}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		kafkaMessages = append(kafkaMessages, km)
	}

	if err := w.WriteMessages(ctx, kafkaMessages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]messageWriter)
	return firstErr
}

// getOrCreateWriter lazily creates a writer for a topic.
func (p *Producer) getOrCreateWriter(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}
