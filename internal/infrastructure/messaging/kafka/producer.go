package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/MarkSentinel/internal/config"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// Publisher is what the application layer depends on.  The scheduler emits
// events through it without knowing the transport.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, envelope *EventEnvelope) error
	Close() error
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes envelopes to Kafka. Messages for the same monitoring item
// share a key, so per-item ordering is preserved within a partition.
type Producer struct {
	writer WriterInterface
	logger logging.Logger
}

// NewProducer builds a Producer from the broker configuration.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  cfg.ProducerRetries,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 100 * time.Millisecond,
		Compression:  kafkago.Snappy,
	}
	return &Producer{writer: writer, logger: logger}
}

// NewProducerWithWriter injects a writer, used by tests.
func NewProducerWithWriter(writer WriterInterface, logger logging.Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, envelope *EventEnvelope) error {
	if envelope == nil {
		return errors.NewValidation("event envelope is required")
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}
	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(envelope.EventType)},
			{Key: "schema_version", Value: []byte(envelope.SchemaVersion)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			logging.String("topic", topic),
			logging.String("event_type", envelope.EventType),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish event to %s", topic)
	}
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", envelope.EventID),
		logging.String("event_type", envelope.EventType))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event.  Used when Kafka is not configured.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher { return &NopPublisher{} }

func (NopPublisher) Publish(context.Context, string, string, *EventEnvelope) error { return nil }

func (NopPublisher) Close() error { return nil }
