package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
)

// LogPublisher writes events to the structured log. It is used when no broker is
// configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ contracts.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event *contracts.OutboxEvent) error {
	p.logger.Info("domain event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("aggregate_id", event.AggregateID),
		zap.Time("created_at", event.CreatedAt),
		zap.String("payload", event.Payload),
	)
	return nil
}

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes outbox events to one topic, keyed by aggregate id so
// events of one product or order stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
}

var _ contracts.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewKafkaWriter builds a synchronous writer for brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *contracts.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: []byte(event.Payload),
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	// Propagate the relay span to consumers.
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
