package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/station-pos/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	clock    func() time.Time
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer, clock: time.Now}
}

// PublishTransactionSettled publishes a settled sale keyed by its number
func (p *Publisher) PublishTransactionSettled(ctx context.Context, event TransactionSettledEvent) error {
	event.EventID = eventID(event.EventID)
	event.EventType = EventTypeTransactionSettled
	event.Timestamp = p.clock().UTC()

	return p.publish(ctx, outgoing{
		topic:     TopicTransactions,
		eventType: event.EventType,
		eventID:   event.EventID,
		key:       event.TransactionNumber,
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("transaction.id", int64(event.TransactionID)),
			attribute.String("transaction.number", event.TransactionNumber),
			attribute.String("transaction.total", event.TotalAmount.StringFixed(2)),
		},
	})
}

// PublishTransactionVoided publishes a cancelled sale keyed by its number
func (p *Publisher) PublishTransactionVoided(ctx context.Context, event TransactionVoidedEvent) error {
	event.EventID = eventID(event.EventID)
	event.EventType = EventTypeTransactionVoided
	event.Timestamp = p.clock().UTC()

	return p.publish(ctx, outgoing{
		topic:     TopicTransactions,
		eventType: event.EventType,
		eventID:   event.EventID,
		key:       event.TransactionNumber,
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("transaction.id", int64(event.TransactionID)),
			attribute.Bool("transaction.restocked", event.Restocked),
		},
	})
}

// PublishLowStock publishes a low-stock signal keyed by product
func (p *Publisher) PublishLowStock(ctx context.Context, event LowStockEvent) error {
	event.EventID = eventID(event.EventID)
	event.EventType = EventTypeLowStock
	event.Timestamp = p.clock().UTC()

	return p.publish(ctx, outgoing{
		topic:     TopicLowStock,
		eventType: event.EventType,
		eventID:   event.EventID,
		key:       fmt.Sprintf("product_%d", event.ProductID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("product.id", int64(event.ProductID)),
			attribute.Int("product.stock", event.CurrentStock),
		},
	})
}

// PublishStockReceived publishes a delivery for the inventory consumer
func (p *Publisher) PublishStockReceived(ctx context.Context, event StockReceivedEvent) error {
	event.EventID = eventID(event.EventID)
	event.EventType = EventTypeStockReceived
	event.Timestamp = p.clock().UTC()

	return p.publish(ctx, outgoing{
		topic:     TopicStockReceived,
		eventType: event.EventType,
		eventID:   event.EventID,
		key:       fmt.Sprintf("product_%d", event.ProductID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("product.id", int64(event.ProductID)),
			attribute.Int("product.quantity", event.Quantity),
		},
	})
}

type outgoing struct {
	topic     string
	eventType string
	eventID   string
	key       string
	payload   any
	attrs     []attribute.KeyValue
}

func (p *Publisher) publish(ctx context.Context, out outgoing) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+out.eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", out.topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", out.eventType),
			attribute.String("event.id", out.eventID),
		),
		trace.WithAttributes(out.attrs...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(out.payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(out.eventType)},
		{Key: []byte("event_id"), Value: []byte(out.eventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   out.topic,
		Key:     sarama.StringEncoder(out.key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", out.topic).
			Str("event_type", out.eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Info(ctx).
		Str("event_id", out.eventID).
		Str("event_type", out.eventType).
		Str("topic", out.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func eventID(id string) string {
	if id != "" {
		return id
	}
	return "evt_" + uuid.NewString()
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransactionSettled(context.Context, TransactionSettledEvent) error {
	return nil
}

func (NoopPublisher) PublishTransactionVoided(context.Context, TransactionVoidedEvent) error {
	return nil
}

func (NoopPublisher) PublishLowStock(context.Context, LowStockEvent) error {
	return nil
}

func (NoopPublisher) PublishStockReceived(context.Context, StockReceivedEvent) error {
	return nil
}

// Close is a no-op
func (NoopPublisher) Close() error {
	return nil
}
