package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/station-pos/pkg/logger"
)

// StockReceivedHandler applies a delivery to the stock of record
type StockReceivedHandler func(ctx context.Context, event StockReceivedEvent) error

var (
	errMissingEventType = errors.New("message without event_type header")
	errNoHandler        = errors.New("no handler registered")
)

// Consumer reads supplier deliveries from the stock topic
type Consumer struct {
	group   sarama.ConsumerGroup
	groupID string
	topics  []string

	mu            sync.RWMutex
	stockReceived StockReceivedHandler
}

func consumerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true
	return cfg
}

// NewConsumer joins groupID on the given brokers
func NewConsumer(brokers []string, groupID string, topics []string) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(brokers, groupID, consumerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to join consumer group %s: %w", groupID, err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Strs("topics", topics).
		Msg("Kafka consumer initialized")

	return &Consumer{group: group, groupID: groupID, topics: topics}, nil
}

// OnStockReceived registers the handler for inventory.stock_received
func (c *Consumer) OnStockReceived(handler StockReceivedHandler) {
	c.mu.Lock()
	c.stockReceived = handler
	c.mu.Unlock()
}

func (c *Consumer) stockHandler() StockReceivedHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stockReceived
}

// Start consumes in the background until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if c.stockHandler() == nil {
		return fmt.Errorf("failed to start consumer: %w", errNoHandler)
	}

	claims := &consumerGroupHandler{consumer: c}
	go func() {
		// Consume returns on every rebalance and must be called again.
		for ctx.Err() == nil {
			if err := c.group.Consume(ctx, c.topics, claims); err != nil {
				logger.Logger.Error().Err(err).Str("group_id", c.groupID).Msg("Consume session ended with error")
			}
		}
		logger.Logger.Info().Str("group_id", c.groupID).Msg("Kafka consumer stopped")
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-c.group.Errors():
				if !ok {
					return
				}
				logger.Logger.Error().Err(err).Msg("Consumer group error")
			}
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")
	return nil
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	if c.group == nil {
		return nil
	}
	return c.group.Close()
}

type consumerGroupHandler struct {
	consumer *Consumer
}

func (*consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (*consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message. A delivery that fails to apply is logged
// and skipped so that one bad record cannot stall the partition.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		_ = h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

type messageMeta struct {
	carrier   propagation.MapCarrier
	eventType string
	eventID   string
}

func readHeaders(message *sarama.ConsumerMessage) messageMeta {
	meta := messageMeta{carrier: propagation.MapCarrier{}}
	for _, header := range message.Headers {
		switch key := string(header.Key); key {
		case "traceparent", "tracestate":
			meta.carrier[key] = string(header.Value)
		case "event_type":
			meta.eventType = string(header.Value)
		case "event_id":
			meta.eventID = string(header.Value)
		}
	}
	return meta
}

func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	meta := readHeaders(message)
	ctx = otel.GetTextMapPropagator().Extract(ctx, meta.carrier)

	ctx, span := otel.Tracer("kafka-consumer").Start(ctx, "kafka.consume."+meta.eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", meta.eventType),
			attribute.String("event.id", meta.eventID),
		),
	)
	defer span.End()

	err := h.dispatch(ctx, span, meta.eventType, message.Value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx).
			Err(err).
			Str("topic", message.Topic).
			Str("event_type", meta.eventType).
			Str("event_id", meta.eventID).
			Msg("Kafka message skipped")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (h *consumerGroupHandler) dispatch(ctx context.Context, span trace.Span, eventType string, payload []byte) error {
	switch eventType {
	case "":
		return errMissingEventType
	case EventTypeStockReceived:
		handler := h.consumer.stockHandler()
		if handler == nil {
			return fmt.Errorf("%s: %w", eventType, errNoHandler)
		}

		var event StockReceivedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		span.SetAttributes(
			attribute.Int64("product.id", int64(event.ProductID)),
			attribute.Int("product.quantity", event.Quantity),
		)
		if err := handler(ctx, event); err != nil {
			return err
		}

		logger.Info(ctx).
			Str("event_id", event.EventID).
			Uint("product_id", event.ProductID).
			Int("quantity", event.Quantity).
			Msg("Stock delivery applied")
		return nil
	default:
		return fmt.Errorf("unknown event type %s: %w", eventType, errNoHandler)
	}
}
