package events

import (
	"context"
	"encoding/json"
	"time"

	"edgesync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Event is the shape published on the sync-events topic for every record
// the engine touches.
type Event struct {
	Type      string                 `json:"type"`
	EntityID  string                 `json:"entity_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

const (
	TypeCustomerCreated = "customer.created"
	TypeCustomerUpdated = "customer.updated"
	TypeCustomerSynced  = "customer.synced"
	TypeProductCreated  = "product.created"
	TypeProductUpdated  = "product.updated"
	TypeOrderSynced     = "order.synced"
)

// Publisher emits sync events to Kafka. Publishing is best-effort: a
// broker outage must never fail an import chunk.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        "sync-events",
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, eventType, entityID string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		EntityID:  entityID,
		Data:      data,
		Timestamp: time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode event %s: %v", eventType, err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: value}); err != nil {
		p.logger.Error("Failed to publish event %s: %v", eventType, err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
