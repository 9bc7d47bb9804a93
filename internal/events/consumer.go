package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"edgesync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// OrderEvent is published by the storefront on order-status transitions.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderHandler receives the order id of each completed-order event.
type OrderHandler func(ctx context.Context, orderID uint) error

// OrderConsumer listens on the order-events topic and hands completed
// orders to the order sync. One order event produces at most one sync.
type OrderConsumer struct {
	logger  *logger.Logger
	reader  *kafka.Reader
	handler OrderHandler
}

func NewOrderConsumer(brokers string, logger *logger.Logger, handler OrderHandler) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{brokers},
		GroupID:        "edgesync-worker",
		Topic:          "order-events",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return &OrderConsumer{logger: logger, reader: reader, handler: handler}
}

func (c *OrderConsumer) Start() {
	c.logger.Info("Order consumer started, listening for events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := c.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			c.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.logger.Error("Failed to parse order event: %v", err)
			continue
		}

		orderID, err := strconv.ParseUint(event.OrderID, 10, 64)
		if err != nil {
			c.logger.Error("Bad order id %q in event: %v", event.OrderID, err)
			continue
		}

		handleCtx, handleCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := c.handler(handleCtx, uint(orderID)); err != nil {
			c.logger.Error("Failed to sync order %d: %v", orderID, err)
		}
		handleCancel()
	}
}

func (c *OrderConsumer) Stop() {
	c.logger.Info("Stopping order consumer...")
	c.reader.Close()
}
