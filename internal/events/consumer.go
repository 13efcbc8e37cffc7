// Package events consumes platform events from RabbitMQ and feeds them to
// the ingestion handler.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one raw event payload. A returned error means the
// message was bad or could not be applied; the consumer logs it and drops
// the message either way.
type Handler interface {
	Process(ctx context.Context, body []byte) error
}

// Consumer listens on a durable queue and hands every delivery to the
// handler with a manual ack.
type Consumer struct {
	url     string
	queue   string
	handler Handler
	logger  *slog.Logger
}

// NewConsumer creates a queue consumer.
func NewConsumer(url, queue string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if url == "" {
		return nil, errors.New("amqp url is required")
	}
	if queue == "" {
		return nil, errors.New("queue name is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{url: url, queue: queue, handler: handler, logger: logger}, nil
}

// Run connects, declares the queue, and consumes until the context is
// cancelled or the connection drops. Cancellation returns nil; a dropped
// connection returns the underlying error so the caller can decide whether
// to restart.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("connecting to amqp broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("opening amqp channel: %w", err)
	}
	defer ch.Close()

	queue, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declaring queue %s: %w", c.queue, err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consuming from queue %s: %w", c.queue, err)
	}

	c.logger.Info("consuming platform events", "queue", queue.Name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("delivery channel for queue %s closed", c.queue)
			}
			if err := c.handler.Process(ctx, delivery.Body); err != nil {
				c.logger.Warn("dropping event", "queue", c.queue, "error", err)
			}
			if err := delivery.Ack(false); err != nil {
				c.logger.Error("acknowledging delivery failed", "queue", c.queue, "error", err)
			}
		}
	}
}
