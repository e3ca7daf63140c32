package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	KitchenJobs = "kitchen.jobs"
	OrderStatus = "order.status"
)

// Queues are published to through the default exchange, routing key = queue name.
var Queues = []string{KitchenJobs, OrderStatus}

type Declarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// DeclareAll is idempotent; every process calls it on startup.
func DeclareAll(ch Declarer) error {
	if ch == nil {
		return fmt.Errorf("nil channel")
	}
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", q, err)
		}
	}
	return nil
}

// Message is one pulled delivery awaiting a verdict.
type Message interface {
	Body() []byte
	Ack() error
	Nack(requeue bool) error
}

// Getter performs a single non-blocking pull (basic.get). ok is false when the queue is empty.
type Getter interface {
	Get(queue string) (msg Message, ok bool, err error)
}

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table, contentType string, persistent bool) error
}

// QueuePublisher sends persistent JSON messages to one durable queue.
type QueuePublisher struct {
	client Publisher
	queue  string
	source string
}

func NewQueuePublisher(client Publisher, queue, source string) *QueuePublisher {
	return &QueuePublisher{client: client, queue: queue, source: source}
}

func (p *QueuePublisher) PublishJSON(ctx context.Context, correlationID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", p.queue, err)
	}
	headers := amqp.Table{"x-source": p.source, "x-correlation-id": correlationID}
	if err := p.client.Publish(ctx, "", p.queue, body, headers, "application/json", true); err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}
