package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultQueue   = "resume_events"
	publishTimeout = 5 * time.Second
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends record events to a durable RabbitMQ queue.
type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
}

// NewAMQPPublisher dials url and declares queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, ch, name, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch, queue: name}, nil
}

// dialQueue opens a channel on url and declares the durable queue.
func dialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil, "", errors.New("amqp url is required")
	}
	if strings.TrimSpace(queue) == "" {
		queue = defaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, "", fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, "", fmt.Errorf("amqp channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, "", fmt.Errorf("amqp declare queue: %w", err)
	}
	return conn, ch, q.Name, nil
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev RecordEvent) error {
	body, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode record event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Kind),
		MessageId:    ev.RecordID + ":" + ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

var _ Publisher = (*AMQPPublisher)(nil)
