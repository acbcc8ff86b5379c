package events

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConsumer reads record events from the queue AMQPPublisher writes to.
// Deliveries must be acknowledged by the caller.
type AMQPConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewAMQPConsumer dials url, declares queue and limits unacknowledged
// deliveries to prefetch.
func NewAMQPConsumer(url, queue string, prefetch int) (*AMQPConsumer, error) {
	conn, ch, name, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("amqp qos: %w", err)
		}
	}
	return &AMQPConsumer{conn: conn, channel: ch, queue: name}, nil
}

// Queue returns the declared queue name.
func (c *AMQPConsumer) Queue() string {
	return c.queue
}

// Deliveries starts consuming with manual acknowledgement. The channel is
// closed when the connection drops or Close is called.
func (c *AMQPConsumer) Deliveries(tag string) (<-chan amqp.Delivery, error) {
	ds, err := c.channel.Consume(
		c.queue,
		tag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("amqp consume: %w", err)
	}
	return ds, nil
}

// Close closes the channel and connection.
func (c *AMQPConsumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
