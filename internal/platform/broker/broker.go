package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends a JSON message to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg interface{}) error
}

// Handler processes one message body. Returning an error wrapped with
// Permanent drops the message; any other error requeues it.
type Handler func(ctx context.Context, body []byte) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (malformed payloads and the like).
func Permanent(err error) error { return permanentError{err: err} }

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Client owns one AMQP connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	log      logrus.FieldLogger
	mu       sync.Mutex
	declared map[string]bool
}

// Dial connects to RabbitMQ and applies the prefetch count.
func Dial(url string, prefetch int, log logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Qos(prefetch, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Client{conn: conn, channel: channel, log: log, declared: map[string]bool{}}, nil
}

func (c *Client) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// declare is idempotent; callers must hold c.mu.
func (c *Client) declare(queue string) error {
	if c.declared[queue] {
		return nil
	}
	_, err := c.channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	c.declared[queue] = true
	return nil
}

// Publish marshals msg and sends it as a persistent message on the default exchange.
func (c *Client) Publish(ctx context.Context, queue string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.declare(queue); err != nil {
		return err
	}
	err = c.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Consume blocks, dispatching deliveries from queue to handler until ctx is
// cancelled or the channel closes.
func (c *Client) Consume(ctx context.Context, queue string, handler Handler) error {
	c.mu.Lock()
	err := c.declare(queue)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	msgs, err := c.channel.Consume(
		queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", queue).Info("started consuming")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			c.dispatch(ctx, queue, msg, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, queue string, msg amqp.Delivery, handler Handler) {
	entry := c.log.WithFields(logrus.Fields{"queue": queue, "message_id": msg.MessageId})

	err := handler(ctx, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case IsPermanent(err):
		entry.WithError(err).Error("dropping message")
		msg.Nack(false, false)
	default:
		entry.WithError(err).Warn("requeueing message")
		msg.Nack(false, true)
	}
}

// Discard is a Publisher used when no broker is configured.
type Discard struct{ Log logrus.FieldLogger }

func (d Discard) Publish(_ context.Context, queue string, _ interface{}) error {
	if d.Log != nil {
		d.Log.WithField("queue", queue).Debug("broker disabled, message discarded")
	}
	return nil
}
