package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tourbook/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes envelopes as persistent messages on a durable queue.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     amqpChannel
	queue  string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewAMQPPublisher dials the broker and declares cfg.BookingQueue.
func NewAMQPPublisher(cfg config.AMQPConfig, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.BookingQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.BookingQueue, err)
	}

	p := newAMQPPublisher(ch, cfg.BookingQueue, logger)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, queue string, logger zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		ch:     ch,
		queue:  queue,
		logger: logger.With().Str("component", "amqp-publisher").Str("queue", queue).Logger(),
	}
}

// Publish sends env to the queue through the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Type:         env.EventType,
		Timestamp:    env.OccurredAt,
		AppId:        env.Producer,
		Body:         body,
	}

	// Channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Error().Err(err).Str("event_type", env.EventType).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", env.EventType, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
