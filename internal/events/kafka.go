package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// KafkaPublisher queues envelopes on a buffered inbox and writes them from a single
// goroutine. A full inbox drops the envelope rather than blocking the caller.
type KafkaPublisher struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  zerolog.Logger

	// mu guards closed and the close of inbox.
	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher writing to cfg.PriceTopic. Start must be
// called before Publish.
func NewKafkaPublisher(cfg config.KafkaConfig, buf int, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.PriceTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}
	return newKafkaPublisher(w, buf, logger)
}

func newKafkaPublisher(w messageWriter, buf int, logger zerolog.Logger) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	return &KafkaPublisher{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger.With().Str("component", "kafka-publisher").Logger(),
	}
}

// Start runs the write loop until Close is called.
func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			p.write(m)
		}
		if err := p.w.Close(); err != nil {
			p.logger.Error().Err(err).Msg("failed to close kafka writer")
		}
	}()
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("failed to write event")
	}
}

// Publish enqueues env.
func (p *KafkaPublisher) Publish(_ context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: body,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn().Str("event_type", env.EventType).Str("key", env.Key).Msg("publisher closed, dropping event")
		return ErrPublisherClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		p.logger.Warn().Str("event_type", env.EventType).Str("key", env.Key).Msg("event inbox full, dropping event")
		return fmt.Errorf("event inbox full")
	}
}

// Close stops accepting envelopes, drains the inbox and waits for the write loop to
// exit. Publish calls racing with Close either enqueue before it or get
// ErrPublisherClosed.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	<-p.closeCh
	return nil
}
