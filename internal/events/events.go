// Package events publishes domain events after a change has committed.
//
// Publishing is fire-and-forget: a failed or dropped event is logged and never
// fails the mutation that produced it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tourbook/internal/model"
	"tourbook/internal/propagation"

	"github.com/google/uuid"
)

// Event types.
const (
	EventDayPriceRecomputed  = "day.price.recomputed"
	EventTourPriceRecomputed = "tour.price.recomputed"
	EventBookingCreated      = "booking.created"
)

// Producer names the service in every envelope.
const Producer = "tourbook"

// Envelope wraps every published payload.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Key          string          `json:"key"`
	Payload      json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload into a version 1 envelope. Key is the partition key
// used by stream publishers.
func NewEnvelope(eventType, key string, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     Producer,
		Key:          key,
		Payload:      body,
	}, nil
}

// DecodePayload decodes an envelope's payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("failed to decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}

// DayPriceRecomputed is published for every day whose cached price was rewritten.
type DayPriceRecomputed struct {
	DayID int64       `json:"day_id"`
	Price model.Money `json:"price"`
}

// TourPriceRecomputed is published for every tour whose cached price was rewritten.
type TourPriceRecomputed struct {
	TourID int64            `json:"tour_id"`
	Price  model.Money      `json:"price"`
	Counts model.ItemCounts `json:"counts"`
}

// BookingCreated is published once an order has committed.
type BookingCreated struct {
	OrderID    string      `json:"order_id"`
	TourID     int64       `json:"tour_id"`
	Pax        int         `json:"pax"`
	Email      string      `json:"email,omitempty"`
	TotalPrice model.Money `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Publisher delivers envelopes to a broker.
type Publisher interface {
	// Publish hands an envelope to the broker. Implementations must not block the
	// caller for longer than a single broker round trip.
	Publish(ctx context.Context, env Envelope) error

	// Close flushes pending envelopes and releases broker resources.
	Close() error
}

// NopPublisher discards every envelope.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                            { return nil }

// RecomputedEnvelopes builds one envelope per day and tour in a propagation result,
// days first. Day events are keyed by day id and tour events by tour id.
func RecomputedEnvelopes(result propagation.Result) ([]Envelope, error) {
	out := make([]Envelope, 0, len(result.Days)+len(result.Tours))
	for _, d := range result.Days {
		env, err := NewEnvelope(EventDayPriceRecomputed, fmt.Sprintf("day:%d", d.DayID),
			DayPriceRecomputed{DayID: d.DayID, Price: d.Price})
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	for _, t := range result.Tours {
		env, err := NewEnvelope(EventTourPriceRecomputed, fmt.Sprintf("tour:%d", t.TourID),
			TourPriceRecomputed{TourID: t.TourID, Price: t.Price, Counts: t.Counts})
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}
