// Package cache stores computed tour quotes in Redis.
//
// Quotes are keyed by tour and by booking options. Every tour the propagation
// controller recomputes has its quotes dropped, so a cached quote never outlives
// the tour price it was computed from by more than one request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Key patterns.
const (
	// quote:tour:{tour_id} -> hash of option field -> TourQuote json
	KeyTourQuotes = "quote:tour:%d"
)

// DefaultQuoteTTL applies when the configured TTL is not positive.
const DefaultQuoteTTL = 10 * time.Minute

// QuoteCache caches tour quotes.
type QuoteCache interface {
	// Get returns the cached quote, or nil when there is none.
	Get(ctx context.Context, tourID int64, field string) (*model.TourQuote, error)

	// Set stores a quote.
	Set(ctx context.Context, tourID int64, field string, quote model.TourQuote) error

	// Invalidate drops every cached quote of the given tours.
	Invalidate(ctx context.Context, tourIDs ...int64) error

	// Close releases the underlying connection.
	Close() error
}

// QuoteField builds the hash field for a set of booking options.
func QuoteField(pax int, sameRoom bool, hide model.Visibility) string {
	return fmt.Sprintf("pax=%d;same=%t;hf=%t;ht=%t;hh=%t",
		pax, sameRoom, hide.Flights, hide.Transfers, hide.Hotels)
}

// redisQuoteCache implements QuoteCache with a Redis hash per tour.
type redisQuoteCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient creates a Redis client and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewQuoteCache creates a Redis-backed quote cache.
func NewQuoteCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &redisQuoteCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "quote-cache").Logger(),
	}
}

func (c *redisQuoteCache) Get(ctx context.Context, tourID int64, field string) (*model.TourQuote, error) {
	raw, err := c.client.HGet(ctx, fmt.Sprintf(KeyTourQuotes, tourID), field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var quote model.TourQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		c.logger.Warn().Err(err).Int64("tour_id", tourID).Msg("discarding unreadable cached quote")
		return nil, nil
	}
	return &quote, nil
}

func (c *redisQuoteCache) Set(ctx context.Context, tourID int64, field string, quote model.TourQuote) error {
	body, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}

	key := fmt.Sprintf(KeyTourQuotes, tourID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, body)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

func (c *redisQuoteCache) Invalidate(ctx context.Context, tourIDs ...int64) error {
	if len(tourIDs) == 0 {
		return nil
	}
	keys := make([]string, len(tourIDs))
	for i, id := range tourIDs {
		keys[i] = fmt.Sprintf(KeyTourQuotes, id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate quotes: %w", err)
	}
	c.logger.Debug().Ints64("tour_ids", tourIDs).Msg("quotes invalidated")
	return nil
}

func (c *redisQuoteCache) Close() error {
	return c.client.Close()
}

// nopQuoteCache never stores anything.
type nopQuoteCache struct{}

// NewNopQuoteCache returns a cache that always misses.
func NewNopQuoteCache() QuoteCache {
	return nopQuoteCache{}
}

func (nopQuoteCache) Get(context.Context, int64, string) (*model.TourQuote, error) { return nil, nil }
func (nopQuoteCache) Set(context.Context, int64, string, model.TourQuote) error    { return nil }
func (nopQuoteCache) Invalidate(context.Context, ...int64) error                   { return nil }
func (nopQuoteCache) Close() error                                                 { return nil }
