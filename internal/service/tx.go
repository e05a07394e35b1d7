package service

import (
	"context"
	"fmt"

	"tourbook/internal/cache"
	"tourbook/internal/events"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// inTx runs fn in a transaction and commits it when fn succeeds.
func inTx(ctx context.Context, db repository.TxBeginner, logger zerolog.Logger, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// readTx runs fn in a transaction that is always rolled back, so multi-query reads
// see one snapshot.
func readTx(ctx context.Context, db repository.TxBeginner, logger zerolog.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			logger.Error().Err(rbErr).Msg("failed to rollback read transaction")
		}
	}()

	return fn(tx)
}

// Notifier fans a committed propagation result out to the quote cache and the
// price event stream. Failures are logged and never returned.
type Notifier struct {
	quotes    cache.QuoteCache
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewNotifier creates a Notifier. Nil arguments disable the matching side effect.
func NewNotifier(quotes cache.QuoteCache, publisher events.Publisher, logger zerolog.Logger) *Notifier {
	if quotes == nil {
		quotes = cache.NewNopQuoteCache()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Notifier{
		quotes:    quotes,
		publisher: publisher,
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

// Recomputed invalidates quotes of every recomputed tour and publishes one event
// per recomputed day and tour.
func (n *Notifier) Recomputed(ctx context.Context, result propagation.Result) {
	if result.Empty() {
		return
	}

	if tourIDs := result.TourIDs(); len(tourIDs) > 0 {
		if err := n.quotes.Invalidate(ctx, tourIDs...); err != nil {
			n.logger.Warn().Err(err).Ints64("tour_ids", tourIDs).Msg("failed to invalidate quotes")
		}
	}

	envs, err := events.RecomputedEnvelopes(result)
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to build price events")
		return
	}
	for _, env := range envs {
		if err := n.publisher.Publish(ctx, env); err != nil {
			n.logger.Warn().Err(err).Str("event_type", env.EventType).Str("key", env.Key).Msg("failed to publish price event")
		}
	}
}
