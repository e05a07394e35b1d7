package repository

import (
	"context"
	"fmt"

	"tourbook/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements CatalogRepository over the four component tables.
type catalogRepository struct {
	txStarter
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	l := logger.With().Str("repository", "catalog").Logger()
	return &catalogRepository{txStarter{pool: pool, logger: l}}
}

func (r *catalogRepository) Create(ctx context.Context, tx pgx.Tx, component *model.Component) error {
	t, err := tableFor(component.Category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, %s, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.table, t.priceCol)

	err = tx.QueryRow(ctx, query,
		component.Name,
		component.Price.Amount,
		string(component.Price.Currency.OrDefault()),
	).Scan(&component.ID, &component.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", string(component.Category)).
			Msg("failed to create component")
		return fmt.Errorf("failed to create component: %w", err)
	}

	r.logger.Debug().
		Str("category", string(component.Category)).
		Int64("component_id", component.ID).
		Msg("component created successfully")

	return nil
}

func (r *catalogRepository) GetByID(ctx context.Context, tx pgx.Tx, category model.Category, id int64) (*model.Component, error) {
	t, err := tableFor(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, %s, currency, created_at
		FROM %s
		WHERE id = $1
	`, t.priceCol, t.table)

	c := model.Component{Category: category}
	var currency string
	err = tx.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Price.Amount, &currency, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().
				Str("category", string(category)).
				Int64("component_id", id).
				Msg("component not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("component_id", id).Msg("failed to query component")
		return nil, fmt.Errorf("failed to query component: %w", err)
	}
	c.Price.Currency = model.Currency(currency).OrDefault()

	return &c, nil
}

func (r *catalogRepository) UpdatePrice(ctx context.Context, tx pgx.Tx, category model.Category, id int64, price model.Money) error {
	t, err := tableFor(category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, currency = $3 WHERE id = $1`, t.table, t.priceCol)

	tag, err := tx.Exec(ctx, query, id, price.Amount, string(price.Currency.OrDefault()))
	if err != nil {
		r.logger.Error().Err(err).Int64("component_id", id).Msg("failed to update component price")
		return fmt.Errorf("failed to update component price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrComponentNotFound
	}

	return nil
}
