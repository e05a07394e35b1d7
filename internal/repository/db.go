package repository

import (
	"context"
	"errors"
	"fmt"

	"tourbook/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// txStarter is embedded by every repository to satisfy TxBeginner.
type txStarter struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// BeginTx starts a new database transaction.
func (s txStarter) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// componentTable describes where one category of component lives.
type componentTable struct {
	table     string
	priceCol  string
	joinTable string
	joinFK    string
}

var componentTables = map[model.Category]componentTable{
	model.CategoryFlight:   {table: "flights", priceCol: "price", joinTable: "day_flights", joinFK: "flight_id"},
	model.CategoryHotel:    {table: "hotels", priceCol: "price_per_night", joinTable: "day_hotels", joinFK: "hotel_id"},
	model.CategoryTransfer: {table: "airport_transfers", priceCol: "price", joinTable: "day_transfers", joinFK: "transfer_id"},
	model.CategoryActivity: {table: "activities", priceCol: "price", joinTable: "day_activities", joinFK: "activity_id"},
}

func tableFor(category model.Category) (componentTable, error) {
	t, ok := componentTables[category]
	if !ok {
		return componentTable{}, model.ErrInvalidCategory
	}
	return t, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}
