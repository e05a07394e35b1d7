package repository

import (
	"context"
	"testing"
	"time"

	"tourbook/internal/database"
	"tourbook/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container with the application schema applied.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed repository test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// withTx runs fn in a transaction that is committed when fn succeeds.
func withTx(t *testing.T, pool *pgxpool.Pool, fn func(tx pgx.Tx)) {
	t.Helper()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	fn(tx)

	require.NoError(t, tx.Commit(ctx))
}

// seedCity inserts a city and returns its id.
func seedCity(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO cities (name, country) VALUES ($1, 'Turkey') RETURNING id", name).Scan(&id)
	require.NoError(t, err)
	return id
}

// seedDay inserts a day in the given city and returns its id.
func seedDay(t *testing.T, pool *pgxpool.Pool, cityID int64, title string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO days (city_id, day_number, title) VALUES ($1, 1, $2) RETURNING id", cityID, title).Scan(&id)
	require.NoError(t, err)
	return id
}

// seedComponent inserts a catalogue component and returns it.
func seedComponent(t *testing.T, pool *pgxpool.Pool, category model.Category, name, price string) model.Component {
	t.Helper()

	repo := NewCatalogRepository(pool, zerolog.Nop())
	c := model.Component{
		Category: category,
		Name:     name,
		Price:    model.NewMoney(dec(price), model.CurrencyUSD),
	}
	withTx(t, pool, func(tx pgx.Tx) {
		require.NoError(t, repo.Create(context.Background(), tx, &c))
	})
	return c
}

// seedTour inserts a tour and returns its id.
func seedTour(t *testing.T, pool *pgxpool.Pool, slug string, published bool, placesCovered ...int64) int64 {
	t.Helper()

	repo := NewTourRepository(pool, zerolog.Nop())
	tour := model.Tour{
		Slug:        slug,
		Title:       slug,
		Commission:  dec("1.10"),
		Price:       model.ZeroMoney(model.CurrencyUSD),
		IsPublished: published,
	}
	withTx(t, pool, func(tx pgx.Tx) {
		require.NoError(t, repo.Create(context.Background(), tx, &tour, placesCovered))
	})
	return tour.ID
}
