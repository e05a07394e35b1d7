package repository

import (
	"context"
	"fmt"

	"tourbook/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	txStarter
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	l := logger.With().Str("repository", "order").Logger()
	return &orderRepository{txStarter{pool: pool, logger: l}}
}

const orderColumns = `
	id, public_id, tour_id, pax, email, same_room,
	hide_flights, hide_transfers, hide_hotels,
	start_date, end_date, total_price, currency, is_paid, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var currency string
	err := row.Scan(
		&o.ID,
		&o.PublicID,
		&o.TourID,
		&o.Pax,
		&o.Email,
		&o.SameRoom,
		&o.Hide.Flights,
		&o.Hide.Transfers,
		&o.Hide.Hotels,
		&o.StartDate,
		&o.EndDate,
		&o.TotalPrice.Amount,
		&currency,
		&o.IsPaid,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.TotalPrice.Currency = model.Currency(currency).OrDefault()
	return &o, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			public_id, tour_id, pax, email, same_room,
			hide_flights, hide_transfers, hide_hotels,
			start_date, end_date, total_price, currency, is_paid
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		order.PublicID,
		order.TourID,
		order.Pax,
		order.Email,
		order.SameRoom,
		order.Hide.Flights,
		order.Hide.Transfers,
		order.Hide.Hotels,
		order.StartDate,
		order.EndDate,
		order.TotalPrice.Amount,
		string(order.TotalPrice.Currency.OrDefault()),
		order.IsPaid,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrTourNotFound
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.PublicID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.PublicID.String()).
		Msg("order created successfully")

	return nil
}

// CreateTravelers inserts travelers within the provided transaction.
func (r *orderRepository) CreateTravelers(ctx context.Context, tx pgx.Tx, travelers []model.Traveler) error {
	if len(travelers) == 0 {
		return nil
	}

	query := `
		INSERT INTO travelers (order_id, title, first_name, last_name, passport_no, phone, dob)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for i := range travelers {
		tr := &travelers[i]
		batch.Queue(query, tr.OrderID, tr.Title, tr.FirstName, tr.LastName, tr.PassportNo, tr.Phone, tr.DOB).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&tr.ID, &tr.CreatedAt)
			})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", travelers[0].OrderID).
			Msg("failed to create travelers")
		return fmt.Errorf("failed to create travelers: %w", err)
	}

	r.logger.Debug().
		Int("count", len(travelers)).
		Msg("travelers created successfully")

	return nil
}

// GetByPublicID retrieves an order by its public ID along with its travelers.
func (r *orderRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Order, []model.Traveler, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE public_id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, publicID))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", publicID.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", publicID.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	travelersQuery := `
		SELECT id, order_id, title, first_name, last_name, passport_no, phone, dob, created_at
		FROM travelers
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, travelersQuery, order.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", publicID.String()).
			Msg("failed to query travelers")
		return nil, nil, fmt.Errorf("failed to query travelers: %w", err)
	}
	defer rows.Close()

	travelers := []model.Traveler{}
	for rows.Next() {
		var tr model.Traveler
		err := rows.Scan(
			&tr.ID,
			&tr.OrderID,
			&tr.Title,
			&tr.FirstName,
			&tr.LastName,
			&tr.PassportNo,
			&tr.Phone,
			&tr.DOB,
			&tr.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan traveler row")
			return nil, nil, fmt.Errorf("failed to scan traveler: %w", err)
		}
		travelers = append(travelers, tr)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating traveler rows")
		return nil, nil, fmt.Errorf("error iterating travelers: %w", err)
	}

	return order, travelers, nil
}

// LockByPublicID retrieves an order and locks its row until tx ends.
func (r *orderRepository) LockByPublicID(ctx context.Context, tx pgx.Tx, publicID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE public_id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, publicID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", publicID.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// CountTravelers counts travelers already saved on an order.
func (r *orderRepository) CountTravelers(ctx context.Context, tx pgx.Tx, orderID int64) (int, error) {
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM travelers WHERE order_id = $1`, orderID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to count travelers")
		return 0, fmt.Errorf("failed to count travelers: %w", err)
	}
	return count, nil
}

// MarkPaid flags an order as paid.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64) error {
	if _, err := tx.Exec(ctx, `UPDATE orders SET is_paid = TRUE WHERE id = $1`, orderID); err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}
