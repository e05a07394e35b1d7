package repository

import (
	"context"
	"fmt"
	"strings"

	"tourbook/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dayRepository implements DayRepository using PostgreSQL.
type dayRepository struct {
	txStarter
	componentsQuery string
}

// NewDayRepository creates a new PostgreSQL-backed day repository.
func NewDayRepository(pool *pgxpool.Pool, logger zerolog.Logger) DayRepository {
	l := logger.With().Str("repository", "day").Logger()
	return &dayRepository{
		txStarter:       txStarter{pool: pool, logger: l},
		componentsQuery: buildComponentsQuery(),
	}
}

// buildComponentsQuery unions the four join tables into one row shape:
// day_id, sort_order, category, id, name, price, currency, created_at.
func buildComponentsQuery() string {
	parts := make([]string, 0, len(model.Categories))
	for _, category := range model.Categories {
		t := componentTables[category]
		parts = append(parts, fmt.Sprintf(`
		SELECT j.day_id, j.sort_order, '%s' AS category, c.id, c.name, c.%s, c.currency, c.created_at
		FROM %s j
		JOIN %s c ON c.id = j.%s
		WHERE j.day_id = ANY($1)`, category, t.priceCol, t.joinTable, t.table, t.joinFK))
	}
	return strings.Join(parts, "\n\t\tUNION ALL") + "\n\t\tORDER BY 1, 2, 4"
}

func (r *dayRepository) CreateCity(ctx context.Context, tx pgx.Tx, city *model.City) error {
	query := `INSERT INTO cities (name, country) VALUES ($1, $2) RETURNING id`

	if err := tx.QueryRow(ctx, query, city.Name, city.Country).Scan(&city.ID); err != nil {
		r.logger.Error().Err(err).Str("city", city.Name).Msg("failed to create city")
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

func (r *dayRepository) Create(ctx context.Context, tx pgx.Tx, day *model.Day) error {
	query := `
		INSERT INTO days (city_id, day_number, title, description, price, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		day.CityID,
		day.DayNumber,
		day.Title,
		day.Description,
		day.Price.Amount,
		string(day.Price.Currency.OrDefault()),
	).Scan(&day.ID, &day.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("City %d does not exist", day.CityID))
		}
		r.logger.Error().Err(err).Int64("city_id", day.CityID).Msg("failed to create day")
		return fmt.Errorf("failed to create day: %w", err)
	}

	r.logger.Debug().Int64("day_id", day.ID).Msg("day created successfully")
	return nil
}

func (r *dayRepository) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Day, error) {
	query := `
		SELECT d.id, d.city_id, c.name, d.day_number, d.title, d.description, d.price, d.currency, d.created_at
		FROM days d
		JOIN cities c ON c.id = d.city_id
		WHERE d.id = $1
	`

	var d model.Day
	var currency string
	err := tx.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.CityID,
		&d.CityName,
		&d.DayNumber,
		&d.Title,
		&d.Description,
		&d.Price.Amount,
		&currency,
		&d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("day_id", id).Msg("day not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("day_id", id).Msg("failed to query day")
		return nil, fmt.Errorf("failed to query day: %w", err)
	}
	d.Price.Currency = model.Currency(currency).OrDefault()

	return &d, nil
}

func (r *dayRepository) ListComponents(ctx context.Context, tx pgx.Tx, dayIDs []int64) (map[int64][]model.DayComponent, error) {
	out := make(map[int64][]model.DayComponent, len(dayIDs))
	if len(dayIDs) == 0 {
		return out, nil
	}

	rows, err := tx.Query(ctx, r.componentsQuery, dayIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("days", len(dayIDs)).Msg("failed to query day components")
		return nil, fmt.Errorf("failed to query day components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc model.DayComponent
		var category, currency string
		err := rows.Scan(
			&dc.DayID,
			&dc.Order,
			&category,
			&dc.Component.ID,
			&dc.Component.Name,
			&dc.Component.Price.Amount,
			&currency,
			&dc.Component.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan day component row")
			return nil, fmt.Errorf("failed to scan day component: %w", err)
		}
		dc.Component.Category = model.Category(category)
		dc.Component.Price.Currency = model.Currency(currency).OrDefault()
		out[dc.DayID] = append(out[dc.DayID], dc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating day component rows")
		return nil, fmt.Errorf("error iterating day components: %w", err)
	}

	return out, nil
}

func (r *dayRepository) UpdatePrice(ctx context.Context, tx pgx.Tx, dayID int64, price decimal.Decimal) error {
	if _, err := tx.Exec(ctx, `UPDATE days SET price = $2 WHERE id = $1`, dayID, price); err != nil {
		r.logger.Error().Err(err).Int64("day_id", dayID).Msg("failed to update day price")
		return fmt.Errorf("failed to update day price: %w", err)
	}
	return nil
}

func (r *dayRepository) AttachComponent(ctx context.Context, tx pgx.Tx, dayID int64, category model.Category, componentID int64, order int) error {
	t, err := tableFor(category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (day_id, %s, sort_order) VALUES ($1, $2, $3)`, t.joinTable, t.joinFK)

	if _, err := tx.Exec(ctx, query, dayID, componentID, order); err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyAttached
		}
		r.logger.Error().Err(err).
			Int64("day_id", dayID).
			Str("category", string(category)).
			Int64("component_id", componentID).
			Msg("failed to attach component")
		return fmt.Errorf("failed to attach component: %w", err)
	}
	return nil
}

func (r *dayRepository) DetachComponent(ctx context.Context, tx pgx.Tx, dayID int64, category model.Category, componentID int64) (bool, error) {
	t, err := tableFor(category)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE day_id = $1 AND %s = $2`, t.joinTable, t.joinFK)

	tag, err := tx.Exec(ctx, query, dayID, componentID)
	if err != nil {
		r.logger.Error().Err(err).Int64("day_id", dayID).Msg("failed to detach component")
		return false, fmt.Errorf("failed to detach component: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *dayRepository) DayIDsForComponent(ctx context.Context, tx pgx.Tx, category model.Category, componentID int64) ([]int64, error) {
	t, err := tableFor(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT day_id FROM %s WHERE %s = $1 ORDER BY day_id`, t.joinTable, t.joinFK)

	rows, err := tx.Query(ctx, query, componentID)
	if err != nil {
		r.logger.Error().Err(err).Int64("component_id", componentID).Msg("failed to query days for component")
		return nil, fmt.Errorf("failed to query days for component: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan day ids: %w", err)
	}
	return ids, nil
}
