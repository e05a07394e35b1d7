package repository

import (
	"context"
	"fmt"

	"tourbook/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// tourRepository implements TourRepository using PostgreSQL.
type tourRepository struct {
	txStarter
}

// NewTourRepository creates a new PostgreSQL-backed tour repository.
func NewTourRepository(pool *pgxpool.Pool, logger zerolog.Logger) TourRepository {
	l := logger.With().Str("repository", "tour").Logger()
	return &tourRepository{txStarter{pool: pool, logger: l}}
}

const tourColumns = `
	id, slug, title, overview, commission, price, currency,
	flights_count, hotels_count, activities_count, is_published, created_at`

func scanTour(row pgx.Row) (*model.Tour, error) {
	var t model.Tour
	var currency string
	err := row.Scan(
		&t.ID,
		&t.Slug,
		&t.Title,
		&t.Overview,
		&t.Commission,
		&t.Price.Amount,
		&currency,
		&t.FlightsCount,
		&t.HotelsCount,
		&t.ActivitiesCount,
		&t.IsPublished,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Price.Currency = model.Currency(currency).OrDefault()
	return &t, nil
}

func (r *tourRepository) Create(ctx context.Context, tx pgx.Tx, tour *model.Tour, placesCovered []int64) error {
	query := `
		INSERT INTO tours (slug, title, overview, commission, price, currency, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		tour.Slug,
		tour.Title,
		tour.Overview,
		tour.Commission,
		tour.Price.Amount,
		string(tour.Price.Currency.OrDefault()),
		tour.IsPublished,
	).Scan(&tour.ID, &tour.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		r.logger.Error().Err(err).Str("slug", tour.Slug).Msg("failed to create tour")
		return fmt.Errorf("failed to create tour: %w", err)
	}

	if len(placesCovered) > 0 {
		batch := &pgx.Batch{}
		for _, cityID := range placesCovered {
			batch.Queue(`INSERT INTO tour_places_covered (tour_id, city_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, tour.ID, cityID)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for _, cityID := range placesCovered {
			if _, err := results.Exec(); err != nil {
				if isForeignKeyViolation(err) {
					return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("City %d does not exist", cityID))
				}
				r.logger.Error().Err(err).
					Int64("tour_id", tour.ID).
					Int64("city_id", cityID).
					Msg("failed to add covered city")
				return fmt.Errorf("failed to add covered city: %w", err)
			}
		}
	}

	r.logger.Debug().Int64("tour_id", tour.ID).Str("slug", tour.Slug).Msg("tour created successfully")
	return nil
}

func (r *tourRepository) GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1`

	t, err := scanTour(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("tour_id", id).Msg("tour not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("tour_id", id).Msg("failed to query tour")
		return nil, fmt.Errorf("failed to query tour: %w", err)
	}
	return t, nil
}

func (r *tourRepository) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE slug = $1`

	t, err := scanTour(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("slug", slug).Msg("tour not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query tour")
		return nil, fmt.Errorf("failed to query tour: %w", err)
	}
	return t, nil
}

func (r *tourRepository) ListPublished(ctx context.Context, limit, offset int) ([]model.Tour, error) {
	query := `SELECT ` + tourColumns + `
		FROM tours
		WHERE is_published
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query tours")
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer rows.Close()

	tours := []model.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan tour row")
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating tour rows")
		return nil, fmt.Errorf("error iterating tours: %w", err)
	}

	return tours, nil
}

func (r *tourRepository) TourIDsForDays(ctx context.Context, tx pgx.Tx, dayIDs []int64) ([]int64, error) {
	if len(dayIDs) == 0 {
		return nil, nil
	}

	rows, err := tx.Query(ctx, `SELECT DISTINCT tour_id FROM tour_days WHERE day_id = ANY($1) ORDER BY tour_id`, dayIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("days", len(dayIDs)).Msg("failed to query tours for days")
		return nil, fmt.Errorf("failed to query tours for days: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tour ids: %w", err)
	}
	return ids, nil
}

func (r *tourRepository) ListTourDays(ctx context.Context, tx pgx.Tx, tourID int64) ([]model.TourDay, error) {
	query := `
		SELECT td.id, td.tour_id, td.day_id, td.sort_order, td.title,
			d.id, d.city_id, c.name, d.day_number, d.title, d.description, d.price, d.currency, d.created_at
		FROM tour_days td
		JOIN days d ON d.id = td.day_id
		JOIN cities c ON c.id = d.city_id
		WHERE td.tour_id = $1
		ORDER BY td.sort_order, td.id
	`

	rows, err := tx.Query(ctx, query, tourID)
	if err != nil {
		r.logger.Error().Err(err).Int64("tour_id", tourID).Msg("failed to query tour days")
		return nil, fmt.Errorf("failed to query tour days: %w", err)
	}
	defer rows.Close()

	days := []model.TourDay{}
	for rows.Next() {
		var td model.TourDay
		var currency string
		err := rows.Scan(
			&td.ID,
			&td.TourID,
			&td.DayID,
			&td.Order,
			&td.Title,
			&td.Day.ID,
			&td.Day.CityID,
			&td.Day.CityName,
			&td.Day.DayNumber,
			&td.Day.Title,
			&td.Day.Description,
			&td.Day.Price.Amount,
			&currency,
			&td.Day.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan tour day row")
			return nil, fmt.Errorf("failed to scan tour day: %w", err)
		}
		td.Day.Price.Currency = model.Currency(currency).OrDefault()
		days = append(days, td)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating tour day rows")
		return nil, fmt.Errorf("error iterating tour days: %w", err)
	}

	return days, nil
}

func (r *tourRepository) AddTourDay(ctx context.Context, tx pgx.Tx, tourDay *model.TourDay) error {
	query := `
		INSERT INTO tour_days (tour_id, day_id, sort_order, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, tourDay.TourID, tourDay.DayID, tourDay.Order, tourDay.Title).Scan(&tourDay.ID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("tour_id", tourDay.TourID).
			Int64("day_id", tourDay.DayID).
			Msg("failed to add tour day")
		return fmt.Errorf("failed to add tour day: %w", err)
	}
	return nil
}

func (r *tourRepository) RemoveTourDay(ctx context.Context, tx pgx.Tx, tourID, tourDayID int64) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM tour_days WHERE id = $1 AND tour_id = $2`, tourDayID, tourID)
	if err != nil {
		r.logger.Error().Err(err).Int64("tour_day_id", tourDayID).Msg("failed to remove tour day")
		return false, fmt.Errorf("failed to remove tour day: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tourRepository) UpdateTourDayOrder(ctx context.Context, tx pgx.Tx, tourID, tourDayID int64, order int) (bool, error) {
	tag, err := tx.Exec(ctx, `UPDATE tour_days SET sort_order = $3 WHERE id = $1 AND tour_id = $2`, tourDayID, tourID, order)
	if err != nil {
		r.logger.Error().Err(err).Int64("tour_day_id", tourDayID).Msg("failed to reorder tour day")
		return false, fmt.Errorf("failed to reorder tour day: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tourRepository) UpdateTourDayTitles(ctx context.Context, tx pgx.Tx, days []model.TourDay) error {
	if len(days) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, td := range days {
		batch.Queue(`UPDATE tour_days SET title = $2 WHERE id = $1`, td.ID, td.Title)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, td := range days {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Int64("tour_day_id", td.ID).Msg("failed to update tour day title")
			return fmt.Errorf("failed to update tour day title: %w", err)
		}
	}
	return nil
}

func (r *tourRepository) UpdatePrice(ctx context.Context, tx pgx.Tx, tourID int64, price decimal.Decimal) error {
	if _, err := tx.Exec(ctx, `UPDATE tours SET price = $2 WHERE id = $1`, tourID, price); err != nil {
		r.logger.Error().Err(err).Int64("tour_id", tourID).Msg("failed to update tour price")
		return fmt.Errorf("failed to update tour price: %w", err)
	}
	return nil
}

func (r *tourRepository) UpdateItemCounts(ctx context.Context, tx pgx.Tx, tourID int64, counts model.ItemCounts) error {
	query := `
		UPDATE tours
		SET flights_count = $2, hotels_count = $3, activities_count = $4
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, tourID, counts.Flights, counts.Hotels, counts.Activities); err != nil {
		r.logger.Error().Err(err).Int64("tour_id", tourID).Msg("failed to update tour item counts")
		return fmt.Errorf("failed to update tour item counts: %w", err)
	}
	return nil
}

func (r *tourRepository) CountDaysInCoveredCities(ctx context.Context, tx pgx.Tx, tourID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM days d
		JOIN tour_places_covered p ON p.city_id = d.city_id
		WHERE p.tour_id = $1
	`

	var count int
	if err := tx.QueryRow(ctx, query, tourID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Int64("tour_id", tourID).Msg("failed to count days in covered cities")
		return 0, fmt.Errorf("failed to count days in covered cities: %w", err)
	}
	return count, nil
}
