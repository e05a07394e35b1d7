// Package repository provides PostgreSQL access for the catalogue, days, tours and
// orders. Methods that take a pgx.Tx run inside the caller's transaction; the rest
// read from the pool.
package repository

import (
	"context"

	"tourbook/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TxBeginner starts database transactions.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// CatalogRepository defines data access for priced catalogue components.
type CatalogRepository interface {
	TxBeginner

	// Create inserts a component and sets its ID and CreatedAt.
	Create(ctx context.Context, tx pgx.Tx, component *model.Component) error

	// GetByID retrieves a component, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, category model.Category, id int64) (*model.Component, error)

	// UpdatePrice overwrites a component's catalogue price.
	UpdatePrice(ctx context.Context, tx pgx.Tx, category model.Category, id int64, price model.Money) error
}

// DayRepository defines data access for days, cities and day/component joins.
type DayRepository interface {
	TxBeginner

	CreateCity(ctx context.Context, tx pgx.Tx, city *model.City) error

	// Create inserts a day and sets its ID and CreatedAt.
	Create(ctx context.Context, tx pgx.Tx, day *model.Day) error

	// GetByID retrieves a day with its city name, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Day, error)

	// ListComponents returns the components attached to each of the given days,
	// keyed by day id. Days without components are absent from the map.
	ListComponents(ctx context.Context, tx pgx.Tx, dayIDs []int64) (map[int64][]model.DayComponent, error)

	// UpdatePrice stores a recomputed day price.
	UpdatePrice(ctx context.Context, tx pgx.Tx, dayID int64, price decimal.Decimal) error

	// AttachComponent creates a day/component join row. Returns
	// model.ErrAlreadyAttached when the pair already exists.
	AttachComponent(ctx context.Context, tx pgx.Tx, dayID int64, category model.Category, componentID int64, order int) error

	// DetachComponent deletes a day/component join row and reports whether one existed.
	DetachComponent(ctx context.Context, tx pgx.Tx, dayID int64, category model.Category, componentID int64) (bool, error)

	// DayIDsForComponent lists the days a component is attached to.
	DayIDsForComponent(ctx context.Context, tx pgx.Tx, category model.Category, componentID int64) ([]int64, error)
}

// TourRepository defines data access for tours and their ordered days.
type TourRepository interface {
	TxBeginner

	// Create inserts a tour with its covered cities. Returns model.ErrSlugTaken when
	// the slug is in use.
	Create(ctx context.Context, tx pgx.Tx, tour *model.Tour, placesCovered []int64) error

	// GetByID retrieves a tour, or nil when it does not exist.
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Tour, error)

	// GetBySlug retrieves a tour by slug, or nil when it does not exist.
	GetBySlug(ctx context.Context, slug string) (*model.Tour, error)

	// ListPublished retrieves published tours with pagination support.
	ListPublished(ctx context.Context, limit, offset int) ([]model.Tour, error)

	// TourIDsForDays lists the distinct tours containing any of the given days.
	TourIDsForDays(ctx context.Context, tx pgx.Tx, dayIDs []int64) ([]int64, error)

	// ListTourDays returns a tour's days ordered by (order, id) with the day and city
	// joined in.
	ListTourDays(ctx context.Context, tx pgx.Tx, tourID int64) ([]model.TourDay, error)

	// AddTourDay inserts a tour/day join row and sets its ID.
	AddTourDay(ctx context.Context, tx pgx.Tx, tourDay *model.TourDay) error

	// RemoveTourDay deletes a tour/day join row and reports whether one existed.
	RemoveTourDay(ctx context.Context, tx pgx.Tx, tourID, tourDayID int64) (bool, error)

	// UpdateTourDayOrder moves a tour day and reports whether the row existed.
	UpdateTourDayOrder(ctx context.Context, tx pgx.Tx, tourID, tourDayID int64, order int) (bool, error)

	// UpdateTourDayTitles writes the titles of the given tour days.
	UpdateTourDayTitles(ctx context.Context, tx pgx.Tx, days []model.TourDay) error

	// UpdatePrice stores a recomputed tour price.
	UpdatePrice(ctx context.Context, tx pgx.Tx, tourID int64, price decimal.Decimal) error

	// UpdateItemCounts stores recomputed item counts.
	UpdateItemCounts(ctx context.Context, tx pgx.Tx, tourID int64, counts model.ItemCounts) error

	// CountDaysInCoveredCities counts days located in the tour's covered cities.
	CountDaysInCoveredCities(ctx context.Context, tx pgx.Tx, tourID int64) (int, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order and sets its ID and CreatedAt.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateTravelers inserts travelers within the provided transaction.
	CreateTravelers(ctx context.Context, tx pgx.Tx, travelers []model.Traveler) error

	// GetByPublicID retrieves an order by its public ID along with its travelers.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Order, []model.Traveler, error)

	// LockByPublicID retrieves an order and locks its row until tx ends.
	LockByPublicID(ctx context.Context, tx pgx.Tx, publicID uuid.UUID) (*model.Order, error)

	// CountTravelers counts travelers already saved on an order.
	CountTravelers(ctx context.Context, tx pgx.Tx, orderID int64) (int, error)

	// MarkPaid flags an order as paid.
	MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64) error
}
