// Package mocks provides testify mocks of the repository interfaces and pgx.Tx.
package mocks

import (
	"context"

	"tourbook/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func tx(args mock.Arguments) (pgx.Tx, error) {
	// Return a MockTx interface value, not a pointer
	if t, ok := args.Get(0).(pgx.Tx); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// CatalogRepository is a mock implementation of repository.CatalogRepository.
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return tx(m.Called(ctx))
}

func (m *CatalogRepository) Create(ctx context.Context, t pgx.Tx, component *model.Component) error {
	return m.Called(ctx, t, component).Error(0)
}

func (m *CatalogRepository) GetByID(ctx context.Context, t pgx.Tx, category model.Category, id int64) (*model.Component, error) {
	args := m.Called(ctx, t, category, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Component), args.Error(1)
}

func (m *CatalogRepository) UpdatePrice(ctx context.Context, t pgx.Tx, category model.Category, id int64, price model.Money) error {
	return m.Called(ctx, t, category, id, price).Error(0)
}

// DayRepository is a mock implementation of repository.DayRepository.
type DayRepository struct {
	mock.Mock
}

func (m *DayRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return tx(m.Called(ctx))
}

func (m *DayRepository) CreateCity(ctx context.Context, t pgx.Tx, city *model.City) error {
	return m.Called(ctx, t, city).Error(0)
}

func (m *DayRepository) Create(ctx context.Context, t pgx.Tx, day *model.Day) error {
	return m.Called(ctx, t, day).Error(0)
}

func (m *DayRepository) GetByID(ctx context.Context, t pgx.Tx, id int64) (*model.Day, error) {
	args := m.Called(ctx, t, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *DayRepository) ListComponents(ctx context.Context, t pgx.Tx, dayIDs []int64) (map[int64][]model.DayComponent, error) {
	args := m.Called(ctx, t, dayIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]model.DayComponent), args.Error(1)
}

func (m *DayRepository) UpdatePrice(ctx context.Context, t pgx.Tx, dayID int64, price decimal.Decimal) error {
	return m.Called(ctx, t, dayID, price).Error(0)
}

func (m *DayRepository) AttachComponent(ctx context.Context, t pgx.Tx, dayID int64, category model.Category, componentID int64, order int) error {
	return m.Called(ctx, t, dayID, category, componentID, order).Error(0)
}

func (m *DayRepository) DetachComponent(ctx context.Context, t pgx.Tx, dayID int64, category model.Category, componentID int64) (bool, error) {
	args := m.Called(ctx, t, dayID, category, componentID)
	return args.Bool(0), args.Error(1)
}

func (m *DayRepository) DayIDsForComponent(ctx context.Context, t pgx.Tx, category model.Category, componentID int64) ([]int64, error) {
	args := m.Called(ctx, t, category, componentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// TourRepository is a mock implementation of repository.TourRepository.
type TourRepository struct {
	mock.Mock
}

func (m *TourRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return tx(m.Called(ctx))
}

func (m *TourRepository) Create(ctx context.Context, t pgx.Tx, tour *model.Tour, placesCovered []int64) error {
	return m.Called(ctx, t, tour, placesCovered).Error(0)
}

func (m *TourRepository) GetByID(ctx context.Context, t pgx.Tx, id int64) (*model.Tour, error) {
	args := m.Called(ctx, t, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *TourRepository) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *TourRepository) ListPublished(ctx context.Context, limit, offset int) ([]model.Tour, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *TourRepository) TourIDsForDays(ctx context.Context, t pgx.Tx, dayIDs []int64) ([]int64, error) {
	args := m.Called(ctx, t, dayIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *TourRepository) ListTourDays(ctx context.Context, t pgx.Tx, tourID int64) ([]model.TourDay, error) {
	args := m.Called(ctx, t, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TourDay), args.Error(1)
}

func (m *TourRepository) AddTourDay(ctx context.Context, t pgx.Tx, tourDay *model.TourDay) error {
	return m.Called(ctx, t, tourDay).Error(0)
}

func (m *TourRepository) RemoveTourDay(ctx context.Context, t pgx.Tx, tourID, tourDayID int64) (bool, error) {
	args := m.Called(ctx, t, tourID, tourDayID)
	return args.Bool(0), args.Error(1)
}

func (m *TourRepository) UpdateTourDayOrder(ctx context.Context, t pgx.Tx, tourID, tourDayID int64, order int) (bool, error) {
	args := m.Called(ctx, t, tourID, tourDayID, order)
	return args.Bool(0), args.Error(1)
}

func (m *TourRepository) UpdateTourDayTitles(ctx context.Context, t pgx.Tx, days []model.TourDay) error {
	return m.Called(ctx, t, days).Error(0)
}

func (m *TourRepository) UpdatePrice(ctx context.Context, t pgx.Tx, tourID int64, price decimal.Decimal) error {
	return m.Called(ctx, t, tourID, price).Error(0)
}

func (m *TourRepository) UpdateItemCounts(ctx context.Context, t pgx.Tx, tourID int64, counts model.ItemCounts) error {
	return m.Called(ctx, t, tourID, counts).Error(0)
}

func (m *TourRepository) CountDaysInCoveredCities(ctx context.Context, t pgx.Tx, tourID int64) (int, error) {
	args := m.Called(ctx, t, tourID)
	return args.Int(0), args.Error(1)
}

// OrderRepository is a mock implementation of repository.OrderRepository.
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return tx(m.Called(ctx))
}

func (m *OrderRepository) CreateOrder(ctx context.Context, t pgx.Tx, order *model.Order) error {
	return m.Called(ctx, t, order).Error(0)
}

func (m *OrderRepository) CreateTravelers(ctx context.Context, t pgx.Tx, travelers []model.Traveler) error {
	return m.Called(ctx, t, travelers).Error(0)
}

func (m *OrderRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Order, []model.Traveler, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.Traveler), args.Error(2)
}

func (m *OrderRepository) LockByPublicID(ctx context.Context, t pgx.Tx, publicID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, t, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *OrderRepository) CountTravelers(ctx context.Context, t pgx.Tx, orderID int64) (int, error) {
	args := m.Called(ctx, t, orderID)
	return args.Int(0), args.Error(1)
}

func (m *OrderRepository) MarkPaid(ctx context.Context, t pgx.Tx, orderID int64) error {
	return m.Called(ctx, t, orderID).Error(0)
}

// Tx is a minimal mock implementation of pgx.Tx. Only Commit and Rollback record
// calls; the rest are stubs.
type Tx struct {
	mock.Mock
	Committed  bool
	RolledBack bool
}

// NewTx returns a Tx that accepts any Commit and Rollback.
func NewTx() *Tx {
	t := new(Tx)
	t.On("Commit", mock.Anything).Return(nil).Maybe()
	t.On("Rollback", mock.Anything).Return(nil).Maybe()
	return t
}

func (m *Tx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.Committed = true
	return args.Error(0)
}

func (m *Tx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	if !m.Committed {
		m.RolledBack = true
	}
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in tests
func (m *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *Tx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *Tx) Conn() *pgx.Conn                                               { return nil }
