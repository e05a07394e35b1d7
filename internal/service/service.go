package service

import (
	"context"

	"tourbook/internal/model"
	"tourbook/internal/pricing"
	"tourbook/internal/propagation"

	"github.com/google/uuid"
)

// CatalogService defines operations on priced catalogue components.
type CatalogService interface {
	// CreateComponent adds a component to the catalogue.
	CreateComponent(ctx context.Context, category model.Category, req *model.CreateComponentRequest) (*model.Component, error)

	// UpdatePrice changes a component's catalogue price and propagates the change
	// to every day and tour containing it.
	UpdatePrice(ctx context.Context, category model.Category, id int64, price model.Money) (*PriceUpdate, error)
}

// ItineraryService defines operations on cities, days and day/component joins.
type ItineraryService interface {
	CreateCity(ctx context.Context, req *model.CreateCityRequest) (*model.City, error)

	// CreateDay adds a day with a zero price.
	CreateDay(ctx context.Context, req *model.CreateDayRequest) (*model.Day, error)

	// GetDay retrieves a day with its attached components.
	GetDay(ctx context.Context, dayID int64) (*model.DayItinerary, error)

	// AttachComponent attaches a component to a day and recomputes the day and
	// every tour containing it.
	AttachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64, order int) (propagation.Result, error)

	// DetachComponent removes a component from a day and recomputes the day and
	// every tour containing it.
	DetachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64) (propagation.Result, error)
}

// TourService defines operations on tours and their ordered days.
type TourService interface {
	// CreateTour adds a tour. The slug is derived from the title when empty.
	CreateTour(ctx context.Context, req *model.CreateTourRequest) (*model.Tour, error)

	// List retrieves published tours with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Tour, error)

	// GetDetail retrieves a published tour with its derived display values.
	GetDetail(ctx context.Context, slug string) (*model.TourDetail, error)

	// Quote prices a published tour for the given booking options.
	Quote(ctx context.Context, slug string, opts pricing.OrderOptions) (*model.TourQuote, error)

	// AttachDay appends or inserts a day into a tour.
	AttachDay(ctx context.Context, tourID int64, req *model.AttachDayRequest) (*DayChange, error)

	// DetachDay removes a tour day.
	DetachDay(ctx context.Context, tourID, tourDayID int64) (*DayChange, error)

	// ReorderDay moves a tour day to a new order.
	ReorderDay(ctx context.Context, tourID, tourDayID int64, order int) (*DayChange, error)
}

// OrderService defines operations for bookings.
type OrderService interface {
	// CreateOrder books a tour and snapshots its total.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByPublicID retrieves an order with its travelers.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.OrderResponse, error)

	// AddTravelers saves travelers on an order, at most pax in total.
	AddTravelers(ctx context.Context, publicID uuid.UUID, req *model.TravelersRequest) (*model.OrderResponse, error)

	// MarkPaid flags an order as paid.
	MarkPaid(ctx context.Context, publicID uuid.UUID) (*model.Order, error)
}

// PriceUpdate reports a catalogue price change and what it recomputed.
type PriceUpdate struct {
	Component  model.Component    `json:"component"`
	Changed    bool               `json:"changed"`
	Recomputed propagation.Result `json:"recomputed"`
}

// DayChange reports a tour day mutation and what it recomputed.
type DayChange struct {
	TourDay    *model.TourDay     `json:"tourDay,omitempty"`
	Recomputed propagation.Result `json:"recomputed"`
}
