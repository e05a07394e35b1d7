package service

import (
	"context"
	"fmt"
	"time"

	"tourbook/internal/events"
	"tourbook/internal/model"
	"tourbook/internal/pricing"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Date layouts accepted on bookings.
const (
	OrderDateLayout = "2006-01-02"
	DOBLayout       = "02/01/2006"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	tourRepo   repository.TourRepository
	controller *propagation.Controller
	bookings   events.Publisher
	logger     zerolog.Logger
}

// NewOrderService creates a new order service. Booking events go to bookings.
func NewOrderService(
	orderRepo repository.OrderRepository,
	tourRepo repository.TourRepository,
	controller *propagation.Controller,
	bookings events.Publisher,
	logger zerolog.Logger,
) OrderService {
	if bookings == nil {
		bookings = events.NopPublisher{}
	}
	return &orderService{
		orderRepo:  orderRepo,
		tourRepo:   tourRepo,
		controller: controller,
		bookings:   bookings,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder books a tour. Pax above the maximum is clamped; the total is priced
// from the tour's current day totals and stored as a snapshot.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	// Validate request
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, model.NewDomainError(model.ErrCodeValidation, "End date must not be before start date")
	}

	sameRoom := true
	if req.SameRoom != nil {
		sameRoom = *req.SameRoom
	}

	opts := pricing.OrderOptions{
		Pax:      pricing.ClampPax(req.Pax),
		SameRoom: sameRoom,
		Hide:     req.Hide,
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	tour, err := s.tourRepo.GetByID(ctx, tx, req.TourID)
	if err != nil {
		s.logger.Error().Err(err).Int64("tour_id", req.TourID).Msg("failed to load tour")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if tour == nil || !tour.IsPublished {
		err = model.ErrTourNotFound
		return nil, err
	}

	totals, err := tourTotals(ctx, tx, s.tourRepo, s.controller, tour.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("tour_id", tour.ID).Msg("failed to compute tour totals")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order := &model.Order{
		PublicID:   uuid.New(),
		TourID:     tour.ID,
		Pax:        opts.Pax,
		Email:      req.Email,
		SameRoom:   opts.SameRoom,
		Hide:       opts.Hide,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalPrice: pricing.OrderTotal(opts, totals, tour.Commission, tour.Price.Currency),
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.PublicID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.PublicID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publishBooking(ctx, order)

	s.logger.Info().
		Str("order_id", order.PublicID.String()).
		Int64("tour_id", order.TourID).
		Int("pax", order.Pax).
		Str("total", order.TotalPrice.String()).
		Msg("order created successfully")

	return &model.OrderResponse{
		Order:     *order,
		PerPerson: pricing.PerPerson(order.TotalPrice, order.Pax),
		Travelers: []model.Traveler{},
	}, nil
}

func (s *orderService) publishBooking(ctx context.Context, order *model.Order) {
	env, err := events.NewEnvelope(events.EventBookingCreated, order.PublicID.String(), events.BookingCreated{
		OrderID:    order.PublicID.String(),
		TourID:     order.TourID,
		Pax:        order.Pax,
		Email:      order.Email,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build booking event")
		return
	}
	if err := s.bookings.Publish(ctx, env); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.PublicID.String()).Msg("failed to publish booking event")
	}
}

// GetByPublicID retrieves an order by its public ID with its travelers.
func (s *orderService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.OrderResponse, error) {
	order, travelers, err := s.orderRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", publicID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", publicID.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	if travelers == nil {
		travelers = []model.Traveler{}
	}

	return &model.OrderResponse{
		Order:     *order,
		PerPerson: pricing.PerPerson(order.TotalPrice, order.Pax),
		Travelers: travelers,
	}, nil
}

// AddTravelers validates every date of birth before touching storage, then saves
// the travelers under a row lock on the order.
func (s *orderService) AddTravelers(ctx context.Context, publicID uuid.UUID, req *model.TravelersRequest) (*model.OrderResponse, error) {
	if req == nil || len(req.Travelers) == 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "At least one traveler is required")
	}

	travelers := make([]model.Traveler, len(req.Travelers))
	for i, t := range req.Travelers {
		dob, err := ParseDOB(t.DOB)
		if err != nil {
			s.logger.Warn().Int("traveler_index", i).Str("dob", t.DOB).Msg("invalid date of birth")
			return nil, err
		}
		travelers[i] = model.Traveler{
			Title:      t.Title,
			FirstName:  t.FirstName,
			LastName:   t.LastName,
			PassportNo: t.PassportNo,
			Phone:      t.Phone,
			DOB:        &dob,
		}
	}

	err := inTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		order, err := s.orderRepo.LockByPublicID(ctx, tx, publicID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}

		saved, err := s.orderRepo.CountTravelers(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if saved+len(travelers) > order.Pax {
			s.logger.Warn().
				Str("order_id", publicID.String()).
				Int("pax", order.Pax).
				Int("saved", saved).
				Int("requested", len(travelers)).
				Msg("too many travelers")
			return model.ErrTooManyTravelers
		}

		for i := range travelers {
			travelers[i].OrderID = order.ID
		}
		return s.orderRepo.CreateTravelers(ctx, tx, travelers)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", publicID.String()).
		Int("travelers", len(travelers)).
		Msg("travelers saved")

	return s.GetByPublicID(ctx, publicID)
}

// MarkPaid flags an order as paid. Marking a paid order again is a no-op.
func (s *orderService) MarkPaid(ctx context.Context, publicID uuid.UUID) (*model.Order, error) {
	var order *model.Order

	err := inTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.LockByPublicID(ctx, tx, publicID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.IsPaid {
			return nil
		}
		if err := s.orderRepo.MarkPaid(ctx, tx, order.ID); err != nil {
			return err
		}
		order.IsPaid = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", publicID.String()).Msg("order marked paid")
	return order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if req.TourID <= 0 {
		return model.ErrTourNotFound
	}

	if req.Pax < pricing.MinPax {
		s.logger.Warn().Int("pax", req.Pax).Int64("tour_id", req.TourID).Msg("invalid pax")
		return model.ErrInvalidPax
	}

	return nil
}

// ParseDOB parses a DD/MM/YYYY date of birth. Dates in the future are rejected.
func ParseDOB(s string) (time.Time, error) {
	dob, err := time.Parse(DOBLayout, s)
	if err != nil {
		return time.Time{}, model.ErrInvalidDOB
	}
	if dob.After(time.Now()) {
		return time.Time{}, model.ErrInvalidDOB
	}
	return dob, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(OrderDateLayout, s)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", s))
	}
	return &t, nil
}
