package service

import (
	"context"
	"fmt"
	"strings"

	"tourbook/internal/cache"
	"tourbook/internal/model"
	"tourbook/internal/pricing"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TourDefaults are applied to tours created without a commission or currency.
type TourDefaults struct {
	Commission decimal.Decimal
	Currency   model.Currency
}

// tourService implements TourService.
type tourService struct {
	tourRepo   repository.TourRepository
	dayRepo    repository.DayRepository
	controller *propagation.Controller
	notifier   *Notifier
	quotes     cache.QuoteCache
	defaults   TourDefaults
	logger     zerolog.Logger
}

// NewTourService creates a new tour service.
func NewTourService(
	tourRepo repository.TourRepository,
	dayRepo repository.DayRepository,
	controller *propagation.Controller,
	notifier *Notifier,
	quotes cache.QuoteCache,
	defaults TourDefaults,
	logger zerolog.Logger,
) TourService {
	if quotes == nil {
		quotes = cache.NewNopQuoteCache()
	}
	if defaults.Commission.Sign() <= 0 {
		defaults.Commission = model.MinCommission
	}
	defaults.Currency = defaults.Currency.OrDefault()

	return &tourService{
		tourRepo:   tourRepo,
		dayRepo:    dayRepo,
		controller: controller,
		notifier:   notifier,
		quotes:     quotes,
		defaults:   defaults,
		logger:     logger.With().Str("service", "tour").Logger(),
	}
}

// ValidCommission reports whether c is within [MinCommission, MaxCommission].
func ValidCommission(c decimal.Decimal) bool {
	return c.GreaterThanOrEqual(model.MinCommission) && c.LessThanOrEqual(model.MaxCommission)
}

func (s *tourService) CreateTour(ctx context.Context, req *model.CreateTourRequest) (*model.Tour, error) {
	commission := s.defaults.Commission
	if req.Commission != nil {
		commission = *req.Commission
	}
	if !ValidCommission(commission) {
		return nil, model.ErrInvalidCommission
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Tour slug cannot be derived from the title")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaults.Currency
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	tour := &model.Tour{
		Slug:        slug,
		Title:       req.Title,
		Overview:    req.Overview,
		Commission:  commission.Round(2),
		Price:       model.ZeroMoney(currency),
		IsPublished: published,
	}

	err := inTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		return s.tourRepo.Create(ctx, tx, tour, req.PlacesCovered)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("tour_id", tour.ID).
		Str("slug", tour.Slug).
		Str("commission", tour.Commission.StringFixed(2)).
		Msg("tour created successfully")

	return tour, nil
}

func (s *tourService) List(ctx context.Context, limit, offset int) ([]model.Tour, error) {
	tours, err := s.tourRepo.ListPublished(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list tours")
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	s.logger.Debug().Int("count", len(tours)).Msg("tours listed")
	return tours, nil
}

func (s *tourService) published(ctx context.Context, slug string) (*model.Tour, error) {
	tour, err := s.tourRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tour == nil || !tour.IsPublished {
		return nil, model.ErrTourNotFound
	}
	return tour, nil
}

func (s *tourService) GetDetail(ctx context.Context, slug string) (*model.TourDetail, error) {
	tour, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail := &model.TourDetail{Tour: *tour}

	err = readTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		tourDays, err := s.tourRepo.ListTourDays(ctx, tx, tour.ID)
		if err != nil {
			return err
		}

		itineraries, err := s.controller.Itineraries(ctx, tx, tourDays)
		if err != nil {
			return err
		}

		fallback := 0
		if len(tourDays) == 0 {
			if fallback, err = s.tourRepo.CountDaysInCoveredCities(ctx, tx, tour.ID); err != nil {
				return err
			}
		}

		detail.Days = tourDays
		detail.Totals = pricing.CategoryTotals(itineraries)
		detail.TotalDays = pricing.TotalDays(len(tourDays), fallback)
		detail.DurationLabel = pricing.DurationLabel(detail.TotalDays)
		detail.StartPoint = pricing.StartPoint(tourDays)
		detail.EndPoint = pricing.EndPoint(tourDays)
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to load tour detail")
		return nil, err
	}

	return detail, nil
}

func (s *tourService) Quote(ctx context.Context, slug string, opts pricing.OrderOptions) (*model.TourQuote, error) {
	tour, err := s.published(ctx, slug)
	if err != nil {
		return nil, err
	}

	opts.Pax = pricing.ClampPax(opts.Pax)
	field := cache.QuoteField(opts.Pax, opts.SameRoom, opts.Hide)

	cached, err := s.quotes.Get(ctx, tour.ID, field)
	if err != nil {
		s.logger.Warn().Err(err).Int64("tour_id", tour.ID).Msg("quote cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	var totals model.CategoryTotals
	err = readTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		totals, err = tourTotals(ctx, tx, s.tourRepo, s.controller, tour.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	quote := pricing.Quote(*tour, totals, opts)

	if err := s.quotes.Set(ctx, tour.ID, field, quote); err != nil {
		s.logger.Warn().Err(err).Int64("tour_id", tour.ID).Msg("quote cache write failed")
	}

	return &quote, nil
}

func (s *tourService) AttachDay(ctx context.Context, tourID int64, req *model.AttachDayRequest) (*DayChange, error) {
	change := &DayChange{}

	err := inTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.requireTour(ctx, tx, tourID); err != nil {
			return err
		}

		day, err := s.dayRepo.GetByID(ctx, tx, req.DayID)
		if err != nil {
			return err
		}
		if day == nil {
			return model.ErrDayNotFound
		}

		existing, err := s.tourRepo.ListTourDays(ctx, tx, tourID)
		if err != nil {
			return err
		}

		order := req.Order
		if order <= 0 {
			order = pricing.NextOrder(existing)
		}

		position := len(existing) + 1
		title := pricing.DayTitle(position, req.Title, *day)
		if req.Title != "" && !strings.Contains(req.Title, ":") {
			// A custom title without a "Day N:" prefix is the base itself.
			title = fmt.Sprintf("Day %d: %s", position, req.Title)
		}

		tourDay := &model.TourDay{
			TourID: tourID,
			DayID:  day.ID,
			Order:  order,
			Title:  title,
			Day:    *day,
		}
		if err := s.tourRepo.AddTourDay(ctx, tx, tourDay); err != nil {
			return err
		}
		change.TourDay = tourDay

		change.Recomputed, err = s.controller.TourDaysChanged(ctx, tx, tourID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Recomputed(ctx, change.Recomputed)

	s.logger.Info().
		Int64("tour_id", tourID).
		Int64("day_id", req.DayID).
		Int64("tour_day_id", change.TourDay.ID).
		Int("order", change.TourDay.Order).
		Msg("day attached to tour")

	return change, nil
}

func (s *tourService) DetachDay(ctx context.Context, tourID, tourDayID int64) (*DayChange, error) {
	change := &DayChange{}

	err := inTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.requireTour(ctx, tx, tourID); err != nil {
			return err
		}

		removed, err := s.tourRepo.RemoveTourDay(ctx, tx, tourID, tourDayID)
		if err != nil {
			return err
		}
		if !removed {
			return model.ErrTourDayNotFound
		}

		change.Recomputed, err = s.controller.TourDaysChanged(ctx, tx, tourID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Recomputed(ctx, change.Recomputed)

	s.logger.Info().Int64("tour_id", tourID).Int64("tour_day_id", tourDayID).Msg("day detached from tour")
	return change, nil
}

func (s *tourService) ReorderDay(ctx context.Context, tourID, tourDayID int64, order int) (*DayChange, error) {
	if order <= 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order must be positive")
	}

	change := &DayChange{}

	err := inTx(ctx, s.tourRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.requireTour(ctx, tx, tourID); err != nil {
			return err
		}

		moved, err := s.tourRepo.UpdateTourDayOrder(ctx, tx, tourID, tourDayID, order)
		if err != nil {
			return err
		}
		if !moved {
			return model.ErrTourDayNotFound
		}

		change.Recomputed, err = s.controller.TourDaysChanged(ctx, tx, tourID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Recomputed(ctx, change.Recomputed)

	s.logger.Info().
		Int64("tour_id", tourID).
		Int64("tour_day_id", tourDayID).
		Int("order", order).
		Msg("tour day reordered")

	return change, nil
}

func (s *tourService) requireTour(ctx context.Context, tx pgx.Tx, tourID int64) error {
	tour, err := s.tourRepo.GetByID(ctx, tx, tourID)
	if err != nil {
		return err
	}
	if tour == nil {
		return model.ErrTourNotFound
	}
	return nil
}

// tourTotals computes a tour's per-category totals from its current days.
func tourTotals(ctx context.Context, tx pgx.Tx, tours repository.TourRepository, controller *propagation.Controller, tourID int64) (model.CategoryTotals, error) {
	tourDays, err := tours.ListTourDays(ctx, tx, tourID)
	if err != nil {
		return model.CategoryTotals{}, err
	}

	itineraries, err := controller.Itineraries(ctx, tx, tourDays)
	if err != nil {
		return model.CategoryTotals{}, err
	}
	return pricing.CategoryTotals(itineraries), nil
}
