package service

import (
	"context"

	"tourbook/internal/model"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// itineraryService implements ItineraryService.
type itineraryService struct {
	dayRepo         repository.DayRepository
	catalogRepo     repository.CatalogRepository
	controller      *propagation.Controller
	notifier        *Notifier
	defaultCurrency model.Currency
	logger          zerolog.Logger
}

// NewItineraryService creates a new itinerary service.
func NewItineraryService(
	dayRepo repository.DayRepository,
	catalogRepo repository.CatalogRepository,
	controller *propagation.Controller,
	notifier *Notifier,
	defaultCurrency model.Currency,
	logger zerolog.Logger,
) ItineraryService {
	return &itineraryService{
		dayRepo:         dayRepo,
		catalogRepo:     catalogRepo,
		controller:      controller,
		notifier:        notifier,
		defaultCurrency: defaultCurrency.OrDefault(),
		logger:          logger.With().Str("service", "itinerary").Logger(),
	}
}

func (s *itineraryService) CreateCity(ctx context.Context, req *model.CreateCityRequest) (*model.City, error) {
	city := &model.City{Name: req.Name, Country: req.Country}

	err := inTx(ctx, s.dayRepo, s.logger, func(tx pgx.Tx) error {
		return s.dayRepo.CreateCity(ctx, tx, city)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("city_id", city.ID).Str("city", city.Name).Msg("city created")
	return city, nil
}

func (s *itineraryService) CreateDay(ctx context.Context, req *model.CreateDayRequest) (*model.Day, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	day := &model.Day{
		CityID:      req.CityID,
		DayNumber:   req.DayNumber,
		Title:       req.Title,
		Description: req.Description,
		Price:       model.ZeroMoney(currency),
	}

	err := inTx(ctx, s.dayRepo, s.logger, func(tx pgx.Tx) error {
		return s.dayRepo.Create(ctx, tx, day)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("day_id", day.ID).Int64("city_id", day.CityID).Msg("day created")
	return day, nil
}

func (s *itineraryService) GetDay(ctx context.Context, dayID int64) (*model.DayItinerary, error) {
	var out *model.DayItinerary

	err := readTx(ctx, s.dayRepo, s.logger, func(tx pgx.Tx) error {
		day, err := s.dayRepo.GetByID(ctx, tx, dayID)
		if err != nil {
			return err
		}
		if day == nil {
			return model.ErrDayNotFound
		}

		byDay, err := s.dayRepo.ListComponents(ctx, tx, []int64{dayID})
		if err != nil {
			return err
		}

		components := byDay[dayID]
		if components == nil {
			components = []model.DayComponent{}
		}
		out = &model.DayItinerary{Day: *day, Components: components}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *itineraryService) AttachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64, order int) (propagation.Result, error) {
	if !category.Valid() {
		return propagation.Result{}, model.ErrInvalidCategory
	}

	var result propagation.Result
	err := inTx(ctx, s.dayRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.requireDay(ctx, tx, dayID); err != nil {
			return err
		}

		component, err := s.catalogRepo.GetByID(ctx, tx, category, componentID)
		if err != nil {
			return err
		}
		if component == nil {
			return model.ErrComponentNotFound
		}

		if err := s.dayRepo.AttachComponent(ctx, tx, dayID, category, componentID, order); err != nil {
			return err
		}

		result, err = s.controller.ComponentJoinChanged(ctx, tx, dayID)
		return err
	})
	if err != nil {
		return propagation.Result{}, err
	}

	s.notifier.Recomputed(ctx, result)

	s.logger.Info().
		Int64("day_id", dayID).
		Str("category", string(category)).
		Int64("component_id", componentID).
		Int("tours_recomputed", len(result.Tours)).
		Msg("component attached")

	return result, nil
}

func (s *itineraryService) DetachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64) (propagation.Result, error) {
	if !category.Valid() {
		return propagation.Result{}, model.ErrInvalidCategory
	}

	var result propagation.Result
	err := inTx(ctx, s.dayRepo, s.logger, func(tx pgx.Tx) error {
		if err := s.requireDay(ctx, tx, dayID); err != nil {
			return err
		}

		removed, err := s.dayRepo.DetachComponent(ctx, tx, dayID, category, componentID)
		if err != nil {
			return err
		}
		if !removed {
			return model.ErrNotAttached
		}

		result, err = s.controller.ComponentJoinChanged(ctx, tx, dayID)
		return err
	})
	if err != nil {
		return propagation.Result{}, err
	}

	s.notifier.Recomputed(ctx, result)

	s.logger.Info().
		Int64("day_id", dayID).
		Str("category", string(category)).
		Int64("component_id", componentID).
		Int("tours_recomputed", len(result.Tours)).
		Msg("component detached")

	return result, nil
}

func (s *itineraryService) requireDay(ctx context.Context, tx pgx.Tx, dayID int64) error {
	day, err := s.dayRepo.GetByID(ctx, tx, dayID)
	if err != nil {
		return err
	}
	if day == nil {
		return model.ErrDayNotFound
	}
	return nil
}
