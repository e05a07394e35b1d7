package service

import (
	"context"

	"tourbook/internal/model"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo     repository.CatalogRepository
	controller      *propagation.Controller
	notifier        *Notifier
	defaultCurrency model.Currency
	logger          zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	controller *propagation.Controller,
	notifier *Notifier,
	defaultCurrency model.Currency,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		catalogRepo:     catalogRepo,
		controller:      controller,
		notifier:        notifier,
		defaultCurrency: defaultCurrency.OrDefault(),
		logger:          logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) CreateComponent(ctx context.Context, category model.Category, req *model.CreateComponentRequest) (*model.Component, error) {
	if !category.Valid() {
		return nil, model.ErrInvalidCategory
	}
	if req.Price.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	component := &model.Component{
		Category: category,
		Name:     req.Name,
		Price:    model.NewMoney(req.Price, currency),
	}

	err := inTx(ctx, s.catalogRepo, s.logger, func(tx pgx.Tx) error {
		return s.catalogRepo.Create(ctx, tx, component)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category", string(category)).
		Int64("component_id", component.ID).
		Str("price", component.Price.String()).
		Msg("component created successfully")

	return component, nil
}

func (s *catalogService) UpdatePrice(ctx context.Context, category model.Category, id int64, price model.Money) (*PriceUpdate, error) {
	if !category.Valid() {
		return nil, model.ErrInvalidCategory
	}
	if price.Amount.IsNegative() {
		return nil, model.ErrInvalidPrice
	}
	if price.Currency == "" {
		price.Currency = s.defaultCurrency
	}
	price = model.NewMoney(price.Amount, price.Currency)

	update := &PriceUpdate{}

	err := inTx(ctx, s.catalogRepo, s.logger, func(tx pgx.Tx) error {
		component, err := s.catalogRepo.GetByID(ctx, tx, category, id)
		if err != nil {
			return err
		}
		if component == nil {
			return model.ErrComponentNotFound
		}

		if component.Price.Equal(price) {
			update.Component = *component
			return nil
		}

		if err := s.catalogRepo.UpdatePrice(ctx, tx, category, id, price); err != nil {
			return err
		}
		component.Price = price
		update.Component = *component
		update.Changed = true

		result, err := s.controller.ComponentPriceChanged(ctx, tx, category, id)
		if err != nil {
			s.logger.Error().Err(err).
				Str("category", string(category)).
				Int64("component_id", id).
				Msg("failed to propagate price change")
			return err
		}
		update.Recomputed = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !update.Changed {
		s.logger.Debug().Str("category", string(category)).Int64("component_id", id).Msg("price unchanged, nothing to propagate")
		return update, nil
	}

	s.notifier.Recomputed(ctx, update.Recomputed)

	s.logger.Info().
		Str("category", string(category)).
		Int64("component_id", id).
		Str("price", price.String()).
		Int("days_recomputed", len(update.Recomputed.Days)).
		Int("tours_recomputed", len(update.Recomputed.Tours)).
		Msg("component price updated")

	return update, nil
}
