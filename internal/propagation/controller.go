// Package propagation keeps cached Day and Tour prices consistent with the
// catalogue. Mutating services call the Controller inside their transaction after
// changing a join row or a component price.
//
// All day recomputes of one change complete before any tour recompute, so a tour
// always sums the day prices written by the same change.
package propagation

import (
	"context"
	"fmt"

	"tourbook/internal/model"
	"tourbook/internal/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DayStore is the day data the controller reads and writes.
type DayStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Day, error)
	ListComponents(ctx context.Context, tx pgx.Tx, dayIDs []int64) (map[int64][]model.DayComponent, error)
	UpdatePrice(ctx context.Context, tx pgx.Tx, dayID int64, price decimal.Decimal) error
	DayIDsForComponent(ctx context.Context, tx pgx.Tx, category model.Category, componentID int64) ([]int64, error)
}

// TourStore is the tour data the controller reads and writes.
type TourStore interface {
	GetByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Tour, error)
	TourIDsForDays(ctx context.Context, tx pgx.Tx, dayIDs []int64) ([]int64, error)
	ListTourDays(ctx context.Context, tx pgx.Tx, tourID int64) ([]model.TourDay, error)
	UpdateTourDayTitles(ctx context.Context, tx pgx.Tx, days []model.TourDay) error
	UpdatePrice(ctx context.Context, tx pgx.Tx, tourID int64, price decimal.Decimal) error
	UpdateItemCounts(ctx context.Context, tx pgx.Tx, tourID int64, counts model.ItemCounts) error
}

// DayUpdate is a recomputed day price.
type DayUpdate struct {
	DayID int64       `json:"dayId"`
	Price model.Money `json:"price"`
}

// TourUpdate is a recomputed tour price and item counts.
type TourUpdate struct {
	TourID int64            `json:"tourId"`
	Price  model.Money      `json:"price"`
	Counts model.ItemCounts `json:"counts"`
}

// Result lists what one change recomputed, in recompute order.
type Result struct {
	Days  []DayUpdate  `json:"days"`
	Tours []TourUpdate `json:"tours"`
}

// Empty reports whether nothing was recomputed.
func (r Result) Empty() bool {
	return len(r.Days) == 0 && len(r.Tours) == 0
}

// Merge appends other's updates.
func (r *Result) Merge(other Result) {
	r.Days = append(r.Days, other.Days...)
	r.Tours = append(r.Tours, other.Tours...)
}

// TourIDs lists the recomputed tours.
func (r Result) TourIDs() []int64 {
	ids := make([]int64, len(r.Tours))
	for i, t := range r.Tours {
		ids[i] = t.TourID
	}
	return ids
}

// Controller recomputes derived prices after a mutation.
type Controller struct {
	days   DayStore
	tours  TourStore
	logger zerolog.Logger
}

// NewController creates a propagation controller.
func NewController(days DayStore, tours TourStore, logger zerolog.Logger) *Controller {
	return &Controller{
		days:   days,
		tours:  tours,
		logger: logger.With().Str("component", "propagation").Logger(),
	}
}

// ComponentJoinChanged handles a component attached to or detached from a day: the
// day is recomputed, then every tour containing it.
func (c *Controller) ComponentJoinChanged(ctx context.Context, tx pgx.Tx, dayID int64) (Result, error) {
	return c.daysChanged(ctx, tx, []int64{dayID})
}

// ComponentPriceChanged handles a catalogue price change: every day referencing the
// component is recomputed, then every tour containing any of those days, once each.
func (c *Controller) ComponentPriceChanged(ctx context.Context, tx pgx.Tx, category model.Category, componentID int64) (Result, error) {
	dayIDs, err := c.days.DayIDsForComponent(ctx, tx, category, componentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to find days for component: %w", err)
	}

	c.logger.Debug().
		Str("category", string(category)).
		Int64("component_id", componentID).
		Int("days", len(dayIDs)).
		Msg("propagating component price change")

	return c.daysChanged(ctx, tx, dayIDs)
}

// TourDaysChanged handles a day attached to, detached from or moved within a tour.
// Only that tour is recomputed, and its day titles are renumbered.
func (c *Controller) TourDaysChanged(ctx context.Context, tx pgx.Tx, tourID int64) (Result, error) {
	var result Result

	update, err := c.RecomputeTour(ctx, tx, tourID, true)
	if err != nil {
		return Result{}, err
	}
	if update != nil {
		result.Tours = append(result.Tours, *update)
	}
	return result, nil
}

func (c *Controller) daysChanged(ctx context.Context, tx pgx.Tx, dayIDs []int64) (Result, error) {
	var result Result
	if len(dayIDs) == 0 {
		return result, nil
	}

	for _, dayID := range dayIDs {
		update, err := c.RecomputeDay(ctx, tx, dayID)
		if err != nil {
			return Result{}, err
		}
		if update != nil {
			result.Days = append(result.Days, *update)
		}
	}

	tourIDs, err := c.tours.TourIDsForDays(ctx, tx, dayIDs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to find tours for days: %w", err)
	}

	for _, tourID := range dedupe(tourIDs) {
		update, err := c.RecomputeTour(ctx, tx, tourID, false)
		if err != nil {
			return Result{}, err
		}
		if update != nil {
			result.Tours = append(result.Tours, *update)
		}
	}

	return result, nil
}

// RecomputeDay sums the day's component prices and stores the result. A day that no
// longer exists is skipped and nil is returned.
func (c *Controller) RecomputeDay(ctx context.Context, tx pgx.Tx, dayID int64) (*DayUpdate, error) {
	day, err := c.days.GetByID(ctx, tx, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load day %d: %w", dayID, err)
	}
	if day == nil {
		c.logger.Debug().Int64("day_id", dayID).Msg("day vanished before recompute, skipping")
		return nil, nil
	}

	byDay, err := c.days.ListComponents(ctx, tx, []int64{dayID})
	if err != nil {
		return nil, fmt.Errorf("failed to load components of day %d: %w", dayID, err)
	}

	price := pricing.DayPrice(byDay[dayID], day.Price.Currency)
	if err := c.days.UpdatePrice(ctx, tx, dayID, price.Amount); err != nil {
		return nil, fmt.Errorf("failed to store price of day %d: %w", dayID, err)
	}

	c.logger.Debug().
		Int64("day_id", dayID).
		Str("price", price.String()).
		Msg("day price recomputed")

	return &DayUpdate{DayID: dayID, Price: price}, nil
}

// RecomputeTour recomputes a tour's item counts and price from its current days and
// stores both. With renumber set, tour day titles are rewritten to match their
// positions. A tour that no longer exists is skipped and nil is returned.
func (c *Controller) RecomputeTour(ctx context.Context, tx pgx.Tx, tourID int64, renumber bool) (*TourUpdate, error) {
	tour, err := c.tours.GetByID(ctx, tx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour %d: %w", tourID, err)
	}
	if tour == nil {
		c.logger.Debug().Int64("tour_id", tourID).Msg("tour vanished before recompute, skipping")
		return nil, nil
	}

	tourDays, err := c.tours.ListTourDays(ctx, tx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to load days of tour %d: %w", tourID, err)
	}

	itineraries, err := c.Itineraries(ctx, tx, tourDays)
	if err != nil {
		return nil, err
	}

	counts := pricing.ItemCounts(itineraries)
	if err := c.tours.UpdateItemCounts(ctx, tx, tourID, counts); err != nil {
		return nil, fmt.Errorf("failed to store item counts of tour %d: %w", tourID, err)
	}

	price := pricing.TourPrice(tourDays, tour.Commission, tour.Price.Currency)
	if err := c.tours.UpdatePrice(ctx, tx, tourID, price.Amount); err != nil {
		return nil, fmt.Errorf("failed to store price of tour %d: %w", tourID, err)
	}

	if renumber {
		if changed := pricing.RenumberTitles(tourDays); len(changed) > 0 {
			if err := c.tours.UpdateTourDayTitles(ctx, tx, changed); err != nil {
				return nil, fmt.Errorf("failed to renumber days of tour %d: %w", tourID, err)
			}
		}
	}

	c.logger.Debug().
		Int64("tour_id", tourID).
		Str("price", price.String()).
		Int("flights", counts.Flights).
		Int("hotels", counts.Hotels).
		Int("activities", counts.Activities).
		Msg("tour recomputed")

	return &TourUpdate{TourID: tourID, Price: price, Counts: counts}, nil
}

// Itineraries loads the components of each tour day, one entry per TourDay row in
// the given order. A day attached twice appears twice; components are fetched once
// per distinct day.
func (c *Controller) Itineraries(ctx context.Context, tx pgx.Tx, tourDays []model.TourDay) ([]model.DayItinerary, error) {
	dayIDs := pricing.DistinctDayIDs(tourDays)
	if len(dayIDs) == 0 {
		return nil, nil
	}

	byDay, err := c.days.ListComponents(ctx, tx, dayIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour day components: %w", err)
	}

	out := make([]model.DayItinerary, 0, len(tourDays))
	for _, td := range tourDays {
		day := td.Day
		day.ID = td.DayID
		out = append(out, model.DayItinerary{Day: day, Components: byDay[td.DayID]})
	}
	return out, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
