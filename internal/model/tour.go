package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission bounds accepted at the boundary.
var (
	MinCommission = decimal.NewFromInt(1)
	MaxCommission = decimal.NewFromInt(2)
)

// Tour is an ordered sequence of Days plus a commission multiplier.
//
// Price and the item counts are cached derived values maintained by the pricing
// engine. Price is recomputed when the tour's day set changes or a member day's
// price changes; counts are recomputed when the day set or a member day's
// components change.
type Tour struct {
	ID              int64           `json:"id"`
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	Overview        string          `json:"overview,omitempty"`
	Commission      decimal.Decimal `json:"commission"`
	Price           Money           `json:"price"`
	FlightsCount    int             `json:"flightsCount"`
	HotelsCount     int             `json:"hotelsCount"`
	ActivitiesCount int             `json:"activitiesCount"`
	IsPublished     bool            `json:"isPublished"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TourDay is the ordered join between a Tour and a Day.
// Day is populated by repository reads that join the day row.
type TourDay struct {
	ID     int64  `json:"id"`
	TourID int64  `json:"tourId"`
	DayID  int64  `json:"dayId"`
	Order  int    `json:"order"`
	Title  string `json:"title"`
	Day    Day    `json:"day"`
}

// ItemCounts are the denormalised component counts shown on tour cards.
type ItemCounts struct {
	Flights    int `json:"flights"`
	Hotels     int `json:"hotels"`
	Activities int `json:"activities"`
}

// CategoryTotals are per-category catalogue sums across a tour's member days.
type CategoryTotals struct {
	Flights    decimal.Decimal `json:"flights"`
	Transfers  decimal.Decimal `json:"transfers"`
	Hotels     decimal.Decimal `json:"hotels"`
	Activities decimal.Decimal `json:"activities"`
}

// TourDetail is a tour with its derived display values.
type TourDetail struct {
	Tour          Tour           `json:"tour"`
	Days          []TourDay      `json:"days"`
	Totals        CategoryTotals `json:"totals"`
	TotalDays     int            `json:"totalDays"`
	DurationLabel string         `json:"durationLabel"`
	StartPoint    string         `json:"startPoint,omitempty"`
	EndPoint      string         `json:"endPoint,omitempty"`
}

// TourQuote is the price a given party would pay for a tour.
type TourQuote struct {
	TourID    int64          `json:"tourId"`
	Pax       int            `json:"pax"`
	SameRoom  bool           `json:"sameRoom"`
	Hide      Visibility     `json:"hide"`
	Totals    CategoryTotals `json:"totals"`
	Total     Money          `json:"total"`
	PerPerson Money          `json:"perPerson"`
}
