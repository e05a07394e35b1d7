// Package pricing holds the price arithmetic for days, tours and orders.
//
// Functions here are pure: they read snapshots loaded by the repository layer and
// return new values without touching storage. The propagation controller decides
// when they run and persists their results.
package pricing

import (
	"tourbook/internal/model"

	"github.com/shopspring/decimal"
)

// DayPrice sums the catalogue price of every component attached to a day and
// rounds the result half-up to two places. Categories with no attached components
// contribute zero. Amounts in other currencies are added as-is and the result is
// tagged with the day's currency.
func DayPrice(components []model.DayComponent, currency model.Currency) model.Money {
	subtotals := DaySubtotals(components)
	total := subtotals.Flights.
		Add(subtotals.Transfers).
		Add(subtotals.Hotels).
		Add(subtotals.Activities)
	return model.NewMoney(total, currency)
}

// DaySubtotals splits a day's component prices by category.
func DaySubtotals(components []model.DayComponent) model.CategoryTotals {
	totals := zeroTotals()
	for _, dc := range components {
		amount := dc.Component.Price.Amount
		switch dc.Component.Category {
		case model.CategoryFlight:
			totals.Flights = totals.Flights.Add(amount)
		case model.CategoryTransfer:
			totals.Transfers = totals.Transfers.Add(amount)
		case model.CategoryHotel:
			totals.Hotels = totals.Hotels.Add(amount)
		case model.CategoryActivity:
			totals.Activities = totals.Activities.Add(amount)
		}
	}
	return totals
}

func zeroTotals() model.CategoryTotals {
	return model.CategoryTotals{
		Flights:    decimal.Zero,
		Transfers:  decimal.Zero,
		Hotels:     decimal.Zero,
		Activities: decimal.Zero,
	}
}
