package pricing

import (
	"tourbook/internal/model"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// EffectiveCommission returns the commission to apply. A missing (zero) or
// negative commission is treated as 1.00. Values outside [1.00, 2.00] are rejected
// when a tour is written, so they are applied unchanged here.
func EffectiveCommission(commission decimal.Decimal) decimal.Decimal {
	if commission.Sign() <= 0 {
		return one
	}
	return commission
}

// TourPrice returns round(sum(day prices) x commission, 2).
//
// Every TourDay row counts, so a day attached to the tour twice contributes its
// price twice.
func TourPrice(tourDays []model.TourDay, commission decimal.Decimal, currency model.Currency) model.Money {
	base := decimal.Zero
	for _, td := range tourDays {
		base = base.Add(td.Day.Price.Amount)
	}
	base = model.RoundMoney(base)

	return model.NewMoney(base.Mul(EffectiveCommission(commission)), currency)
}

// ItemCounts counts flight, hotel and activity join rows across the distinct
// member days of a tour.
func ItemCounts(days []model.DayItinerary) model.ItemCounts {
	var counts model.ItemCounts
	for _, d := range distinctDays(days) {
		for _, dc := range d.Components {
			switch dc.Component.Category {
			case model.CategoryFlight:
				counts.Flights++
			case model.CategoryHotel:
				counts.Hotels++
			case model.CategoryActivity:
				counts.Activities++
			}
		}
	}
	return counts
}

// CategoryTotals sums flight, transfer and hotel prices across the distinct member
// days of a tour, and activity prices across every tour day row. Hotels contribute
// their price per night.
func CategoryTotals(days []model.DayItinerary) model.CategoryTotals {
	totals := zeroTotals()
	for _, d := range distinctDays(days) {
		sub := DaySubtotals(d.Components)
		totals.Flights = totals.Flights.Add(sub.Flights)
		totals.Transfers = totals.Transfers.Add(sub.Transfers)
		totals.Hotels = totals.Hotels.Add(sub.Hotels)
	}
	totals.Activities = ActivitiesTotal(days)
	return totals
}

// ActivitiesTotal walks the attached activities of every tour day and sums their
// prices directly. A day attached twice is charged twice.
func ActivitiesTotal(days []model.DayItinerary) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		for _, dc := range d.Components {
			if dc.Component.Category != model.CategoryActivity {
				continue
			}
			total = total.Add(dc.Component.Price.Amount)
		}
	}
	return total
}

// DistinctDayIDs returns the member day ids of a tour in join order, each once.
func DistinctDayIDs(tourDays []model.TourDay) []int64 {
	seen := make(map[int64]struct{}, len(tourDays))
	ids := make([]int64, 0, len(tourDays))
	for _, td := range tourDays {
		if _, ok := seen[td.DayID]; ok {
			continue
		}
		seen[td.DayID] = struct{}{}
		ids = append(ids, td.DayID)
	}
	return ids
}

func distinctDays(days []model.DayItinerary) []model.DayItinerary {
	seen := make(map[int64]struct{}, len(days))
	out := make([]model.DayItinerary, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d.Day.ID]; ok {
			continue
		}
		seen[d.Day.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
