package pricing

import (
	"tourbook/internal/model"

	"github.com/shopspring/decimal"
)

// Pax bounds for a single booking.
const (
	MinPax = 1
	MaxPax = 2
)

// OrderOptions are the booking choices that drive an order total.
type OrderOptions struct {
	Pax      int
	SameRoom bool
	Hide     model.Visibility
}

// ClampPax keeps pax within [MinPax, MaxPax].
func ClampPax(pax int) int {
	if pax < MinPax {
		return MinPax
	}
	if pax > MaxPax {
		return MaxPax
	}
	return pax
}

// HotelMultiplier returns how many rooms' worth of hotel nights a booking pays for.
// Hidden hotels pay nothing; two travellers pay one room when sharing and two
// otherwise; any other party size pays one room.
func HotelMultiplier(opts OrderOptions) decimal.Decimal {
	if opts.Hide.Hotels {
		return decimal.Zero
	}
	if opts.Pax == 2 && !opts.SameRoom {
		return decimal.NewFromInt(2)
	}
	return one
}

// NetOrderTotal applies the per-category multipliers to a tour's category totals:
// flights and activities per person, transfers once per booking, hotels by
// HotelMultiplier. Hidden categories contribute zero; activities are always
// included.
func NetOrderTotal(opts OrderOptions, totals model.CategoryTotals) decimal.Decimal {
	pax := decimal.NewFromInt(int64(opts.Pax))

	flights := totals.Flights
	if opts.Hide.Flights {
		flights = decimal.Zero
	}
	transfers := totals.Transfers
	if opts.Hide.Transfers {
		transfers = decimal.Zero
	}
	hotels := totals.Hotels
	if opts.Hide.Hotels {
		hotels = decimal.Zero
	}

	return flights.Mul(pax).
		Add(totals.Activities.Mul(pax)).
		Add(transfers).
		Add(hotels.Mul(HotelMultiplier(opts)))
}

// OrderTotal computes the customer-facing total for a booking:
// round(net total x commission, 2), half-up. Pax is clamped to [MinPax, MaxPax]
// before any multiplier is chosen. The tour is only read.
func OrderTotal(opts OrderOptions, totals model.CategoryTotals, commission decimal.Decimal, currency model.Currency) model.Money {
	opts.Pax = ClampPax(opts.Pax)
	net := NetOrderTotal(opts, totals)
	return model.NewMoney(net.Mul(EffectiveCommission(commission)), currency)
}

// PerPerson splits a total across pax, rounded to two places. A non-positive pax
// returns the total unchanged.
func PerPerson(total model.Money, pax int) model.Money {
	if pax <= 0 {
		return total
	}
	return model.NewMoney(total.Amount.Div(decimal.NewFromInt(int64(pax))), total.Currency)
}

// Quote prices a tour for a prospective booking without creating an order.
func Quote(tour model.Tour, totals model.CategoryTotals, opts OrderOptions) model.TourQuote {
	opts.Pax = ClampPax(opts.Pax)
	total := OrderTotal(opts, totals, tour.Commission, tour.Price.Currency)

	return model.TourQuote{
		TourID:    tour.ID,
		Pax:       opts.Pax,
		SameRoom:  opts.SameRoom,
		Hide:      opts.Hide,
		Totals:    totals,
		Total:     total,
		PerPerson: PerPerson(total, opts.Pax),
	}
}
