package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code accepted by the catalogue.
type Currency string

// Supported currencies.
const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyTRY Currency = "TRY"
)

// DefaultCurrency is used when a row carries no currency.
const DefaultCurrency = CurrencyUSD

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyTRY:
		return true
	}
	return false
}

// OrDefault returns the currency, or DefaultCurrency when it is empty or unknown.
func (c Currency) OrDefault() Currency {
	if c.Valid() {
		return c
	}
	return DefaultCurrency
}

// MoneyPlaces is the number of decimal places money is stored with.
const MoneyPlaces = 2

// Money is a decimal amount tagged with a currency.
// Amounts are never converted between currencies; sums across currencies add the
// raw amounts and keep the currency of the aggregate.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney returns Money rounded to MoneyPlaces.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{
		Amount:   RoundMoney(amount),
		Currency: currency.OrDefault(),
	}
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency.OrDefault()}
}

// RoundMoney rounds half away from zero to MoneyPlaces, which is half-up for the
// non-negative amounts the catalogue carries (100.005 -> 100.01).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Equal compares amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the amount with two decimals followed by the currency.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(MoneyPlaces), m.Currency)
}
