// Package catalog imports catalogue price feeds. A feed is a gzip-compressed file
// of JSON lines, one price per line:
//
//	{"category":"hotel","id":12,"price":"120.50","currency":"USD"}
//
// Feeds are read from S3 or local disk and every changed price is applied through
// the catalog service, which propagates it to days and tours.
package catalog

import (
	"context"

	"tourbook/internal/model"
	"tourbook/internal/service"

	"github.com/shopspring/decimal"
)

// Entry is one price line of a feed.
type Entry struct {
	Category model.Category  `json:"category"`
	ID       int64           `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Currency model.Currency  `json:"currency,omitempty"`
}

// Key identifies the component an entry prices.
type Key struct {
	Category model.Category
	ID       int64
}

// Key returns the entry's component key.
func (e Entry) Key() Key {
	return Key{Category: e.Category, ID: e.ID}
}

// Feed is the decoded content of one feed file.
type Feed struct {
	Source  string
	Entries []Entry
	// Rejected counts lines that could not be decoded or failed validation.
	Rejected int
}

// Loader reads a feed file.
type Loader interface {
	Load(ctx context.Context, path string) (*Feed, error)
}

// PriceApplier stores a component's new catalogue price and propagates it.
type PriceApplier interface {
	UpdatePrice(ctx context.Context, category model.Category, id int64, price model.Money) (*service.PriceUpdate, error)
}
