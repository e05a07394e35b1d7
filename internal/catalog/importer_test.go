package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tourbook/internal/model"
	"tourbook/internal/propagation"
	"tourbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockApplier is a testify mock of PriceApplier.
type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) UpdatePrice(ctx context.Context, category model.Category, id int64, price model.Money) (*service.PriceUpdate, error) {
	args := m.Called(ctx, category, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceUpdate), args.Error(1)
}

func money(amount string, currency model.Currency) any {
	want := decimal.RequireFromString(amount)
	return mock.MatchedBy(func(m model.Money) bool {
		return m.Amount.Equal(want) && m.Currency == currency
	})
}

func entry(category model.Category, id int64, price string) Entry {
	return Entry{Category: category, ID: id, Price: decimal.RequireFromString(price)}
}

func TestMerge_LaterFileWins(t *testing.T) {
	feeds := []*Feed{
		{Entries: []Entry{
			entry(model.CategoryHotel, 1, "100"),
			entry(model.CategoryFlight, 1, "250"),
		}},
		{Entries: []Entry{
			entry(model.CategoryActivity, 9, "30"),
			entry(model.CategoryHotel, 1, "110"),
		}},
		{Entries: []Entry{
			entry(model.CategoryHotel, 1, "120"),
		}},
	}

	merged := Merge(feeds)

	require.Len(t, merged, 3)
	assert.Equal(t, Key{model.CategoryHotel, 1}, merged[0].Key())
	assert.Equal(t, "120", merged[0].Price.String())
	assert.Equal(t, Key{model.CategoryFlight, 1}, merged[1].Key())
	assert.Equal(t, Key{model.CategoryActivity, 9}, merged[2].Key())
}

func TestImporter_Run(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := createTestFeedFile(t, dir, "pricefeed1.jsonl.gz", []string{
		`{"category":"hotel","id":1,"price":"100"}`,
		`{"category":"flight","id":2,"price":"250","currency":"EUR"}`,
		`{"category":"transfer","id":3,"price":"40"}`,
		`garbage`,
	})
	second := createTestFeedFile(t, dir, "pricefeed2.jsonl.gz", []string{
		`{"category":"hotel","id":1,"price":"120"}`,
		`{"category":"activity","id":404,"price":"15"}`,
		`{"category":"activity","id":5,"price":"30"}`,
	})

	applier := new(mockApplier)
	applier.On("UpdatePrice", ctx, model.CategoryHotel, int64(1), money("120", model.CurrencyTRY)).
		Return(&service.PriceUpdate{Changed: true, Recomputed: propagation.Result{
			Tours: []propagation.TourUpdate{{TourID: 1}, {TourID: 2}},
		}}, nil)
	applier.On("UpdatePrice", ctx, model.CategoryFlight, int64(2), money("250", model.CurrencyEUR)).
		Return(&service.PriceUpdate{Changed: false}, nil)
	applier.On("UpdatePrice", ctx, model.CategoryTransfer, int64(3), mock.Anything).
		Return(nil, errors.New("deadlock detected"))
	applier.On("UpdatePrice", ctx, model.CategoryActivity, int64(404), mock.Anything).
		Return(nil, model.ErrComponentNotFound)
	applier.On("UpdatePrice", ctx, model.CategoryActivity, int64(5), mock.Anything).
		Return(&service.PriceUpdate{Changed: true}, nil)

	importer := NewImporter(
		ImporterConfig{Files: []string{first, second}, DefaultCurrency: model.CurrencyTRY},
		NewFileLoader(zerolog.Nop()),
		applier,
		zerolog.Nop(),
	)

	report, err := importer.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, &Report{
		Files:           2,
		Entries:         6,
		Rejected:        1,
		Changed:         2,
		Unchanged:       1,
		Missing:         1,
		Failed:          1,
		ToursRecomputed: 2,
	}, report)
	applier.AssertExpectations(t)
	applier.AssertNumberOfCalls(t, "UpdatePrice", 5)
}

func TestImporter_Run_LoadFailureAppliesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	good := createTestFeedFile(t, dir, "good.jsonl.gz", []string{`{"category":"hotel","id":1,"price":"100"}`})

	applier := new(mockApplier)
	importer := NewImporter(
		ImporterConfig{Files: []string{good, filepath.Join(dir, "missing.jsonl.gz")}},
		NewFileLoader(zerolog.Nop()),
		applier,
		zerolog.Nop(),
	)

	report, err := importer.Run(ctx)

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "missing.jsonl.gz")
	applier.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImporter_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	loader := &mockLoader{loadFunc: func(context.Context, string) (*Feed, error) {
		return &Feed{Entries: []Entry{
			entry(model.CategoryHotel, 1, "100"),
			entry(model.CategoryHotel, 2, "100"),
		}}, nil
	}}

	applier := new(mockApplier)
	applier.On("UpdatePrice", ctx, model.CategoryHotel, int64(1), mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&service.PriceUpdate{Changed: true}, nil)

	importer := NewImporter(ImporterConfig{Files: []string{"a"}}, loader, applier, zerolog.Nop())

	report, err := importer.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Changed)
	applier.AssertNumberOfCalls(t, "UpdatePrice", 1)
}
