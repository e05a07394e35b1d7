package service

import (
	"errors"
	"testing"

	"tourbook/internal/cache"
	"tourbook/internal/model"
	"tourbook/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTourService(f *fixture) TourService {
	return NewTourService(f.tours, f.days, f.ctrl, f.notifier, f.quotes,
		TourDefaults{Commission: dec("1.10"), Currency: model.CurrencyUSD}, zerolog.Nop())
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestTourService_CreateTour(t *testing.T) {
	tests := []struct {
		name               string
		req                model.CreateTourRequest
		expectedSlug       string
		expectedCommission string
		err                error
	}{
		{
			name:               "Slug derived from title and default commission",
			req:                model.CreateTourRequest{Title: "Kapadokya & Efes Turu"},
			expectedSlug:       "kapadokya-efes-turu",
			expectedCommission: "1.10",
		},
		{
			name:               "Explicit slug and commission",
			req:                model.CreateTourRequest{Title: "x", Slug: "classic-turkey", Commission: decPtr("2.00")},
			expectedSlug:       "classic-turkey",
			expectedCommission: "2.00",
		},
		{
			name: "Commission below range",
			req:  model.CreateTourRequest{Title: "x", Commission: decPtr("0.99")},
			err:  model.ErrInvalidCommission,
		},
		{
			name: "Commission above range",
			req:  model.CreateTourRequest{Title: "x", Commission: decPtr("2.01")},
			err:  model.ErrInvalidCommission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newTourService(f)

			f.tours.On("BeginTx", f.ctx).Return(f.tx, nil).Maybe()
			f.tours.On("Create", f.ctx, f.tx, mock.AnythingOfType("*model.Tour"), mock.Anything).Return(nil).Maybe()

			tour, err := svc.CreateTour(f.ctx, &tt.req)

			if tt.err != nil {
				assert.Equal(t, tt.err, err)
				f.tours.AssertNotCalled(t, "BeginTx", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSlug, tour.Slug)
			assert.Equal(t, tt.expectedCommission, tour.Commission.StringFixed(2))
			assert.True(t, tour.Price.Amount.IsZero())
			assert.True(t, tour.IsPublished)
		})
	}
}

func TestTourService_CreateTour_SlugTaken(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("Create", f.ctx, f.tx, mock.AnythingOfType("*model.Tour"), []int64{1, 2}).Return(model.ErrSlugTaken)

	_, err := svc.CreateTour(f.ctx, &model.CreateTourRequest{Title: "Aegean", PlacesCovered: []int64{1, 2}})

	assert.Equal(t, model.ErrSlugTaken, err)
	assert.True(t, f.tx.RolledBack)
}

func TestTourService_GetDetail(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	tour := &model.Tour{ID: 1, Slug: "aegean", Commission: dec("1.10"), Price: usd("418"), IsPublished: true}
	f.tours.On("GetBySlug", f.ctx, "aegean").Return(tour, nil)
	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return([]model.TourDay{
		{ID: 2, DayID: 20, Order: 2, Day: model.Day{CityName: "Selçuk"}},
		{ID: 1, DayID: 10, Order: 1, Day: model.Day{CityName: "Istanbul"}},
		{ID: 3, DayID: 10, Order: 3, Day: model.Day{CityName: "Istanbul"}},
	}, nil)
	f.days.On("ListComponents", f.ctx, f.tx, []int64{20, 10}).Return(map[int64][]model.DayComponent{
		10: matrixComponents(10),
		20: {component(20, 9, model.CategoryActivity, "45")},
	}, nil)

	detail, err := svc.GetDetail(f.ctx, "aegean")

	require.NoError(t, err)
	assert.Equal(t, 3, detail.TotalDays)
	assert.Equal(t, "3 Gün / 2 Gece", detail.DurationLabel)
	assert.Equal(t, "Istanbul", detail.StartPoint)
	assert.Equal(t, "Istanbul", detail.EndPoint)
	// Day 10 appears twice: flights and hotels count once, activities twice.
	assert.Equal(t, "100", detail.Totals.Flights.StringFixed(0))
	assert.Equal(t, "200", detail.Totals.Hotels.StringFixed(0))
	assert.Equal(t, "105", detail.Totals.Activities.StringFixed(0))
	f.tours.AssertNotCalled(t, "CountDaysInCoveredCities", mock.Anything, mock.Anything, mock.Anything)
}

func TestTourService_GetDetail_CoveredCitiesFallback(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	f.tours.On("GetBySlug", f.ctx, "empty").Return(&model.Tour{ID: 4, IsPublished: true}, nil)
	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(4)).Return([]model.TourDay{}, nil)
	f.tours.On("CountDaysInCoveredCities", f.ctx, f.tx, int64(4)).Return(5, nil)

	detail, err := svc.GetDetail(f.ctx, "empty")

	require.NoError(t, err)
	assert.Equal(t, 5, detail.TotalDays)
	assert.Equal(t, "5 Gün / 4 Gece", detail.DurationLabel)
	assert.Empty(t, detail.StartPoint)
}

func TestTourService_GetDetail_NotFound(t *testing.T) {
	tests := []struct {
		name string
		tour *model.Tour
	}{
		{"Missing", nil},
		{"Unpublished", &model.Tour{ID: 1, IsPublished: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newTourService(f)

			if tt.tour == nil {
				f.tours.On("GetBySlug", f.ctx, "x").Return(nil, nil)
			} else {
				f.tours.On("GetBySlug", f.ctx, "x").Return(tt.tour, nil)
			}

			_, err := svc.GetDetail(f.ctx, "x")

			assert.Equal(t, model.ErrTourNotFound, err)
			f.tours.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestTourService_Quote(t *testing.T) {
	tests := []struct {
		name      string
		opts      pricing.OrderOptions
		total     string
		perPerson string
		pax       int
	}{
		{"Two sharing a room", pricing.OrderOptions{Pax: 2, SameRoom: true}, "561.00", "280.50", 2},
		{"Two in separate rooms", pricing.OrderOptions{Pax: 2}, "781.00", "390.50", 2},
		{"One traveller", pricing.OrderOptions{Pax: 1, SameRoom: true}, "418.00", "418.00", 1},
		{"Hotels hidden", pricing.OrderOptions{Pax: 2, Hide: model.Visibility{Hotels: true}}, "341.00", "170.50", 2},
		{"Pax clamped", pricing.OrderOptions{Pax: 5, SameRoom: true}, "561.00", "280.50", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newTourService(f)

			f.tours.On("GetBySlug", f.ctx, "aegean").
				Return(&model.Tour{ID: 1, Commission: dec("1.10"), Price: usd("0"), IsPublished: true}, nil)
			f.tours.On("BeginTx", f.ctx).Return(f.tx, nil).Once()
			f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).
				Return([]model.TourDay{{ID: 1, DayID: 10, Order: 1}}, nil).Once()
			f.days.On("ListComponents", f.ctx, f.tx, []int64{10}).
				Return(map[int64][]model.DayComponent{10: matrixComponents(10)}, nil).Once()

			quote, err := svc.Quote(f.ctx, "aegean", tt.opts)

			require.NoError(t, err)
			assert.Equal(t, tt.total, quote.Total.Amount.StringFixed(2))
			assert.Equal(t, tt.perPerson, quote.PerPerson.Amount.StringFixed(2))
			assert.Equal(t, tt.pax, quote.Pax)

			// The second identical quote is served from the cache.
			again, err := svc.Quote(f.ctx, "aegean", tt.opts)
			require.NoError(t, err)
			assert.True(t, quote.Total.Equal(again.Total))
			f.tours.AssertNumberOfCalls(t, "BeginTx", 1)

			field := cache.QuoteField(tt.pax, tt.opts.SameRoom, tt.opts.Hide)
			cached, _ := f.quotes.Get(f.ctx, 1, field)
			assert.NotNil(t, cached)
		})
	}
}

func TestTourService_AttachDay(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	existing := []model.TourDay{
		{ID: 1, TourID: 1, DayID: 10, Order: 1, Title: "Day 1: Istanbul", Day: model.Day{ID: 10, Price: usd("100"), CityName: "Istanbul"}},
	}
	day := &model.Day{ID: 20, Title: "Ephesus", CityName: "Selçuk", Price: usd("50")}

	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("GetByID", f.ctx, f.tx, int64(1)).
		Return(&model.Tour{ID: 1, Commission: dec("1.00"), Price: usd("100"), IsPublished: true}, nil)
	f.days.On("GetByID", f.ctx, f.tx, int64(20)).Return(day, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return(existing, nil).Once()
	f.tours.On("AddTourDay", f.ctx, f.tx, mock.MatchedBy(func(td *model.TourDay) bool {
		return td.Order == 2 && td.Title == "Day 2: Ephesus" && td.DayID == 20
	})).Run(func(args mock.Arguments) { args.Get(2).(*model.TourDay).ID = 2 }).Return(nil)

	after := append(existing, model.TourDay{ID: 2, TourID: 1, DayID: 20, Order: 2, Title: "Day 2: Ephesus", Day: *day})
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return(after, nil).Once()
	f.days.On("ListComponents", f.ctx, f.tx, []int64{10, 20}).Return(map[int64][]model.DayComponent{}, nil)
	f.tours.On("UpdateItemCounts", f.ctx, f.tx, int64(1), model.ItemCounts{}).Return(nil)
	f.tours.On("UpdatePrice", f.ctx, f.tx, int64(1), decEq("150")).Return(nil)

	change, err := svc.AttachDay(f.ctx, 1, &model.AttachDayRequest{DayID: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(2), change.TourDay.ID)
	assert.Equal(t, 2, change.TourDay.Order)
	require.Len(t, change.Recomputed.Tours, 1)
	assert.Equal(t, "150.00", change.Recomputed.Tours[0].Price.Amount.StringFixed(2))
	assert.Equal(t, []int64{1}, f.quotes.invalidated)
	f.tours.AssertNotCalled(t, "UpdateTourDayTitles", mock.Anything, mock.Anything, mock.Anything)
	f.tours.AssertExpectations(t)
}

func TestTourService_AttachDay_CustomTitle(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(&model.Tour{ID: 1}, nil)
	f.days.On("GetByID", f.ctx, f.tx, int64(20)).Return(&model.Day{ID: 20, Title: "Ephesus"}, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return([]model.TourDay{}, nil).Once()
	f.tours.On("AddTourDay", f.ctx, f.tx, mock.MatchedBy(func(td *model.TourDay) bool {
		return td.Order == 7 && td.Title == "Day 1: Free afternoon"
	})).Return(nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return([]model.TourDay{
		{ID: 5, DayID: 20, Order: 7, Title: "Day 1: Free afternoon"},
	}, nil)
	f.days.On("ListComponents", f.ctx, f.tx, []int64{20}).Return(map[int64][]model.DayComponent{}, nil)
	f.tours.On("UpdateItemCounts", f.ctx, f.tx, int64(1), model.ItemCounts{}).Return(nil)
	f.tours.On("UpdatePrice", f.ctx, f.tx, int64(1), mock.Anything).Return(nil)

	_, err := svc.AttachDay(f.ctx, 1, &model.AttachDayRequest{DayID: 20, Order: 7, Title: "Free afternoon"})

	require.NoError(t, err)
	f.tours.AssertExpectations(t)
}

func TestTourService_AttachDay_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		err   error
	}{
		{
			name: "Tour not found",
			setup: func(f *fixture) {
				f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(nil, nil)
			},
			err: model.ErrTourNotFound,
		},
		{
			name: "Day not found",
			setup: func(f *fixture) {
				f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(&model.Tour{ID: 1}, nil)
				f.days.On("GetByID", f.ctx, f.tx, int64(20)).Return(nil, nil)
			},
			err: model.ErrDayNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newTourService(f)
			f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
			tt.setup(f)

			_, err := svc.AttachDay(f.ctx, 1, &model.AttachDayRequest{DayID: 20})

			assert.Equal(t, tt.err, err)
			assert.True(t, f.tx.RolledBack)
		})
	}
}

func TestTourService_DetachDay_RenumbersTitles(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
	f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(&model.Tour{ID: 1, Commission: dec("1.00")}, nil)
	f.tours.On("RemoveTourDay", f.ctx, f.tx, int64(1), int64(1)).Return(true, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, int64(1)).Return([]model.TourDay{
		{ID: 2, DayID: 20, Order: 2, Title: "Day 2: Ephesus", Day: model.Day{Price: usd("50")}},
	}, nil)
	f.days.On("ListComponents", f.ctx, f.tx, []int64{20}).Return(map[int64][]model.DayComponent{}, nil)
	f.tours.On("UpdateItemCounts", f.ctx, f.tx, int64(1), model.ItemCounts{}).Return(nil)
	f.tours.On("UpdatePrice", f.ctx, f.tx, int64(1), decEq("50")).Return(nil)
	f.tours.On("UpdateTourDayTitles", f.ctx, f.tx, []model.TourDay{
		{ID: 2, DayID: 20, Order: 2, Title: "Day 1: Ephesus", Day: model.Day{Price: usd("50")}},
	}).Return(nil)

	change, err := svc.DetachDay(f.ctx, 1, 1)

	require.NoError(t, err)
	assert.Nil(t, change.TourDay)
	assert.Equal(t, []int64{1}, change.Recomputed.TourIDs())
	f.tours.AssertExpectations(t)
}

func TestTourService_DetachAndReorder_Missing(t *testing.T) {
	t.Run("Detach missing tour day", func(t *testing.T) {
		f := newFixture()
		svc := newTourService(f)
		f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
		f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(&model.Tour{ID: 1}, nil)
		f.tours.On("RemoveTourDay", f.ctx, f.tx, int64(1), int64(99)).Return(false, nil)

		_, err := svc.DetachDay(f.ctx, 1, 99)

		assert.Equal(t, model.ErrTourDayNotFound, err)
	})

	t.Run("Reorder missing tour day", func(t *testing.T) {
		f := newFixture()
		svc := newTourService(f)
		f.tours.On("BeginTx", f.ctx).Return(f.tx, nil)
		f.tours.On("GetByID", f.ctx, f.tx, int64(1)).Return(&model.Tour{ID: 1}, nil)
		f.tours.On("UpdateTourDayOrder", f.ctx, f.tx, int64(1), int64(99), 3).Return(false, nil)

		_, err := svc.ReorderDay(f.ctx, 1, 99, 3)

		assert.Equal(t, model.ErrTourDayNotFound, err)
	})

	t.Run("Reorder to a non-positive order", func(t *testing.T) {
		f := newFixture()
		svc := newTourService(f)

		_, err := svc.ReorderDay(f.ctx, 1, 2, 0)

		var domainErr *model.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	})
}

func TestTourService_List(t *testing.T) {
	f := newFixture()
	svc := newTourService(f)

	f.tours.On("ListPublished", f.ctx, 10, 20).Return([]model.Tour{{ID: 1}, {ID: 2}}, nil)

	tours, err := svc.List(f.ctx, 10, 20)

	require.NoError(t, err)
	assert.Len(t, tours, 2)
}

func TestValidCommission(t *testing.T) {
	assert.True(t, ValidCommission(dec("1.00")))
	assert.True(t, ValidCommission(dec("2.00")))
	assert.False(t, ValidCommission(dec("0.5")))
	assert.False(t, ValidCommission(dec("2.5")))
}
