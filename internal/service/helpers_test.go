package service

import (
	"context"
	"sync"

	"tourbook/internal/events"
	"tourbook/internal/model"
	"tourbook/internal/propagation"
	"tourbook/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func usd(s string) model.Money {
	return model.NewMoney(dec(s), model.CurrencyUSD)
}

// recordingPublisher keeps every published envelope.
type recordingPublisher struct {
	mu   sync.Mutex
	envs []events.Envelope
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, env)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.envs))
	for i, env := range p.envs {
		out[i] = env.EventType
	}
	return out
}

// recordingCache is an in-memory quote cache.
type recordingCache struct {
	mu          sync.Mutex
	quotes      map[int64]map[string]model.TourQuote
	invalidated []int64
}

func newRecordingCache() *recordingCache {
	return &recordingCache{quotes: map[int64]map[string]model.TourQuote{}}
}

func (c *recordingCache) Get(_ context.Context, tourID int64, field string) (*model.TourQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok := c.quotes[tourID][field]; ok {
		return &q, nil
	}
	return nil, nil
}

func (c *recordingCache) Set(_ context.Context, tourID int64, field string, quote model.TourQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quotes[tourID] == nil {
		c.quotes[tourID] = map[string]model.TourQuote{}
	}
	c.quotes[tourID][field] = quote
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, tourIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range tourIDs {
		delete(c.quotes, id)
	}
	c.invalidated = append(c.invalidated, tourIDs...)
	return nil
}

func (c *recordingCache) Close() error { return nil }

// fixture wires mocked repositories into a real propagation controller.
type fixture struct {
	ctx       context.Context
	tx        *mocks.Tx
	catalog   *mocks.CatalogRepository
	days      *mocks.DayRepository
	tours     *mocks.TourRepository
	orders    *mocks.OrderRepository
	publisher *recordingPublisher
	quotes    *recordingCache
	notifier  *Notifier
	ctrl      *propagation.Controller
}

func newFixture() *fixture {
	f := &fixture{
		ctx:       context.Background(),
		tx:        mocks.NewTx(),
		catalog:   new(mocks.CatalogRepository),
		days:      new(mocks.DayRepository),
		tours:     new(mocks.TourRepository),
		orders:    new(mocks.OrderRepository),
		publisher: &recordingPublisher{},
		quotes:    newRecordingCache(),
	}
	f.notifier = NewNotifier(f.quotes, f.publisher, zerolog.Nop())
	f.ctrl = propagation.NewController(f.days, f.tours, zerolog.Nop())
	return f
}

// expectTourRecompute registers the reads and writes of one tour recompute over a
// single-day tour holding the given components.
func (f *fixture) expectTourRecompute(tourID, dayID int64, commission, dayPrice string, components []model.DayComponent, counts model.ItemCounts, tourPrice string) {
	f.tours.On("GetByID", f.ctx, f.tx, tourID).
		Return(&model.Tour{ID: tourID, Commission: dec(commission), Price: usd("0"), IsPublished: true}, nil)
	f.tours.On("ListTourDays", f.ctx, f.tx, tourID).Return([]model.TourDay{
		{ID: tourID*100 + dayID, TourID: tourID, DayID: dayID, Order: 1, Title: "Day 1: Istanbul", Day: model.Day{ID: dayID, Price: usd(dayPrice)}},
	}, nil)
	f.days.On("ListComponents", f.ctx, f.tx, []int64{dayID}).
		Return(map[int64][]model.DayComponent{dayID: components}, nil)
	f.tours.On("UpdateItemCounts", f.ctx, f.tx, tourID, counts).Return(nil)
	f.tours.On("UpdatePrice", f.ctx, f.tx, tourID, decEq(tourPrice)).Return(nil)
}

func component(dayID, id int64, category model.Category, price string) model.DayComponent {
	return model.DayComponent{
		DayID: dayID,
		Component: model.Component{
			ID:       id,
			Category: category,
			Price:    usd(price),
		},
	}
}

// matrixComponents are one flight 100, one hotel 200, one transfer 50 and one
// activity 30 on a single day.
func matrixComponents(dayID int64) []model.DayComponent {
	return []model.DayComponent{
		component(dayID, 1, model.CategoryFlight, "100"),
		component(dayID, 2, model.CategoryTransfer, "50"),
		component(dayID, 3, model.CategoryHotel, "200"),
		component(dayID, 4, model.CategoryActivity, "30"),
	}
}
