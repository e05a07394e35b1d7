package handler

import (
	"context"
	"net/http"

	"tourbook/internal/model"
	"tourbook/internal/pricing"
	"tourbook/internal/propagation"
	"tourbook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// withURLParams attaches chi route parameters to a request, as the router would.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByPublicID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) AddTravelers(ctx context.Context, id uuid.UUID, req *model.TravelersRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockTourService is a mock implementation of service.TourService.
type MockTourService struct {
	mock.Mock
}

func (m *MockTourService) CreateTour(ctx context.Context, req *model.CreateTourRequest) (*model.Tour, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) List(ctx context.Context, limit, offset int) ([]model.Tour, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourService) GetDetail(ctx context.Context, slug string) (*model.TourDetail, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TourDetail), args.Error(1)
}

func (m *MockTourService) Quote(ctx context.Context, slug string, opts pricing.OrderOptions) (*model.TourQuote, error) {
	args := m.Called(ctx, slug, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TourQuote), args.Error(1)
}

func (m *MockTourService) AttachDay(ctx context.Context, tourID int64, req *model.AttachDayRequest) (*service.DayChange, error) {
	args := m.Called(ctx, tourID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayChange), args.Error(1)
}

func (m *MockTourService) DetachDay(ctx context.Context, tourID, tourDayID int64) (*service.DayChange, error) {
	args := m.Called(ctx, tourID, tourDayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayChange), args.Error(1)
}

func (m *MockTourService) ReorderDay(ctx context.Context, tourID, tourDayID int64, order int) (*service.DayChange, error) {
	args := m.Called(ctx, tourID, tourDayID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayChange), args.Error(1)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateComponent(ctx context.Context, category model.Category, req *model.CreateComponentRequest) (*model.Component, error) {
	args := m.Called(ctx, category, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Component), args.Error(1)
}

func (m *MockCatalogService) UpdatePrice(ctx context.Context, category model.Category, id int64, price model.Money) (*service.PriceUpdate, error) {
	args := m.Called(ctx, category, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceUpdate), args.Error(1)
}

// MockItineraryService is a mock implementation of service.ItineraryService.
type MockItineraryService struct {
	mock.Mock
}

func (m *MockItineraryService) CreateCity(ctx context.Context, req *model.CreateCityRequest) (*model.City, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockItineraryService) CreateDay(ctx context.Context, req *model.CreateDayRequest) (*model.Day, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockItineraryService) GetDay(ctx context.Context, dayID int64) (*model.DayItinerary, error) {
	args := m.Called(ctx, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DayItinerary), args.Error(1)
}

func (m *MockItineraryService) AttachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64, order int) (propagation.Result, error) {
	args := m.Called(ctx, dayID, category, componentID, order)
	return args.Get(0).(propagation.Result), args.Error(1)
}

func (m *MockItineraryService) DetachComponent(ctx context.Context, dayID int64, category model.Category, componentID int64) (propagation.Result, error) {
	args := m.Called(ctx, dayID, category, componentID)
	return args.Get(0).(propagation.Result), args.Error(1)
}
