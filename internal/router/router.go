package router

import (
	"net/http"

	"tourbook/internal/handler"
	"tourbook/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Tours  *handler.TourHandler
	Orders *handler.OrderHandler
	Admin  *handler.AdminHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Routes under /api/admin require the API key.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/tours", h.Tours.List)
		r.Get("/tours/{slug}", h.Tours.Get)
		r.Get("/tours/{slug}/quote", h.Tours.Quote)

		r.Post("/orders", h.Orders.Create)
		r.Get("/orders/{publicID}", h.Orders.Get)
		r.Post("/orders/{publicID}/travelers", h.Orders.AddTravelers)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(apiKey, logger))

			r.Post("/cities", h.Admin.CreateCity)

			r.Post("/components/{category}", h.Admin.CreateComponent)
			r.Put("/components/{category}/{id}/price", h.Admin.UpdatePrice)

			r.Post("/days", h.Admin.CreateDay)
			r.Get("/days/{dayID}", h.Admin.GetDay)
			r.Post("/days/{dayID}/components/{category}/{componentID}", h.Admin.AttachComponent)
			r.Delete("/days/{dayID}/components/{category}/{componentID}", h.Admin.DetachComponent)

			r.Post("/tours", h.Admin.CreateTour)
			r.Post("/tours/{tourID}/days", h.Admin.AttachDay)
			r.Delete("/tours/{tourID}/days/{tourDayID}", h.Admin.DetachDay)
			r.Put("/tours/{tourID}/days/{tourDayID}/order", h.Admin.ReorderDay)

			r.Post("/orders/{publicID}/paid", h.Orders.MarkPaid)
		})
	})

	return r
}
