package handler

import (
	"net/http"

	"tourbook/internal/model"
	"tourbook/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{publicID} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	publicID, err := uuidParam(r, "publicID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetByPublicID(r.Context(), publicID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// AddTravelers handles POST /api/orders/{publicID}/travelers requests.
func (h *OrderHandler) AddTravelers(w http.ResponseWriter, r *http.Request) {
	publicID, err := uuidParam(r, "publicID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var req model.TravelersRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.AddTravelers(r.Context(), publicID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// MarkPaid handles POST /api/admin/orders/{publicID}/paid requests.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	publicID, err := uuidParam(r, "publicID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	order, err := h.service.MarkPaid(r.Context(), publicID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
