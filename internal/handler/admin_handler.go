package handler

import (
	"net/http"

	"tourbook/internal/model"
	"tourbook/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles catalogue, itinerary and tour authoring requests. Every
// mutation responds with what it recomputed.
type AdminHandler struct {
	catalog   service.CatalogService
	itinerary service.ItineraryService
	tours     service.TourService
	logger    zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(catalog service.CatalogService, itinerary service.ItineraryService, tours service.TourService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:   catalog,
		itinerary: itinerary,
		tours:     tours,
		logger:    logger.With().Str("handler", "admin").Logger(),
	}
}

// CreateCity handles POST /api/admin/cities.
func (h *AdminHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	city, err := h.itinerary.CreateCity(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, city)
}

// CreateComponent handles POST /api/admin/components/{category}.
func (h *AdminHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var req model.CreateComponentRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	component, err := h.catalog.CreateComponent(r.Context(), category, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, component)
}

// UpdatePrice handles PUT /api/admin/components/{category}/{id}/price.
func (h *AdminHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var req model.PriceUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	update, err := h.catalog.UpdatePrice(r.Context(), category, id, model.Money{Amount: req.Price, Currency: req.Currency})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, update)
}

// CreateDay handles POST /api/admin/days.
func (h *AdminHandler) CreateDay(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDayRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	day, err := h.itinerary.CreateDay(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, day)
}

// GetDay handles GET /api/admin/days/{dayID}.
func (h *AdminHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	dayID, err := int64Param(r, "dayID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	day, err := h.itinerary.GetDay(r.Context(), dayID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, day)
}

// AttachComponent handles POST /api/admin/days/{dayID}/components/{category}/{componentID}.
// The body is optional and may carry a display order.
func (h *AdminHandler) AttachComponent(w http.ResponseWriter, r *http.Request) {
	dayID, category, componentID, ok := h.dayComponentParams(w, r)
	if !ok {
		return
	}

	var req model.AttachComponentRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.itinerary.AttachComponent(r.Context(), dayID, category, componentID, req.Order)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// DetachComponent handles DELETE /api/admin/days/{dayID}/components/{category}/{componentID}.
func (h *AdminHandler) DetachComponent(w http.ResponseWriter, r *http.Request) {
	dayID, category, componentID, ok := h.dayComponentParams(w, r)
	if !ok {
		return
	}

	result, err := h.itinerary.DetachComponent(r.Context(), dayID, category, componentID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) dayComponentParams(w http.ResponseWriter, r *http.Request) (int64, model.Category, int64, bool) {
	dayID, err := int64Param(r, "dayID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return 0, "", 0, false
	}
	category, err := categoryParam(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return 0, "", 0, false
	}
	componentID, err := int64Param(r, "componentID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return 0, "", 0, false
	}
	return dayID, category, componentID, true
}

// CreateTour handles POST /api/admin/tours.
func (h *AdminHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTourRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	tour, err := h.tours.CreateTour(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, tour)
}

// AttachDay handles POST /api/admin/tours/{tourID}/days.
func (h *AdminHandler) AttachDay(w http.ResponseWriter, r *http.Request) {
	tourID, err := int64Param(r, "tourID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var req model.AttachDayRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	change, err := h.tours.AttachDay(r.Context(), tourID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, change)
}

// DetachDay handles DELETE /api/admin/tours/{tourID}/days/{tourDayID}.
func (h *AdminHandler) DetachDay(w http.ResponseWriter, r *http.Request) {
	tourID, err := int64Param(r, "tourID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	tourDayID, err := int64Param(r, "tourDayID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	change, err := h.tours.DetachDay(r.Context(), tourID, tourDayID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, change)
}

// ReorderDay handles PUT /api/admin/tours/{tourID}/days/{tourDayID}/order.
func (h *AdminHandler) ReorderDay(w http.ResponseWriter, r *http.Request) {
	tourID, err := int64Param(r, "tourID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	tourDayID, err := int64Param(r, "tourDayID")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	var req model.ReorderDayRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	change, err := h.tours.ReorderDay(r.Context(), tourID, tourDayID, req.Order)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, change)
}
