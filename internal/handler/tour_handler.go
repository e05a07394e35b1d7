package handler

import (
	"net/http"
	"strconv"
	"strings"

	"tourbook/internal/model"
	"tourbook/internal/pricing"
	"tourbook/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Pagination bounds for tour listings.
const (
	defaultTourLimit = 20
	maxTourLimit     = 100
)

// TourHandler handles public tour requests.
type TourHandler struct {
	service service.TourService
	logger  zerolog.Logger
}

// NewTourHandler creates a new tour handler.
func NewTourHandler(service service.TourService, logger zerolog.Logger) *TourHandler {
	return &TourHandler{
		service: service,
		logger:  logger.With().Str("handler", "tour").Logger(),
	}
}

// List handles GET /api/tours?limit=&offset= requests.
func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultTourLimit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if limit == 0 {
		limit = defaultTourLimit
	}
	limit = min(limit, maxTourLimit)

	tours, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if tours == nil {
		tours = []model.Tour{}
	}

	writeJSON(w, http.StatusOK, tours)
}

// Get handles GET /api/tours/{slug} requests.
func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Quote handles GET /api/tours/{slug}/quote?pax=&same_room=&hide= requests.
// hide is a comma separated subset of flights, transfers and hotels.
func (h *TourHandler) Quote(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQuoteOptions(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	quote, err := h.service.Quote(r.Context(), chi.URLParam(r, "slug"), opts)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func parseQuoteOptions(r *http.Request) (pricing.OrderOptions, error) {
	q := r.URL.Query()
	opts := pricing.OrderOptions{Pax: pricing.MinPax, SameRoom: true}

	if raw := q.Get("pax"); raw != "" {
		pax, err := strconv.Atoi(raw)
		if err != nil || pax < pricing.MinPax {
			return opts, model.ErrInvalidPax
		}
		opts.Pax = pax
	}

	if raw := q.Get("same_room"); raw != "" {
		sameRoom, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, model.NewDomainError(model.ErrCodeValidation, "invalid same_room")
		}
		opts.SameRoom = sameRoom
	}

	if raw := q.Get("hide"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			switch strings.TrimSpace(strings.ToLower(part)) {
			case "flights":
				opts.Hide.Flights = true
			case "transfers":
				opts.Hide.Transfers = true
			case "hotels":
				opts.Hide.Hotels = true
			case "":
			default:
				return opts, model.NewDomainError(model.ErrCodeValidation, "hide accepts flights, transfers and hotels")
			}
		}
	}

	return opts, nil
}
