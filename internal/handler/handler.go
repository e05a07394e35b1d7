package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tourbook/internal/middleware"
	"tourbook/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusByCode maps domain error codes to HTTP statuses. Unknown codes are 400.
var statusByCode = map[string]int{
	model.ErrCodeTourNotFound:      http.StatusNotFound,
	model.ErrCodeTourDayNotFound:   http.StatusNotFound,
	model.ErrCodeDayNotFound:       http.StatusNotFound,
	model.ErrCodeComponentNotFound: http.StatusNotFound,
	model.ErrCodeOrderNotFound:     http.StatusNotFound,
	model.ErrCodeNotAttached:       http.StatusNotFound,
	model.ErrCodeAlreadyAttached:   http.StatusConflict,
	model.ErrCodeSlugTaken:         http.StatusConflict,
	model.ErrCodeTooManyTravelers:  http.StatusConflict,
	model.ErrCodeUnauthorised:      http.StatusUnauthorized,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an ErrorResponse with the given status, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("code", code).
		Int("status", status).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg(message)

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.GetRequestID(r.Context()),
	})
}

// writeServiceError maps a service error to a response. Domain errors keep their
// code and message; anything else is an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// decodeJSON decodes and validates a request body into dst. On failure the error
// response has already been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, validationMessage(err), logger)
		return false
	}

	return true
}

// validationMessage renders validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), rule))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// int64Param reads a positive integer path parameter.
func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// uuidParam reads a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("invalid %s format", name))
	}
	return id, nil
}

// categoryParam reads a component category path parameter.
func categoryParam(r *http.Request) (model.Category, error) {
	category := model.Category(strings.ToLower(chi.URLParam(r, "category")))
	if !category.Valid() {
		return "", model.ErrInvalidCategory
	}
	return category, nil
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}
