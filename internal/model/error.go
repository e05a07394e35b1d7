package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInvalidPax        = "INVALID_PAX"
	ErrCodeInvalidCommission = "INVALID_COMMISSION"
	ErrCodeInvalidPrice      = "INVALID_PRICE"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidDOB        = "INVALID_DOB"
	ErrCodeTooManyTravelers  = "TOO_MANY_TRAVELERS"
	ErrCodeTourNotFound      = "TOUR_NOT_FOUND"
	ErrCodeTourDayNotFound   = "TOUR_DAY_NOT_FOUND"
	ErrCodeDayNotFound       = "DAY_NOT_FOUND"
	ErrCodeComponentNotFound = "COMPONENT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeAlreadyAttached   = "ALREADY_ATTACHED"
	ErrCodeNotAttached       = "NOT_ATTACHED"
	ErrCodeSlugTaken         = "SLUG_TAKEN"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business rule violation reported to API callers.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidPax        = NewDomainError(ErrCodeInvalidPax, "Pax must be at least 1")
	ErrInvalidCommission = NewDomainError(ErrCodeInvalidCommission, "Commission must be between 1.00 and 2.00")
	ErrInvalidPrice      = NewDomainError(ErrCodeInvalidPrice, "Price must not be negative")
	ErrInvalidCategory   = NewDomainError(ErrCodeInvalidCategory, "Category must be one of flight, hotel, transfer, activity")
	ErrInvalidDOB        = NewDomainError(ErrCodeInvalidDOB, "Date of birth must be DD/MM/YYYY")
	ErrTooManyTravelers  = NewDomainError(ErrCodeTooManyTravelers, "More travelers than booked pax")
	ErrTourNotFound      = NewDomainError(ErrCodeTourNotFound, "Tour not found")
	ErrTourDayNotFound   = NewDomainError(ErrCodeTourDayNotFound, "Tour day not found")
	ErrDayNotFound       = NewDomainError(ErrCodeDayNotFound, "Day not found")
	ErrComponentNotFound = NewDomainError(ErrCodeComponentNotFound, "Component not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrAlreadyAttached   = NewDomainError(ErrCodeAlreadyAttached, "Component is already attached to this day")
	ErrNotAttached       = NewDomainError(ErrCodeNotAttached, "Component is not attached to this day")
	ErrSlugTaken         = NewDomainError(ErrCodeSlugTaken, "Tour slug is already in use")
)
