package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedLocale = errors.New("unsupported locale")
	ErrUnavailable       = errors.New("service unavailable")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// UnsupportedLocale creates a 400 error for a locale outside the supported set.
func UnsupportedLocale(tag string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_LOCALE",
		Message: fmt.Sprintf("locale %q is not supported", tag),
		Status:  http.StatusBadRequest,
		Err:     ErrUnsupportedLocale,
	}
}

// ValidationFailed creates a 422 error wrapping the collected validation
// failures so callers can recover the individual kinds via errors.As.
func ValidationFailed(err error) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Message: "submitted review failed validation",
		Status:  http.StatusUnprocessableEntity,
		Err:     err,
	}
}

// PersistenceFailure creates a 503 error for an opaque store failure. The
// cause is preserved for logging but callers see a single failure with no
// partial state.
func PersistenceFailure(err error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_FAILURE",
		Message: "storage operation failed",
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// AggregationInconsistent creates a 500 error signaling that an incremental
// rating update diverged from a full recompute.
func AggregationInconsistent(companyID string) *AppError {
	return &AppError{
		Code:    "AGGREGATION_INCONSISTENT",
		Message: fmt.Sprintf("rating summary for company %s diverged from recompute", companyID),
		Status:  http.StatusInternalServerError,
		Err:     ErrInternal,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedLocale):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
