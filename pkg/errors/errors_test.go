package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput,
		ErrUnsupportedLocale, ErrUnavailable, ErrConflict, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "review not found"}
	assert.Equal(t, "NOT_FOUND: review not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("review", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "review")
	assert.Contains(t, err.Message, "abc-123")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("company", "name", "Acme")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Contains(t, err.Message, "company")
	assert.Contains(t, err.Message, "name")
	assert.Contains(t, err.Message, "Acme")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("company id is required")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, "company id is required", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUnsupportedLocale(t *testing.T) {
	err := UnsupportedLocale("fr")
	require.NotNil(t, err)
	assert.Equal(t, "UNSUPPORTED_LOCALE", err.Code)
	assert.Contains(t, err.Message, "fr")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrUnsupportedLocale))
}

func TestValidationFailed(t *testing.T) {
	inner := fmt.Errorf("missing start year")
	err := ValidationFailed(inner)
	require.NotNil(t, err)
	assert.Equal(t, "VALIDATION_FAILED", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.True(t, errors.Is(err, inner))
}

func TestPersistenceFailure(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := PersistenceFailure(inner)
	require.NotNil(t, err)
	assert.Equal(t, "PERSISTENCE_FAILURE", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAggregationInconsistent(t *testing.T) {
	err := AggregationInconsistent("company-1")
	require.NotNil(t, err)
	assert.Equal(t, "AGGREGATION_INCONSISTENT", err.Code)
	assert.Contains(t, err.Message, "company-1")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("segfault")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get review")
	assert.Contains(t, wrapped.Error(), "get review")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

// --- HTTPStatus ---

func TestHTTPStatus_AppError(t *testing.T) {
	appErr := NotFound("review", "1")
	assert.Equal(t, http.StatusNotFound, HTTPStatus(appErr))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnsupportedLocale, http.StatusBadRequest},
		{ErrUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
