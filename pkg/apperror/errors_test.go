package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"not found", NewNotFoundError("Sale"), http.StatusNotFound},
		{"conflict", NewConflictError("duplicate"), http.StatusConflict},
		{"bad request", NewBadRequestError("malformed"), http.StatusBadRequest},
		{"computation", NewComputationError("degenerate"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestNewNotFoundErrorMessage(t *testing.T) {
	err := NewNotFoundError("Forecast method")
	assert.Equal(t, "Forecast method not found", err.Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("Client")))
	assert.True(t, IsNotFound(fmt.Errorf("list clients: %w", NewNotFoundError("Client"))))
	assert.False(t, IsNotFound(NewBadRequestError("nope")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrConflict))
	assert.True(t, IsAppError(fmt.Errorf("wrapped: %w", ErrUnauthorized)))
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestGetAppError(t *testing.T) {
	appErr := GetAppError(NewConflictError("already exists"))
	assert.Equal(t, http.StatusConflict, appErr.Code)

	// Unknown errors collapse to a 500
	appErr = GetAppError(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "connection reset", appErr.Message)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError([]FieldError{{Field: "email", Message: "invalid"}})
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Len(t, err.Errors, 1)
}
