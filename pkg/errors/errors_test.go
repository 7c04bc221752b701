package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("pool closed")}
	assert.Equal(t, "INTERNAL_ERROR: boom: pool closed", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "order not found"}
	assert.Equal(t, "NOT_FOUND: order not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNotFound_FormatsNumericID(t *testing.T) {
	err := NotFound("order", int64(42))
	require.NotNil(t, err)
	assert.Equal(t, "order with id 42 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("get order: %w", err)))
}

func TestConstructors_WrapTheirSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
		status   int
	}{
		{"already exists", AlreadyExists("user", "email", "a@b.c"), ErrAlreadyExists, http.StatusConflict},
		{"conflict", Conflict("delivery already bound"), ErrConflict, http.StatusConflict},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("bad credentials"), ErrUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.status, HTTPStatus(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get cart: %w", ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusConflict, HTTPStatus(fmt.Errorf("add item: %w", ErrAlreadyExists)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unexpected")))
}
