package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "basic error",
			appError: &AppError{Type: ErrTypeConfig, Message: "configuration is invalid"},
			want:     "config: configuration is invalid",
		},
		{
			name:     "error with cause",
			appError: &AppError{Type: ErrTypeStorage, Message: "failed to save routes", Cause: errors.New("disk full")},
			want:     "storage: failed to save routes: cause=disk full",
		},
		{
			name: "error with context",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "invalid target",
				Context: map[string]interface{}{"url": "ftp://x", "route_id": "orders"},
			},
			want: "validation: invalid target: context={route_id=orders, url=ftp://x}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StorageError("failed to load routes", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, ErrTypeValidation, ValidationError("x").Type)
	assert.Equal(t, "route orders not found", NotFoundError("route orders").Message)
	assert.Equal(t, ErrTypePayloadTooLarge, PayloadTooLargeError(10).Type)
	assert.Contains(t, PayloadTooLargeError(10).Message, "10 bytes")
	assert.Equal(t, ErrTypeConfig, ConfigError("x").Type)
	assert.Equal(t, ErrTypeInternal, InternalError("x", nil).Type)

	withCtx := ValidationError("bad").WithContext("field", "url")
	assert.Equal(t, "url", withCtx.Context["field"])
}

func TestIsTypeAndGetType(t *testing.T) {
	wrapped := fmt.Errorf("add target: %w", StorageError("save failed", nil))

	assert.True(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(wrapped, ErrTypeValidation))
	assert.False(t, IsType(nil, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeStorage))

	assert.Equal(t, ErrTypeStorage, GetType(wrapped))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetType(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ValidationError("x"), http.StatusBadRequest},
		{NotFoundError("route"), http.StatusNotFound},
		{PayloadTooLargeError(1), http.StatusRequestEntityTooLarge},
		{StorageError("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "HTTPStatus(%v)", tt.err)
	}
}
