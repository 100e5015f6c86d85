package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   string
	}{
		{"not found", NewNotFoundError("Guitar"), http.StatusNotFound, CodeNotFound},
		{"conflict", NewConflictError("Run already archived"), http.StatusConflict, CodeAlreadyExists},
		{"invalid argument", NewInvalidArgumentError("Amount must be positive"), http.StatusBadRequest, CodeInvalidArgument},
		{"failed precondition", NewFailedPreconditionError("Stage has guitars"), http.StatusConflict, CodeFailedPrecondition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, tc.err.Status)
			assert.Equal(t, tc.wantCode, tc.err.Code)
			assert.NotEmpty(t, tc.err.Error())
		})
	}

	assert.Equal(t, "Guitar not found", NewNotFoundError("Guitar").Message)
}

func TestNewValidationErrorCarriesFieldErrors(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "body_wood", Message: "Value not allowed"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, CodeInvalidArgument, err.Code)
	require.Len(t, err.Errors, 1)
	assert.Equal(t, "body_wood", err.Errors[0].Field)
}

func TestGetAppErrorUnwrapsWrappedErrors(t *testing.T) {
	inner := NewNotFoundError("Invoice")
	wrapped := fmt.Errorf("loading invoice: %w", inner)

	got := GetAppError(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, CodeNotFound, got.Code)
}

func TestGetAppErrorWrapsUnknownAsInternal(t *testing.T) {
	got := GetAppError(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "pq: connection refused", got.Message)
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrNotFound))
	assert.True(t, IsAppError(fmt.Errorf("wrapped: %w", ErrTokenExpired)))
	assert.False(t, IsAppError(errors.New("plain")))
}
