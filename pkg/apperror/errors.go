package apperror

import (
	"errors"
	"net/http"
)

// Canonical error codes carried alongside the HTTP status. Callable clients
// switch on these rather than on status text.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodePermissionDenied   = "permission-denied"
	CodeInvalidArgument    = "invalid-argument"
	CodeNotFound           = "not-found"
	CodeAlreadyExists      = "already-exists"
	CodeFailedPrecondition = "failed-precondition"
	CodeInternal           = "internal"
)

// AppError represents an application error with an HTTP status code and a
// canonical error code
type AppError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Resource not found"}
	ErrUnauthenticated    = &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Authentication required"}
	ErrPermissionDenied   = &AppError{Status: http.StatusForbidden, Code: CodePermissionDenied, Message: "Permission denied"}
	ErrInvalidCredentials = &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Invalid token"}
)

// New creates a new application error
func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeInvalidArgument,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error for a named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: resource + " not found"}
}

// NewConflictError creates an already-exists error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: CodeAlreadyExists, Message: message}
}

// NewInvalidArgumentError creates an invalid-argument error with a custom
// message
func NewInvalidArgumentError(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: CodeInvalidArgument, Message: message}
}

// NewFailedPreconditionError creates a failed-precondition error with a
// custom message
func NewFailedPreconditionError(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: CodeFailedPrecondition, Message: message}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError, wrapping unknown errors as
// internal
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: err.Error(),
	}
}
