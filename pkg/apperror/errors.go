package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrInternal            = errors.New("internal server error")
	ErrInvalidInput        = errors.New("invalid input")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrNetworkTimeout      = errors.New("network timeout")
	ErrServerRejected      = errors.New("server rejected request")
	ErrInvalidState        = errors.New("invalid alert state")
	ErrAlreadyClaimed      = errors.New("alert already claimed")
	ErrExpired             = errors.New("alert expired")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Retryable reports whether the caller may safely retry the failed operation.
// Only a network timeout qualifies; every other failure either already took
// effect server-side or will fail again the same way.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetworkTimeout)
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrAlreadyClaimed) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrExpired) {
		return http.StatusGone
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
