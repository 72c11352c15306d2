package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input rejected locally before any remote call
	ErrValidation = errors.New("validation failed")

	// ErrTransient marks network failures and timeouts; the caller may retry
	ErrTransient = errors.New("service unreachable")

	// ErrNotFound matches an APIError with status 404
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the service
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("service returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Detail)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 response
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsTransient reports whether err is a network failure or timeout
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Validationf returns an ErrValidation carrying a formatted reason
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// transportError wraps a failure from http.Client.Do. Every such failure,
// including a context deadline, is transient.
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}
