package index

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API response status codes. Match them with
// errors.Is against the error returned by any client operation.
var (
	// ErrUnauthorized indicates the API rejected the bearer token (401 or 403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the API rejected the request payload (400).
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the request conflicts with existing state (409).
	ErrConflict = errors.New("conflict")
)

// APIError represents a non-success response from the index API. It wraps
// one of the sentinel errors above when the status code maps to one.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("index: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("index: request failed (status %d)", e.StatusCode)
}

// Unwrap returns the underlying sentinel error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError maps a status code and message to an APIError carrying the
// matching sentinel.
func newAPIError(statusCode int, message string) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
	switch statusCode {
	case 401, 403:
		apiErr.Err = ErrUnauthorized
	case 404:
		apiErr.Err = ErrNotFound
	case 400:
		apiErr.Err = ErrValidation
	case 409:
		apiErr.Err = ErrConflict
	}
	return apiErr
}

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
