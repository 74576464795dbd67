package figma

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth is returned when the access token is missing, invalid or expired.
	ErrAuth = errors.New("figma: authentication failed")
	// ErrNotFound is returned when the file or one of the requested nodes does not exist.
	ErrNotFound = errors.New("figma: not found")
	// ErrNetwork is returned when the API could not be reached or the response could not be read.
	ErrNetwork = errors.New("figma: network failure")
)

// APIError is a non-200 response from the Figma API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps the status code onto the package sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	}
	if e.StatusCode >= 500 {
		return ErrNetwork
	}
	return nil
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
