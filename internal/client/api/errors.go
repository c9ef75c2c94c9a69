package api

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is returned when the server rejects the credentials or
	// the session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when the requested user or shop does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError carries the server's aggregated error messages alongside the HTTP
// status code.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unwrap maps well-known statuses to sentinel errors so callers can use
// errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ErrorMessages extracts the server's message list from an error, falling
// back to the error text itself.
func ErrorMessages(err error) []string {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return apiErr.Messages
	}
	return []string{err.Error()}
}
