package apperrors

import (
	"net/http"
	"strings"
)

// Kind classifies an application error so handlers can map it to an HTTP status.
type Kind int

const (
	KindValidation Kind = iota // malformed input
	KindConflict               // duplicate username or shop name
	KindAuth                   // bad credentials or invalid/expired/missing token
	KindNotFound               // unknown user or shop
)

// Error is an application error carrying one or more human-readable messages.
// Validation and conflict failures aggregate every offending message rather
// than reporting the first one only.
type Error struct {
	Kind     Kind
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Validation builds a validation error from the given messages.
func Validation(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

// Conflict builds a conflict error from the given messages.
func Conflict(messages ...string) *Error {
	return &Error{Kind: KindConflict, Messages: messages}
}

// Auth builds an authentication error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Messages: []string{message}}
}

// NotFound builds a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{message}}
}
