// Package apperr defines the typed HTTP errors raised by handlers and their
// translation into the JSON error body returned to clients.
package apperr

import "net/http"

// DefaultCode is used when a typed error is built without an application code.
const DefaultCode = "ANY"

// Error is an HTTP-facing application error. Build it with one of the
// constructors; values are not modified after construction.
type Error struct {
	Message string
	Code    string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// New builds an error with an arbitrary status. The optional code defaults to
// DefaultCode.
func New(status int, message string, code ...string) *Error {
	c := DefaultCode
	if len(code) > 0 && code[0] != "" {
		c = code[0]
	}
	return &Error{Message: message, Code: c, Status: status}
}

func BadRequest(message string, code ...string) *Error {
	return New(http.StatusBadRequest, message, code...)
}

func Unauthorized(message string, code ...string) *Error {
	return New(http.StatusUnauthorized, message, code...)
}

func Forbidden(message string, code ...string) *Error {
	return New(http.StatusForbidden, message, code...)
}

func NotFound(message string, code ...string) *Error {
	return New(http.StatusNotFound, message, code...)
}

func Internal(message string, code ...string) *Error {
	return New(http.StatusInternalServerError, message, code...)
}
