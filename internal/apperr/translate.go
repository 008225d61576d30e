package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tinoosan/apishell/internal/metrics"
)

// Body is the wire shape of every error response.
type Body struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

var titles = map[int]string{
	http.StatusBadRequest:          "400: Bad Request",
	http.StatusUnauthorized:        "401 Unauthorized",
	http.StatusForbidden:           "403: Forbidden",
	http.StatusNotFound:            "404: Not Found",
	http.StatusMethodNotAllowed:    "405: Method Not Allowed",
	http.StatusInternalServerError: "500: Internal Server Error",
}

var fallbacks = map[int]*Error{
	http.StatusBadRequest:          New(http.StatusBadRequest, "Bad request.", "BAD_REQUEST"),
	http.StatusNotFound:            New(http.StatusNotFound, "Url not found.", "URL_NOT_FOUND"),
	http.StatusMethodNotAllowed:    New(http.StatusMethodNotAllowed, "Method not allowed.", "METHOD_NOT_ALLOWED"),
	http.StatusInternalServerError: New(http.StatusInternalServerError, "An error has occurred, contact support.", "INTERNAL_SERVER_ERROR"),
}

// Title returns the display title for status. Statuses outside the fixed
// table get "<status>: <reason phrase>", or just the number when Go knows no
// reason phrase for it.
func Title(status int) string {
	if t, ok := titles[status]; ok {
		return t
	}
	s := strconv.Itoa(status)
	if text := http.StatusText(status); text != "" {
		return s + ": " + text
	}
	return s
}

// Fallback returns the body used when the router or server, rather than a
// handler, produces the failure. Only 400, 404, 405 and 500 have dedicated
// bodies; any other status gets the 500 body.
func Fallback(status int) Body {
	e, ok := fallbacks[status]
	if !ok {
		e = fallbacks[http.StatusInternalServerError]
	}
	return body(e)
}

// Translate maps err to a status code and response body. Errors that are not
// *Error become the generic 500 body; their text is never exposed.
func Translate(err error) (int, Body) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status, body(ae)
	}
	b := Fallback(http.StatusInternalServerError)
	return b.Status, b
}

// Write translates err and renders it as JSON.
func Write(w http.ResponseWriter, err error) {
	_, b := Translate(err)
	WriteBody(w, b)
}

// WriteBody renders b as JSON with b.Status as the response status.
func WriteBody(w http.ResponseWriter, b Body) {
	metrics.HTTPErrors.WithLabelValues(b.Code).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.Status)
	_ = json.NewEncoder(w).Encode(b)
}

// FallbackHandler serves the fallback body for status; used for the router's
// not-found and method-not-allowed hooks.
func FallbackHandler(status int) http.Handler {
	b := Fallback(status)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteBody(w, b)
	})
}

func body(e *Error) Body {
	return Body{Status: e.Status, Code: e.Code, Detail: e.Message, Title: Title(e.Status)}
}
