package apperr

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// HandlerFunc is an http handler that reports failure by returning an error.
//
// A returned *Error is written to the client immediately. Any other error is
// an uncaught failure: it is recorded with Fail so the access log and the
// server error layer can handle it, and nothing is written here. Without a
// failure slot in the context the generic 500 body is written directly.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (fn HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := fn(w, r)
	if err == nil {
		return
	}
	var ae *Error
	if errors.As(err, &ae) {
		Write(w, ae)
		return
	}
	if Fail(r.Context(), err) {
		return
	}
	Write(w, err)
}

type failureKey struct{}

type failure struct {
	mu  sync.Mutex
	err error
}

// WithFailureSlot returns a context able to record one uncaught failure for
// the lifetime of a request.
func WithFailureSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, failureKey{}, &failure{})
}

// Fail records err in the request's failure slot. The first recorded error
// wins. It reports false when ctx has no slot.
func Fail(ctx context.Context, err error) bool {
	f, ok := ctx.Value(failureKey{}).(*failure)
	if !ok {
		return false
	}
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
	return true
}

// Failure returns the error recorded by Fail, if any.
func Failure(ctx context.Context) error {
	f, ok := ctx.Value(failureKey{}).(*failure)
	if !ok {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
