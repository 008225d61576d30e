package middleware

import (
	"net/http"

	"github.com/tinoosan/apishell/internal/apperr"
)

// ServerError is the outer safety net. It gives each request a failure slot,
// recovers panics, and answers with the generic 500 body whenever the request
// failed before anything was written. Error details never reach the client;
// AccessLog has already logged them.
func ServerError(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := apperr.WithFailureSlot(r.Context())
		rw := newRecorder(w)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if !rw.wroteHeader {
				apperr.WriteBody(w, apperr.Fallback(http.StatusInternalServerError))
			}
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))

		if apperr.Failure(ctx) != nil && !rw.wroteHeader {
			apperr.WriteBody(w, apperr.Fallback(http.StatusInternalServerError))
		}
	})
}
