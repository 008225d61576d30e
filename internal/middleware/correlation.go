package middleware

import (
	"net/http"

	"github.com/tinoosan/apishell/internal/correlation"
)

// CorrelationID ensures every request has a correlation id in its context and
// in the response headers. A well-formed inbound X-Correlation-Id is adopted,
// otherwise a UUIDv4 is generated. The id lives in the request context only,
// so it ends with the request.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlation.Header)
		if !correlation.Valid(id) {
			id = correlation.New()
		}
		w.Header().Set(correlation.Header, id)
		next.ServeHTTP(w, r.WithContext(correlation.With(r.Context(), id)))
	})
}
