package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tinoosan/apishell/internal/metrics"
)

// Metrics records request counts, latency and in-flight requests.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		rw := newRecorder(w)
		next.ServeHTTP(rw, r)

		method := methodLabel(r.Method)
		metrics.HTTPRequests.WithLabelValues(method, strconv.Itoa(rw.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	})
}

// methodLabel bounds label cardinality to the standard methods.
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return m
	}
	return "OTHER"
}
