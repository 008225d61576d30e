package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apishell",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method and response status.",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apishell",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests.",
		},
		[]string{"method"},
	)

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "apishell",
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	HTTPErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apishell",
			Name:      "http_errors_total",
			Help:      "Error responses written, by application error code.",
		},
		[]string{"code"},
	)

	LogRecordsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "apishell",
			Name:      "log_records_dropped_total",
			Help:      "Log records dropped because the shipping queue was full or delivery failed.",
		},
	)
)

var registerOnce sync.Once

// Register registers the collectors into the default registry. Repeated calls
// are no-ops.
func Register() {
	registerOnce.Do(func() { MustRegister(prometheus.DefaultRegisterer) })
}

// MustRegister registers the collectors into reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, HTTPRequestDuration, HTTPInFlight, HTTPErrors, LogRecordsDropped)
}
