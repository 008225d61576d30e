package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v0 "github.com/tinoosan/apishell/api/v0"
	"github.com/tinoosan/apishell/internal/apperr"
	"github.com/tinoosan/apishell/internal/auth"
	"github.com/tinoosan/apishell/internal/health"
	"github.com/tinoosan/apishell/internal/logging"
	"github.com/tinoosan/apishell/internal/metrics"
	"github.com/tinoosan/apishell/internal/middleware"
)

const readyTimeout = 2 * time.Second

// Options carries the startup settings the routes depend on.
type Options struct {
	CORSOrigins []string
	// CORSHeaders extends the request headers a preflight may ask for.
	CORSHeaders []string
	// APIToken enables the bearer-token guard when non-empty.
	APIToken string
	Checks   []health.Checker
}

// New sets up the application routes wrapped in the middleware stack. The
// stack wraps the whole router so unmatched routes are logged and counted too.
func New(logger *slog.Logger, opts Options) http.Handler {
	metrics.Register()

	r := mux.NewRouter()
	r.NotFoundHandler = apperr.FallbackHandler(http.StatusNotFound)
	r.MethodNotAllowedHandler = apperr.FallbackHandler(http.StatusMethodNotAllowed)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.ErrorContext(r.Context(), "write healthz response", "err", err)
		}
	}).Methods("GET")

	r.Handle("/readyz", readyHandler(logging.Named(logger, "readiness"), opts.Checks)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/v0").Subrouter()
	healthV0 := v0.NewHealth(logger)
	api.Handle("/health", apperr.HandlerFunc(healthV0.Get)).Methods("GET", "HEAD")
	api.Handle("/health/", apperr.HandlerFunc(healthV0.Get)).Methods("GET", "HEAD")

	var h http.Handler = r
	h = auth.Middleware(opts.APIToken, "/healthz", "/readyz", "/v0/health", "/v0/health/")(h)
	h = middleware.AccessLog(logger)(h)
	h = middleware.ServerError(h)
	h = middleware.Metrics(h)
	h = middleware.CorrelationID(h)
	h = middleware.CORS(opts.CORSOrigins, opts.CORSHeaders...)(h)
	return h
}

func readyHandler(logger *slog.Logger, checks []health.Checker) http.Handler {
	return apperr.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		bad := health.Failed(health.Run(r.Context(), readyTimeout, checks...))
		if len(bad) > 0 {
			names := make([]string, 0, len(bad))
			for _, b := range bad {
				names = append(names, b.Name)
				logger.WarnContext(r.Context(), "readiness check failed", "check", b.Name, "err", b.Err)
			}
			return apperr.New(http.StatusServiceUnavailable,
				"dependencies unavailable: "+strings.Join(names, ", "), "NOT_READY")
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		return err
	})
}
