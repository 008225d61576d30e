// Package v0 serves the version 0 API.
package v0

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tinoosan/apishell/internal/logging"
)

const apiVersion = "v0"

type Health struct {
	l   *slog.Logger
	now func() time.Time
}

func NewHealth(l *slog.Logger) *Health {
	return &Health{l: logging.Named(l, "api.v0.health"), now: time.Now}
}

// Get reports that the API is up.
func (h *Health) Get(w http.ResponseWriter, r *http.Request) error {
	h.l.InfoContext(r.Context(), "Health check V0")

	return writeJSON(w, http.StatusOK, Response[HealthStatus]{
		Message: "Health check",
		Meta:    map[string]any{},
		Data: &HealthStatus{
			APIVersion: apiVersion,
			Time:       h.now(),
			Status:     "OK",
		},
	})
}
