package v0

import "time"

// Response is the envelope wrapping every successful v0 payload.
type Response[T any] struct {
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
	Data    *T             `json:"data"`
}

// HealthStatus is the payload of GET /v0/health.
type HealthStatus struct {
	APIVersion string    `json:"api_version"`
	Time       time.Time `json:"time"`
	Status     string    `json:"status"`
}
