// Package correlation carries the per-request correlation id in a context.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to receive and echo the correlation id.
const Header = "X-Correlation-Id"

const maxLen = 128

// key is an unexported type to avoid collisions in context values.
type key struct{}

// With returns a new context with the provided correlation id attached.
func With(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key{}, id)
}

// From extracts the correlation id from the context, if present.
func From(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if s, ok := ctx.Value(key{}).(string); ok && s != "" {
		return s, true
	}
	return "", false
}

// New returns a fresh random id.
func New() string { return uuid.NewString() }

// Valid reports whether an inbound id can be adopted as-is.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
