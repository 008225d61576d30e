// Package auth guards routes behind a static bearer token.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tinoosan/apishell/internal/apperr"
)

// Middleware requires "Authorization: Bearer <token>" on every path except
// the exempt ones. An empty token disables the check.
func Middleware(token string, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				apperr.Write(w, apperr.Unauthorized("missing API token", "MISSING_TOKEN"))
				return
			}

			got := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				apperr.Write(w, apperr.Forbidden("invalid API token", "INVALID_TOKEN"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
