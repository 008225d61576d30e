package middleware

import (
	"net/http"
	"slices"

	"github.com/gorilla/handlers"

	"github.com/tinoosan/apishell/internal/correlation"
)

// corsHeaders are the request headers a preflight may always ask for.
var corsHeaders = []string{
	"Accept", "Accept-Language", "Authorization", "Cache-Control", "Content-Language",
	"Content-Type", "If-Match", "If-Modified-Since", "If-None-Match", "Origin",
	"X-Requested-With", correlation.Header,
}

// CORS allows cross-origin calls from origins, with credentials, and exposes
// the correlation and timing headers to browsers. A "*" entry allows any
// origin; the caller's Origin is echoed back since browsers reject a wildcard
// on credentialed responses. headers extends the allowed request headers.
func CORS(origins []string, headers ...string) func(http.Handler) http.Handler {
	allowed := handlers.AllowedOrigins(origins)
	if slices.Contains(origins, "*") {
		allowed = handlers.AllowedOriginValidator(func(string) bool { return true })
	}
	return handlers.CORS(
		allowed,
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders(append(slices.Clone(corsHeaders), headers...)),
		handlers.ExposedHeaders([]string{correlation.Header, HeaderProcessTime}),
		handlers.AllowCredentials(),
	)
}
