package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a middleware that applies API-friendly defaults. With no
// origins it allows any origin; credentials are never allowed, which keeps
// the wildcard safe.
func CORS(allowedOrigins ...string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-Id",
			CorrelationIDHeader,
			"traceparent",
		},
		ExposedHeaders: []string{
			"Link",
			"Location",
			"Retry-After",
			"X-Request-Id",
		},
		MaxAge: 300,
	})
}
