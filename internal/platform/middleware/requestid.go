package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is honored when a caller sends no X-Request-Id.
	CorrelationIDHeader = "X-Correlation-Id"

	// maxRequestIDLength limits request ID size to prevent unbounded memory usage.
	maxRequestIDLength = 128
)

// isValidRequestID reports whether id is safe to log and echo back.
// Only printable ASCII (0x20-0x7E) is allowed, which rules out newlines and
// other control characters that could enable log injection.
func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxRequestIDLength {
		return false
	}
	for i := range len(id) {
		if c := id[i]; c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// incomingRequestID returns the first valid caller-supplied identifier.
func incomingRequestID(r *http.Request) (string, bool) {
	for _, header := range []string{chimiddleware.RequestIDHeader, CorrelationIDHeader} {
		if id := r.Header.Get(header); isValidRequestID(id) {
			return id, true
		}
	}
	return "", false
}

// RequestID returns middleware that assigns every request an identifier.
// A valid X-Request-Id (or, failing that, X-Correlation-Id) header is reused;
// otherwise a UUIDv4 is generated. The identifier is stored under chi's
// RequestIDKey and echoed in the X-Request-Id response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, ok := incomingRequestID(r)
			if !ok {
				reqID = uuid.NewString()
			}

			r = r.WithContext(context.WithValue(r.Context(), chimiddleware.RequestIDKey, reqID))
			w.Header().Set(chimiddleware.RequestIDHeader, reqID)
			next.ServeHTTP(w, r)
		})
	}
}
