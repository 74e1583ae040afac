// Package ratelimit throttles the API with a single process-wide token bucket.
package ratelimit

import (
	"math"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/janisto/cicd-demo/internal/platform/respond"
)

const msgRateLimited = "rate limit exceeded"

// Burst returns the bucket size for rps when none is configured: enough
// tokens for one second of traffic, and never less than one.
func Burst(rps float64, burst int) int {
	if burst > 0 {
		return burst
	}
	return max(1, int(math.Ceil(rps)))
}

// Middleware rejects requests beyond rps (with the given burst) with a 429
// problem response and Retry-After: 1. An rps of zero or less disables
// limiting. Requests whose path equals one of skipPaths, ignoring trailing
// slashes, are never limited and do not consume tokens.
func Middleware(rps float64, burst int, skipPaths ...string) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), Burst(rps, burst))
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[skipKey(p)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[skipKey(r.URL.Path)]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respond.WriteProblem(w, r, http.StatusTooManyRequests, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func skipKey(path string) string {
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}
