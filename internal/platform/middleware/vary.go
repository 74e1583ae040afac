package middleware

import (
	"net/http"
	"strings"
)

// Vary returns middleware that lists request headers influencing the
// response in the Vary header (RFC 9110 section 12.5.5). With no arguments
// it adds Accept, since JSON and CBOR are negotiated from it. Values already
// present are not duplicated; CORS adds Origin on its own.
func Vary(headers ...string) func(http.Handler) http.Handler {
	if len(headers) == 0 {
		headers = []string{"Accept"}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			AddVary(w.Header(), headers...)
			next.ServeHTTP(w, r)
		})
	}
}

// AddVary appends each value to the Vary header unless it is already listed,
// comparing case-insensitively across comma-separated entries.
func AddVary(h http.Header, values ...string) {
	seen := make(map[string]struct{})
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			seen[strings.ToLower(strings.TrimSpace(part))] = struct{}{}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		h.Add("Vary", v)
	}
}
