package util

import "net/http"

// WithCORS adds CORS headers for the configured browser origin. Session
// cookies only cross origins with Allow-Credentials and a concrete origin, so
// a wildcard is never emitted; an empty origin disables CORS entirely.
func WithCORS(origin string, next http.Handler) http.Handler {
	if origin == "" || origin == "*" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
