package middleware

import (
	"context"
	"net/http"
)

// ClientIPContextKey stores the resolved client IP.
const ClientIPContextKey contextKey = "client_ip"

// WithClientIP resolves the client address once, early in the chain, so
// handlers and later middleware read it from the context instead of
// re-parsing headers. Proxy headers are spoofable; deploy behind a proxy
// that sets them, or not at all.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPContextKey, GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIPFromContext returns the IP stored by WithClientIP, or "" when
// the middleware did not run.
func GetClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPContextKey).(string)
	return ip
}
