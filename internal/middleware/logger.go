package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// LoggerContextKey stores the request-scoped logger.
const LoggerContextKey contextKey = "logger"

// WithRequestLogger injects a logger pre-tagged with method, path, request
// ID and (when authenticated) user ID. Place it after RequestID. User
// attribution appears only when WithUser runs earlier in the chain.
func WithRequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if id := GetRequestID(r.Context()); id != "" {
				l = l.With(slog.String("request_id", id))
			}
			if user := GetUserFromContext(r.Context()); user != nil {
				l = l.With(slog.String("user_id", user.ID))
			}

			ctx := context.WithValue(r.Context(), LoggerContextKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request-scoped logger, the fallback if given, or
// slog.Default.
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(LoggerContextKey).(*slog.Logger); ok {
		return l
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0]
	}
	return slog.Default()
}
