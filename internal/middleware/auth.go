package middleware

import (
	"context"
	"net/http"

	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/domain"
)

type contextKey string

const (
	// UserContextKey is the context key for storing the authenticated user
	UserContextKey contextKey = "user"
)

// UserResolver resolves a session token to its user. Satisfied by
// service.AuthService.
type UserResolver interface {
	UserBySessionToken(ctx context.Context, token string) (*domain.User, error)
}

// WithUser extracts the user from the session cookie and adds it to the
// request context. Optional - requests without a valid session continue
// anonymously.
func WithUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookie.Get(r, cookie.SessionCookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.UserBySessionToken(r.Context(), token)
			if err != nil {
				// Invalid or expired session, continue without user
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose user does not carry the admin role.
// Authorization is purely role-based.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			respondUnauthorized(w, r)
			return
		}
		if !user.IsAdmin() {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from the request context.
// Returns nil if no user is authenticated.
func GetUserFromContext(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
