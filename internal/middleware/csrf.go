package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lcastillo/botilleria/internal/cookie"
)

const (
	// CSRFHeaderName is where the frontend echoes the token back.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormFieldName is the fallback for plain form posts.
	CSRFFormFieldName = "csrf_token"

	// CSRFContextKey stores the active token in the request context.
	CSRFContextKey contextKey = "csrf_token"

	csrfTokenBytes = 32
)

// CSRFConfig configures double-submit-cookie CSRF protection.
type CSRFConfig struct {
	// CookieConfig supplies the Secure flag for the token cookie.
	CookieConfig *cookie.Config

	// CookieName defaults to cookie.CSRFCookieName.
	CookieName string

	// CookieMaxAge in seconds. Defaults to 24 hours.
	CookieMaxAge int

	// SkipPaths lists path prefixes exempt from validation, for endpoints
	// that authenticate another way (webhook signatures).
	SkipPaths []string

	// ErrorHandler overrides the default 403 response.
	ErrorHandler func(w http.ResponseWriter, r *http.Request)
}

// DefaultCSRFConfig returns the baseline config for the given cookie setup.
func DefaultCSRFConfig(cc *cookie.Config) CSRFConfig {
	return CSRFConfig{
		CookieConfig: cc,
		CookieName:   cookie.CSRFCookieName,
		CookieMaxAge: 24 * 60 * 60,
	}
}

// CSRF issues a token cookie on first contact and requires unsafe methods
// to echo it back in the X-CSRF-Token header or a form field. The cookie is
// deliberately readable by the frontend script that echoes it.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieConfig == nil {
		panic("csrf: CookieConfig is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = cookie.CSRFCookieName
	}
	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = 24 * 60 * 60
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.SkipPaths {
				if pathHasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := tokenFromCookie(r, cfg.CookieName)
			if token == "" {
				fresh, err := newCSRFToken()
				if err != nil {
					// No token beats a predictable one.
					slog.Error("csrf: token generation failed", "error", err)
					respondInternalError(w, r, err)
					return
				}
				token = fresh
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   cfg.CookieMaxAge,
					Secure:   cfg.CookieConfig.Secure,
					HttpOnly: false,
					SameSite: http.SameSiteLaxMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), CSRFContextKey, token))

			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !tokensMatch(token, submittedToken(r)) {
				if cfg.ErrorHandler != nil {
					cfg.ErrorHandler(w, r)
				} else {
					respondForbidden(w, r)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFToken returns the token issued for this request, for embedding in
// responses the frontend renders.
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFContextKey).(string)
	return token
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func tokenFromCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// submittedToken pulls the echoed token from the header, then from form
// fields for non-JS clients.
func submittedToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return ""
		}
	} else if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.FormValue(CSRFFormFieldName)
}

func tokensMatch(expected, submitted string) bool {
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// pathHasPrefix matches on path segment boundaries, so a "/api/webhooks"
// prefix cannot be satisfied by "/api/webhooks-evil".
func pathHasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if strings.HasSuffix(prefix, "/") || len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}
