package storefront

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/service"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// oauthStateCookie carries the anti-CSRF state across the Google redirect.
const (
	oauthStateCookie = "botilleria_oauth_state"
	oauthStateMaxAge = int(10 * time.Minute / time.Second)
)

// AuthHandler handles sign-up, sign-in, sign-out and the Google OAuth flow.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *cookie.Config
	metrics *telemetry.BusinessMetrics
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(auth *service.AuthService, cookies *cookie.Config, metrics *telemetry.BusinessMetrics) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, metrics: metrics}
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

func toUserView(u *domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *domain.Session) {
	h.cookies.SetSessionWithExpiry(w, cookie.SessionCookieName, session.Token, session.ExpiresAt)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignUp registers an account and opens a session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if req.Email == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("auth.signup", "email", "This field is required"))
		return
	}

	user, session, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Signups.WithLabelValues("password").Inc()
	}
	h.setSessionCookie(w, session)
	handler.JSON(w, http.StatusCreated, toUserView(user))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn verifies credentials and opens a session.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil && domain.IsCode(err, domain.EUNAUTHORIZED) {
			h.metrics.LoginFailed.Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Logins.WithLabelValues("password").Inc()
	}
	h.setSessionCookie(w, session)
	handler.JSON(w, http.StatusOK, toUserView(user))
}

// SignOut deletes the session and clears the cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := cookie.Get(r, cookie.SessionCookieName); token != "" {
		if err := h.auth.SignOut(r.Context(), token); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
	}
	h.cookies.ClearSession(w, cookie.SessionCookieName)
	handler.NoContent(w)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}
	handler.JSON(w, http.StatusOK, toUserView(user))
}

// OAuthStart returns the Google consent URL and plants the state cookie.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := service.GenerateSessionToken()
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	url, err := h.auth.OAuthURL(state)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.SetSession(w, oauthStateCookie, state, oauthStateMaxAge)
	handler.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// OAuthCallback completes the Google flow: it checks the state, exchanges
// the code, opens a session and redirects to the storefront.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" || state != cookie.Get(r, oauthStateCookie) {
		handler.ErrorResponse(w, r, domain.Unauthorized("auth.oauth", "OAuth state mismatch"))
		return
	}
	h.cookies.ClearSession(w, oauthStateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		handler.ErrorResponse(w, r, domain.Unauthorized("auth.oauth", "Missing authorization code"))
		return
	}

	_, session, err := h.auth.SignInWithOAuth(r.Context(), code)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Logins.WithLabelValues("google").Inc()
	}
	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusFound)
}
