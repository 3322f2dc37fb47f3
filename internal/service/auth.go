package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lcastillo/botilleria/internal/auth"
	"github.com/lcastillo/botilleria/internal/domain"
)

// SessionDuration is how long a session token stays valid.
const SessionDuration = 30 * 24 * time.Hour

// AuthService handles sign-up, sign-in (password and OAuth) and sessions.
type AuthService struct {
	users  UserStore
	oauth  *oauth2.Config
	logger *slog.Logger
}

// OAuthCredentials configures the Google sign-in flow. Empty credentials
// disable OAuth; password sign-in keeps working.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewAuthService creates an auth service.
func NewAuthService(users UserStore, creds OAuthCredentials, logger *slog.Logger) *AuthService {
	s := &AuthService{users: users, logger: logger}
	if creds.ClientID != "" && creds.ClientSecret != "" {
		s.oauth = &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s
}

// SignUp registers a new account and opens a session.
func (s *AuthService) SignUp(ctx context.Context, emailAddr, password, fullName string) (*domain.User, *domain.Session, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, nil, ErrWeakPassword
		}
		return nil, nil, domain.Internal(err, "auth.signup", "failed to hash password")
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:        emailAddr,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, nil, err
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// SignIn verifies the credentials and opens a session. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*domain.User, *domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if user.PasswordHash == "" {
		// OAuth-only account
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, domain.Internal(err, "auth.signin", "failed to verify password")
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// OAuthURL returns the Google consent URL for the given anti-CSRF state.
func (s *AuthService) OAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthUnavailable
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// googleUserInfo is the subset of the userinfo response we need.
type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignInWithOAuth exchanges the authorization code, resolves or creates the
// matching profile and opens a session. A profile that already exists for
// the email is linked rather than duplicated.
func (s *AuthService) SignInWithOAuth(ctx context.Context, code string) (*domain.User, *domain.Session, error) {
	if s.oauth == nil {
		return nil, nil, ErrOAuthUnavailable
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, domain.WrapError(err, domain.EUNAUTHORIZED, "auth.oauth", "OAuth code exchange failed")
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetBySubject(ctx, "google", info.Sub)
	if err != nil {
		if !domain.IsCode(err, domain.ENOTFOUND) {
			return nil, nil, err
		}
		user, err = s.users.Create(ctx, domain.User{
			Email:    info.Email,
			FullName: info.Name,
			Role:     domain.RoleUser,
			Provider: "google",
			Subject:  info.Sub,
		})
		if err != nil {
			if !domain.IsCode(err, domain.ECONFLICT) {
				return nil, nil, err
			}
			// Account already exists for this email; link instead of failing.
			user, err = s.users.GetByEmail(ctx, info.Email)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *AuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get("https://openidconnect.googleapis.com/v1/userinfo")
	if err != nil {
		return nil, domain.Internal(err, "auth.oauth", "failed to fetch user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.EUNAUTHORIZED, "auth.oauth",
			"user info request returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, domain.Internal(err, "auth.oauth", "failed to decode user info")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, domain.Errorf(domain.EUNAUTHORIZED, "auth.oauth", "incomplete user info")
	}
	return &info, nil
}

// SignOut deletes the session. A missing token is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.users.DeleteSession(ctx, token)
}

// UserBySessionToken resolves a session token to its user.
func (s *AuthService) UserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return s.users.GetUserBySessionToken(ctx, token)
}

func (s *AuthService) openSession(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, domain.Internal(err, "auth.session", "failed to generate session token")
	}

	session := domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(SessionDuration),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// PruneSessions removes expired sessions. Run periodically.
func (s *AuthService) PruneSessions(ctx context.Context) {
	n, err := s.users.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Warn("session prune failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("pruned %d expired sessions", n))
	}
}
