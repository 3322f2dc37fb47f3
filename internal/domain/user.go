package domain

import "time"

// User domain errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "An account with this email already exists"}
	ErrSessionNotFound    = &Error{Code: EUNAUTHORIZED, Message: "Session not found or expired"}
)

// Roles stored on the profile record.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a profile record linked to a set of credentials. OAuth users carry
// Provider/Subject instead of a password hash.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	Provider     string
	Subject      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the profile role grants admin access.
// Authorization is role-based only; there is no hardcoded address fallback.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session is an authenticated browser session identified by an opaque token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
