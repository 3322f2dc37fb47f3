package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// UserRepo persists profiles and sessions.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a user repository.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, role, provider, subject, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
		&u.Provider, &u.Subject, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new profile. A duplicate email maps to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, password_hash, role, provider, subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+userColumns,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.Role, u.Provider, u.Subject, now)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.Internal(err, "user.create", "failed to create profile")
	}
	return created, nil
}

// GetByID retrieves a profile by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM profiles WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get", "failed to get profile")
	}
	return u, nil
}

// GetByEmail retrieves a profile by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)

	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get_by_email", "failed to get profile")
	}
	return u, nil
}

// GetBySubject retrieves a profile by OAuth provider and subject.
func (r *UserRepo) GetBySubject(ctx context.Context, provider, subject string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM profiles WHERE provider = $1 AND subject = $2`, provider, subject)

	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get_by_subject", "failed to get profile")
	}
	return u, nil
}

// SetRole updates the profile role.
func (r *UserRepo) SetRole(ctx context.Context, id string, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return domain.Internal(err, "user.set_role", "failed to update role")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CountAdmins returns how many profiles carry the admin role.
func (r *UserRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM profiles WHERE role = $1`, domain.RoleAdmin).Scan(&n)
	if err != nil {
		return 0, domain.Internal(err, "user.count_admins", "failed to count admins")
	}
	return n, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession stores a new session token.
func (r *UserRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return domain.Internal(err, "session.create", "failed to create session")
	}
	return nil
}

// GetUserBySessionToken resolves a live session token to its profile.
// Expired sessions behave as missing.
func (r *UserRepo) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, p.email, p.full_name, p.password_hash, p.role, p.provider, p.subject, p.created_at, p.updated_at
		FROM sessions s
		JOIN profiles p ON p.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`, token)

	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.Internal(err, "session.get_user", "failed to resolve session")
	}
	return u, nil
}

// DeleteSession removes a session token (sign-out).
func (r *UserRepo) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return domain.Internal(err, "session.delete", "failed to delete session")
	}
	return nil
}

// DeleteExpiredSessions prunes expired rows. Intended for a periodic job.
func (r *UserRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, domain.Internal(err, "session.prune", "failed to prune sessions")
	}
	return tag.RowsAffected(), nil
}
