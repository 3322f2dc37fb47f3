// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lcastillo/botilleria/internal/auth"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/service"
)

// AdminConfig contains configuration for the initial admin user.
type AdminConfig struct {
	Email    string
	Password string
	FullName string
}

// Validate checks that the admin configuration is valid.
func (c *AdminConfig) Validate() error {
	if c.Email == "" {
		return errors.New("admin email is required")
	}
	if c.Password == "" {
		return errors.New("admin password is required")
	}
	if len(c.Password) < 12 {
		return errors.New("admin password must be at least 12 characters")
	}
	return nil
}

// EnsureAdmin seeds the initial admin profile if none exists. Idempotent -
// safe to call on every startup.
//
// Admin access is purely role-based; this seed is the only path that grants
// the role outside of another admin doing it. If any admin already exists,
// or the configured email already has an account, the existing role wins and
// nothing is changed.
func EnsureAdmin(ctx context.Context, users service.UserStore, cfg *AdminConfig, logger *slog.Logger) error {
	if cfg == nil || cfg.Email == "" || cfg.Password == "" {
		logger.Warn("bootstrap: skipping admin creation - ADMIN_EMAIL or ADMIN_PASSWORD not set",
			"hint", "Set these environment variables to create an admin user on first startup",
		)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid admin configuration: %w", err)
	}

	n, err := users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if n > 0 {
		logger.Info("bootstrap: admin already exists", "count", n)
		return nil
	}

	if existing, err := users.GetByEmail(ctx, cfg.Email); err == nil {
		if err := users.SetRole(ctx, existing.ID, domain.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote existing user: %w", err)
		}
		logger.Info("bootstrap: promoted existing user to admin", "email", cfg.Email)
		return nil
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	passwordHash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	fullName := cfg.FullName
	if fullName == "" {
		fullName = "Admin"
	}

	user, err := users.Create(ctx, domain.User{
		Email:        cfg.Email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		// Concurrent startup may have created it first.
		if domain.IsCode(err, domain.ECONFLICT) {
			logger.Info("bootstrap: admin user already exists (concurrent creation)", "email", cfg.Email)
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("bootstrap: admin user created successfully",
		"email", cfg.Email,
		"user_id", user.ID,
	)

	return nil
}
