package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// SettingsRepo persists the single store_settings row and contact messages.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

// NewSettingsRepo creates a settings repository.
func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

const settingsColumns = `id, store_name, contact_phone, whatsapp_number, address, opening_hours,
	free_delivery_threshold_cents, delivery_per_km_cents, updated_at`

func scanSettings(row pgx.Row) (*domain.StoreSettings, error) {
	var s domain.StoreSettings
	err := row.Scan(&s.ID, &s.StoreName, &s.ContactPhone, &s.WhatsAppNumber, &s.Address,
		&s.OpeningHours, &s.FreeDeliveryThresholdCents, &s.DeliveryPerKmCents, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the store settings row.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.StoreSettings, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM store_settings ORDER BY updated_at DESC LIMIT 1`)

	s, err := scanSettings(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, domain.Internal(err, "settings.get", "failed to get store settings")
	}
	return s, nil
}

// Update replaces the settings row, creating it if missing.
func (r *SettingsRepo) Update(ctx context.Context, in domain.StoreSettingsInput) (*domain.StoreSettings, error) {
	existing, err := r.Get(ctx)
	id := uuid.NewString()
	if err == nil {
		id = existing.ID
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO store_settings (id, store_name, contact_phone, whatsapp_number, address,
			opening_hours, free_delivery_threshold_cents, delivery_per_km_cents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE
		SET store_name = $2, contact_phone = $3, whatsapp_number = $4, address = $5,
			opening_hours = $6, free_delivery_threshold_cents = $7, delivery_per_km_cents = $8,
			updated_at = now()
		RETURNING `+settingsColumns,
		id, in.StoreName, in.ContactPhone, in.WhatsAppNumber, in.Address,
		in.OpeningHours, in.FreeDeliveryThresholdCents, in.DeliveryPerKmCents)

	s, err := scanSettings(row)
	if err != nil {
		return nil, domain.Internal(err, "settings.update", "failed to update store settings")
	}
	return s, nil
}
