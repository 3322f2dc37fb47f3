package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// ContentRepo provides CRUD over the promotions, banners and events tables.
// The three tables share the same shape of operations, so one repository
// serves all managed storefront content.
type ContentRepo struct {
	pool *pgxpool.Pool
}

// NewContentRepo creates a content repository.
func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

// =============================================================================
// PROMOTIONS
// =============================================================================

const promotionColumns = `id, title, description, image_url, price_cents, active, display_order, created_at, updated_at`

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var p domain.Promotion
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.PriceCents,
		&p.Active, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPromotions returns promotions ordered by display_order.
func (r *ContentRepo) ListPromotions(ctx context.Context, onlyActive bool) ([]domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY display_order, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Internal(err, "promotion.list", "failed to list promotions")
	}
	defer rows.Close()

	var out []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, domain.Internal(err, "promotion.list", "failed to scan promotion")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreatePromotion inserts a new promotion.
func (r *ContentRepo) CreatePromotion(ctx context.Context, in domain.PromotionInput) (*domain.Promotion, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO promotions (id, title, description, image_url, price_cents, active, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+promotionColumns,
		uuid.NewString(), in.Title, in.Description, in.ImageURL, in.PriceCents, in.Active, in.DisplayOrder, now)

	p, err := scanPromotion(row)
	if err != nil {
		return nil, domain.Internal(err, "promotion.create", "failed to create promotion")
	}
	return p, nil
}

// UpdatePromotion replaces the mutable fields of a promotion.
func (r *ContentRepo) UpdatePromotion(ctx context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE promotions
		SET title = $2, description = $3, image_url = $4, price_cents = $5,
			active = $6, display_order = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+promotionColumns,
		id, in.Title, in.Description, in.ImageURL, in.PriceCents, in.Active, in.DisplayOrder)

	p, err := scanPromotion(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPromotionNotFound
		}
		return nil, domain.Internal(err, "promotion.update", "failed to update promotion")
	}
	return p, nil
}

// SetPromotionActive toggles storefront visibility.
func (r *ContentRepo) SetPromotionActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promotions SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return domain.Internal(err, "promotion.set_active", "failed to toggle promotion")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromotionNotFound
	}
	return nil
}

// DeletePromotion removes a promotion.
func (r *ContentRepo) DeletePromotion(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "promotion.delete", "failed to delete promotion")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromotionNotFound
	}
	return nil
}

// =============================================================================
// BANNERS
// =============================================================================

const bannerColumns = `id, title, image_url, link_url, active, display_order, created_at, updated_at`

func scanBanner(row pgx.Row) (*domain.Banner, error) {
	var b domain.Banner
	err := row.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL,
		&b.Active, &b.DisplayOrder, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBanners returns banners ordered by display_order.
func (r *ContentRepo) ListBanners(ctx context.Context, onlyActive bool) ([]domain.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY display_order, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Internal(err, "banner.list", "failed to list banners")
	}
	defer rows.Close()

	var out []domain.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, domain.Internal(err, "banner.list", "failed to scan banner")
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// CreateBanner inserts a new banner.
func (r *ContentRepo) CreateBanner(ctx context.Context, in domain.BannerInput) (*domain.Banner, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO banners (id, title, image_url, link_url, active, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+bannerColumns,
		uuid.NewString(), in.Title, in.ImageURL, in.LinkURL, in.Active, in.DisplayOrder, now)

	b, err := scanBanner(row)
	if err != nil {
		return nil, domain.Internal(err, "banner.create", "failed to create banner")
	}
	return b, nil
}

// UpdateBanner replaces the mutable fields of a banner.
func (r *ContentRepo) UpdateBanner(ctx context.Context, id string, in domain.BannerInput) (*domain.Banner, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE banners
		SET title = $2, image_url = $3, link_url = $4, active = $5, display_order = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+bannerColumns,
		id, in.Title, in.ImageURL, in.LinkURL, in.Active, in.DisplayOrder)

	b, err := scanBanner(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBannerNotFound
		}
		return nil, domain.Internal(err, "banner.update", "failed to update banner")
	}
	return b, nil
}

// SetBannerActive toggles storefront visibility.
func (r *ContentRepo) SetBannerActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE banners SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return domain.Internal(err, "banner.set_active", "failed to toggle banner")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBannerNotFound
	}
	return nil
}

// DeleteBanner removes a banner.
func (r *ContentRepo) DeleteBanner(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "banner.delete", "failed to delete banner")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBannerNotFound
	}
	return nil
}

// =============================================================================
// EVENTS
// =============================================================================

const eventColumns = `id, title, description, image_url, starts_at, ends_at, active, display_order, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.StartsAt, &e.EndsAt,
		&e.Active, &e.DisplayOrder, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns events ordered by start time.
func (r *ContentRepo) ListEvents(ctx context.Context, onlyActive bool) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY starts_at, display_order`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Internal(err, "event.list", "failed to list events")
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, domain.Internal(err, "event.list", "failed to scan event")
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// CreateEvent inserts a new event.
func (r *ContentRepo) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, title, description, image_url, starts_at, ends_at, active, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING `+eventColumns,
		uuid.NewString(), in.Title, in.Description, in.ImageURL, in.StartsAt, in.EndsAt, in.Active, in.DisplayOrder, now)

	e, err := scanEvent(row)
	if err != nil {
		return nil, domain.Internal(err, "event.create", "failed to create event")
	}
	return e, nil
}

// UpdateEvent replaces the mutable fields of an event.
func (r *ContentRepo) UpdateEvent(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events
		SET title = $2, description = $3, image_url = $4, starts_at = $5, ends_at = $6,
			active = $7, display_order = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns,
		id, in.Title, in.Description, in.ImageURL, in.StartsAt, in.EndsAt, in.Active, in.DisplayOrder)

	e, err := scanEvent(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, domain.Internal(err, "event.update", "failed to update event")
	}
	return e, nil
}

// SetEventActive toggles storefront visibility.
func (r *ContentRepo) SetEventActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return domain.Internal(err, "event.set_active", "failed to toggle event")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event.
func (r *ContentRepo) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "event.delete", "failed to delete event")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
