package service

import (
	"context"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
)

// Storage interfaces consumed by the service layer. The postgres package
// provides the production implementations; tests supply mocks.

// ProductStore persists products.
type ProductStore interface {
	List(ctx context.Context, onlyActive bool) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// ContentStore persists promotions, banners and events.
type ContentStore interface {
	ListPromotions(ctx context.Context, onlyActive bool) ([]domain.Promotion, error)
	CreatePromotion(ctx context.Context, in domain.PromotionInput) (*domain.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error)
	SetPromotionActive(ctx context.Context, id string, active bool) error
	DeletePromotion(ctx context.Context, id string) error

	ListBanners(ctx context.Context, onlyActive bool) ([]domain.Banner, error)
	CreateBanner(ctx context.Context, in domain.BannerInput) (*domain.Banner, error)
	UpdateBanner(ctx context.Context, id string, in domain.BannerInput) (*domain.Banner, error)
	SetBannerActive(ctx context.Context, id string, active bool) error
	DeleteBanner(ctx context.Context, id string) error

	ListEvents(ctx context.Context, onlyActive bool) ([]domain.Event, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error)
	SetEventActive(ctx context.Context, id string, active bool) error
	DeleteEvent(ctx context.Context, id string) error
}

// OrderStore persists orders. Create must be idempotent on the order's
// idempotency key.
type OrderStore interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, limit int32) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	NextOrderNumber(ctx context.Context) (string, error)
	CountSince(ctx context.Context, since time.Time) (int64, int64, error)
}

// UserStore persists profiles and sessions.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetBySubject(ctx context.Context, provider, subject string) (*domain.User, error)
	SetRole(ctx context.Context, id string, role string) error
	CountAdmins(ctx context.Context) (int64, error)

	CreateSession(ctx context.Context, s domain.Session) error
	GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// SettingsStore persists the store settings row.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.StoreSettings, error)
	Update(ctx context.Context, in domain.StoreSettingsInput) (*domain.StoreSettings, error)
}

// MessageStore persists contact messages.
type MessageStore interface {
	Create(ctx context.Context, m domain.Message) (*domain.Message, error)
	List(ctx context.Context) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
