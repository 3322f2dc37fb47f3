package service

import (
	"context"
	"log/slog"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// AdminCatalogService is the write side of the catalog: product, promotion,
// banner, event and settings management. Every successful mutation publishes
// a change notification so storefront caches re-fetch.
type AdminCatalogService struct {
	products  ProductStore
	content   ContentStore
	settings  SettingsStore
	publisher realtime.Publisher
	logger    *slog.Logger
}

// NewAdminCatalogService creates the admin catalog service.
func NewAdminCatalogService(products ProductStore, content ContentStore, settings SettingsStore, publisher realtime.Publisher, logger *slog.Logger) *AdminCatalogService {
	return &AdminCatalogService{
		products:  products,
		content:   content,
		settings:  settings,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *AdminCatalogService) publish(ctx context.Context, table, op, id string) {
	err := s.publisher.Publish(ctx, realtime.Change{Table: table, Op: op, ID: id})
	if err != nil {
		s.logger.Warn("failed to publish change", "table", table, "op", op, "error", err)
	}
}

// ----- products -----

func (s *AdminCatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx, false)
}

func (s *AdminCatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *AdminCatalogService) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("admin.create_product", "name", "This field is required")
	}
	p, err := s.products.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableProducts, realtime.OpInsert, p.ID)
	return p, nil
}

func (s *AdminCatalogService) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("admin.update_product", "name", "This field is required")
	}
	p, err := s.products.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableProducts, realtime.OpUpdate, id)
	return p, nil
}

func (s *AdminCatalogService) SetProductActive(ctx context.Context, id string, active bool) error {
	if err := s.products.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableProducts, realtime.OpUpdate, id)
	return nil
}

func (s *AdminCatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableProducts, realtime.OpDelete, id)
	return nil
}

// ----- promotions -----

func (s *AdminCatalogService) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	return s.content.ListPromotions(ctx, false)
}

func (s *AdminCatalogService) CreatePromotion(ctx context.Context, in domain.PromotionInput) (*domain.Promotion, error) {
	if in.Title == "" {
		return nil, domain.NewValidationError("admin.create_promotion", "title", "This field is required")
	}
	p, err := s.content.CreatePromotion(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TablePromotions, realtime.OpInsert, p.ID)
	return p, nil
}

func (s *AdminCatalogService) UpdatePromotion(ctx context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error) {
	p, err := s.content.UpdatePromotion(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TablePromotions, realtime.OpUpdate, id)
	return p, nil
}

func (s *AdminCatalogService) SetPromotionActive(ctx context.Context, id string, active bool) error {
	if err := s.content.SetPromotionActive(ctx, id, active); err != nil {
		return err
	}
	s.publish(ctx, realtime.TablePromotions, realtime.OpUpdate, id)
	return nil
}

func (s *AdminCatalogService) DeletePromotion(ctx context.Context, id string) error {
	if err := s.content.DeletePromotion(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.TablePromotions, realtime.OpDelete, id)
	return nil
}

// ----- banners -----

func (s *AdminCatalogService) ListBanners(ctx context.Context) ([]domain.Banner, error) {
	return s.content.ListBanners(ctx, false)
}

func (s *AdminCatalogService) CreateBanner(ctx context.Context, in domain.BannerInput) (*domain.Banner, error) {
	if in.Title == "" {
		return nil, domain.NewValidationError("admin.create_banner", "title", "This field is required")
	}
	b, err := s.content.CreateBanner(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableBanners, realtime.OpInsert, b.ID)
	return b, nil
}

func (s *AdminCatalogService) UpdateBanner(ctx context.Context, id string, in domain.BannerInput) (*domain.Banner, error) {
	b, err := s.content.UpdateBanner(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableBanners, realtime.OpUpdate, id)
	return b, nil
}

func (s *AdminCatalogService) SetBannerActive(ctx context.Context, id string, active bool) error {
	if err := s.content.SetBannerActive(ctx, id, active); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableBanners, realtime.OpUpdate, id)
	return nil
}

func (s *AdminCatalogService) DeleteBanner(ctx context.Context, id string) error {
	if err := s.content.DeleteBanner(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableBanners, realtime.OpDelete, id)
	return nil
}

// ----- events -----

func (s *AdminCatalogService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.content.ListEvents(ctx, false)
}

func (s *AdminCatalogService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	if in.Title == "" {
		return nil, domain.NewValidationError("admin.create_event", "title", "This field is required")
	}
	e, err := s.content.CreateEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableEvents, realtime.OpInsert, e.ID)
	return e, nil
}

func (s *AdminCatalogService) UpdateEvent(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	e, err := s.content.UpdateEvent(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableEvents, realtime.OpUpdate, id)
	return e, nil
}

func (s *AdminCatalogService) SetEventActive(ctx context.Context, id string, active bool) error {
	if err := s.content.SetEventActive(ctx, id, active); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableEvents, realtime.OpUpdate, id)
	return nil
}

func (s *AdminCatalogService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.content.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.TableEvents, realtime.OpDelete, id)
	return nil
}

// ----- settings -----

func (s *AdminCatalogService) GetSettings(ctx context.Context) (*domain.StoreSettings, error) {
	return s.settings.Get(ctx)
}

func (s *AdminCatalogService) UpdateSettings(ctx context.Context, in domain.StoreSettingsInput) (*domain.StoreSettings, error) {
	settings, err := s.settings.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableSettings, realtime.OpUpdate, settings.ID)
	return settings, nil
}
