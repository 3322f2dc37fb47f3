package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// CatalogService serves the storefront read model: products, promotions,
// banners, events and store settings. Reads are cached in memory; a change
// notification for a table drops that table's cache so the next read hits
// the database. The re-fetched state is authoritative regardless of the
// order notifications arrived in.
type CatalogService struct {
	products ProductStore
	content  ContentStore
	settings SettingsStore
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]any
}

// NewCatalogService creates a catalog service.
func NewCatalogService(products ProductStore, content ContentStore, settings SettingsStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		content:  content,
		settings: settings,
		logger:   logger,
		cache:    make(map[string]any),
	}
}

// WatchChanges subscribes the catalog to change notifications for every
// cached table. Returns an unsubscribe function.
func (s *CatalogService) WatchChanges(sub realtime.Subscriber) (func(), error) {
	tables := []string{
		realtime.TableProducts,
		realtime.TablePromotions,
		realtime.TableBanners,
		realtime.TableEvents,
		realtime.TableSettings,
	}

	var cancels []func()
	for _, table := range tables {
		table := table
		cancel, err := sub.Subscribe(table, func(change realtime.Change) {
			s.Invalidate(table)
		})
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return nil, err
		}
		cancels = append(cancels, cancel)
	}

	return func() {
		for _, c := range cancels {
			c()
		}
	}, nil
}

// Invalidate drops the cached rows for one table.
func (s *CatalogService) Invalidate(table string) {
	s.mu.Lock()
	delete(s.cache, table)
	s.mu.Unlock()
	s.logger.Debug("catalog cache invalidated", "table", table)
}

func (s *CatalogService) cached(table string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[table]
	return v, ok
}

func (s *CatalogService) store(table string, v any) {
	s.mu.Lock()
	s.cache[table] = v
	s.mu.Unlock()
}

// Products returns the active products in display order.
func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	if v, ok := s.cached(realtime.TableProducts); ok {
		return v.([]domain.Product), nil
	}
	products, err := s.products.List(ctx, true)
	if err != nil {
		return nil, err
	}
	s.store(realtime.TableProducts, products)
	return products, nil
}

// Product returns one product by id, active or not. Used by the cart flow,
// which must resolve items already present in a persisted cart.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

// Promotions returns the active promotions in display order.
func (s *CatalogService) Promotions(ctx context.Context) ([]domain.Promotion, error) {
	if v, ok := s.cached(realtime.TablePromotions); ok {
		return v.([]domain.Promotion), nil
	}
	promotions, err := s.content.ListPromotions(ctx, true)
	if err != nil {
		return nil, err
	}
	s.store(realtime.TablePromotions, promotions)
	return promotions, nil
}

// Banners returns the active banners in display order.
func (s *CatalogService) Banners(ctx context.Context) ([]domain.Banner, error) {
	if v, ok := s.cached(realtime.TableBanners); ok {
		return v.([]domain.Banner), nil
	}
	banners, err := s.content.ListBanners(ctx, true)
	if err != nil {
		return nil, err
	}
	s.store(realtime.TableBanners, banners)
	return banners, nil
}

// Events returns the active events ordered by start time.
func (s *CatalogService) Events(ctx context.Context) ([]domain.Event, error) {
	if v, ok := s.cached(realtime.TableEvents); ok {
		return v.([]domain.Event), nil
	}
	events, err := s.content.ListEvents(ctx, true)
	if err != nil {
		return nil, err
	}
	s.store(realtime.TableEvents, events)
	return events, nil
}

// Settings returns the store settings, or nil when none are configured yet.
func (s *CatalogService) Settings(ctx context.Context) (*domain.StoreSettings, error) {
	if v, ok := s.cached(realtime.TableSettings); ok {
		return v.(*domain.StoreSettings), nil
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, nil
		}
		return nil, err
	}
	s.store(realtime.TableSettings, settings)
	return settings, nil
}
