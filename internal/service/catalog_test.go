package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// mockProductStore counts List calls so tests can observe cache behavior.
type mockProductStore struct {
	products  []domain.Product
	listCalls int
}

func (m *mockProductStore) List(_ context.Context, onlyActive bool) ([]domain.Product, error) {
	m.listCalls++
	if !onlyActive {
		return m.products, nil
	}
	var out []domain.Product
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductStore) Get(_ context.Context, id string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockProductStore) Create(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: "new", Name: in.Name, Active: in.Active}
	m.products = append(m.products, p)
	return &p, nil
}

func (m *mockProductStore) Update(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	return m.Get(context.Background(), id)
}

func (m *mockProductStore) SetActive(_ context.Context, id string, active bool) error { return nil }
func (m *mockProductStore) Delete(_ context.Context, id string) error                 { return nil }

// mockContentStore returns fixed content.
type mockContentStore struct {
	promotions []domain.Promotion
	banners    []domain.Banner
	events     []domain.Event
}

func (m *mockContentStore) ListPromotions(_ context.Context, _ bool) ([]domain.Promotion, error) {
	return m.promotions, nil
}
func (m *mockContentStore) CreatePromotion(_ context.Context, in domain.PromotionInput) (*domain.Promotion, error) {
	return &domain.Promotion{ID: "pr1", Title: in.Title}, nil
}
func (m *mockContentStore) UpdatePromotion(_ context.Context, id string, _ domain.PromotionInput) (*domain.Promotion, error) {
	return &domain.Promotion{ID: id}, nil
}
func (m *mockContentStore) SetPromotionActive(_ context.Context, _ string, _ bool) error { return nil }
func (m *mockContentStore) DeletePromotion(_ context.Context, _ string) error            { return nil }

func (m *mockContentStore) ListBanners(_ context.Context, _ bool) ([]domain.Banner, error) {
	return m.banners, nil
}
func (m *mockContentStore) CreateBanner(_ context.Context, in domain.BannerInput) (*domain.Banner, error) {
	return &domain.Banner{ID: "b1", Title: in.Title}, nil
}
func (m *mockContentStore) UpdateBanner(_ context.Context, id string, _ domain.BannerInput) (*domain.Banner, error) {
	return &domain.Banner{ID: id}, nil
}
func (m *mockContentStore) SetBannerActive(_ context.Context, _ string, _ bool) error { return nil }
func (m *mockContentStore) DeleteBanner(_ context.Context, _ string) error            { return nil }

func (m *mockContentStore) ListEvents(_ context.Context, _ bool) ([]domain.Event, error) {
	return m.events, nil
}
func (m *mockContentStore) CreateEvent(_ context.Context, in domain.EventInput) (*domain.Event, error) {
	return &domain.Event{ID: "e1", Title: in.Title}, nil
}
func (m *mockContentStore) UpdateEvent(_ context.Context, id string, _ domain.EventInput) (*domain.Event, error) {
	return &domain.Event{ID: id}, nil
}
func (m *mockContentStore) SetEventActive(_ context.Context, _ string, _ bool) error { return nil }
func (m *mockContentStore) DeleteEvent(_ context.Context, _ string) error            { return nil }

// mockSettingsStore holds one settings row.
type mockSettingsStore struct {
	settings *domain.StoreSettings
}

func (m *mockSettingsStore) Get(_ context.Context) (*domain.StoreSettings, error) {
	if m.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsStore) Update(_ context.Context, in domain.StoreSettingsInput) (*domain.StoreSettings, error) {
	m.settings = &domain.StoreSettings{ID: "s1", StoreName: in.StoreName}
	return m.settings, nil
}

func newTestCatalog(products *mockProductStore) *CatalogService {
	return NewCatalogService(products, &mockContentStore{}, &mockSettingsStore{}, testLogger())
}

func TestCatalog_ProductsCached(t *testing.T) {
	ctx := context.Background()
	store := &mockProductStore{products: []domain.Product{
		{ID: "p1", Name: "Vino tinto", Active: true},
		{ID: "p2", Name: "Descontinuado", Active: false},
	}}
	svc := newTestCatalog(store)

	first, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "p1", first[0].ID)

	// second read served from cache
	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}

func TestCatalog_InvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	store := &mockProductStore{products: []domain.Product{{ID: "p1", Active: true}}}
	svc := newTestCatalog(store)

	_, err := svc.Products(ctx)
	require.NoError(t, err)

	store.products = append(store.products, domain.Product{ID: "p2", Active: true})
	svc.Invalidate(realtime.TableProducts)

	refreshed, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
	assert.Equal(t, 2, store.listCalls)
}

func TestCatalog_SettingsMissingIsNil(t *testing.T) {
	svc := newTestCatalog(&mockProductStore{})

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
}
