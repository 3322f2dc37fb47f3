package storefront

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/service"
)

type mockProductStore struct {
	products map[string]domain.Product
}

func (m *mockProductStore) List(context.Context, bool) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductStore) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductStore) Create(context.Context, domain.ProductInput) (*domain.Product, error) {
	return nil, nil
}

func (m *mockProductStore) Update(context.Context, string, domain.ProductInput) (*domain.Product, error) {
	return nil, nil
}

func (m *mockProductStore) SetActive(context.Context, string, bool) error { return nil }
func (m *mockProductStore) Delete(context.Context, string) error          { return nil }

type nilContentStore struct{}

func (nilContentStore) ListPromotions(context.Context, bool) ([]domain.Promotion, error) {
	return nil, nil
}

func (nilContentStore) CreatePromotion(context.Context, domain.PromotionInput) (*domain.Promotion, error) {
	return nil, nil
}

func (nilContentStore) UpdatePromotion(context.Context, string, domain.PromotionInput) (*domain.Promotion, error) {
	return nil, nil
}

func (nilContentStore) SetPromotionActive(context.Context, string, bool) error { return nil }
func (nilContentStore) DeletePromotion(context.Context, string) error          { return nil }

func (nilContentStore) ListBanners(context.Context, bool) ([]domain.Banner, error) { return nil, nil }

func (nilContentStore) CreateBanner(context.Context, domain.BannerInput) (*domain.Banner, error) {
	return nil, nil
}

func (nilContentStore) UpdateBanner(context.Context, string, domain.BannerInput) (*domain.Banner, error) {
	return nil, nil
}

func (nilContentStore) SetBannerActive(context.Context, string, bool) error { return nil }
func (nilContentStore) DeleteBanner(context.Context, string) error          { return nil }

func (nilContentStore) ListEvents(context.Context, bool) ([]domain.Event, error) { return nil, nil }

func (nilContentStore) CreateEvent(context.Context, domain.EventInput) (*domain.Event, error) {
	return nil, nil
}

func (nilContentStore) UpdateEvent(context.Context, string, domain.EventInput) (*domain.Event, error) {
	return nil, nil
}

func (nilContentStore) SetEventActive(context.Context, string, bool) error { return nil }
func (nilContentStore) DeleteEvent(context.Context, string) error          { return nil }

type nilSettingsStore struct{}

func (nilSettingsStore) Get(context.Context) (*domain.StoreSettings, error) {
	return nil, domain.ErrSettingsNotFound
}

func (nilSettingsStore) Update(context.Context, domain.StoreSettingsInput) (*domain.StoreSettings, error) {
	return nil, nil
}

func testCartMux(t *testing.T, products map[string]domain.Product) *http.ServeMux {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	catalog := service.NewCatalogService(&mockProductStore{products: products}, nilContentStore{}, nilSettingsStore{}, logger)
	carts := cart.NewManager(cart.NewMemoryStore(), &delivery.MockQuoter{FeeCents: 1500}, 10000)
	h := NewCartHandler(carts, catalog, cookie.NewConfig(false), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", h.Get)
	mux.HandleFunc("POST /api/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{product_id}", h.UpdateQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{product_id}", h.RemoveItem)
	mux.HandleFunc("POST /api/cart/distance", h.SetDistance)
	mux.HandleFunc("DELETE /api/cart", h.Clear)
	return mux
}

func testProducts() map[string]domain.Product {
	return map[string]domain.Product{
		"p1": {
			ID:                  "p1",
			Name:                "Pisco Reservado",
			PriceCents:          790,
			WholesalePriceCents: 650,
			WholesaleMinQty:     6,
			Active:              true,
		},
		"p2": {
			ID:         "p2",
			Name:       "Discontinued Lager",
			PriceCents: 300,
			Active:     false,
		},
	}
}

func decodeSummary(t *testing.T, body string) domain.CartSummary {
	t.Helper()
	var s domain.CartSummary
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	return s
}

// cartCookie extracts the cart cookie from a response, if set.
func cartCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.CartCookieName {
			return c
		}
	}
	return nil
}

func TestCartGet_NoCookieReturnsEmptyCart(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	summary := decodeSummary(t, rec.Body.String())
	if len(summary.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(summary.Lines))
	}
	if c := cartCookie(rec); c != nil {
		t.Error("plain cart read must not mint a cart cookie")
	}
}

func TestCartAddItem_CreatesCartAndCookie(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	c := cartCookie(rec)
	if c == nil || c.Value == "" {
		t.Fatal("expected cart cookie to be set")
	}

	summary := decodeSummary(t, rec.Body.String())
	if len(summary.Lines) != 1 || summary.Lines[0].ProductID != "p1" {
		t.Fatalf("unexpected lines: %+v", summary.Lines)
	}
	if summary.Lines[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", summary.Lines[0].Quantity)
	}
	if summary.SubtotalCents != 790 {
		t.Errorf("subtotal = %d, want 790", summary.SubtotalCents)
	}
	// Below the free-delivery threshold, the quoted fee applies.
	if summary.DeliveryFeeCents != 1500 {
		t.Errorf("delivery fee = %d, want 1500", summary.DeliveryFeeCents)
	}
}

func TestCartAddItem_UnknownProduct(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCartAddItem_InactiveProduct(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCartUpdateQuantity_WholesaleTierApplies(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	c := cartCookie(rec)
	if c == nil {
		t.Fatal("expected cart cookie")
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/cart/items/p1", strings.NewReader(`{"quantity":6}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	summary := decodeSummary(t, rec.Body.String())
	// 6 × 650 wholesale, not 6 × 790 retail.
	if summary.SubtotalCents != 3900 {
		t.Errorf("subtotal = %d, want 3900", summary.SubtotalCents)
	}
}

func TestCartRemoveItem_UnknownProductIsNoOp(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	c := cartCookie(rec)

	req = httptest.NewRequest(http.MethodDelete, "/api/cart/items/ghost", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	summary := decodeSummary(t, rec.Body.String())
	if len(summary.Lines) != 1 {
		t.Errorf("lines = %d, want 1", len(summary.Lines))
	}
}

func TestCartSetDistance_AffectsFee(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	c := cartCookie(rec)

	req = httptest.NewRequest(http.MethodPost, "/api/cart/distance", strings.NewReader(`{"distance_km":7.5}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	summary := decodeSummary(t, rec.Body.String())
	if summary.DistanceKm != 7.5 {
		t.Errorf("distance = %v, want 7.5", summary.DistanceKm)
	}
}

func TestCartClear_DropsCartAndCookie(t *testing.T) {
	mux := testCartMux(t, testProducts())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	c := cartCookie(rec)

	req = httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	cleared := cartCookie(rec)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected cart cookie to be cleared")
	}
}
