package storefront

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/realtime"
	"github.com/lcastillo/botilleria/internal/service"
)

func testCheckoutHandler(t *testing.T) (*CheckoutHandler, *cart.Manager) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	carts := cart.NewManager(cart.NewMemoryStore(), &delivery.MockQuoter{FeeCents: 1500}, 10000)
	svc := service.NewCheckoutService(nil, billing.NewMockProvider(), nil, realtime.NoopPublisher{}, logger)
	return NewCheckoutHandler(svc, carts, cookie.NewConfig(false), nil), carts
}

func seedCart(t *testing.T, carts *cart.Manager, key string) {
	t.Helper()
	engine, err := carts.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("failed to load cart: %v", err)
	}
	p := domain.Product{ID: "p1", Name: "Pisco Reservado", PriceCents: 790, Active: true}
	if err := engine.AddItem(context.Background(), p); err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}
}

func checkoutRequest(method, target, key string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.AddCookie(&http.Cookie{Name: cookie.CartCookieName, Value: key})
	}
	return req
}

// signedIn attaches a session user the way the session middleware does.
func signedIn(req *http.Request) *http.Request {
	user := &domain.User{ID: "u1", Email: "cliente@example.com", Role: domain.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
}

func TestCheckoutProceed_RequiresSignIn(t *testing.T) {
	h, carts := testCheckoutHandler(t)
	seedCart(t, carts, "k1")

	rec := httptest.NewRecorder()
	h.Begin(rec, checkoutRequest(http.MethodPost, "/api/checkout", "k1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("begin status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Anonymous customers cannot leave review.
	rec = httptest.NewRecorder()
	h.Proceed(rec, checkoutRequest(http.MethodPost, "/api/checkout/proceed", "k1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous proceed status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Error.Code != domain.EUNAUTHORIZED {
		t.Errorf("error.code = %q, want %q", errResp.Error.Code, domain.EUNAUTHORIZED)
	}

	// The same checkout moves forward once the customer signs in.
	rec = httptest.NewRecorder()
	h.Proceed(rec, signedIn(checkoutRequest(http.MethodPost, "/api/checkout/proceed", "k1")))
	if rec.Code != http.StatusOK {
		t.Fatalf("signed-in proceed status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}
	if view.State != string(service.StateEnteringDetails) {
		t.Errorf("state = %q, want %q", view.State, service.StateEnteringDetails)
	}
}

func TestCheckoutBegin_DropsAbandonedCheckouts(t *testing.T) {
	h, carts := testCheckoutHandler(t)
	seedCart(t, carts, "old")
	seedCart(t, carts, "new")

	rec := httptest.NewRecorder()
	h.Begin(rec, checkoutRequest(http.MethodPost, "/api/checkout", "old"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("begin status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Age the first checkout past its lifetime.
	h.mu.Lock()
	h.active["old"].touched = time.Now().Add(-3 * time.Hour)
	h.mu.Unlock()

	rec = httptest.NewRecorder()
	h.Begin(rec, checkoutRequest(http.MethodPost, "/api/checkout", "new"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("begin status = %d, body = %s", rec.Code, rec.Body.String())
	}

	h.mu.Lock()
	_, stale := h.active["old"]
	h.mu.Unlock()
	if stale {
		t.Error("abandoned checkout should have been dropped")
	}

	rec = httptest.NewRecorder()
	h.Get(rec, checkoutRequest(http.MethodGet, "/api/checkout", "old"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCheckoutGet_ExpiredCheckoutIsGone(t *testing.T) {
	h, carts := testCheckoutHandler(t)
	seedCart(t, carts, "k1")

	rec := httptest.NewRecorder()
	h.Begin(rec, checkoutRequest(http.MethodPost, "/api/checkout", "k1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("begin status = %d, body = %s", rec.Code, rec.Body.String())
	}

	h.mu.Lock()
	h.active["k1"].touched = time.Now().Add(-3 * time.Hour)
	h.mu.Unlock()

	rec = httptest.NewRecorder()
	h.Get(rec, checkoutRequest(http.MethodGet, "/api/checkout", "k1"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
