package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterRoutesByMethod(t *testing.T) {
	r := New()
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusCreated},
		{http.MethodDelete, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/products", nil))
		if w.Code != tt.want {
			t.Errorf("%s /api/products = %d, want %d", tt.method, w.Code, tt.want)
		}
	}
}

func TestRouterPathValue(t *testing.T) {
	r := New()
	var got string
	r.Get("/api/products/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = req.PathValue("id")
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/prod-7", nil))
	if got != "prod-7" {
		t.Errorf("PathValue(id) = %q, want %q", got, "prod-7")
	}
}

func tagMiddleware(order *[]string, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name+":in")
			next.ServeHTTP(w, r)
			*order = append(*order, name+":out")
		})
	}
}

func TestRouterMiddlewareOrder(t *testing.T) {
	var order []string

	r := New(tagMiddleware(&order, "global"))
	r.Get("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}, tagMiddleware(&order, "route"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	want := []string{"global:in", "route:in", "handler", "route:out", "global:out"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRouterGroupExtendsChain(t *testing.T) {
	var order []string

	r := New(tagMiddleware(&order, "global"))
	admin := r.Group(tagMiddleware(&order, "admin"))
	admin.Get("/api/admin/orders", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	if len(order) != 4 || order[1] != "admin:in" {
		t.Errorf("admin route order = %v, want global then admin", order)
	}

	order = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	for _, o := range order {
		if o == "admin:in" {
			t.Error("group middleware leaked onto parent route")
		}
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := New(CORS([]string{"https://shop.example.com"}))
	r.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}

	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for unknown origin", got)
	}
}
