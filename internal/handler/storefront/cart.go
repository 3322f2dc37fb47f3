package storefront

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/service"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// cartCookieMaxAge keeps the cart key alive as long as the persisted cart.
const cartCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

// CartHandler exposes the cart over HTTP. The cart key lives in a cookie;
// the first mutation mints the key, plain reads never do.
type CartHandler struct {
	carts   *cart.Manager
	catalog *service.CatalogService
	cookies *cookie.Config
	metrics *telemetry.BusinessMetrics
}

// NewCartHandler creates a cart handler.
func NewCartHandler(carts *cart.Manager, catalog *service.CatalogService, cookies *cookie.Config, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, cookies: cookies, metrics: metrics}
}

// cartKey returns the cart key from the request cookie, minting and setting
// one when create is true.
func (h *CartHandler) cartKey(w http.ResponseWriter, r *http.Request, create bool) (string, error) {
	if key := cookie.Get(r, cookie.CartCookieName); key != "" {
		return key, nil
	}
	if !create {
		return "", nil
	}

	key, err := service.GenerateSessionToken()
	if err != nil {
		return "", domain.Internal(err, "cart.key", "failed to generate cart key")
	}
	h.cookies.SetSession(w, cookie.CartCookieName, key, cartCookieMaxAge)
	return key, nil
}

func (h *CartHandler) engine(w http.ResponseWriter, r *http.Request, create bool) (*cart.Engine, error) {
	key, err := h.cartKey(w, r, create)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}
	return h.carts.Get(r.Context(), key)
}

// Get returns the cart summary. A visitor without a cart cookie gets an
// empty summary; no cart is created.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(w, r, false)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.get", "failed to load cart"))
		return
	}
	if engine == nil {
		handler.JSON(w, http.StatusOK, domain.CartSummary{Lines: []domain.CartLine{}})
		return
	}
	handler.JSON(w, http.StatusOK, engine.Summary())
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

// AddItem adds one unit of a product to the cart, creating the cart on
// first use. The product must exist and be active.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if req.ProductID == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("cart.add_item", "product_id", "This field is required"))
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if !product.Active {
		handler.ErrorResponse(w, r, domain.ErrProductInactive)
		return
	}

	engine, err := h.engine(w, r, true)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.add_item", "failed to load cart"))
		return
	}

	if err := engine.AddItem(r.Context(), *product); err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.add_item", "failed to update cart"))
		return
	}

	if h.metrics != nil {
		h.metrics.CartItemsAdded.WithLabelValues(product.ID).Inc()
	}
	handler.JSON(w, http.StatusOK, engine.Summary())
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	engine, err := h.engine(w, r, false)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.update_quantity", "failed to load cart"))
		return
	}
	if engine == nil {
		handler.JSON(w, http.StatusOK, domain.CartSummary{Lines: []domain.CartLine{}})
		return
	}

	if err := engine.UpdateQuantity(r.Context(), r.PathValue("product_id"), req.Quantity); err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.update_quantity", "failed to update cart"))
		return
	}
	handler.JSON(w, http.StatusOK, engine.Summary())
}

// RemoveItem deletes a line. Removing a product that is not in the cart is
// a no-op that still returns the current summary.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engine(w, r, false)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.remove_item", "failed to load cart"))
		return
	}
	if engine == nil {
		handler.JSON(w, http.StatusOK, domain.CartSummary{Lines: []domain.CartLine{}})
		return
	}

	if err := engine.RemoveItem(r.Context(), r.PathValue("product_id")); err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.remove_item", "failed to update cart"))
		return
	}
	handler.JSON(w, http.StatusOK, engine.Summary())
}

type setDistanceRequest struct {
	DistanceKm float64 `json:"distance_km"`
}

// SetDistance sets the delivery distance used for the fee quote.
func (h *CartHandler) SetDistance(w http.ResponseWriter, r *http.Request) {
	var req setDistanceRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	engine, err := h.engine(w, r, true)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.set_distance", "failed to load cart"))
		return
	}

	engine.SetDistance(req.DistanceKm)
	handler.JSON(w, http.StatusOK, engine.Summary())
}

// Clear empties and forgets the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	key := cookie.Get(r, cookie.CartCookieName)
	if key == "" {
		handler.NoContent(w)
		return
	}

	if err := h.carts.Drop(r.Context(), key); err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "cart.clear", "failed to clear cart"))
		return
	}

	if h.metrics != nil {
		h.metrics.CartCleared.Inc()
	}
	h.cookies.ClearSession(w, cookie.CartCookieName)
	handler.NoContent(w)
}
