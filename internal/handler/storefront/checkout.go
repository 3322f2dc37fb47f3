package storefront

import (
	"net/http"
	"sync"
	"time"

	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/service"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// checkoutTTL bounds how long an unfinished checkout is kept. Abandoned
// checkouts past this age are dropped; the cart itself is untouched.
const checkoutTTL = 2 * time.Hour

type activeCheckout struct {
	checkout *service.Checkout
	touched  time.Time
}

// CheckoutHandler drives the checkout flow over HTTP. One checkout exists
// per cart key at a time; starting a new checkout replaces an unfinished one.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	carts    *cart.Manager
	cookies  *cookie.Config
	metrics  *telemetry.BusinessMetrics

	mu     sync.Mutex
	active map[string]*activeCheckout
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService, carts *cart.Manager, cookies *cookie.Config, metrics *telemetry.BusinessMetrics) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		cookies:  cookies,
		metrics:  metrics,
		active:   make(map[string]*activeCheckout),
	}
}

type orderView struct {
	ID               string            `json:"id"`
	Number           string            `json:"order_number"`
	Status           string            `json:"status"`
	Items            []domain.OrderItem `json:"items"`
	SubtotalCents    int64             `json:"subtotal_cents"`
	DeliveryFeeCents int64             `json:"delivery_fee_cents"`
	TotalCents       int64             `json:"total_cents"`
	CustomerName     string            `json:"customer_name"`
	DeliveryAddress  string            `json:"delivery_address"`
	InvoiceType      string            `json:"invoice_type"`
	CreatedAt        time.Time         `json:"created_at"`
}

func toOrderView(o *domain.Order) *orderView {
	if o == nil {
		return nil
	}
	return &orderView{
		ID:               o.ID,
		Number:           o.Number,
		Status:           o.Status,
		Items:            o.Items,
		SubtotalCents:    o.SubtotalCents,
		DeliveryFeeCents: o.DeliveryFeeCents,
		TotalCents:       o.TotalCents,
		CustomerName:     o.CustomerName,
		DeliveryAddress:  o.DeliveryAddress,
		InvoiceType:      string(o.InvoiceType),
		CreatedAt:        o.CreatedAt,
	}
}

type checkoutView struct {
	State         service.CheckoutState `json:"state"`
	DeclineReason string                `json:"decline_reason,omitempty"`
	Summary       *domain.CartSummary   `json:"summary,omitempty"`
	Order         *orderView            `json:"order,omitempty"`
}

func (h *CheckoutHandler) view(c *service.Checkout, summary *domain.CartSummary) checkoutView {
	return checkoutView{
		State:         c.State(),
		DeclineReason: c.DeclineReason(),
		Summary:       summary,
		Order:         toOrderView(c.Order()),
	}
}

func (h *CheckoutHandler) current(r *http.Request) (*service.Checkout, string) {
	key := cookie.Get(r, cookie.CartCookieName)
	if key == "" {
		return nil, ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.active[key]
	if !ok {
		return nil, key
	}
	if time.Since(entry.touched) > checkoutTTL {
		delete(h.active, key)
		return nil, key
	}
	entry.touched = time.Now()
	return entry.checkout, key
}

// pruneLocked drops checkouts idle past checkoutTTL. Callers hold h.mu.
func (h *CheckoutHandler) pruneLocked(now time.Time) {
	for key, entry := range h.active {
		if now.Sub(entry.touched) > checkoutTTL {
			delete(h.active, key)
		}
	}
}

// Begin starts a checkout over the current cart. An empty or missing cart
// is rejected before any state is created.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	key := cookie.Get(r, cookie.CartCookieName)
	if key == "" {
		handler.ErrorResponse(w, r, service.ErrCheckoutEmptyCart)
		return
	}

	engine, err := h.carts.Get(r.Context(), key)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "checkout.begin", "failed to load cart"))
		return
	}

	checkout, err := h.checkout.Begin(engine)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	now := time.Now()
	h.mu.Lock()
	h.pruneLocked(now)
	h.active[key] = &activeCheckout{checkout: checkout, touched: now}
	h.mu.Unlock()

	summary := engine.Summary()
	if h.metrics != nil {
		h.metrics.CheckoutStarted.Inc()
		h.metrics.CartValue.Observe(float64(summary.TotalCents))
	}
	handler.JSON(w, http.StatusCreated, h.view(checkout, &summary))
}

// Get returns the state of the current checkout.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	checkout, key := h.current(r)
	if checkout == nil {
		handler.ErrorResponse(w, r, domain.NotFound("checkout.get", "checkout", key))
		return
	}

	engine, err := h.carts.Get(r.Context(), key)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "checkout.get", "failed to load cart"))
		return
	}
	summary := engine.Summary()
	handler.JSON(w, http.StatusOK, h.view(checkout, &summary))
}

// Proceed moves the checkout from reviewing to entering details. Leaving
// review requires a signed-in customer; anonymous carts are refused here so
// the client can redirect to sign-in before details are collected.
func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserFromContext(r.Context()) == nil {
		handler.ErrorResponse(w, r, domain.Unauthorized("checkout.proceed", "Sign in to continue with checkout"))
		return
	}

	checkout, key := h.current(r)
	if checkout == nil {
		handler.ErrorResponse(w, r, domain.NotFound("checkout.proceed", "checkout", key))
		return
	}

	if err := h.checkout.Proceed(checkout); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, h.view(checkout, nil))
}

// SubmitDetails validates and stores the customer's contact and invoice
// details.
func (h *CheckoutHandler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	checkout, key := h.current(r)
	if checkout == nil {
		handler.ErrorResponse(w, r, domain.NotFound("checkout.details", "checkout", key))
		return
	}

	var details service.CustomerDetails
	if err := handler.Decode(r, &details); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.checkout.SubmitDetails(checkout, details); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, h.view(checkout, nil))
}

type payRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

// Pay authorizes the card and confirms the order. A declined card returns
// 402 with the processor's reason; the checkout stays open for a retry.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	checkout, key := h.current(r)
	if checkout == nil {
		handler.ErrorResponse(w, r, domain.NotFound("checkout.pay", "checkout", key))
		return
	}

	var req payRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if req.PaymentMethodID == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("checkout.pay", "payment_method_id", "This field is required"))
		return
	}

	if h.metrics != nil {
		h.metrics.PaymentAttempts.Inc()
	}

	order, err := h.checkout.Pay(r.Context(), checkout, req.PaymentMethodID)
	if err != nil {
		if h.metrics != nil && domain.IsCode(err, domain.EPAYMENT) {
			h.metrics.PaymentDeclined.WithLabelValues(domain.ErrorCode(err)).Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	h.mu.Lock()
	delete(h.active, key)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.CheckoutCompleted.Inc()
		h.metrics.OrdersCreated.WithLabelValues(string(order.InvoiceType)).Inc()
		h.metrics.OrderValue.Observe(float64(order.TotalCents))
		h.metrics.OrderItemCount.Observe(float64(len(order.Items)))
	}
	handler.JSON(w, http.StatusOK, checkoutView{
		State: service.StateConfirmed,
		Order: toOrderView(order),
	})
}
