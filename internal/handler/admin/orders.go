package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/service"
)

// OrdersHandler exposes the admin order views and the dashboard summary.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type orderView struct {
	ID               string             `json:"id"`
	Number           string             `json:"order_number"`
	Status           string             `json:"status"`
	Items            []domain.OrderItem `json:"items"`
	SubtotalCents    int64              `json:"subtotal_cents"`
	DeliveryFeeCents int64              `json:"delivery_fee_cents"`
	TotalCents       int64              `json:"total_cents"`
	CustomerName     string             `json:"customer_name"`
	CustomerEmail    string             `json:"customer_email"`
	CustomerPhone    string             `json:"customer_phone"`
	DeliveryAddress  string             `json:"delivery_address"`
	DistanceKm       float64            `json:"distance_km"`
	InvoiceType      string             `json:"invoice_type"`
	TaxID            string             `json:"tax_id,omitempty"`
	PaymentIntentID  string             `json:"payment_intent_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:               o.ID,
		Number:           o.Number,
		Status:           o.Status,
		Items:            o.Items,
		SubtotalCents:    o.SubtotalCents,
		DeliveryFeeCents: o.DeliveryFeeCents,
		TotalCents:       o.TotalCents,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CustomerPhone:    o.CustomerPhone,
		DeliveryAddress:  o.DeliveryAddress,
		DistanceKm:       o.DistanceKm,
		InvoiceType:      string(o.InvoiceType),
		TaxID:            o.TaxID,
		PaymentIntentID:  o.PaymentIntentID,
		CreatedAt:        o.CreatedAt,
	}
}

// List returns recent orders, newest first. Accepts an optional limit
// query parameter.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit int32
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("admin.orders.list", "limit must be a number"))
			return
		}
		limit = int32(n)
	}

	orders, err := h.orders.List(r.Context(), limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	handler.JSON(w, http.StatusOK, views)
}

// Get returns one order in full.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toOrderView(*order))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus advances the fulfillment status.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// Dashboard returns today's and the trailing 30 days' order counts and
// revenue.
func (h *OrdersHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Dashboard(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, stats)
}
