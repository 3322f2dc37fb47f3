package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// OrderService exposes the admin view of orders.
type OrderService struct {
	orders    OrderStore
	billing   billing.Provider
	publisher realtime.Publisher
	logger    *slog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(orders OrderStore, provider billing.Provider, publisher realtime.Publisher, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, billing: provider, publisher: publisher, logger: logger}
}

// List returns the most recent orders.
func (s *OrderService) List(ctx context.Context, limit int32) ([]domain.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.orders.List(ctx, limit)
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

var validStatuses = map[string]bool{
	domain.OrderStatusPaid:      true,
	domain.OrderStatusPreparing: true,
	domain.OrderStatusDelivered: true,
	domain.OrderStatusCancelled: true,
}

// UpdateStatus advances an order's fulfillment status. Cancelling a paid
// order triggers a best-effort refund of the original charge.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status string) error {
	if !validStatuses[status] {
		return ErrInvalidOrderStatus
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if status == domain.OrderStatusCancelled && order.Status != domain.OrderStatusCancelled &&
		order.PaymentIntentID != "" {
		if _, err := s.billing.RefundPayment(ctx, billing.RefundParams{
			PaymentID: order.PaymentIntentID,
			Reason:    "requested_by_customer",
		}); err != nil {
			s.logger.Error("refund failed for cancelled order",
				"order", order.Number, "payment_id", order.PaymentIntentID, "error", err)
		}
	}

	if err := s.publisher.Publish(ctx, realtime.Change{
		Table: realtime.TableOrders,
		Op:    realtime.OpUpdate,
		ID:    id,
	}); err != nil {
		s.logger.Warn("failed to publish order change", "order_id", id, "error", err)
	}
	return nil
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	OrdersToday       int64 `json:"orders_today"`
	RevenueTodayCents int64 `json:"revenue_today_cents"`
	Orders30d         int64 `json:"orders_30d"`
	Revenue30dCents   int64 `json:"revenue_30d_cents"`
}

// Dashboard aggregates order counts and revenue. Cancelled orders are
// excluded from both.
func (s *OrderService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	ordersToday, revenueToday, err := s.orders.CountSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	orders30d, revenue30d, err := s.orders.CountSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		OrdersToday:       ordersToday,
		RevenueTodayCents: revenueToday,
		Orders30d:         orders30d,
		Revenue30dCents:   revenue30d,
	}, nil
}
