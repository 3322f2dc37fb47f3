package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Cart activity
	CartItemsAdded *prometheus.CounterVec
	CartCleared    prometheus.Counter
	CartValue      prometheus.Histogram

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutCompleted prometheus.Counter
	PaymentAttempts   prometheus.Counter
	PaymentDeclined   *prometheus.CounterVec

	// Orders
	OrdersCreated  *prometheus.CounterVec
	OrderValue     prometheus.Histogram
	OrderItemCount prometheus.Histogram
	RefundsIssued  prometheus.Counter

	// Auth & accounts
	Signups     *prometheus.CounterVec
	Logins      *prometheus.CounterVec
	LoginFailed prometheus.Counter

	// Email delivery
	EmailSent   prometheus.Counter
	EmailFailed prometheus.Counter

	// Contact form
	MessagesReceived prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "botilleria"
	}

	subsystem := "business"

	return &BusinessMetrics{
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add-to-cart actions",
			},
			[]string{"product_id"},
		),
		CartCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts emptied by customers",
			},
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_cents",
				Help:      "Cart totals at checkout start, in cents",
				Buckets:   prometheus.ExponentialBuckets(1000, 2.5, 10),
			},
		),
		CheckoutStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Total checkouts begun",
			},
		),
		CheckoutCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total checkouts confirmed",
			},
		),
		PaymentAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_attempts_total",
				Help:      "Total payment authorization attempts",
			},
		),
		PaymentDeclined: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_declined_total",
				Help:      "Total declined payment attempts",
			},
			[]string{"code"},
		),
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders written",
			},
			[]string{"invoice_type"},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Order totals in cents",
				Buckets:   prometheus.ExponentialBuckets(1000, 2.5, 10),
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of lines per order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		RefundsIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "refunds_issued_total",
				Help:      "Total refunds issued for cancelled orders",
			},
		),
		Signups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "signups_total",
				Help:      "Total account registrations",
			},
			[]string{"method"}, // password, google
		),
		Logins: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Total successful sign-ins",
			},
			[]string{"method"},
		),
		LoginFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "login_failed_total",
				Help:      "Total rejected sign-in attempts",
			},
		),
		EmailSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "email_sent_total",
				Help:      "Total transactional emails sent",
			},
		),
		EmailFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "email_failed_total",
				Help:      "Total transactional email failures",
			},
		),
		MessagesReceived: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_received_total",
				Help:      "Total contact form submissions",
			},
		),
	}
}
