package domain

import "time"

// Order domain errors.
var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}
)

// InvoiceType selects the fiscal document issued with an order.
type InvoiceType string

const (
	// InvoiceBoleta is a consumer receipt; no tax ID required.
	InvoiceBoleta InvoiceType = "boleta"

	// InvoiceFactura is a tax invoice; requires the customer's tax ID (RUT).
	InvoiceFactura InvoiceType = "factura"
)

// Valid reports whether the invoice type is one of the known values.
func (t InvoiceType) Valid() bool {
	return t == InvoiceBoleta || t == InvoiceFactura
}

// Order statuses. An order is written exactly once after payment authorization
// and is never mutated by the storefront afterward; admins may advance the
// fulfillment status.
const (
	OrderStatusPaid      = "paid"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is an immutable snapshot of one cart line at checkout time.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int32  `json:"quantity"`
}

// Order is the finalized record of a checkout. The idempotency key is derived
// from the payment authorization so a retried write can never duplicate the
// order or re-charge the card.
type Order struct {
	ID               string
	Number           string
	Status           string
	Items            []OrderItem
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	DeliveryAddress  string
	DistanceKm       float64
	InvoiceType      InvoiceType
	TaxID            string
	PaymentIntentID  string
	IdempotencyKey   string
	CreatedAt        time.Time
}
