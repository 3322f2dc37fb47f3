// Package billing abstracts the card payment processor used at checkout.
package billing

import "context"

// Provider defines the interface for payment processing.
// The storefront tokenizes card details client-side into a payment-method
// handle; the checkout flow authorizes the charge synchronously with it.
type Provider interface {
	// AuthorizePayment creates and confirms a charge for the given
	// payment-method handle. Declines are returned as *CardError so the
	// checkout flow can surface the processor's reason and let the
	// customer retry.
	AuthorizePayment(ctx context.Context, params AuthorizePaymentParams) (*Payment, error)

	// GetPayment retrieves an existing payment by processor ID.
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)

	// RefundPayment refunds a completed payment (admin cancellations).
	RefundPayment(ctx context.Context, params RefundParams) (*Refund, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// Payment statuses normalized across providers.
const (
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusRequiresAction = "requires_action"
	PaymentStatusCanceled       = "canceled"
	PaymentStatusFailed         = "failed"
)

// AuthorizePaymentParams contains parameters for authorizing a charge.
type AuthorizePaymentParams struct {
	// AmountCents is the amount in the smallest currency unit.
	AmountCents int64

	// Currency code (ISO 4217), e.g. "clp".
	Currency string

	// PaymentMethodID is the client-side tokenized card handle.
	PaymentMethodID string

	// CustomerEmail prefills the receipt email.
	CustomerEmail string

	// IdempotencyKey guards against double charges on retried requests.
	IdempotencyKey string

	// Metadata is attached to the charge for reconciliation.
	Metadata map[string]string
}

// Payment is a normalized view of a processor charge.
type Payment struct {
	ID           string
	Status       string
	AmountCents  int64
	Currency     string
	ClientSecret string
}

// Succeeded reports whether the charge was authorized.
func (p *Payment) Succeeded() bool {
	return p != nil && p.Status == PaymentStatusSucceeded
}

// RefundParams contains parameters for refunding a payment.
type RefundParams struct {
	PaymentID   string
	AmountCents int64 // 0 refunds the full amount
	Reason      string
}

// Refund is a normalized view of a processor refund.
type Refund struct {
	ID          string
	PaymentID   string
	AmountCents int64
	Status      string
}
