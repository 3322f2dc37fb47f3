package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig contains configuration for the Stripe provider.
type StripeConfig struct {
	// APIKey is the Stripe secret key (sk_test_... or sk_live_...).
	APIKey string

	// WebhookSecret is the webhook signing secret (whsec_...).
	WebhookSecret string

	// MaxRetries is the SDK retry count for transient failures. Default: 3.
	MaxRetries int
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidAPIKey
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return len(c.APIKey) > 7 && c.APIKey[:8] == "sk_test_"
}

// StripeProvider implements Provider using Stripe Payment Intents.
type StripeProvider struct {
	config StripeConfig
}

// Compile-time check that StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a Stripe billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	stripe.Key = config.APIKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(int64(config.MaxRetries)),
	}))

	return &StripeProvider{config: config}, nil
}

// AuthorizePayment creates and immediately confirms a payment intent with the
// tokenized payment method. The idempotency key makes the call safe to retry
// without double-charging.
func (s *StripeProvider) AuthorizePayment(ctx context.Context, params AuthorizePaymentParams) (*Payment, error) {
	piParams := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(params.IdempotencyKey),
		},
		Amount:        stripe.Int64(params.AmountCents),
		Currency:      stripe.String(params.Currency),
		PaymentMethod: stripe.String(params.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(params.CustomerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return convertPaymentIntent(pi), nil
}

// GetPayment retrieves an existing payment intent.
func (s *StripeProvider) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	pi, err := paymentintent.Get(paymentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, mapStripeError(err)
	}

	return convertPaymentIntent(pi), nil
}

// RefundPayment refunds a completed payment.
func (s *StripeProvider) RefundPayment(ctx context.Context, params RefundParams) (*Refund, error) {
	refundParams := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(params.PaymentID),
	}
	if params.AmountCents > 0 {
		refundParams.Amount = stripe.Int64(params.AmountCents)
	}

	r, err := refund.New(refundParams)
	if err != nil {
		return nil, mapStripeError(err)
	}

	return &Refund{
		ID:          r.ID,
		PaymentID:   params.PaymentID,
		AmountCents: r.Amount,
		Status:      string(r.Status),
	}, nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if secret == "" {
		secret = s.config.WebhookSecret
	}
	if _, err := webhook.ConstructEvent(payload, signature, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}
	return nil
}

// convertPaymentIntent normalizes a Stripe payment intent.
func convertPaymentIntent(pi *stripe.PaymentIntent) *Payment {
	status := PaymentStatusFailed
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = PaymentStatusSucceeded
	case stripe.PaymentIntentStatusRequiresAction:
		status = PaymentStatusRequiresAction
	case stripe.PaymentIntentStatusCanceled:
		status = PaymentStatusCanceled
	}

	return &Payment{
		ID:           pi.ID,
		Status:       status,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}
}

// mapStripeError converts SDK errors into the package taxonomy. Card declines
// become *CardError so the checkout flow can surface the reason.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}

	switch stripeErr.Code {
	case stripe.ErrorCodeAmountTooSmall:
		return fmt.Errorf("%w: %v", ErrAmountTooSmall, err)
	case stripe.ErrorCodeResourceMissing:
		return fmt.Errorf("%w: %v", ErrPaymentNotFound, err)
	}

	if stripeErr.Type == stripe.ErrorTypeCard || stripeErr.Code == stripe.ErrorCodeCardDeclined {
		return &CardError{
			Message:       stripeErr.Msg,
			Code:          string(stripeErr.Code),
			DeclineCode:   string(stripeErr.DeclineCode),
			OriginalError: err,
		}
	}

	return err
}
