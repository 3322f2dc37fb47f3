package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/email"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// Checkout states. The flow only ever moves forward, except that a declined
// payment returns to EnteringDetails so the customer can retry.
type CheckoutState string

const (
	StateReviewing       CheckoutState = "reviewing"
	StateEnteringDetails CheckoutState = "entering_details"
	StateAwaitingPayment CheckoutState = "awaiting_payment"
	StateConfirmed       CheckoutState = "confirmed"
)

// Terminal reports whether no further transitions are possible.
func (s CheckoutState) Terminal() bool {
	return s == StateConfirmed
}

// CustomerDetails is what the customer fills in before paying.
type CustomerDetails struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address" validate:"required"`
	InvoiceType string `json:"invoice_type" validate:"required,oneof=boleta factura"`
	TaxID       string `json:"tax_id" validate:"required_if=InvoiceType factura"`
}

// Checkout tracks one customer's progress through the payment flow.
type Checkout struct {
	mu            sync.Mutex
	state         CheckoutState
	engine        *cart.Engine
	details       CustomerDetails
	attemptKey    string
	declineReason string
	order         *domain.Order
}

// State returns the current state.
func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DeclineReason returns the processor's reason after a declined payment.
func (c *Checkout) DeclineReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.declineReason
}

// Order returns the persisted order once the checkout is confirmed.
func (c *Checkout) Order() *domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

// CheckoutService drives the checkout state machine.
type CheckoutService struct {
	orders    OrderStore
	billing   billing.Provider
	email     *email.Service
	publisher realtime.Publisher
	validate  *validator.Validate
	logger    *slog.Logger

	// maximum attempts to persist the order after a successful charge
	maxWriteAttempts int
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(orders OrderStore, provider billing.Provider, mailer *email.Service, publisher realtime.Publisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		orders:           orders,
		billing:          provider,
		email:            mailer,
		publisher:        publisher,
		validate:         validator.New(),
		logger:           logger,
		maxWriteAttempts: 3,
	}
}

// Begin starts a checkout over the given cart. An empty cart short-circuits
// with an error and no checkout is created.
func (s *CheckoutService) Begin(engine *cart.Engine) (*Checkout, error) {
	if engine.Empty() {
		return nil, ErrCheckoutEmptyCart
	}
	return &Checkout{state: StateReviewing, engine: engine}, nil
}

// Proceed moves the checkout from reviewing to entering details.
func (s *CheckoutService) Proceed(c *Checkout) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReviewing {
		return ErrCheckoutBadState
	}
	c.state = StateEnteringDetails
	return nil
}

// SubmitDetails validates the customer's contact and invoice details and
// moves the checkout to awaiting payment. A retry after a decline resubmits
// through here as well.
func (s *CheckoutService) SubmitDetails(c *Checkout, details CustomerDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEnteringDetails {
		return ErrCheckoutBadState
	}

	if err := s.validate.Struct(details); err != nil {
		return validationError("checkout.submit_details", err)
	}
	if !domain.InvoiceType(details.InvoiceType).Valid() {
		return ErrInvalidInvoiceType
	}

	c.details = details
	c.declineReason = ""
	c.attemptKey = uuid.NewString()
	c.state = StateAwaitingPayment
	return nil
}

// Pay authorizes the charge and, on success, persists the order exactly once.
//
// The idempotency key for the order write is derived from the payment id, so
// a failed write is retried with the same key and can neither duplicate the
// order nor charge the card again. A card decline moves the checkout back to
// entering details with the processor's reason attached.
func (s *CheckoutService) Pay(ctx context.Context, c *Checkout, paymentMethodID string) (*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConfirmed {
		return nil, ErrCheckoutConfirmed
	}
	if c.state != StateAwaitingPayment {
		return nil, ErrCheckoutBadState
	}

	summary := c.engine.Summary()
	if len(summary.Lines) == 0 {
		return nil, ErrCheckoutEmptyCart
	}

	payment, err := s.billing.AuthorizePayment(ctx, billing.AuthorizePaymentParams{
		AmountCents:     summary.TotalCents,
		Currency:        "clp",
		PaymentMethodID: paymentMethodID,
		CustomerEmail:   c.details.Email,
		IdempotencyKey:  c.attemptKey,
		Metadata: map[string]string{
			"customer_name": c.details.Name,
			"invoice_type":  c.details.InvoiceType,
		},
	})
	if err != nil {
		var cardErr *billing.CardError
		if errors.As(err, &cardErr) {
			c.state = StateEnteringDetails
			c.declineReason = cardErr.Message
			return nil, domain.PaymentFailed("checkout.pay", cardErr.Message)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, "checkout.pay", "Payment processing failed")
	}
	if !payment.Succeeded() {
		c.state = StateEnteringDetails
		c.declineReason = "Payment was not completed"
		return nil, domain.PaymentFailed("checkout.pay", "Payment was not completed")
	}

	order, err := s.persistOrder(ctx, c, summary, payment)
	if err != nil {
		// The card was charged but the order could not be written even
		// after retries. Surface the payment id so staff can reconcile.
		s.logger.Error("order write failed after successful charge",
			"payment_id", payment.ID, "error", err)
		return nil, domain.WrapError(err, domain.EINTERNAL, "checkout.pay",
			"Your payment went through but the order could not be recorded; please contact the store")
	}

	if err := c.engine.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear cart after checkout", "order", order.Number, "error", err)
	}

	c.order = order
	c.state = StateConfirmed

	s.afterConfirm(ctx, order)
	return order, nil
}

// persistOrder writes the order with bounded retries, reusing the same
// idempotency key on every attempt.
func (s *CheckoutService) persistOrder(ctx context.Context, c *Checkout, summary domain.CartSummary, payment *billing.Payment) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, domain.OrderItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			UnitPriceCents: line.EffectiveUnitPriceCents(),
			Quantity:       line.Quantity,
		})
	}

	order := domain.Order{
		Status:           domain.OrderStatusPaid,
		Items:            items,
		SubtotalCents:    summary.SubtotalCents,
		DeliveryFeeCents: summary.DeliveryFeeCents,
		TotalCents:       summary.TotalCents,
		CustomerName:     c.details.Name,
		CustomerEmail:    c.details.Email,
		CustomerPhone:    c.details.Phone,
		DeliveryAddress:  c.details.Address,
		DistanceKm:       summary.DistanceKm,
		InvoiceType:      domain.InvoiceType(c.details.InvoiceType),
		TaxID:            c.details.TaxID,
		PaymentIntentID:  payment.ID,
		IdempotencyKey:   "order:" + payment.ID,
	}

	number, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}
	order.Number = number

	// The same idempotency key goes out on every attempt, so a write that
	// succeeded but timed out is deduplicated by the store.
	var created *domain.Order
	backoff := retry.WithMaxRetries(uint64(s.maxWriteAttempts-1), retry.NewConstant(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		o, err := s.orders.Create(ctx, order)
		if err != nil {
			s.logger.Warn("order write attempt failed",
				"idempotency_key", order.IdempotencyKey, "error", err)
			return retry.RetryableError(err)
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// afterConfirm runs the best-effort side effects of a confirmed order.
// Failures are logged and never surface to the customer.
func (s *CheckoutService) afterConfirm(ctx context.Context, order *domain.Order) {
	if s.email != nil {
		if err := s.email.SendOrderConfirmation(ctx, order); err != nil {
			s.logger.Warn("failed to send order confirmation email",
				"order", order.Number, "error", err)
		}
	}

	if err := s.publisher.Publish(ctx, realtime.Change{
		Table: realtime.TableOrders,
		Op:    realtime.OpInsert,
		ID:    order.ID,
	}); err != nil {
		s.logger.Warn("failed to publish order change", "order", order.Number, "error", err)
	}
}

// validationError converts validator output into the domain field-error shape.
func validationError(op string, err error) error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return domain.WrapError(err, domain.EINVALID, op, "Invalid input")
	}

	var out error
	for _, fe := range invalid {
		out = domain.AddFieldError(out, strings.ToLower(fe.Field()), validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_if":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "oneof":
		return "Must be one of: " + fe.Param()
	default:
		return "Invalid value"
	}
}
