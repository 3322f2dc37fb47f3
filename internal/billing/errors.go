package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAPIKey is returned when the processor API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrPaymentNotFound is returned when the payment does not exist.
	ErrPaymentNotFound = errors.New("billing: payment not found")

	// ErrInvalidWebhookSignature is returned when webhook signature verification fails.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrAmountTooSmall is returned when the amount is below the processor minimum.
	ErrAmountTooSmall = errors.New("billing: amount below processor minimum")
)

// CardError wraps a processor decline with the reason to show the customer.
type CardError struct {
	// Message is the processor's human-readable failure reason.
	Message string

	// Code is the processor error code (e.g. "card_declined").
	Code string

	// DeclineCode is the card network decline reason, if any.
	DeclineCode string

	// OriginalError is the underlying SDK error.
	OriginalError error
}

func (e *CardError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("billing: %s (code: %s)", e.Message, e.Code)
	}
	return fmt.Sprintf("billing: %s", e.Message)
}

func (e *CardError) Unwrap() error {
	return e.OriginalError
}

// IsCardError extracts a *CardError from err, if present.
func IsCardError(err error) (*CardError, bool) {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
