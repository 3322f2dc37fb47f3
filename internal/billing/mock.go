package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider implements Provider for tests. It records authorized payments
// and can be configured to decline.
type MockProvider struct {
	mu sync.Mutex

	// DeclineWith, when set, is returned from AuthorizePayment.
	DeclineWith error

	// Authorized holds every successful authorization, keyed by payment ID.
	Authorized map[string]*Payment

	// ByIdempotencyKey maps idempotency keys to payment IDs so retried
	// authorizations return the original payment.
	ByIdempotencyKey map[string]string

	calls int
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Authorized:       make(map[string]*Payment),
		ByIdempotencyKey: make(map[string]string),
	}
}

// AuthorizePayment implements Provider.
func (m *MockProvider) AuthorizePayment(_ context.Context, params AuthorizePaymentParams) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.DeclineWith != nil {
		return nil, m.DeclineWith
	}

	if id, ok := m.ByIdempotencyKey[params.IdempotencyKey]; ok {
		return m.Authorized[id], nil
	}

	p := &Payment{
		ID:          fmt.Sprintf("pi_mock_%d", m.calls),
		Status:      PaymentStatusSucceeded,
		AmountCents: params.AmountCents,
		Currency:    params.Currency,
	}
	m.Authorized[p.ID] = p
	if params.IdempotencyKey != "" {
		m.ByIdempotencyKey[params.IdempotencyKey] = p.ID
	}
	return p, nil
}

// GetPayment implements Provider.
func (m *MockProvider) GetPayment(_ context.Context, paymentID string) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Authorized[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// RefundPayment implements Provider.
func (m *MockProvider) RefundPayment(_ context.Context, params RefundParams) (*Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Authorized[params.PaymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}

	amount := params.AmountCents
	if amount == 0 {
		amount = p.AmountCents
	}
	return &Refund{
		ID:          "re_mock_" + params.PaymentID,
		PaymentID:   params.PaymentID,
		AmountCents: amount,
		Status:      "succeeded",
	}, nil
}

// VerifyWebhookSignature implements Provider. Always succeeds.
func (m *MockProvider) VerifyWebhookSignature([]byte, string, string) error {
	return nil
}

// AuthorizeCalls returns how many times AuthorizePayment was invoked.
func (m *MockProvider) AuthorizeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
