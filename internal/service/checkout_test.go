package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/email"
	"github.com/lcastillo/botilleria/internal/realtime"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockOrderStore implements OrderStore for testing. failuresLeft lets tests
// simulate transient write errors; the idempotency key map mirrors the
// ON CONFLICT behavior of the real store.
type mockOrderStore struct {
	mu           sync.Mutex
	failuresLeft int
	createCalls  int
	seq          int
	byKey        map[string]*domain.Order
	byID         map[string]*domain.Order
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		byKey: make(map[string]*domain.Order),
		byID:  make(map[string]*domain.Order),
	}
}

func (m *mockOrderStore) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.failuresLeft > 0 {
		m.failuresLeft--
		return nil, errors.New("connection reset")
	}

	if existing, ok := m.byKey[o.IdempotencyKey]; ok {
		return existing, nil
	}

	m.seq++
	o.ID = fmt.Sprintf("ord_%d", m.seq)
	o.CreatedAt = time.Now().UTC()
	m.byKey[o.IdempotencyKey] = &o
	m.byID[o.ID] = &o
	return &o, nil
}

func (m *mockOrderStore) Get(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.byID[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderStore) List(_ context.Context, _ int32) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderStore) UpdateStatus(_ context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderStore) NextOrderNumber(_ context.Context) (string, error) {
	return "BOT-000042", nil
}

func (m *mockOrderStore) CountSince(_ context.Context, _ time.Time) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count, revenue int64
	for _, o := range m.byID {
		if o.Status != domain.OrderStatusCancelled {
			count++
			revenue += o.TotalCents
		}
	}
	return count, revenue, nil
}

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testProduct(id string, priceCents int64) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       "Pisco " + id,
		PriceCents: priceCents,
		Active:     true,
	}
}

func testEngine(t *testing.T) *cart.Engine {
	t.Helper()
	return cart.NewEngine("session-1", cart.NewMemoryStore(), &delivery.MockQuoter{FeeCents: 1500}, 10000)
}

func validDetails() CustomerDetails {
	return CustomerDetails{
		Name:        "Luisa Castillo",
		Email:       "luisa@example.com",
		Phone:       "+56911112222",
		Address:     "Av. Italia 1234, Santiago",
		InvoiceType: "boleta",
	}
}

func newCheckoutService(orders OrderStore, provider billing.Provider, sender *email.MockSender, pub *realtime.MockPublisher) *CheckoutService {
	mailer := email.NewService(sender, "store@test.local", "Test Store")
	return NewCheckoutService(orders, provider, mailer, pub, testLogger())
}

// ============================================================================
// Tests
// ============================================================================

func TestBegin_EmptyCart(t *testing.T) {
	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})

	_, err := svc.Begin(testEngine(t))
	assert.ErrorIs(t, err, ErrCheckoutEmptyCart)
}

func TestCheckout_HappyPath(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))
	require.NoError(t, engine.AddItem(ctx, testProduct("p2", 3490)))
	engine.SetDistance(4)

	orders := newMockOrderStore()
	provider := billing.NewMockProvider()
	sender := &email.MockSender{}
	pub := &realtime.MockPublisher{}
	svc := newCheckoutService(orders, provider, sender, pub)

	co, err := svc.Begin(engine)
	require.NoError(t, err)
	assert.Equal(t, StateReviewing, co.State())

	require.NoError(t, svc.Proceed(co))
	assert.Equal(t, StateEnteringDetails, co.State())

	require.NoError(t, svc.SubmitDetails(co, validDetails()))
	assert.Equal(t, StateAwaitingPayment, co.State())

	order, err := svc.Pay(ctx, co, "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, co.State())
	assert.True(t, co.State().Terminal())

	assert.Equal(t, "BOT-000042", order.Number)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(9480), order.SubtotalCents)
	assert.Equal(t, int64(1500), order.DeliveryFeeCents)
	assert.Equal(t, int64(10980), order.TotalCents)
	assert.Len(t, order.Items, 2)

	// cart is cleared after confirmation
	assert.True(t, engine.Empty())

	// confirmation email went out
	require.Len(t, sender.Sent(), 1)
	assert.Contains(t, sender.Sent()[0].Subject, order.Number)

	// order change published
	changes := pub.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, realtime.TableOrders, changes[0].Table)
	assert.Equal(t, realtime.OpInsert, changes[0].Op)
}

func TestSubmitDetails_Validation(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})
	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))

	details := validDetails()
	details.Email = "not-an-email"
	err = svc.SubmitDetails(co, details)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, domain.GetValidationFields(err), "email")

	// checkout stays where it was
	assert.Equal(t, StateEnteringDetails, co.State())
}

func TestSubmitDetails_FacturaRequiresTaxID(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})
	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))

	details := validDetails()
	details.InvoiceType = "factura"
	err = svc.SubmitDetails(co, details)
	require.Error(t, err)
	assert.Contains(t, domain.GetValidationFields(err), "taxid")

	details.TaxID = "76.123.456-7"
	require.NoError(t, svc.SubmitDetails(co, details))
	assert.Equal(t, StateAwaitingPayment, co.State())
}

func TestPay_DeclineReturnsToDetails(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	orders := newMockOrderStore()
	provider := billing.NewMockProvider()
	provider.DeclineWith = &billing.CardError{Message: "Your card was declined", Code: "card_declined"}
	svc := newCheckoutService(orders, provider, &email.MockSender{}, &realtime.MockPublisher{})

	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))
	require.NoError(t, svc.SubmitDetails(co, validDetails()))

	_, err = svc.Pay(ctx, co, "pm_card_declined")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EPAYMENT))

	assert.Equal(t, StateEnteringDetails, co.State())
	assert.Equal(t, "Your card was declined", co.DeclineReason())
	assert.Equal(t, 0, orders.createCalls)
	assert.False(t, engine.Empty())

	// retry succeeds after resubmitting details
	provider.DeclineWith = nil
	require.NoError(t, svc.SubmitDetails(co, validDetails()))
	order, err := svc.Pay(ctx, co, "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, co.State())
	assert.NotEmpty(t, order.ID)
}

func TestPay_OrderWriteRetriesWithSameKey(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	orders := newMockOrderStore()
	orders.failuresLeft = 2
	provider := billing.NewMockProvider()
	svc := newCheckoutService(orders, provider, &email.MockSender{}, &realtime.MockPublisher{})

	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))
	require.NoError(t, svc.SubmitDetails(co, validDetails()))

	order, err := svc.Pay(ctx, co, "pm_card_visa")
	require.NoError(t, err)

	// the charge ran exactly once; the write was retried until it stuck
	assert.Equal(t, 1, provider.AuthorizeCalls())
	assert.Equal(t, 3, orders.createCalls)
	assert.Equal(t, "order:"+order.PaymentIntentID, order.IdempotencyKey)
}

func TestPay_WriteExhaustionSurfacesError(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	orders := newMockOrderStore()
	orders.failuresLeft = 10
	svc := newCheckoutService(orders, billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})

	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))
	require.NoError(t, svc.SubmitDetails(co, validDetails()))

	_, err = svc.Pay(ctx, co, "pm_card_visa")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
	assert.Equal(t, 3, orders.createCalls)
}

func TestPay_WrongState(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})
	co, err := svc.Begin(engine)
	require.NoError(t, err)

	_, err = svc.Pay(ctx, co, "pm_card_visa")
	assert.ErrorIs(t, err, ErrCheckoutBadState)

	// skipping SubmitDetails is also rejected
	require.NoError(t, svc.Proceed(co))
	_, err = svc.Pay(ctx, co, "pm_card_visa")
	assert.ErrorIs(t, err, ErrCheckoutBadState)
}

func TestPay_ConfirmedIsTerminal(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), &email.MockSender{}, &realtime.MockPublisher{})
	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))
	require.NoError(t, svc.SubmitDetails(co, validDetails()))

	_, err = svc.Pay(ctx, co, "pm_card_visa")
	require.NoError(t, err)

	_, err = svc.Pay(ctx, co, "pm_card_visa")
	assert.ErrorIs(t, err, ErrCheckoutConfirmed)

	assert.Error(t, svc.Proceed(co))
	assert.Error(t, svc.SubmitDetails(co, validDetails()))
}

func TestCheckout_EmailFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)
	require.NoError(t, engine.AddItem(ctx, testProduct("p1", 5990)))

	sender := &email.MockSender{Err: errors.New("smtp unreachable")}
	svc := newCheckoutService(newMockOrderStore(), billing.NewMockProvider(), sender, &realtime.MockPublisher{})

	co, err := svc.Begin(engine)
	require.NoError(t, err)
	require.NoError(t, svc.Proceed(co))
	require.NoError(t, svc.SubmitDetails(co, validDetails()))

	order, err := svc.Pay(ctx, co, "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, co.State())
	assert.NotNil(t, order)
}
