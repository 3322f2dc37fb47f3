package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
)

func testProduct(id string) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       "Pisco 35°",
		PriceCents: 3300,
		ImageURL:   "/img/pisco.jpg",
	}
}

func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	e := NewEngine("test-cart", store, delivery.NewPerKmQuoter(200), DefaultFreeDeliveryThresholdCents)
	require.NoError(t, e.Hydrate(context.Background()))
	return e
}

func TestEngine_AddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, NewMemoryStore())

	require.NoError(t, e.AddItem(ctx, testProduct("p1")))
	require.NoError(t, e.AddItem(ctx, testProduct("p1")))

	lines := e.Lines()
	require.Len(t, lines, 1, "same product added twice must merge into one line")
	assert.Equal(t, int32(2), lines[0].Quantity)
}

func TestEngine_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, NewMemoryStore())

	require.NoError(t, e.AddItem(ctx, testProduct("a")))
	require.NoError(t, e.AddItem(ctx, testProduct("b")))
	require.NoError(t, e.AddItem(ctx, testProduct("c")))
	require.NoError(t, e.AddItem(ctx, testProduct("b")))

	lines := e.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].ProductID)
	assert.Equal(t, "b", lines[1].ProductID)
	assert.Equal(t, "c", lines[2].ProductID)
}

func TestEngine_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	removed := newTestEngine(t, NewMemoryStore())
	require.NoError(t, removed.AddItem(ctx, testProduct("p1")))
	require.NoError(t, removed.RemoveItem(ctx, "p1"))

	updated := newTestEngine(t, NewMemoryStore())
	require.NoError(t, updated.AddItem(ctx, testProduct("p1")))
	require.NoError(t, updated.UpdateQuantity(ctx, "p1", 0))

	assert.Equal(t, removed.Lines(), updated.Lines())
	assert.True(t, updated.Empty())
}

func TestEngine_UnknownIDIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, NewMemoryStore())
	require.NoError(t, e.AddItem(ctx, testProduct("p1")))

	assert.NoError(t, e.RemoveItem(ctx, "ghost"))
	assert.NoError(t, e.UpdateQuantity(ctx, "ghost", 5))

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int32(1), lines[0].Quantity)
}

func TestEngine_PersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	e := newTestEngine(t, store)
	require.NoError(t, e.AddItem(ctx, testProduct("p1")))

	// Simulated reload: a fresh engine hydrates from the same store.
	reloaded := newTestEngine(t, store)
	lines := reloaded.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, int32(1), lines[0].Quantity)
}

func TestEngine_SummaryDeliveryFee(t *testing.T) {
	// cart = [{price 33.00, qty 1}], distance 10km
	// subtotal 33.00 < 100.00 => fee = 10 × 2.00 = 20.00, total 53.00
	ctx := context.Background()
	e := newTestEngine(t, NewMemoryStore())

	require.NoError(t, e.AddItem(ctx, testProduct("p4")))
	e.SetDistance(10)

	s := e.Summary()
	assert.Equal(t, int64(3300), s.SubtotalCents)
	assert.Equal(t, int64(2000), s.DeliveryFeeCents)
	assert.Equal(t, int64(5300), s.TotalCents)
}

func TestEngine_SummaryWholesaleThreshold(t *testing.T) {
	ctx := context.Background()

	p := testProduct("p4")
	p.WholesalePriceCents = 2700
	p.WholesaleMinQty = 12

	t.Run("below threshold keeps standard price", func(t *testing.T) {
		e := newTestEngine(t, NewMemoryStore())
		require.NoError(t, e.AddItem(ctx, p))
		require.NoError(t, e.UpdateQuantity(ctx, p.ID, 4))

		s := e.Summary()
		assert.Equal(t, int64(4*3300), s.SubtotalCents)
	})

	t.Run("at threshold applies wholesale price and waives fee", func(t *testing.T) {
		e := newTestEngine(t, NewMemoryStore())
		require.NoError(t, e.AddItem(ctx, p))
		require.NoError(t, e.UpdateQuantity(ctx, p.ID, 12))
		e.SetDistance(10)

		s := e.Summary()
		assert.Equal(t, int64(12*2700), s.SubtotalCents)
		assert.Equal(t, int64(0), s.DeliveryFeeCents, "subtotal over 100.00 waives the delivery fee")
		assert.Equal(t, s.SubtotalCents, s.TotalCents)
	})

	t.Run("threshold is per line, not aggregated across lines", func(t *testing.T) {
		q := testProduct("p5")
		q.WholesalePriceCents = 2700
		q.WholesaleMinQty = 12

		e := newTestEngine(t, NewMemoryStore())
		require.NoError(t, e.AddItem(ctx, p))
		require.NoError(t, e.AddItem(ctx, q))
		require.NoError(t, e.UpdateQuantity(ctx, p.ID, 6))
		require.NoError(t, e.UpdateQuantity(ctx, q.ID, 6))

		// 12 units total, but neither line reaches the minimum on its own.
		s := e.Summary()
		assert.Equal(t, int64(12*3300), s.SubtotalCents)
	})
}

func TestEngine_SummaryDistanceDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, NewMemoryStore())
	require.NoError(t, e.AddItem(ctx, testProduct("p1")))

	s := e.Summary()
	assert.Equal(t, int64(0), s.DeliveryFeeCents, "no fee until a distance is set")
}

func TestEngine_ClearPersistsEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	e := newTestEngine(t, store)

	require.NoError(t, e.AddItem(ctx, testProduct("p1")))
	require.NoError(t, e.Clear(ctx))

	lines, err := store.Load(ctx, "test-cart")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestManager_ReturnsSameEnginePerKey(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), &delivery.MockQuoter{}, 0)

	a, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	other, err := m.Get(ctx, "s2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestManager_DropDeletesPersistedCart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, &delivery.MockQuoter{}, 0)

	e, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, e.AddItem(ctx, testProduct("p1")))

	require.NoError(t, m.Drop(ctx, "s1"))

	lines, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}
