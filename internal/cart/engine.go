// Package cart implements the storefront shopping cart: line-item state,
// tiered wholesale pricing, delivery-fee computation and persistence.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
)

// DefaultFreeDeliveryThresholdCents waives the delivery fee once the subtotal
// reaches 100 currency units.
const DefaultFreeDeliveryThresholdCents = 10000

// Engine is the authoritative cart state for one cart key. It is an explicit,
// injectable store: constructed once per cart, handed by reference to
// consumers, and the only writer of its own state. A mutex preserves the
// single-writer semantics when handlers run concurrently.
//
// Every mutation persists the full line set through the Store before
// returning. The delivery distance is a pricing input only and is not
// persisted.
type Engine struct {
	mu                 sync.Mutex
	key                string
	lines              []domain.CartLine
	distanceKm         float64
	store              Store
	quoter             delivery.Quoter
	freeThresholdCents int64
}

// NewEngine creates an engine for the given cart key. Call Hydrate before
// first use to load any persisted lines.
func NewEngine(key string, store Store, quoter delivery.Quoter, freeThresholdCents int64) *Engine {
	if freeThresholdCents <= 0 {
		freeThresholdCents = DefaultFreeDeliveryThresholdCents
	}
	return &Engine{
		key:                key,
		lines:              []domain.CartLine{},
		store:              store,
		quoter:             quoter,
		freeThresholdCents: freeThresholdCents,
	}
}

// Hydrate loads persisted lines for this cart. The Store contract guarantees
// missing or corrupt data yields an empty cart, so hydration only fails on
// backend errors (e.g. Redis unreachable).
func (e *Engine) Hydrate(ctx context.Context) error {
	lines, err := e.store.Load(ctx, e.key)
	if err != nil {
		return fmt.Errorf("failed to hydrate cart %s: %w", e.key, err)
	}

	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
	return nil
}

// AddItem adds one unit of the product. If a line for the product already
// exists its quantity is incremented; otherwise a new line is appended with
// quantity 1, copying name, prices, wholesale tier and image from the
// product. Stock is enforced upstream by catalog display, not here.
func (e *Engine) AddItem(ctx context.Context, p domain.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := false
	for i := range e.lines {
		if e.lines[i].ProductID == p.ID {
			e.lines[i].Quantity++
			found = true
			break
		}
	}

	if !found {
		e.lines = append(e.lines, domain.CartLine{
			ProductID:           p.ID,
			Name:                p.Name,
			UnitPriceCents:      p.PriceCents,
			WholesalePriceCents: p.WholesalePriceCents,
			WholesaleMinQty:     p.WholesaleMinQty,
			Quantity:            1,
			ImageURL:            p.ImageURL,
		})
	}

	return e.persist(ctx)
}

// RemoveItem deletes the line for the product if present. An unknown product
// ID is a silent no-op: the storefront favors robustness over strictness for
// cart mutations.
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(productID)
	return e.persist(ctx)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes
// the line, matching RemoveItem. No upper bound is enforced. Unknown product
// IDs are silently ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.removeLocked(productID)
		return e.persist(ctx)
	}

	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			e.lines[i].Quantity = quantity
			break
		}
	}

	return e.persist(ctx)
}

// Clear empties the cart and persists the empty line set.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = []domain.CartLine{}
	return e.persist(ctx)
}

// SetDistance sets the delivery distance used for fee computation. Negative
// distances are clamped to zero (no fee until a real distance is known).
func (e *Engine) SetDistance(km float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if km < 0 {
		km = 0
	}
	e.distanceKm = km
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Empty reports whether the cart has no lines.
func (e *Engine) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines) == 0
}

// Summary computes the derived totals:
//
//	subtotal    = Σ effective unit price × quantity (per-line wholesale rule)
//	delivery    = 0 when subtotal ≥ free threshold, else quoted from distance
//	total       = subtotal + delivery
func (e *Engine) Summary() domain.CartSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)

	var subtotal int64
	var count int32
	for _, l := range lines {
		subtotal += l.SubtotalCents()
		count += l.Quantity
	}

	var fee int64
	if subtotal < e.freeThresholdCents {
		fee = e.quoter.Quote(e.distanceKm)
	}

	return domain.CartSummary{
		Lines:            lines,
		ItemCount:        count,
		DistanceKm:       e.distanceKm,
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
		TotalCents:       subtotal + fee,
	}
}

func (e *Engine) removeLocked(productID string) {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

// persist writes the current line set. Callers must hold e.mu.
func (e *Engine) persist(ctx context.Context) error {
	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)

	if err := e.store.Save(ctx, e.key, lines); err != nil {
		return fmt.Errorf("failed to persist cart %s: %w", e.key, err)
	}
	return nil
}
