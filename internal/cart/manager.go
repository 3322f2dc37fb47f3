package cart

import (
	"context"
	"sync"
	"time"

	"github.com/lcastillo/botilleria/internal/delivery"
)

// Manager hands out one Engine per cart key (one cart per session). Engines
// are created lazily and hydrated from the store exactly once.
type Manager struct {
	mu                 sync.Mutex
	engines            map[string]*managedEngine
	store              Store
	quoter             delivery.Quoter
	freeThresholdCents int64
}

type managedEngine struct {
	engine   *Engine
	lastUsed time.Time
}

// NewManager creates a cart manager backed by the given store and quoter.
func NewManager(store Store, quoter delivery.Quoter, freeThresholdCents int64) *Manager {
	return &Manager{
		engines:            make(map[string]*managedEngine),
		store:              store,
		quoter:             quoter,
		freeThresholdCents: freeThresholdCents,
	}
}

// Get returns the engine for the key, creating and hydrating it on first use.
func (m *Manager) Get(ctx context.Context, key string) (*Engine, error) {
	m.mu.Lock()
	if me, ok := m.engines[key]; ok {
		me.lastUsed = time.Now()
		m.mu.Unlock()
		return me.engine, nil
	}
	m.mu.Unlock()

	// Hydrate outside the manager lock; the store call may hit the network.
	e := NewEngine(key, m.store, m.quoter, m.freeThresholdCents)
	if err := e.Hydrate(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.engines[key]; ok {
		existing.lastUsed = time.Now()
		return existing.engine, nil
	}
	m.engines[key] = &managedEngine{engine: e, lastUsed: time.Now()}
	return e, nil
}

// PruneIdle forgets engines that have not been touched for maxIdle and
// returns how many were evicted. The persisted cart survives eviction, so a
// returning customer rehydrates from the store on the next Get.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, me := range m.engines {
		if now.Sub(me.lastUsed) > maxIdle {
			delete(m.engines, key)
			evicted++
		}
	}
	return evicted
}

// Drop forgets the in-memory engine and deletes the persisted cart.
func (m *Manager) Drop(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.engines, key)
	m.mu.Unlock()

	return m.store.Delete(ctx, key)
}
