package cart

import (
	"context"
	"sync"

	"github.com/lcastillo/botilleria/internal/domain"
)

// Store persists cart lines keyed by cart ID. The cart is written after every
// mutation and hydrated once at engine creation.
//
// Contract: Load returns an empty slice (not an error) when no cart exists or
// the persisted data is unreadable; a cart must never fail to hydrate.
type Store interface {
	Load(ctx context.Context, key string) ([]domain.CartLine, error)
	Save(ctx context.Context, key string, lines []domain.CartLine) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps carts in process memory. Used in tests and as a fallback
// when no durable backend is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartLine
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartLine)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, ok := s.carts[key]
	if !ok {
		return []domain.CartLine{}, nil
	}

	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]domain.CartLine, len(lines))
	copy(stored, lines)
	s.carts[key] = stored
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, key)
	return nil
}
