package cart

import (
	"context"
	"testing"
	"time"

	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/domain"
)

func testManager() *Manager {
	return NewManager(NewMemoryStore(), &delivery.MockQuoter{FeeCents: 500}, 10000)
}

func TestManagerGet_ReusesEngine(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	a, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Error("expected the same engine for one key")
	}
}

func TestManagerPruneIdle_EvictsAndRehydrates(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	e, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := e.AddItem(ctx, domain.Product{ID: "p1", Name: "Pisco Reservado", PriceCents: 790}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	time.Sleep(time.Millisecond)
	if n := m.PruneIdle(0); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}

	// Eviction only forgets the in-memory engine; the persisted cart
	// comes back on the next Get.
	again, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get after prune: %v", err)
	}
	if again == e {
		t.Error("expected a fresh engine after eviction")
	}
	lines := again.Lines()
	if len(lines) != 1 || lines[0].ProductID != "p1" {
		t.Fatalf("unexpected lines after rehydration: %+v", lines)
	}
}

func TestManagerPruneIdle_KeepsRecentEngines(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	e, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if n := m.PruneIdle(time.Hour); n != 0 {
		t.Fatalf("evicted = %d, want 0", n)
	}
	same, err := m.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if same != e {
		t.Error("recently used engine must survive pruning")
	}
}
