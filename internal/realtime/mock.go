package realtime

import (
	"context"
	"sync"
)

// MockPublisher records published changes for tests.
type MockPublisher struct {
	mu      sync.Mutex
	changes []Change
	Err     error
}

func (m *MockPublisher) Publish(_ context.Context, change Change) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
	return nil
}

// Changes returns a copy of everything published so far.
func (m *MockPublisher) Changes() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Change, len(m.changes))
	copy(out, m.changes)
	return out
}
