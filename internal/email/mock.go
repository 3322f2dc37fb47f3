package email

import (
	"context"
	"sync"
)

// MockSender records sent emails for tests.
type MockSender struct {
	mu   sync.Mutex
	sent []*Email
	Err  error
}

func (m *MockSender) Send(_ context.Context, e *Email) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return "mock-message-id", nil
}

// Sent returns everything sent so far.
func (m *MockSender) Sent() []*Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Email, len(m.sent))
	copy(out, m.sent)
	return out
}
