package delivery

// MockQuoter returns a fixed fee regardless of distance. For tests.
type MockQuoter struct {
	FeeCents int64
	Calls    int
	LastKm   float64
}

// Quote implements Quoter.
func (m *MockQuoter) Quote(distanceKm float64) int64 {
	m.Calls++
	m.LastKm = distanceKm
	return m.FeeCents
}
