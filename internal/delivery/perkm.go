package delivery

import "github.com/shopspring/decimal"

// DefaultRateCentsPerKm is the flat per-kilometer delivery rate
// (2 currency units per km).
const DefaultRateCentsPerKm = 200

// PerKmQuoter charges a flat rate per kilometer.
type PerKmQuoter struct {
	rateCentsPerKm int64
}

// NewPerKmQuoter creates a per-kilometer quoter. A non-positive rate falls
// back to the default.
func NewPerKmQuoter(rateCentsPerKm int64) *PerKmQuoter {
	if rateCentsPerKm <= 0 {
		rateCentsPerKm = DefaultRateCentsPerKm
	}
	return &PerKmQuoter{rateCentsPerKm: rateCentsPerKm}
}

// Quote returns distance × rate, rounded to the nearest cent.
// Negative distances are treated as zero.
func (q *PerKmQuoter) Quote(distanceKm float64) int64 {
	if distanceKm <= 0 {
		return 0
	}
	fee := decimal.NewFromFloat(distanceKm).Mul(decimal.NewFromInt(q.rateCentsPerKm))
	return fee.Round(0).IntPart()
}
