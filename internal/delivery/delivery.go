// Package delivery computes delivery fees for storefront orders.
//
// The storefront charges a flat per-kilometer rate below the free-delivery
// threshold; the threshold itself is applied by the cart engine, which only
// asks a Quoter for the distance-based fee.
package delivery

// Quoter calculates the delivery fee in cents for a given distance.
type Quoter interface {
	Quote(distanceKm float64) int64
}
