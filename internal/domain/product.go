package domain

import "time"

// Product domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrProductInactive = &Error{Code: ENOTFOUND, Message: "Product is not available"}
)

// Product represents a catalog item. Prices are integer cents.
// A wholesale tier exists only when both WholesalePriceCents and
// WholesaleMinQty are set (> 0).
type Product struct {
	ID                  string
	Name                string
	Description         string
	Category            string
	PriceCents          int64
	WholesalePriceCents int64
	WholesaleMinQty     int32
	Stock               int32
	ImageURL            string
	Active              bool
	DisplayOrder        int32
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasWholesaleTier reports whether a wholesale tier is configured.
func (p Product) HasWholesaleTier() bool {
	return p.WholesalePriceCents > 0 && p.WholesaleMinQty > 0
}

// ProductInput carries fields for product create/update operations.
type ProductInput struct {
	Name                string
	Description         string
	Category            string
	PriceCents          int64
	WholesalePriceCents int64
	WholesaleMinQty     int32
	Stock               int32
	ImageURL            string
	Active              bool
	DisplayOrder        int32
}
