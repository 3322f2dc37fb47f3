package domain

// Cart domain errors.
var (
	ErrCartEmpty       = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// CartLine is one entry in the cart: a single product and its quantity.
// Identity is the product ID; a cart holds at most one line per product.
type CartLine struct {
	ProductID           string `json:"product_id"`
	Name                string `json:"name"`
	UnitPriceCents      int64  `json:"unit_price_cents"`
	WholesalePriceCents int64  `json:"wholesale_price_cents,omitempty"`
	WholesaleMinQty     int32  `json:"wholesale_min_qty,omitempty"`
	Quantity            int32  `json:"quantity"`
	ImageURL            string `json:"image_url,omitempty"`
}

// EffectiveUnitPriceCents returns the wholesale unit price when a wholesale
// tier is configured and the line quantity meets the threshold, otherwise the
// standard unit price. The threshold is evaluated per line; quantities are
// never aggregated across lines.
func (l CartLine) EffectiveUnitPriceCents() int64 {
	if l.WholesalePriceCents > 0 && l.WholesaleMinQty > 0 && l.Quantity >= l.WholesaleMinQty {
		return l.WholesalePriceCents
	}
	return l.UnitPriceCents
}

// SubtotalCents returns effective unit price times quantity.
func (l CartLine) SubtotalCents() int64 {
	return l.EffectiveUnitPriceCents() * int64(l.Quantity)
}

// CartSummary aggregates cart lines with calculated totals.
type CartSummary struct {
	Lines            []CartLine `json:"lines"`
	ItemCount        int32      `json:"item_count"`
	DistanceKm       float64    `json:"distance_km"`
	SubtotalCents    int64      `json:"subtotal_cents"`
	DeliveryFeeCents int64      `json:"delivery_fee_cents"`
	TotalCents       int64      `json:"total_cents"`
}
