package domain

import "time"

// Content domain errors.
var (
	ErrPromotionNotFound = &Error{Code: ENOTFOUND, Message: "Promotion not found"}
	ErrBannerNotFound    = &Error{Code: ENOTFOUND, Message: "Banner not found"}
	ErrEventNotFound     = &Error{Code: ENOTFOUND, Message: "Event not found"}
)

// Promotion is a managed storefront promotion card.
type Promotion struct {
	ID           string
	Title        string
	Description  string
	ImageURL     string
	PriceCents   int64
	Active       bool
	DisplayOrder int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Banner is a rotating hero image with an optional link target.
type Banner struct {
	ID           string
	Title        string
	ImageURL     string
	LinkURL      string
	Active       bool
	DisplayOrder int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event is a dated store event (tastings, launches) shown on the storefront.
type Event struct {
	ID           string
	Title        string
	Description  string
	ImageURL     string
	StartsAt     time.Time
	EndsAt       time.Time
	Active       bool
	DisplayOrder int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PromotionInput carries fields for promotion create/update operations.
type PromotionInput struct {
	Title        string
	Description  string
	ImageURL     string
	PriceCents   int64
	Active       bool
	DisplayOrder int32
}

// BannerInput carries fields for banner create/update operations.
type BannerInput struct {
	Title        string
	ImageURL     string
	LinkURL      string
	Active       bool
	DisplayOrder int32
}

// EventInput carries fields for event create/update operations.
type EventInput struct {
	Title        string
	Description  string
	ImageURL     string
	StartsAt     time.Time
	EndsAt       time.Time
	Active       bool
	DisplayOrder int32
}
