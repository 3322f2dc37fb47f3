package domain

import "time"

// ErrSettingsNotFound is returned when the store settings row is missing.
var ErrSettingsNotFound = &Error{Code: ENOTFOUND, Message: "Store settings not found"}

// StoreSettings is the single-row store configuration managed from the admin
// dashboard. Delivery pricing knobs here override the configured defaults.
type StoreSettings struct {
	ID                         string
	StoreName                  string
	ContactPhone               string
	WhatsAppNumber             string
	Address                    string
	OpeningHours               string
	FreeDeliveryThresholdCents int64
	DeliveryPerKmCents         int64
	UpdatedAt                  time.Time
}

// StoreSettingsInput carries fields for settings updates.
type StoreSettingsInput struct {
	StoreName                  string
	ContactPhone               string
	WhatsAppNumber             string
	Address                    string
	OpeningHours               string
	FreeDeliveryThresholdCents int64
	DeliveryPerKmCents         int64
}
