package routes

import (
	"github.com/lcastillo/botilleria/internal/handler/admin"
	"github.com/lcastillo/botilleria/internal/handler/storefront"
	"github.com/lcastillo/botilleria/internal/handler/webhook"
	"github.com/lcastillo/botilleria/internal/middleware"
)

// StorefrontDeps contains dependencies for the public storefront API.
type StorefrontDeps struct {
	CatalogHandler  *storefront.CatalogHandler
	CartHandler     *storefront.CartHandler
	CheckoutHandler *storefront.CheckoutHandler
	AuthHandler     *storefront.AuthHandler
	ContactHandler  *storefront.ContactHandler

	// AuthRateLimit guards credential endpoints against brute force.
	AuthRateLimit *middleware.RateLimiter
}

// AdminDeps contains dependencies for the admin API.
type AdminDeps struct {
	CatalogHandler  *admin.CatalogHandler
	SettingsHandler *admin.SettingsHandler
	OrdersHandler   *admin.OrdersHandler
	MessagesHandler *admin.MessagesHandler
	ImagesHandler   *admin.ImagesHandler
}

// WebhookDeps contains dependencies for processor callbacks.
type WebhookDeps struct {
	StripeHandler *webhook.StripeHandler
}
