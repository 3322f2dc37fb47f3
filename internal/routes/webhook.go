package routes

import (
	"github.com/lcastillo/botilleria/internal/router"
)

// RegisterWebhookRoutes registers payment processor callbacks. These verify
// their own signatures and must stay outside the CSRF and session chains.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/api/webhooks/stripe", deps.StripeHandler.HandleWebhook)
}
