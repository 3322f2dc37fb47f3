package routes

import (
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/router"
)

// RegisterStorefrontRoutes registers the customer-facing JSON API.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Catalog reads
	r.Get("/api/products", deps.CatalogHandler.Products)
	r.Get("/api/products/{id}", deps.CatalogHandler.Product)
	r.Get("/api/promotions", deps.CatalogHandler.Promotions)
	r.Get("/api/banners", deps.CatalogHandler.Banners)
	r.Get("/api/events", deps.CatalogHandler.Events)
	r.Get("/api/settings", deps.CatalogHandler.Settings)

	// Cart
	r.Get("/api/cart", deps.CartHandler.Get)
	r.Delete("/api/cart", deps.CartHandler.Clear)
	r.Post("/api/cart/items", deps.CartHandler.AddItem)
	r.Patch("/api/cart/items/{product_id}", deps.CartHandler.UpdateQuantity)
	r.Delete("/api/cart/items/{product_id}", deps.CartHandler.RemoveItem)
	r.Post("/api/cart/distance", deps.CartHandler.SetDistance)

	// Checkout flow
	r.Post("/api/checkout", deps.CheckoutHandler.Begin)
	r.Get("/api/checkout", deps.CheckoutHandler.Get)
	r.Post("/api/checkout/proceed", deps.CheckoutHandler.Proceed)
	r.Post("/api/checkout/details", deps.CheckoutHandler.SubmitDetails)
	r.Post("/api/checkout/pay", deps.CheckoutHandler.Pay)

	// Auth: credential endpoints carry a stricter rate limit.
	var authLimit []router.Middleware
	if deps.AuthRateLimit != nil {
		authLimit = append(authLimit, deps.AuthRateLimit.Middleware)
	}
	r.Post("/api/auth/signup", deps.AuthHandler.SignUp, authLimit...)
	r.Post("/api/auth/signin", deps.AuthHandler.SignIn, authLimit...)
	r.Post("/api/auth/signout", deps.AuthHandler.SignOut)
	r.Get("/api/auth/me", deps.AuthHandler.Me, middleware.RequireAuth)
	r.Get("/api/auth/oauth/google", deps.AuthHandler.OAuthStart)
	r.Get("/api/auth/oauth/google/callback", deps.AuthHandler.OAuthCallback)

	// Contact
	r.Post("/api/contact", deps.ContactHandler.Submit)
	r.Get("/api/contact/whatsapp", deps.ContactHandler.WhatsApp)
}
