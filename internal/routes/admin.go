package routes

import (
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/router"
)

// RegisterAdminRoutes registers the admin API. Every route requires an
// authenticated session with the admin role.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.RequireAdmin)

	// Dashboard
	admin.Get("/api/admin/dashboard", deps.OrdersHandler.Dashboard)

	// Product management
	admin.Get("/api/admin/products", deps.CatalogHandler.ListProducts)
	admin.Post("/api/admin/products", deps.CatalogHandler.CreateProduct)
	admin.Get("/api/admin/products/{id}", deps.CatalogHandler.GetProduct)
	admin.Put("/api/admin/products/{id}", deps.CatalogHandler.UpdateProduct)
	admin.Patch("/api/admin/products/{id}/active", deps.CatalogHandler.SetProductActive)
	admin.Delete("/api/admin/products/{id}", deps.CatalogHandler.DeleteProduct)

	// Promotion management
	admin.Get("/api/admin/promotions", deps.CatalogHandler.ListPromotions)
	admin.Post("/api/admin/promotions", deps.CatalogHandler.CreatePromotion)
	admin.Put("/api/admin/promotions/{id}", deps.CatalogHandler.UpdatePromotion)
	admin.Patch("/api/admin/promotions/{id}/active", deps.CatalogHandler.SetPromotionActive)
	admin.Delete("/api/admin/promotions/{id}", deps.CatalogHandler.DeletePromotion)

	// Banner management
	admin.Get("/api/admin/banners", deps.CatalogHandler.ListBanners)
	admin.Post("/api/admin/banners", deps.CatalogHandler.CreateBanner)
	admin.Put("/api/admin/banners/{id}", deps.CatalogHandler.UpdateBanner)
	admin.Patch("/api/admin/banners/{id}/active", deps.CatalogHandler.SetBannerActive)
	admin.Delete("/api/admin/banners/{id}", deps.CatalogHandler.DeleteBanner)

	// Event management
	admin.Get("/api/admin/events", deps.CatalogHandler.ListEvents)
	admin.Post("/api/admin/events", deps.CatalogHandler.CreateEvent)
	admin.Put("/api/admin/events/{id}", deps.CatalogHandler.UpdateEvent)
	admin.Patch("/api/admin/events/{id}/active", deps.CatalogHandler.SetEventActive)
	admin.Delete("/api/admin/events/{id}", deps.CatalogHandler.DeleteEvent)

	// Store settings
	admin.Get("/api/admin/settings", deps.SettingsHandler.Get)
	admin.Put("/api/admin/settings", deps.SettingsHandler.Update)

	// Orders
	admin.Get("/api/admin/orders", deps.OrdersHandler.List)
	admin.Get("/api/admin/orders/{id}", deps.OrdersHandler.Get)
	admin.Patch("/api/admin/orders/{id}/status", deps.OrdersHandler.UpdateStatus)

	// Image uploads
	admin.Post("/api/admin/images", deps.ImagesHandler.Upload)
	admin.Delete("/api/admin/images/{name}", deps.ImagesHandler.Delete)

	// Contact inbox
	admin.Get("/api/admin/messages", deps.MessagesHandler.List)
	admin.Post("/api/admin/messages/{id}/read", deps.MessagesHandler.MarkRead)
	admin.Delete("/api/admin/messages/{id}", deps.MessagesHandler.Delete)
}
