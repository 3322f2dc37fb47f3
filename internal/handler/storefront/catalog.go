// Package storefront contains the public JSON API handlers: catalog reads,
// cart mutations, checkout, auth and the contact form.
package storefront

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/messaging"
	"github.com/lcastillo/botilleria/internal/service"
)

// CatalogHandler serves the storefront read model.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type productView struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	Category            string `json:"category,omitempty"`
	PriceCents          int64  `json:"price_cents"`
	WholesalePriceCents int64  `json:"wholesale_price_cents,omitempty"`
	WholesaleMinQty     int32  `json:"wholesale_min_qty,omitempty"`
	Stock               int32  `json:"stock"`
	ImageURL            string `json:"image_url,omitempty"`
	DisplayOrder        int32  `json:"display_order"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		Category:            p.Category,
		PriceCents:          p.PriceCents,
		WholesalePriceCents: p.WholesalePriceCents,
		WholesaleMinQty:     p.WholesaleMinQty,
		Stock:               p.Stock,
		ImageURL:            p.ImageURL,
		DisplayOrder:        p.DisplayOrder,
	}
}

type promotionView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	PriceCents   int64  `json:"price_cents,omitempty"`
	DisplayOrder int32  `json:"display_order"`
}

type bannerView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ImageURL     string `json:"image_url,omitempty"`
	LinkURL      string `json:"link_url,omitempty"`
	DisplayOrder int32  `json:"display_order"`
}

type eventView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	DisplayOrder int32     `json:"display_order"`
}

type settingsView struct {
	StoreName                  string `json:"store_name"`
	ContactPhone               string `json:"contact_phone,omitempty"`
	WhatsAppURL                string `json:"whatsapp_url,omitempty"`
	Address                    string `json:"address,omitempty"`
	OpeningHours               string `json:"opening_hours,omitempty"`
	FreeDeliveryThresholdCents int64  `json:"free_delivery_threshold_cents"`
	DeliveryPerKmCents         int64  `json:"delivery_per_km_cents"`
}

// Products lists the active products in display order.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	handler.JSON(w, http.StatusOK, views)
}

// Product returns one product. Inactive products are hidden from the
// storefront even when fetched by id.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if !p.Active {
		handler.ErrorResponse(w, r, domain.ErrProductInactive)
		return
	}
	handler.JSON(w, http.StatusOK, toProductView(*p))
}

// Promotions lists the active promotions.
func (h *CatalogHandler) Promotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.catalog.Promotions(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]promotionView, 0, len(promotions))
	for _, p := range promotions {
		views = append(views, promotionView{
			ID:           p.ID,
			Title:        p.Title,
			Description:  p.Description,
			ImageURL:     p.ImageURL,
			PriceCents:   p.PriceCents,
			DisplayOrder: p.DisplayOrder,
		})
	}
	handler.JSON(w, http.StatusOK, views)
}

// Banners lists the active hero banners.
func (h *CatalogHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalog.Banners(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]bannerView, 0, len(banners))
	for _, b := range banners {
		views = append(views, bannerView{
			ID:           b.ID,
			Title:        b.Title,
			ImageURL:     b.ImageURL,
			LinkURL:      b.LinkURL,
			DisplayOrder: b.DisplayOrder,
		})
	}
	handler.JSON(w, http.StatusOK, views)
}

// Events lists the active store events.
func (h *CatalogHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.Events(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			ID:           e.ID,
			Title:        e.Title,
			Description:  e.Description,
			ImageURL:     e.ImageURL,
			StartsAt:     e.StartsAt,
			EndsAt:       e.EndsAt,
			DisplayOrder: e.DisplayOrder,
		})
	}
	handler.JSON(w, http.StatusOK, views)
}

// Settings returns the public store configuration, including a ready-made
// WhatsApp contact link. Returns an empty object when no settings exist yet.
func (h *CatalogHandler) Settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.Settings(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if settings == nil {
		handler.JSON(w, http.StatusOK, settingsView{})
		return
	}

	handler.JSON(w, http.StatusOK, settingsView{
		StoreName:                  settings.StoreName,
		ContactPhone:               settings.ContactPhone,
		WhatsAppURL:                messaging.WhatsAppLink(settings.WhatsAppNumber, ""),
		Address:                    settings.Address,
		OpeningHours:               settings.OpeningHours,
		FreeDeliveryThresholdCents: settings.FreeDeliveryThresholdCents,
		DeliveryPerKmCents:         settings.DeliveryPerKmCents,
	})
}
