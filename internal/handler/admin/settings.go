package admin

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/service"
)

// SettingsHandler manages the single store settings row.
type SettingsHandler struct {
	catalog *service.AdminCatalogService
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(catalog *service.AdminCatalogService) *SettingsHandler {
	return &SettingsHandler{catalog: catalog}
}

type settingsRequest struct {
	StoreName                  string `json:"store_name"`
	ContactPhone               string `json:"contact_phone"`
	WhatsAppNumber             string `json:"whatsapp_number"`
	Address                    string `json:"address"`
	OpeningHours               string `json:"opening_hours"`
	FreeDeliveryThresholdCents int64  `json:"free_delivery_threshold_cents"`
	DeliveryPerKmCents         int64  `json:"delivery_per_km_cents"`
}

type settingsView struct {
	ID                         string    `json:"id"`
	StoreName                  string    `json:"store_name"`
	ContactPhone               string    `json:"contact_phone"`
	WhatsAppNumber             string    `json:"whatsapp_number"`
	Address                    string    `json:"address"`
	OpeningHours               string    `json:"opening_hours"`
	FreeDeliveryThresholdCents int64     `json:"free_delivery_threshold_cents"`
	DeliveryPerKmCents         int64     `json:"delivery_per_km_cents"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func toSettingsView(s *domain.StoreSettings) settingsView {
	return settingsView{
		ID:                         s.ID,
		StoreName:                  s.StoreName,
		ContactPhone:               s.ContactPhone,
		WhatsAppNumber:             s.WhatsAppNumber,
		Address:                    s.Address,
		OpeningHours:               s.OpeningHours,
		FreeDeliveryThresholdCents: s.FreeDeliveryThresholdCents,
		DeliveryPerKmCents:         s.DeliveryPerKmCents,
		UpdatedAt:                  s.UpdatedAt,
	}
}

// Get returns the current settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.GetSettings(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toSettingsView(settings))
}

// Update replaces the settings, creating the row on first save.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	settings, err := h.catalog.UpdateSettings(r.Context(), domain.StoreSettingsInput{
		StoreName:                  req.StoreName,
		ContactPhone:               req.ContactPhone,
		WhatsAppNumber:             req.WhatsAppNumber,
		Address:                    req.Address,
		OpeningHours:               req.OpeningHours,
		FreeDeliveryThresholdCents: req.FreeDeliveryThresholdCents,
		DeliveryPerKmCents:         req.DeliveryPerKmCents,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toSettingsView(settings))
}
