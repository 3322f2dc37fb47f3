package storefront

import (
	"net/http"

	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/messaging"
	"github.com/lcastillo/botilleria/internal/service"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// ContactHandler accepts contact form submissions and builds the WhatsApp
// deep link for direct inquiries.
type ContactHandler struct {
	contact *service.ContactService
	catalog *service.CatalogService
	metrics *telemetry.BusinessMetrics
}

// NewContactHandler creates a contact handler.
func NewContactHandler(contact *service.ContactService, catalog *service.CatalogService, metrics *telemetry.BusinessMetrics) *ContactHandler {
	return &ContactHandler{contact: contact, catalog: catalog, metrics: metrics}
}

// Submit stores a contact message.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := handler.Decode(r, &in); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	msg, err := h.contact.Submit(r.Context(), in)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MessagesReceived.Inc()
	}
	handler.JSON(w, http.StatusCreated, map[string]string{"id": msg.ID})
}

// WhatsApp returns a wa.me link for the store's configured number, with an
// optional prefilled message from the text query parameter.
func (h *ContactHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.Settings(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var link string
	if settings != nil {
		link = messaging.WhatsAppLink(settings.WhatsAppNumber, r.URL.Query().Get("text"))
	}
	handler.JSON(w, http.StatusOK, map[string]string{"url": link})
}
