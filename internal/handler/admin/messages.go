package admin

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/service"
)

// MessagesHandler manages the contact inbox.
type MessagesHandler struct {
	contact *service.ContactService
}

// NewMessagesHandler creates a messages handler.
func NewMessagesHandler(contact *service.ContactService) *MessagesHandler {
	return &MessagesHandler{contact: contact}
}

type messageView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageView(m domain.Message) messageView {
	return messageView{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Body:      m.Body,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// List returns every message, newest first.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contact.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, toMessageView(m))
	}
	handler.JSON(w, http.StatusOK, views)
}

// MarkRead flags a message as handled.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// Delete removes a message.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.Delete(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}
