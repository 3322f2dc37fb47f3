package domain

import "time"

// ErrMessageNotFound is returned when a contact message is missing.
var ErrMessageNotFound = &Error{Code: ENOTFOUND, Message: "Message not found"}

// Message is a customer inquiry submitted through the contact form.
// Handled manually by staff, usually via the outbound WhatsApp link.
type Message struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
