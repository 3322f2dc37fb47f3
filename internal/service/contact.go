package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lcastillo/botilleria/internal/domain"
)

// ContactService handles customer inquiries from the contact form.
type ContactService struct {
	messages MessageStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewContactService creates a contact service.
func NewContactService(messages MessageStore, logger *slog.Logger) *ContactService {
	return &ContactService{messages: messages, validate: validator.New(), logger: logger}
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Body  string `json:"body" validate:"required"`
}

// Submit validates and stores a contact message.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*domain.Message, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError("contact.submit", err)
	}

	return s.messages.Create(ctx, domain.Message{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Body:  strings.TrimSpace(in.Body),
	})
}

// List returns all messages, newest first.
func (s *ContactService) List(ctx context.Context) ([]domain.Message, error) {
	return s.messages.List(ctx)
}

// MarkRead flags a message as handled.
func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	return s.messages.MarkRead(ctx, id)
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}
