package email

import (
	"context"
	"strings"
	"testing"

	"github.com/lcastillo/botilleria/internal/domain"
)

func testOrder() *domain.Order {
	return &domain.Order{
		Number:        "BOT-000042",
		CustomerEmail: "cliente@example.com",
		Items: []domain.OrderItem{
			{Name: "Pisco Reservado 750ml", Quantity: 2, UnitPriceCents: 899000},
			{Name: "Vino Carmenere", Quantity: 1, UnitPriceCents: 549000},
		},
		SubtotalCents:    2347000,
		DeliveryFeeCents: 150000,
		TotalCents:       2497000,
		DeliveryAddress:  "Av. Italia 1439, Santiago",
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &MockSender{}
	svc := NewService(sender, "noreply@botilleria.local", "La Botillería")

	if err := svc.SendOrderConfirmation(context.Background(), testOrder()); err != nil {
		t.Fatalf("SendOrderConfirmation: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	msg := sent[0]

	if msg.To[0] != "cliente@example.com" {
		t.Errorf("To = %q", msg.To[0])
	}
	if !strings.Contains(msg.Subject, "BOT-000042") {
		t.Errorf("subject missing order number: %q", msg.Subject)
	}
	for _, want := range []string{"BOT-000042", "Pisco Reservado 750ml", "$24.970", "Av. Italia 1439"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Errorf("HTML body missing %q", want)
		}
	}
	if !strings.Contains(msg.TextBody, "$24.970") {
		t.Errorf("text body missing total: %q", msg.TextBody)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{99000, "$990"},
		{100000, "$1.000"},
		{2497000, "$24.970"},
		{123456700, "$1.234.567"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.cents); got != tt.want {
			t.Errorf("formatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
