package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/lcastillo/botilleria/internal/domain"
)

// Service composes and sends storefront emails.
type Service struct {
	sender    Sender
	from      string
	storeName string
}

// NewService creates an email service.
func NewService(sender Sender, from, storeName string) *Service {
	return &Service{sender: sender, from: from, storeName: storeName}
}

var confirmationHTML = template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(`
<h2>¡Gracias por tu compra!</h2>
<p>Tu pedido <strong>{{.Number}}</strong> fue confirmado.</p>
<table>
{{range .Items}}<tr><td>{{.Quantity}} × {{.Name}}</td><td>{{money .LineTotalCents}}</td></tr>
{{end}}</table>
<p>Subtotal: {{money .SubtotalCents}}<br>
Despacho: {{money .DeliveryFeeCents}}<br>
<strong>Total: {{money .TotalCents}}</strong></p>
<p>Dirección de entrega: {{.DeliveryAddress}}</p>
`))

type confirmationItem struct {
	Name           string
	Quantity       int32
	LineTotalCents int64
}

type confirmationData struct {
	Number           string
	Items            []confirmationItem
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
	DeliveryAddress  string
}

// formatMoney renders cents as a whole-peso amount with thousands separators.
func formatMoney(cents int64) string {
	pesos := cents / 100
	s := fmt.Sprintf("%d", pesos)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && r != '-' {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}

// SendOrderConfirmation emails the customer their order summary.
func (s *Service) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	data := confirmationData{
		Number:           order.Number,
		SubtotalCents:    order.SubtotalCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		TotalCents:       order.TotalCents,
		DeliveryAddress:  order.DeliveryAddress,
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, confirmationItem{
			Name:           item.Name,
			Quantity:       item.Quantity,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
		})
	}

	var html bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	text := fmt.Sprintf("Tu pedido %s fue confirmado. Total: %s. Entrega en: %s",
		order.Number, formatMoney(order.TotalCents), order.DeliveryAddress)

	_, err := s.sender.Send(ctx, &Email{
		To:       []string{order.CustomerEmail},
		From:     s.from,
		Subject:  fmt.Sprintf("%s: pedido %s confirmado", s.storeName, order.Number),
		TextBody: text,
		HTMLBody: html.String(),
	})
	return err
}
