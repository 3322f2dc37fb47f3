// Package webhook receives asynchronous payment processor callbacks.
package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// maxPayloadBytes bounds the webhook body; Stripe events are small.
const maxPayloadBytes = 64 * 1024

// StripeHandler verifies and records Stripe webhook events. Checkout is
// synchronous, so events are informational: refunds and late declines are
// logged for reconciliation rather than driving order state.
type StripeHandler struct {
	provider billing.Provider
	secret   string
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
}

// NewStripeHandler creates a Stripe webhook handler.
func NewStripeHandler(provider billing.Provider, secret string, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *StripeHandler {
	return &StripeHandler{provider: provider, secret: secret, logger: logger, metrics: metrics}
}

// stripeEvent is the minimal envelope we care about.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies the signature and acknowledges the event. Invalid
// signatures get a 400 so Stripe retries are suppressed for forged requests.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Error("failed to read webhook payload", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.provider.VerifyWebhookSignature(payload, signature, h.secret); err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("failed to decode webhook event", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "charge.refunded":
		h.logger.Info("charge refunded", "event_id", event.ID, "object_id", event.Data.Object.ID)
		if h.metrics != nil {
			h.metrics.RefundsIssued.Inc()
		}
	case "payment_intent.payment_failed":
		h.logger.Info("payment failed", "event_id", event.ID, "object_id", event.Data.Object.ID)
	case "charge.dispute.created":
		h.logger.Warn("charge disputed", "event_id", event.ID, "object_id", event.Data.Object.ID)
	default:
		h.logger.Debug("unhandled webhook event", "type", event.Type, "event_id", event.ID)
	}

	w.WriteHeader(http.StatusOK)
}
