package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripeConfig_Validate(t *testing.T) {
	cfg := StripeConfig{}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidAPIKey)

	cfg.APIKey = "sk_test_abc123"
	assert.NoError(t, cfg.Validate())
}

func TestStripeConfig_IsTestMode(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{name: "test key", apiKey: "sk_test_abc123", want: true},
		{name: "live key", apiKey: "sk_live_abc123", want: false},
		{name: "empty key", apiKey: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := StripeConfig{APIKey: tt.apiKey}
			assert.Equal(t, tt.want, cfg.IsTestMode())
		})
	}
}

func TestNewStripeProvider(t *testing.T) {
	_, err := NewStripeProvider(StripeConfig{})
	assert.ErrorIs(t, err, ErrInvalidAPIKey)

	p, err := NewStripeProvider(StripeConfig{APIKey: "sk_test_abc123"})
	assert.NoError(t, err)
	// Retry count defaults when unset.
	assert.Equal(t, 3, p.config.MaxRetries)
}

func TestCardError(t *testing.T) {
	err := &CardError{Message: "Your card was declined.", Code: "card_declined", DeclineCode: "insufficient_funds"}

	assert.Contains(t, err.Error(), "card_declined")

	ce, ok := IsCardError(err)
	assert.True(t, ok)
	assert.Equal(t, "insufficient_funds", ce.DeclineCode)
}
