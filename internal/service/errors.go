package service

import (
	"github.com/lcastillo/botilleria/internal/domain"
)

// Checkout errors - use domain codes so the handler layer maps HTTP status.
var (
	ErrCheckoutEmptyCart  = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrCheckoutBadState   = domain.Errorf(domain.ECONFLICT, "", "Operation not valid in current checkout state")
	ErrCheckoutConfirmed  = domain.Errorf(domain.ECONFLICT, "", "Checkout already confirmed")
	ErrTaxIDRequired      = domain.Errorf(domain.EINVALID, "", "Tax ID is required for factura invoices")
	ErrInvalidInvoiceType = domain.Errorf(domain.EINVALID, "", "Invoice type must be boleta or factura")
)

// Auth errors
var (
	ErrWeakPassword     = domain.Errorf(domain.EINVALID, "", "Password must be at least 8 characters")
	ErrOAuthUnavailable = domain.Errorf(domain.EINVALID, "", "OAuth provider is not configured")
)

// Order admin errors
var (
	ErrInvalidOrderStatus = domain.Errorf(domain.EINVALID, "", "Unknown order status")
)
