package stripe

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Config holds Stripe API configuration
type Config struct {
	// SecretKey is the Stripe secret API key. Required.
	SecretKey string

	// SuccessURL is where hosted checkout returns after payment. The
	// {CHECKOUT_SESSION_ID} placeholder is substituted by Stripe.
	SuccessURL string

	// CancelURL is where hosted checkout returns when abandoned.
	CancelURL string

	// BackendURL overrides the Stripe API endpoint. Used in tests.
	BackendURL string
}

// Validate fails fast on unusable configuration
func (c Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("stripe secret key is required", errors.CategoryValidation)
	}
	return nil
}
