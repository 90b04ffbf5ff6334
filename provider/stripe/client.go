package stripe

import (
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Provider bundles the gate seams backed by a single Stripe client
type Provider struct {
	Identities    *IdentityStore
	Checkouts     *CheckoutClient
	Subscriptions *SubscriptionClient
}

// New builds a Provider from cfg
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, backendsFor(cfg))

	return &Provider{
		Identities:    &IdentityStore{api: api},
		Checkouts:     &CheckoutClient{api: api, cfg: cfg},
		Subscriptions: &SubscriptionClient{api: api},
	}, nil
}

func backendsFor(cfg Config) *stripego.Backends {
	if cfg.BackendURL == "" {
		return nil
	}

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL: stripego.String(cfg.BackendURL),
	})

	return &stripego.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	}
}
