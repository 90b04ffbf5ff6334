package stripe

import (
	"context"

	gate "github.com/goliatone/go-billing-gate"
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// CheckoutClient resolves and creates Stripe checkout sessions
type CheckoutClient struct {
	api *client.API
	cfg Config
}

var (
	_ gate.CheckoutResolver = (*CheckoutClient)(nil)
	_ gate.CheckoutStarter  = (*CheckoutClient)(nil)
)

// NewCheckoutClient returns a CheckoutClient over api
func NewCheckoutClient(api *client.API, cfg Config) *CheckoutClient {
	return &CheckoutClient{api: api, cfg: cfg}
}

// Resolve fetches the checkout session by reference, expanding its linked
// subscription
func (c *CheckoutClient) Resolve(ctx context.Context, reference string) (*gate.Checkout, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	session, err := c.api.CheckoutSessions.Get(reference, params)
	if err != nil {
		return nil, translateError(err, gate.ErrCheckoutNotFound, "checkout-session", reference)
	}

	checkout := &gate.Checkout{
		ID:            session.ID,
		Mode:          gate.CheckoutMode(session.Mode),
		PaymentStatus: string(session.PaymentStatus),
		Status:        string(session.Status),
		FallbackEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
	}

	// expandable references carry only an ID unless expanded
	if session.Customer != nil {
		checkout.CustomerID = session.Customer.ID
	}
	if session.CustomerDetails != nil {
		checkout.CapturedEmail = session.CustomerDetails.Email
	}
	if session.Subscription != nil {
		checkout.SubscriptionID = session.Subscription.ID
	}

	return checkout, nil
}

// Start opens a new hosted checkout session. Card collection happens on
// Stripe's pages; we only hand back the redirect URL.
func (c *CheckoutClient) Start(ctx context.Context, input gate.StartCheckoutInput) (*gate.CheckoutIntent, error) {
	successURL := input.SuccessURL
	if successURL == "" {
		successURL = c.cfg.SuccessURL
	}
	cancelURL := input.CancelURL
	if cancelURL == "" {
		cancelURL = c.cfg.CancelURL
	}

	params := &stripego.CheckoutSessionParams{
		Mode:       stripego.String(string(input.Mode)),
		SuccessURL: stripego.String(successURL),
		CancelURL:  stripego.String(cancelURL),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				Price:    stripego.String(input.PriceID),
				Quantity: stripego.Int64(1),
			},
		},
	}
	params.Context = ctx

	if input.AllowPromotionCodes {
		params.AllowPromotionCodes = stripego.Bool(true)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, translateError(err, gate.ErrCheckoutNotFound, "checkout-session", input.PriceID)
	}

	return &gate.CheckoutIntent{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}
