package stripe

import (
	"context"

	gate "github.com/goliatone/go-billing-gate"
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// SubscriptionClient fetches live subscription status. No caching: each call
// hits the API so entitlement reflects the current billing state.
type SubscriptionClient struct {
	api *client.API
}

var _ gate.SubscriptionVerifier = (*SubscriptionClient)(nil)

// NewSubscriptionClient returns a SubscriptionClient over api
func NewSubscriptionClient(api *client.API) *SubscriptionClient {
	return &SubscriptionClient{api: api}
}

// Status fetches the subscription's current lifecycle state. A subscription
// the provider no longer knows reads as canceled.
func (s *SubscriptionClient) Status(ctx context.Context, subscriptionID string) (gate.SubscriptionStatus, error) {
	params := &stripego.SubscriptionParams{}
	params.Context = ctx

	subscription, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		if isResourceMissing(err) {
			return gate.SubscriptionCanceled, nil
		}
		return "", translateError(err, gate.ErrCheckoutNotFound, "subscription", subscriptionID)
	}

	return mapStatus(subscription.Status), nil
}

func mapStatus(status stripego.SubscriptionStatus) gate.SubscriptionStatus {
	switch status {
	case stripego.SubscriptionStatusActive:
		return gate.SubscriptionActive
	case stripego.SubscriptionStatusPastDue:
		return gate.SubscriptionPastDue
	case stripego.SubscriptionStatusCanceled:
		return gate.SubscriptionCanceled
	case stripego.SubscriptionStatusIncomplete, stripego.SubscriptionStatusIncompleteExpired:
		return gate.SubscriptionIncomplete
	default:
		return gate.SubscriptionOther
	}
}
