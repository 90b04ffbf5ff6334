package stripe

import (
	"net/http"

	gate "github.com/goliatone/go-billing-gate"
	"github.com/goliatone/go-errors"
	stripego "github.com/stripe/stripe-go/v82"
)

// translateError maps a Stripe API failure to the gate's error taxonomy.
// Missing resources become notFound; anything else is an upstream failure
// whose provider detail stays in metadata, off the public message.
func translateError(err error, notFound *errors.Error, resource, id string) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		if isResourceMissing(err) {
			return notFound
		}
		return gate.WrapUpstream(err, map[string]any{
			"resource":    resource,
			"id":          id,
			"stripe_code": string(stripeErr.Code),
			"http_status": stripeErr.HTTPStatusCode,
		})
	}

	return gate.WrapUpstream(err, map[string]any{
		"resource": resource,
		"id":       id,
	})
}

// isResourceMissing reports whether err is the provider saying the resource
// does not exist
func isResourceMissing(err error) bool {
	var stripeErr *stripego.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripego.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound
}

// errIdentityNotFound is the notFound mapping for customer lookups
var errIdentityNotFound = errors.New("customer record not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)
