package gate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// CheckoutVerifier resolves a checkout reference to its payment outcome and
// the identity fields linked to it. It performs no writes; both the
// account-existence check surfaced to clients and the provisioner consume its
// result.
type CheckoutVerifier struct {
	checkouts  CheckoutResolver
	identities IdentityStore
	logger     Logger
}

var _ Verifier = (*CheckoutVerifier)(nil)

// NewCheckoutVerifier returns a new CheckoutVerifier
func NewCheckoutVerifier(checkouts CheckoutResolver, identities IdentityStore) *CheckoutVerifier {
	return &CheckoutVerifier{
		checkouts:  checkouts,
		identities: identities,
		logger:     defLogger{},
	}
}

func (v *CheckoutVerifier) WithLogger(logger Logger) *CheckoutVerifier {
	v.logger = logger
	return v
}

// Resolve maps reference to its outcome without judging it: mode, payment
// state, and the derived email come back as data. Callers that need their own
// check ordering, like the provisioner's mode gate, consume this directly.
func (v *CheckoutVerifier) Resolve(ctx context.Context, reference string) (*CheckoutOutcome, error) {
	if reference == "" {
		return nil, errors.New("missing checkout session reference", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	checkout, err := v.checkouts.Resolve(ctx, reference)
	if err != nil {
		return nil, err
	}

	var record *IdentityRecord
	if checkout.CustomerID != "" {
		record, err = v.identities.Get(ctx, checkout.CustomerID)
		if err != nil {
			if !errors.IsNotFound(err) {
				return nil, err
			}
			// the checkout can outlive a deleted customer record; treat the
			// linkage as absent and keep resolving from checkout fields
			record = nil
		}
	}

	email := checkout.CapturedEmail
	if email == "" && record != nil {
		email = record.Email
	}
	if email == "" {
		email = checkout.FallbackEmail
	}

	return &CheckoutOutcome{
		Reference:      checkout.ID,
		Mode:           checkout.Mode,
		Paid:           checkout.PaymentComplete(),
		Email:          email,
		CustomerID:     checkout.CustomerID,
		SubscriptionID: checkout.SubscriptionID,
		AccountExists:  record.Provisioned(),
		AmountTotal:    checkout.AmountTotal,
		Currency:       checkout.Currency,
	}, nil
}

// Verify resolves reference against the billing provider. It fails when the
// reference does not resolve, when payment is incomplete, or when no email
// can be derived for the buyer.
func (v *CheckoutVerifier) Verify(ctx context.Context, reference string) (*CheckoutOutcome, error) {
	outcome, err := v.Resolve(ctx, reference)
	if err != nil {
		return nil, err
	}

	if !outcome.Paid {
		v.logger.Debug("checkout %s not complete", reference)
		return nil, ErrCheckoutIncomplete
	}

	if outcome.Email == "" {
		return nil, ErrEmailUnresolved
	}

	return outcome, nil
}
