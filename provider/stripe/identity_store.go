package stripe

import (
	"context"

	gate "github.com/goliatone/go-billing-gate"
	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// emailLookupLimit caps how many candidates an email lookup returns. The
// ledger can hold several customers per address; callers pick among them.
const emailLookupLimit = 5

// IdentityStore reads and merge-updates Stripe customer records as the gate's
// identity ledger
type IdentityStore struct {
	api *client.API
}

var _ gate.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore returns an IdentityStore over api
func NewIdentityStore(api *client.API) *IdentityStore {
	return &IdentityStore{api: api}
}

// Get fetches the customer record by id
func (s *IdentityStore) Get(ctx context.Context, id string) (*gate.IdentityRecord, error) {
	params := &stripego.CustomerParams{}
	params.Context = ctx

	customer, err := s.api.Customers.Get(id, params)
	if err != nil {
		return nil, translateError(err, errIdentityNotFound, "customer", id)
	}

	if customer.Deleted {
		return nil, errIdentityNotFound
	}

	return recordFromCustomer(customer), nil
}

// FindByEmail lists customer records matching email, newest first per the
// provider's ordering
func (s *IdentityStore) FindByEmail(ctx context.Context, email string) ([]*gate.IdentityRecord, error) {
	params := &stripego.CustomerListParams{
		Email: stripego.String(email),
	}
	params.Context = ctx
	params.Limit = stripego.Int64(emailLookupLimit)

	var records []*gate.IdentityRecord

	iter := s.api.Customers.List(params)
	for iter.Next() {
		customer := iter.Customer()
		if customer.Deleted {
			continue
		}
		records = append(records, recordFromCustomer(customer))
	}

	if err := iter.Err(); err != nil {
		return nil, translateError(err, errIdentityNotFound, "customer-list", email)
	}

	if len(records) == 0 {
		return nil, errIdentityNotFound
	}

	return records, nil
}

// MergeUpdate merges fields into the customer's metadata. Stripe applies
// metadata updates per key, so keys absent from fields survive untouched.
func (s *IdentityStore) MergeUpdate(ctx context.Context, id string, fields map[string]string) (*gate.IdentityRecord, error) {
	params := &stripego.CustomerParams{}
	params.Context = ctx
	for key, value := range fields {
		params.AddMetadata(key, value)
	}

	customer, err := s.api.Customers.Update(id, params)
	if err != nil {
		return nil, translateError(err, errIdentityNotFound, "customer", id)
	}

	return recordFromCustomer(customer), nil
}

func recordFromCustomer(customer *stripego.Customer) *gate.IdentityRecord {
	metadata := map[string]string{}
	for key, value := range customer.Metadata {
		metadata[key] = value
	}

	return &gate.IdentityRecord{
		ID:       customer.ID,
		Email:    customer.Email,
		Metadata: metadata,
	}
}
