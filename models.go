package gate

// Metadata keys this system owns on the billing provider's customer records.
// They are namespaced so merge writes never collide with keys written by
// other flows sharing the same ledger.
const (
	// MetadataPasswordHash present if and only if the account is provisioned
	MetadataPasswordHash = "arketype_password_hash"
	// MetadataUserID stable internal handle, assigned once, never reassigned
	MetadataUserID = "arketype_user_id"
	// MetadataSubscriptionID linkage to the recurring subscription, optional
	MetadataSubscriptionID = "arketype_subscription_id"
)

// CheckoutMode is the purchase mode of a checkout reference
type CheckoutMode string

const (
	// ModeOneTime is a single payment; one-time purchases never provision accounts
	ModeOneTime CheckoutMode = "payment"
	// ModeRecurring is a subscription purchase
	ModeRecurring CheckoutMode = "subscription"
)

// Checkout is the provider's checkout record, immutable once complete and
// read-only to this system.
type Checkout struct {
	ID             string       `json:"id"`
	Mode           CheckoutMode `json:"mode"`
	PaymentStatus  string       `json:"payment_status"`
	Status         string       `json:"status"`
	CustomerID     string       `json:"customer_id,omitempty"`
	CapturedEmail  string       `json:"captured_email,omitempty"`
	FallbackEmail  string       `json:"fallback_email,omitempty"`
	SubscriptionID string       `json:"subscription_id,omitempty"`
	AmountTotal    int64        `json:"amount_total"`
	Currency       string       `json:"currency,omitempty"`
}

// PaymentComplete reports whether the provider considers this checkout paid
func (c *Checkout) PaymentComplete() bool {
	return c.PaymentStatus == "paid" || c.Status == "complete"
}

// IdentityRecord is the provider-held customer record re-purposed as the
// user's account record. Credential fields live in Metadata.
type IdentityRecord struct {
	ID       string            `json:"id"`
	Email    string            `json:"email,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PasswordHash returns the stored credential hash, empty when unprovisioned
func (r *IdentityRecord) PasswordHash() string {
	if r == nil {
		return ""
	}
	return r.Metadata[MetadataPasswordHash]
}

// Provisioned reports whether credentials have been attached to this record
func (r *IdentityRecord) Provisioned() bool {
	return r.PasswordHash() != ""
}

// UserID returns the stable internal handle, empty until provisioned
func (r *IdentityRecord) UserID() string {
	if r == nil {
		return ""
	}
	return r.Metadata[MetadataUserID]
}

// SubscriptionID returns the linked subscription id, empty when unlinked
func (r *IdentityRecord) SubscriptionID() string {
	if r == nil {
		return ""
	}
	return r.Metadata[MetadataSubscriptionID]
}

// SubscriptionStatus is a subscription's lifecycle state, fetched live
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionOther      SubscriptionStatus = "other"
)

// Active reports whether the subscription currently grants entitlement
func (s SubscriptionStatus) Active() bool {
	return s == SubscriptionActive
}

// CheckoutOutcome is the Verifier's resolution of a checkout reference. It is
// consumed both by the account-existence check surfaced to clients and by the
// provisioner.
type CheckoutOutcome struct {
	Reference      string       `json:"reference"`
	Mode           CheckoutMode `json:"mode"`
	Paid           bool         `json:"paid"`
	Email          string       `json:"email"`
	CustomerID     string       `json:"customer_id,omitempty"`
	SubscriptionID string       `json:"subscription_id,omitempty"`
	AccountExists  bool         `json:"account_exists"`
	AmountTotal    int64        `json:"amount_total"`
	Currency       string       `json:"currency,omitempty"`
}

// StartCheckoutInput describes a new checkout session to open with the
// provider. Card collection happens on the provider's own pages.
type StartCheckoutInput struct {
	PriceID             string
	Mode                CheckoutMode
	SuccessURL          string
	CancelURL           string
	AllowPromotionCodes bool
}

// CheckoutIntent is the provider's handle for a newly created checkout
type CheckoutIntent struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}
