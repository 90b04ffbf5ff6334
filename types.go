package gate

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an issued session
type Session interface {
	GetSubject() string
	GetEmail() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	SessionFromToken(token string) (Session, error)
}

// Provisioner converts a completed checkout into a credentialed identity,
// exactly once, and returns a signed session token.
type Provisioner interface {
	Provision(ctx context.Context, reference, password string) (string, error)
}

// Verifier resolves a checkout reference to its payment outcome and the
// identity fields linked to it. Read only. Resolve reports the outcome as
// data; Verify additionally requires a paid checkout with a derivable email.
type Verifier interface {
	Resolve(ctx context.Context, reference string) (*CheckoutOutcome, error)
	Verify(ctx context.Context, reference string) (*CheckoutOutcome, error)
}

// IdentityStore is the read/update view over the billing ledger's customer
// records. It is the only place credential fields live; there is no local
// user database.
type IdentityStore interface {
	Get(ctx context.Context, id string) (*IdentityRecord, error)
	FindByEmail(ctx context.Context, email string) ([]*IdentityRecord, error)
	// MergeUpdate merges fields into the record's metadata mapping. Keys not
	// present in fields must be left untouched.
	MergeUpdate(ctx context.Context, id string, fields map[string]string) (*IdentityRecord, error)
}

// CheckoutResolver fetches a checkout record from the billing provider,
// expanding any linked subscription.
type CheckoutResolver interface {
	Resolve(ctx context.Context, reference string) (*Checkout, error)
}

// CheckoutStarter creates a new checkout session with the billing provider.
type CheckoutStarter interface {
	Start(ctx context.Context, input StartCheckoutInput) (*CheckoutIntent, error)
}

// SubscriptionVerifier fetches live subscription status. Results must never
// be cached across requests: entitlement is re-derived at the moment of each
// access decision.
type SubscriptionVerifier interface {
	Status(ctx context.Context, subscriptionID string) (SubscriptionStatus, error)
}

// TokenService mints and validates signed session tokens
type TokenService interface {
	Generate(subject, email string) (string, error)
	Validate(token string) (SessionClaims, error)
}

// SessionClaims represents the validated payload of a session token
type SessionClaims interface {
	Subject() string
	Email() string
	IssuedAt() time.Time
	Expires() time.Time
}

// LoginPayload is the transport-level login request
type LoginPayload interface {
	GetEmail() string
	GetPassword() string
}

// ProvisionPayload is the transport-level account creation request
type ProvisionPayload interface {
	GetReference() string
	GetPassword() string
}

// Config holds gate options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetCookieName() string
	GetSecureCookies() bool
	GetSignInRoute() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] GATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] GATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] GATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] GATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
