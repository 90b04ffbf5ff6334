// Package gateware guards protected routes. On every request it re-validates
// the session cookie, re-resolves the identity record from the billing
// ledger, and re-fetches live subscription status when one is linked. A valid
// token never implies current entitlement.
package gateware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-router"
)

var (
	// ErrNoSession means the request carried no usable session cookie
	ErrNoSession = errors.New("missing or invalid session")
	// ErrNotProvisioned means the subject resolves to no credentialed identity
	ErrNotProvisioned = errors.New("identity is not provisioned")
	// ErrInactiveSubscription means entitlement lapsed after the session was issued
	ErrInactiveSubscription = errors.New("subscription is not active")
)

// Exit reasons appended to the sign-in redirect so callers can render a
// billing-specific message for lapsed entitlement.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonInactive        = "inactive_subscription"
)

// TokenValidator validates raw session tokens. Mirrors the gate package's
// TokenService.Validate without creating an import cycle.
type TokenValidator interface {
	Validate(token string) (Claims, error)
}

// Claims is the validated session payload
type Claims interface {
	Subject() string
	Email() string
	IssuedAt() time.Time
	Expires() time.Time
}

// Identity is the resolved ledger record the gate re-checks on every request
type Identity interface {
	ID() string
	Email() string
	Provisioned() bool
	SubscriptionID() string
}

// IdentityResolver resolves the session subject against the billing ledger
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (Identity, error)
}

// EntitlementChecker fetches live subscription status. It must not cache
// across requests.
type EntitlementChecker interface {
	Active(ctx context.Context, subscriptionID string) (bool, error)
}

type Config struct {
	// CookieName is the session cookie to read. Required.
	CookieName string
	// TokenValidator validates the extracted token. Required.
	TokenValidator TokenValidator
	// Identities re-resolves the identity record per request. Required.
	Identities IdentityResolver
	// Entitlements re-checks subscription status per request. Required.
	Entitlements EntitlementChecker

	// ContextKey is where the minimal identity context is stored in router
	// locals. Defaults to "session".
	ContextKey string
	// SignInRoute is the redirect target for rejected requests. Defaults to
	// "/login".
	SignInRoute string

	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	// ErrorHandler decides the exit for a rejected request. The error is one
	// of ErrNoSession, ErrNotProvisioned, ErrInactiveSubscription, or an
	// upstream failure.
	ErrorHandler router.ErrorHandler

	// ContextEnricher propagates the identity context to the standard Go
	// context after the gate allows the request.
	ContextEnricher func(ctx context.Context, claims Claims) context.Context
}

// SessionContext is the minimal identity context exposed downward. No
// credential material leaves the gate.
type SessionContext struct {
	Subject        string     `json:"subject,omitempty"`
	Email          string     `json:"email,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionContext) GetSubject() string        { return s.Subject }
func (s *SessionContext) GetEmail() string          { return s.Email }
func (s *SessionContext) GetIssuedAt() *time.Time   { return s.IssuedAt }
func (s *SessionContext) GetExpiration() *time.Time { return s.ExpirationDate }

// New builds the access gate middleware. Each step is a potential exit:
// extract+validate the cookie token, re-resolve the identity record, then
// re-check live entitlement.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw := ctx.Cookies(cfg.CookieName)
			if raw == "" {
				return cfg.ErrorHandler(ctx, ErrNoSession)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				// expired, tampered, and malformed all collapse to "no session"
				return cfg.ErrorHandler(ctx, ErrNoSession)
			}

			identity, err := cfg.Identities.Resolve(ctx.Context(), claims.Subject())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if identity == nil || !identity.Provisioned() {
				return cfg.ErrorHandler(ctx, ErrNotProvisioned)
			}

			if subscriptionID := identity.SubscriptionID(); subscriptionID != "" {
				active, err := cfg.Entitlements.Active(ctx.Context(), subscriptionID)
				if err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
				if !active {
					return cfg.ErrorHandler(ctx, ErrInactiveSubscription)
				}
			}

			issuedAt := claims.IssuedAt()
			expiresAt := claims.Expires()
			ctx.Locals(cfg.ContextKey, &SessionContext{
				Subject:        claims.Subject(),
				Email:          claims.Email(),
				IssuedAt:       &issuedAt,
				ExpirationDate: &expiresAt,
			})

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		panic("GATE: middleware configuration: CookieName is required.")
	}

	if cfg.TokenValidator == nil {
		panic("GATE: middleware configuration: TokenValidator is required.")
	}

	if cfg.Identities == nil {
		panic("GATE: middleware configuration: IdentityResolver is required.")
	}

	if cfg.Entitlements == nil {
		panic("GATE: middleware configuration: EntitlementChecker is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "session"
	}

	if cfg.SignInRoute == "" {
		cfg.SignInRoute = "/login"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = makeRedirectErrorHandler(cfg.SignInRoute)
	}

	return cfg
}

// makeRedirectErrorHandler redirects rejected requests to the sign-in route.
// Lapsed entitlement gets a distinct reason so callers can render a billing
// message; other gate rejections are plain unauthenticated. Upstream failures
// are not authentication outcomes and pass through to the router's error
// handling instead of masquerading as a sign-out.
func makeRedirectErrorHandler(signInRoute string) router.ErrorHandler {
	return func(ctx router.Context, err error) error {
		target := signInRoute
		switch {
		case errors.Is(err, ErrInactiveSubscription):
			target = signInRoute + "?reason=" + ReasonInactive
		case errors.Is(err, ErrNoSession), errors.Is(err, ErrNotProvisioned):
		default:
			return err
		}

		statusCode := http.StatusSeeOther
		if ctx.Method() == string(router.GET) {
			statusCode = http.StatusFound
		}
		return ctx.Redirect(target, statusCode)
	}
}

// GetSessionContext retrieves the identity context the gate stored for a
// request it allowed
func GetSessionContext(ctx router.Context, key string) (*SessionContext, bool) {
	if key == "" {
		key = "session"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	session, ok := raw.(*SessionContext)
	return session, ok
}
