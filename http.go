package gate

import (
	"context"
	"time"

	"github.com/goliatone/go-billing-gate/middleware/gateware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DefaultCookieName is the fixed application-scoped session cookie
const DefaultCookieName = "arketype_session"

// RouteAuthenticator owns the cookie transport: it turns login and
// provisioning outcomes into a session cookie and wires the access gate
// middleware for protected routes.
type RouteAuthenticator struct {
	auth           Authenticator
	provisioner    Provisioner
	identities     IdentityStore
	subscriptions  SubscriptionVerifier
	tokens         TokenService
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

// NewHTTPGate returns a RouteAuthenticator bound to the given components
func NewHTTPGate(auth Authenticator, provisioner Provisioner, identities IdentityStore, subscriptions SubscriptionVerifier, tokens TokenService, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := time.Duration(DefaultTokenExpiration) * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &RouteAuthenticator{
		auth:           auth,
		provisioner:    provisioner,
		identities:     identities,
		subscriptions:  subscriptions,
		tokens:         tokens,
		cfg:            cfg,
		cookieDuration: cookieDuration,
		Logger:         defLogger{},
	}, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = logger
	return a
}

// CookieName returns the configured session cookie name
func (a *RouteAuthenticator) CookieName() string {
	if name := a.cfg.GetCookieName(); name != "" {
		return name
	}
	return DefaultCookieName
}

// GetCookieDuration returns the cookie lifetime, mirroring token validity
func (a *RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login authenticates the payload and sets the session cookie on success
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) error {
	token, err := a.auth.Login(ctx.Context(), payload.GetEmail(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(ctx, token)
	return nil
}

// Provision converts the payload's checkout into an account and sets the
// session cookie on success
func (a *RouteAuthenticator) Provision(ctx router.Context, payload ProvisionPayload) error {
	token, err := a.provisioner.Provision(ctx.Context(), payload.GetReference(), payload.GetPassword())
	if err != nil {
		return err
	}

	a.setCookieToken(ctx, token)
	return nil
}

// Logout clears the session cookie. The token itself stays valid until its
// natural expiry; there is no server-side revocation.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.CookieName())
}

// ProtectedRoute returns the access gate middleware for protected resources
func (a *RouteAuthenticator) ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return gateware.New(gateware.Config{
		CookieName:     a.CookieName(),
		SignInRoute:    a.cfg.GetSignInRoute(),
		TokenValidator: tokenValidatorAdapter{tokens: a.tokens},
		Identities:     identityResolverAdapter{store: a.identities},
		Entitlements:   entitlementAdapter{subscriptions: a.subscriptions},
		ErrorHandler:   errorHandler,
	})
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string) {
	c.Cookie(&router.Cookie{
		Name:     a.CookieName(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(a.cookieDuration),
		HTTPOnly: true,
		Secure:   a.cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cfg.GetSecureCookies(),
		SameSite: "Lax",
	})
}

// adapters bridging the root seams into gateware without an import cycle

type tokenValidatorAdapter struct {
	tokens TokenService
}

func (t tokenValidatorAdapter) Validate(token string) (gateware.Claims, error) {
	claims, err := t.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type identityResolverAdapter struct {
	store IdentityStore
}

func (i identityResolverAdapter) Resolve(ctx context.Context, subject string) (gateware.Identity, error) {
	record, err := i.store.Get(ctx, subject)
	if err != nil {
		if errors.IsNotFound(err) {
			// a subject the ledger no longer knows was never provisioned as
			// far as the gate is concerned
			return nil, gateware.ErrNotProvisioned
		}
		return nil, err
	}
	return identityRecordAdapter{record: record}, nil
}

type identityRecordAdapter struct {
	record *IdentityRecord
}

func (i identityRecordAdapter) ID() string {
	return i.record.ID
}

func (i identityRecordAdapter) Email() string {
	return i.record.Email
}

func (i identityRecordAdapter) Provisioned() bool {
	return i.record.Provisioned()
}

func (i identityRecordAdapter) SubscriptionID() string {
	return i.record.SubscriptionID()
}

type entitlementAdapter struct {
	subscriptions SubscriptionVerifier
}

func (e entitlementAdapter) Active(ctx context.Context, subscriptionID string) (bool, error) {
	status, err := e.subscriptions.Status(ctx, subscriptionID)
	if err != nil {
		return false, err
	}
	return status.Active(), nil
}
