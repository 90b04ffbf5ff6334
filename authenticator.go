package gate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther authenticates email+password against the billing ledger and checks
// live entitlement before issuing a session.
type Auther struct {
	identities    IdentityStore
	subscriptions SubscriptionVerifier
	tokens        TokenService
	logger        Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(identities IdentityStore, subscriptions SubscriptionVerifier, tokens TokenService) *Auther {
	return &Auther{
		identities:    identities,
		subscriptions: subscriptions,
		tokens:        tokens,
		logger:        defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// Login validates email+password and returns a signed session token. Unknown
// email and wrong password produce the identical error so callers cannot
// enumerate accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	candidates, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed: %s", err)
		return "", err
	}

	// the ledger may hold several records for one address; only a
	// provisioned candidate can authenticate
	var identity *IdentityRecord
	for _, candidate := range candidates {
		if candidate.Provisioned() {
			identity = candidate
			break
		}
	}

	if identity == nil {
		return "", ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, identity.PasswordHash()); err != nil {
		return "", ErrInvalidCredentials
	}

	if subscriptionID := identity.SubscriptionID(); subscriptionID != "" {
		status, err := s.subscriptions.Status(ctx, subscriptionID)
		if err != nil {
			s.logger.Error("login entitlement check failed: %s", err)
			return "", err
		}
		if !status.Active() {
			s.logger.Info("login for %s blocked, subscription status %s", identity.ID, status)
			return "", ErrSubscriptionInactive
		}
	}

	sessionEmail := identity.Email
	if sessionEmail == "" {
		sessionEmail = email
	}

	return s.tokens.Generate(identity.ID, sessionEmail)
}

// SessionFromToken validates raw and returns the session it proves
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromClaims(claims)
}
