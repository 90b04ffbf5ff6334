package gate

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MinPasswordLength is the minimum accepted credential length
var MinPasswordLength = 8

// AccountProvisioner converts a completed recurring checkout into a
// credentialed identity, exactly once. The persisted password hash is the
// write-once guard: a retried or concurrently duplicated submission for the
// same checkout gets a conflict instead of silently re-hashing credentials.
type AccountProvisioner struct {
	verifier   Verifier
	identities IdentityStore
	tokens     TokenService
	logger     Logger
}

var _ Provisioner = (*AccountProvisioner)(nil)

// NewAccountProvisioner returns a new AccountProvisioner
func NewAccountProvisioner(verifier Verifier, identities IdentityStore, tokens TokenService) *AccountProvisioner {
	return &AccountProvisioner{
		verifier:   verifier,
		identities: identities,
		tokens:     tokens,
		logger:     defLogger{},
	}
}

func (p *AccountProvisioner) WithLogger(logger Logger) *AccountProvisioner {
	p.logger = logger
	return p
}

// Provision attaches password credentials to the identity linked to
// reference and returns a signed session token. The password is hashed
// before any persistence; plaintext is never stored or logged.
func (p *AccountProvisioner) Provision(ctx context.Context, reference, password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.New("please choose a password with at least 8 characters", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	outcome, err := p.verifier.Resolve(ctx, reference)
	if err != nil {
		return "", err
	}

	// mode is judged before payment state: a one-time purchase never
	// provisions, paid or not
	if outcome.Mode != ModeRecurring {
		return "", ErrNotSubscriptionMode
	}

	if !outcome.Paid {
		return "", ErrCheckoutIncomplete
	}

	if outcome.Email == "" {
		return "", ErrEmailUnresolved
	}

	if outcome.CustomerID == "" {
		return "", errors.New("missing customer information for this subscription", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	record, err := p.identities.Get(ctx, outcome.CustomerID)
	if err != nil {
		return "", err
	}

	// write-once guard, checked immediately before the merge write
	if record.Provisioned() {
		p.logger.Info("provision rejected, credentials already attached to %s", record.ID)
		return "", ErrAccountExists
	}

	// the same email must not resolve to a second provisioned identity;
	// without this, login's pick-first-candidate lookup becomes ambiguous
	candidates, err := p.identities.FindByEmail(ctx, outcome.Email)
	if err != nil && !errors.IsNotFound(err) {
		return "", err
	}
	for _, candidate := range candidates {
		if candidate.Provisioned() && candidate.ID != record.ID {
			p.logger.Warn("provision rejected, email on %s already provisioned on %s", record.ID, candidate.ID)
			return "", ErrAccountExists
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return "", richErr
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	// reuse any handle a failed-and-retried provisioning left behind
	userID := record.UserID()
	if userID == "" {
		userID = uuid.New().String()
	}

	fields := map[string]string{
		MetadataPasswordHash: hash,
		MetadataUserID:       userID,
	}
	if outcome.SubscriptionID != "" {
		fields[MetadataSubscriptionID] = outcome.SubscriptionID
	}

	if _, err := p.identities.MergeUpdate(ctx, record.ID, fields); err != nil {
		return "", err
	}

	token, err := p.tokens.Generate(record.ID, outcome.Email)
	if err != nil {
		return "", err
	}

	p.logger.Info("account %s provisioned as user %s", record.ID, userID)

	return token, nil
}
