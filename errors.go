package gate

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes exposed on structured errors so callers can branch without
// string matching on messages.
const (
	TextCodeCheckoutNotFound     = "CHECKOUT_NOT_FOUND"
	TextCodeCheckoutIncomplete   = "CHECKOUT_INCOMPLETE"
	TextCodeEmailUnresolved      = "CUSTOMER_EMAIL_UNRESOLVED"
	TextCodeNotSubscriptionMode  = "NOT_SUBSCRIPTION_MODE"
	TextCodeAccountExists        = "ACCOUNT_EXISTS"
	TextCodeInvalidCreds         = "INVALID_CREDENTIALS"
	TextCodeSubscriptionInactive = "SUBSCRIPTION_INACTIVE"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeSessionNotFound      = "SESSION_NOT_FOUND"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
	TextCodeBillingUpstream      = "BILLING_UPSTREAM"
)

// ErrCheckoutNotFound is returned when a checkout reference does not resolve
var ErrCheckoutNotFound = errors.New("checkout session not found", errors.CategoryNotFound).
	WithTextCode(TextCodeCheckoutNotFound).
	WithCode(errors.CodeNotFound)

// ErrCheckoutIncomplete is returned when the provider has not marked the
// checkout as paid or complete
var ErrCheckoutIncomplete = errors.New("checkout session incomplete", errors.CategoryValidation).
	WithTextCode(TextCodeCheckoutIncomplete).
	WithCode(errors.CodeBadRequest)

// ErrEmailUnresolved is returned when no email can be derived from the
// checkout or its linked identity record
var ErrEmailUnresolved = errors.New("unable to determine subscriber email", errors.CategoryValidation).
	WithTextCode(TextCodeEmailUnresolved).
	WithCode(errors.CodeBadRequest)

// ErrNotSubscriptionMode is returned when provisioning is attempted against a
// one-time purchase
var ErrNotSubscriptionMode = errors.New("account creation only applies to subscriptions", errors.CategoryValidation).
	WithTextCode(TextCodeNotSubscriptionMode).
	WithCode(errors.CodeBadRequest)

// ErrAccountExists is the idempotency guard outcome: the linked identity
// already carries credentials
var ErrAccountExists = errors.New("an account with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials covers both unknown email and wrong password. The two
// must be indistinguishable to callers to avoid account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrSubscriptionInactive is returned when credentials check out but the
// linked subscription no longer grants entitlement
var ErrSubscriptionInactive = errors.New("subscription is not active", errors.CategoryAuthz).
	WithTextCode(TextCodeSubscriptionInactive).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned for session tokens past their validity window
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures and undecodable tokens. Callers
// treat it the same as no session at all.
var ErrTokenMalformed = errors.New("session token invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when the request carries no session cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// WrapUpstream translates a billing-provider failure into a generic error
// safe to surface. Provider detail goes into metadata for logs, never into
// the public message.
func WrapUpstream(err error, detail map[string]any) *errors.Error {
	wrapped := errors.Wrap(err, errors.CategoryInternal, "billing provider request failed").
		WithTextCode(TextCodeBillingUpstream).
		WithCode(errors.CodeInternal)
	if len(detail) > 0 {
		wrapped = wrapped.WithMetadata(detail)
	}
	return wrapped
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for undecodable token errors
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
