package gate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the concrete implementation of SessionClaims carried inside
// session tokens. Only identity and email travel with the token: entitlement
// is never a claim, it is re-derived live on every access decision.
type JWTClaims struct {
	jwt.RegisteredClaims
	UserEmail string `json:"email,omitempty"`
}

var _ SessionClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the billing identity id
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email captured when the session was issued
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// IssuedAt returns the issue time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
