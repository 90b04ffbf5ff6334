package gate

import (
	"fmt"
	"time"

	"github.com/goliatone/go-router"
)

var _ Session = &SessionObject{}

// SessionObject is the minimal identity context a validated token yields.
// It carries no credential material and no entitlement claim.
type SessionObject struct {
	Subject        string     `json:"subject,omitempty"`
	Email          string     `json:"email,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetSubject() string {
	return s.Subject
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("subject=%s email=%s iat=%s", s.Subject, s.Email, issuedAt)
}

// sessionFromClaims creates a SessionObject from validated token claims
func sessionFromClaims(claims SessionClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		Subject:        claims.Subject(),
		Email:          claims.Email(),
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

// GetRouterSession retrieves the session the access gate middleware stored in
// the router context under key
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	if session, ok := raw.(*SessionObject); ok {
		return session, nil
	}

	// the middleware stores its own context type; anything satisfying Session
	// converts
	session, ok := raw.(Session)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return &SessionObject{
		Subject:        session.GetSubject(),
		Email:          session.GetEmail(),
		IssuedAt:       session.GetIssuedAt(),
		ExpirationDate: session.GetExpiration(),
	}, nil
}
