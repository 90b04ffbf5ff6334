package gate

import (
	"context"

	"github.com/goliatone/go-router"
)

var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(r context.Context, session Session) context.Context {
	return context.WithValue(r, sessionCtxKey, session)
}

// SessionFromContext finds the session from the standard context
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// RouterSession extracts the Session stored in router locals by the access
// gate middleware
func RouterSession(ctx router.Context, key string) (Session, bool) {
	if key == "" {
		key = "session" // Default key used by the gate middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	session, ok := raw.(Session)
	return session, ok
}
