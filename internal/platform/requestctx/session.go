// Package requestctx threads the authenticated caller through request contexts.
package requestctx

import (
	"context"
	"time"
)

// Session is the authenticated identity attached by the access guard.
type Session struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type sessionContextKey struct{}

// WithSession stores the authenticated session in context.
func WithSession(ctx context.Context, session Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	if !ok || session.UserID == "" {
		return Session{}, false
	}
	return session, true
}

// UserIDFromContext returns the authenticated user id or "".
func UserIDFromContext(ctx context.Context) string {
	session, _ := SessionFromContext(ctx)
	return session.UserID
}
