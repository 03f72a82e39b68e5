package authctx

import (
	"context"

	"github.com/handcrafted-haven/marketplace/internal/port"
)

type ctxKeySession struct{}

var sessionKey = ctxKeySession{}

// WithSession stashes the resolved identity in the request context.
func WithSession(ctx context.Context, s port.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the identity set by the session middleware.
func SessionFromContext(ctx context.Context) (port.Session, bool) {
	s, ok := ctx.Value(sessionKey).(port.Session)
	return s, ok
}
