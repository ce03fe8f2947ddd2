package navguard

import (
	"context"

	"github.com/dmitrymomot/storefront/pkg/authstate"
)

type statusContextKey struct{}

// WithStatus stores the resolved status in ctx.
func WithStatus(ctx context.Context, s authstate.Status) context.Context {
	return context.WithValue(ctx, statusContextKey{}, s)
}

// StatusFromContext returns the status stored by Middleware.
func StatusFromContext(ctx context.Context) (authstate.Status, bool) {
	s, ok := ctx.Value(statusContextKey{}).(authstate.Status)
	return s, ok
}

// UserIDFromContext returns the authenticated user of the request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	s, ok := StatusFromContext(ctx)
	if !ok || !s.IsAuthenticated() {
		return "", false
	}
	return s.UserID, true
}
