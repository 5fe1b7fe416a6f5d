// Package authctx carries the authenticated session through a request context.
package authctx

import (
	"context"

	"github.com/ErlanBelekov/admin-console/internal/domain"
)

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *domain.AuthSession) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the route guard, or nil.
func FromContext(ctx context.Context) *domain.AuthSession {
	s, _ := ctx.Value(ctxKey{}).(*domain.AuthSession)
	return s
}

// Subject returns the session subject, or "" outside a guarded request.
func Subject(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Subject
	}
	return ""
}
