// Package requestid carries the per-request correlation ID through contexts.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the request and response header that carries the ID.
const Header = "X-Request-ID"

const maxLen = 64

type ctxKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// Valid reports whether an inbound ID may be reused as is: non-empty, at most
// 64 bytes, printable ASCII without spaces. Anything else is replaced so
// client input never reaches the logs verbatim.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" when ctx carries no ID.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
