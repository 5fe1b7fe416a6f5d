package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
)

// IdentityRepository is the credential store. Usecases depend on this
// interface, so the in-memory sample set can be swapped for postgres without
// touching them.
type IdentityRepository interface {
	// FindByIdentifier returns domain.ErrNotFound when no identity matches.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error)
	// CreateIdentity returns domain.ErrIdentityExists on a duplicate identifier.
	CreateIdentity(ctx context.Context, identifier, secretHash string) (*domain.Identity, error)
}

// ResetRepository tracks outstanding password reset requests.
type ResetRepository interface {
	CreateResetRequest(ctx context.Context, subject, tokenHash string, expiresAt time.Time) error

	// ConsumeReset marks the request consumed and replaces the subject's secret
	// hash in one atomic step. Returns domain.ErrTokenInvalid when the token is
	// unknown, expired at now, or already consumed; nothing changes in that case.
	ConsumeReset(ctx context.Context, tokenHash, newSecretHash string, now time.Time) (*domain.ResetRequest, error)
}
