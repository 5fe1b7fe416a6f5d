package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	// FindSession returns domain.ErrSessionNotFound for unknown hashes.
	FindSession(ctx context.Context, tokenHash string) (*domain.Session, error)
	// DeleteSession is idempotent: deleting an unknown hash is not an error.
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteSessionsBySubject(ctx context.Context, subject string) (int64, error)
}

// Purger is implemented by stores that keep expired rows until swept.
type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
