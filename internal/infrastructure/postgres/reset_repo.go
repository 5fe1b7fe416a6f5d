package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ResetRepository struct {
	db DB
}

func NewResetRepository(db DB) *ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) CreateResetRequest(ctx context.Context, subject, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reset_requests (subject, token_hash, expires_at)
		VALUES ($1, $2, $3)`,
		subject, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert reset request: %w", err)
	}
	return nil
}

// ConsumeReset claims the request and swaps the secret hash in one transaction.
// The conditional UPDATE is the compare-and-swap: of two concurrent confirms
// only one sees consumed_at IS NULL.
func (r *ResetRepository) ConsumeReset(ctx context.Context, tokenHash, newSecretHash string, now time.Time) (req *domain.ResetRequest, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var rr domain.ResetRequest
	err = tx.QueryRow(ctx, `
		UPDATE reset_requests
		SET consumed_at = $2
		WHERE token_hash = $1 AND consumed_at IS NULL AND expires_at > $2
		RETURNING id, token_hash, subject, expires_at, consumed_at, created_at`,
		tokenHash, now,
	).Scan(&rr.ID, &rr.TokenHash, &rr.Subject, &rr.ExpiresAt, &rr.ConsumedAt, &rr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrTokenInvalid
			return nil, err
		}
		err = fmt.Errorf("claim reset request: %w", err)
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE identities
		SET secret_hash = $2, updated_at = $3
		WHERE identifier = $1`,
		rr.Subject, newSecretHash, now,
	)
	if err != nil {
		err = fmt.Errorf("update secret: %w", err)
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrTokenInvalid
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit tx: %w", err)
		return nil, err
	}
	return &rr, nil
}

func (r *ResetRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reset_requests WHERE expires_at <= $1 OR consumed_at IS NOT NULL`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("purge reset requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
