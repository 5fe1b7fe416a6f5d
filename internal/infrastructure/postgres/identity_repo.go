package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type IdentityRepository struct {
	db DB
}

func NewIdentityRepository(db DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identifier, secret_hash, created_at, updated_at
		FROM identities
		WHERE identifier = $1`, identifier)
	return scanIdentity(row)
}

func (r *IdentityRepository) CreateIdentity(ctx context.Context, identifier, secretHash string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO identities (identifier, secret_hash)
		VALUES ($1, $2)
		RETURNING id, identifier, secret_hash, created_at, updated_at`,
		identifier, secretHash,
	)
	id, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrIdentityExists
		}
		return nil, err
	}
	return id, nil
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var id domain.Identity
	err := row.Scan(&id.ID, &id.Identifier, &id.SecretHash, &id.CreatedAt, &id.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	return &id, nil
}
