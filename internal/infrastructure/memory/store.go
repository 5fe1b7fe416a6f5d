// Package memory is the in-process backend: identities, reset requests and
// sessions held in sharded maps. It satisfies the same repository contracts
// as the postgres backend, including the atomic reset consumption.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/google/uuid"
)

type Store struct {
	identities *shardedMap[domain.Identity]
	resets     *shardedMap[domain.ResetRequest]
	sessions   *shardedMap[domain.Session]
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		identities: newShardedMap[domain.Identity](),
		resets:     newShardedMap[domain.ResetRequest](),
		sessions:   newShardedMap[domain.Session](),
		now:        time.Now,
	}
}

// ---- identities ----

func (s *Store) FindByIdentifier(_ context.Context, identifier string) (*domain.Identity, error) {
	id, ok := s.identities.get(identifier)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &id, nil
}

func (s *Store) CreateIdentity(_ context.Context, identifier, secretHash string) (*domain.Identity, error) {
	now := s.now()
	id := domain.Identity{
		ID:         uuid.NewString(),
		Identifier: identifier,
		SecretHash: secretHash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if !s.identities.setIfAbsent(identifier, id) {
		return nil, domain.ErrIdentityExists
	}
	return &id, nil
}

// ---- reset requests ----

func (s *Store) CreateResetRequest(_ context.Context, subject, tokenHash string, expiresAt time.Time) error {
	r := domain.ResetRequest{
		ID:        uuid.NewString(),
		TokenHash: tokenHash,
		Subject:   subject,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if !s.resets.setIfAbsent(tokenHash, r) {
		return fmt.Errorf("create reset request: duplicate token hash")
	}
	return nil
}

// ConsumeReset holds the reset entry's shard lock while it swaps the
// identity's secret hash. Lock order is always reset then identity.
func (s *Store) ConsumeReset(_ context.Context, tokenHash, newSecretHash string, now time.Time) (*domain.ResetRequest, error) {
	var consumed domain.ResetRequest

	err := s.resets.update(tokenHash, func(r domain.ResetRequest, ok bool) (domain.ResetRequest, bool, error) {
		if !ok || !r.Usable(now) {
			return r, false, domain.ErrTokenInvalid
		}

		err := s.identities.update(r.Subject, func(id domain.Identity, ok bool) (domain.Identity, bool, error) {
			if !ok {
				return id, false, domain.ErrTokenInvalid
			}
			id.SecretHash = newSecretHash
			id.UpdatedAt = now
			return id, true, nil
		})
		if err != nil {
			return r, false, err
		}

		at := now
		r.ConsumedAt = &at
		consumed = r
		return r, true, nil
	})
	if err != nil {
		return nil, err
	}
	return &consumed, nil
}

// ---- sessions ----

func (s *Store) CreateSession(_ context.Context, sess *domain.Session) error {
	if !s.sessions.setIfAbsent(sess.TokenHash, *sess) {
		return fmt.Errorf("create session: duplicate token hash")
	}
	return nil
}

func (s *Store) FindSession(_ context.Context, tokenHash string) (*domain.Session, error) {
	sess, ok := s.sessions.get(tokenHash)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.ExpiredAt(s.now()) {
		s.sessions.delete(tokenHash)
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *Store) DeleteSession(_ context.Context, tokenHash string) error {
	s.sessions.delete(tokenHash)
	return nil
}

func (s *Store) DeleteSessionsBySubject(_ context.Context, subject string) (int64, error) {
	n := s.sessions.deleteFunc(func(_ string, sess domain.Session) bool {
		return sess.Subject == subject
	})
	return n, nil
}

// SessionCount is the number of stored sessions, expired ones included until
// they are next looked up.
func (s *Store) SessionCount() int {
	return s.sessions.count()
}
