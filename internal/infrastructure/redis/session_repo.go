// Package redis stores sessions in Redis so several console instances share
// one active-session set. Entries expire with the session itself.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	subjectKeyPrefix = "session:subject:"
)

type SessionRepository struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewSessionRepository(client goredis.UniversalClient) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

type sessionRecord struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(tokenHash string) string { return sessionKeyPrefix + tokenHash }
func subjectKey(subject string) string   { return subjectKeyPrefix + subject }

// CreateSession writes the record with a TTL matching the session lifetime and
// indexes the hash under the subject for DeleteSessionsBySubject.
func (r *SessionRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("create session: already expired")
	}

	payload, err := json.Marshal(sessionRecord{
		ID:        s.ID,
		Subject:   s.Subject,
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, sessionKey(s.TokenHash), payload, ttl)
		p.SAdd(ctx, subjectKey(s.Subject), s.TokenHash)
		p.Expire(ctx, subjectKey(s.Subject), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindSession(ctx context.Context, tokenHash string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		ID:        rec.ID,
		TokenHash: tokenHash,
		Subject:   rec.Subject,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// DeleteSession leaves the subject index alone; dangling members are skipped
// by DeleteSessionsBySubject and vanish with the index TTL.
func (r *SessionRepository) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := r.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteSessionsBySubject(ctx context.Context, subject string) (int64, error) {
	hashes, err := r.client.SMembers(ctx, subjectKey(subject)).Result()
	if err != nil {
		return 0, fmt.Errorf("list subject sessions: %w", err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(hashes))
	for _, h := range hashes {
		keys = append(keys, sessionKey(h))
	}

	var deleted *goredis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		deleted = p.Del(ctx, keys...)
		p.Del(ctx, subjectKey(subject))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete subject sessions: %w", err)
	}
	return deleted.Val(), nil
}
