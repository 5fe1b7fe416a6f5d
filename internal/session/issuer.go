// Package session mints, validates and revokes login sessions.
//
// The token handed to the client is an HS256 JWT whose jti is the session ID.
// The signature lets forged tokens be rejected without a store lookup; the
// stored record (keyed by the token's SHA-256) is what makes logout and
// revocation effective before exp.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/opaque"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "authToken"
	DefaultTTL = 7 * 24 * time.Hour

	tokenIssuer = "admin-console"
)

// CookiePolicy is the transport contract for the session token.
type CookiePolicy struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

func (p CookiePolicy) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     p.Path,
		MaxAge:   int(p.MaxAge / time.Second),
		HttpOnly: p.HTTPOnly,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

// Clear returns a cookie that makes the browser drop the session cookie.
func (p CookiePolicy) Clear() *http.Cookie {
	c := p.Cookie("")
	c.MaxAge = -1
	return c
}

type Issuer struct {
	sessions repository.SessionRepository
	key      []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

type Option func(*Issuer)

func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) { i.ttl = ttl }
}

// WithSecureCookie toggles the Secure attribute. Only plain-http local setups
// turn it off.
func WithSecureCookie(secure bool) Option {
	return func(i *Issuer) { i.secure = secure }
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(sessions repository.SessionRepository, key []byte, opts ...Option) *Issuer {
	i := &Issuer{
		sessions: sessions,
		key:      key,
		ttl:      DefaultTTL,
		secure:   true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) CookiePolicy() CookiePolicy {
	return CookiePolicy{
		Name:     CookieName,
		Path:     "/",
		MaxAge:   i.ttl,
		HTTPOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue creates a session for subject and returns it with the raw token.
func (i *Issuer) Issue(ctx context.Context, subject string) (*domain.Session, string, error) {
	now := i.now().Truncate(time.Second)
	s := &domain.Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	s.TokenHash = opaque.Hash(token)
	if err := i.sessions.CreateSession(ctx, s); err != nil {
		return nil, "", fmt.Errorf("store session: %w", err)
	}
	return s, token, nil
}

// Validate returns the session behind token. Any token that does not map to a
// live session yields domain.ErrUnauthorized; store faults are wrapped.
func (i *Issuer) Validate(ctx context.Context, token string) (*domain.AuthSession, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	s, err := i.sessions.FindSession(ctx, opaque.Hash(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if s.ExpiredAt(i.now()) || s.Subject != claims.Subject || s.ID != claims.ID {
		return nil, domain.ErrUnauthorized
	}

	return &domain.AuthSession{
		SessionID: s.ID,
		Subject:   s.Subject,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

// IsValid is Validate collapsed to a yes/no; store faults count as no.
func (i *Issuer) IsValid(ctx context.Context, token string) bool {
	_, err := i.Validate(ctx, token)
	return err == nil
}

// Revoke removes the session behind token. Unknown, expired or malformed
// tokens are not an error.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := i.sessions.DeleteSession(ctx, opaque.Hash(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (i *Issuer) RevokeAll(ctx context.Context, subject string) (int64, error) {
	n, err := i.sessions.DeleteSessionsBySubject(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("revoke subject sessions: %w", err)
	}
	return n, nil
}
