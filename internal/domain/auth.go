package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("identity not found")
	ErrSecretMismatch = errors.New("secret does not match")
	ErrTokenInvalid   = errors.New("token is invalid or expired")
	ErrUnauthorized   = errors.New("unauthorized")

	ErrSessionNotFound = errors.New("session not found")
	ErrIdentityExists  = errors.New("identity already exists")
)

// Validation errors. All of them wrap ErrValidation so callers can branch on
// the family or on the specific rule.
var (
	ErrValidation            = errors.New("validation failed")
	ErrMissingIdentifier     = validationError("missing identifier")
	ErrMissingSecret         = validationError("missing secret")
	ErrSecretConfirmMismatch = validationError("secret and confirmation do not match")
	ErrWeakSecret            = validationError("secret does not meet strength rules")
	ErrInvalidIdentifier     = validationError("identifier is not email-shaped")
)

type validationErr struct{ msg string }

func validationError(msg string) error { return &validationErr{msg: msg} }

func (e *validationErr) Error() string { return e.msg }
func (e *validationErr) Unwrap() error { return ErrValidation }

// Identity is a registered account. Only the bcrypt hash of the secret is kept.
type Identity struct {
	ID         string
	Identifier string
	SecretHash string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Session is the server-side record of a successful login. The client holds
// the raw token; the store keys the session by TokenHash.
type Session struct {
	ID        string
	TokenHash string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ResetRequest authorizes exactly one secret change before ExpiresAt.
type ResetRequest struct {
	ID         string
	TokenHash  string
	Subject    string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (r *ResetRequest) Consumed() bool {
	return r.ConsumedAt != nil
}

// Usable reports whether the request may still authorize a secret change.
func (r *ResetRequest) Usable(now time.Time) bool {
	return !r.Consumed() && now.Before(r.ExpiresAt)
}

// AuthSession is what the route guard hands to downstream handlers.
type AuthSession struct {
	SessionID string    `json:"sessionId"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}
