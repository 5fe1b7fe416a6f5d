package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/email"
	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/ErlanBelekov/admin-console/internal/opaque"
	"github.com/ErlanBelekov/admin-console/internal/password"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/ErlanBelekov/admin-console/internal/validate"
)

const defaultResetTTL = 30 * time.Minute

// sessionIssuer is the part of *session.Issuer the auth flows need.
type sessionIssuer interface {
	Issue(ctx context.Context, subject string) (*domain.Session, string, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, subject string) (int64, error)
}

type AuthUsecase struct {
	identities    repository.IdentityRepository
	resets        repository.ResetRepository
	sessions      sessionIssuer
	email         email.Sender
	resetTTL      time.Duration
	resetLinkBase string
	now           func() time.Time
	logger        *slog.Logger
}

type Option func(*AuthUsecase)

func WithResetTTL(ttl time.Duration) Option {
	return func(u *AuthUsecase) { u.resetTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(u *AuthUsecase) { u.now = now }
}

func NewAuthUsecase(
	identities repository.IdentityRepository,
	resets repository.ResetRepository,
	sessions sessionIssuer,
	emailSender email.Sender,
	resetLinkBase string,
	logger *slog.Logger,
	opts ...Option,
) *AuthUsecase {
	u := &AuthUsecase{
		identities:    identities,
		resets:        resets,
		sessions:      sessions,
		email:         emailSender,
		resetTTL:      defaultResetTTL,
		resetLinkBase: resetLinkBase,
		now:           time.Now,
		logger:        logger.With("component", "auth"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Login verifies the identifier/secret pair and opens a session.
// Unknown identifiers return domain.ErrNotFound and wrong secrets
// domain.ErrSecretMismatch; callers must not tell the two apart externally.
func (u *AuthUsecase) Login(ctx context.Context, identifier, secret string) (*domain.Session, string, error) {
	identity, err := u.identities.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			password.Burn(secret)
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return nil, "", domain.ErrNotFound
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("find identity: %w", err)
	}

	if !password.Verify(secret, identity.SecretHash) {
		metrics.LoginsTotal.WithLabelValues("secret_mismatch").Inc()
		return nil, "", domain.ErrSecretMismatch
	}

	s, token, err := u.sessions.Issue(ctx, identity.Identifier)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("issue session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.SessionsIssuedTotal.Inc()
	u.logger.InfoContext(ctx, "login succeeded", "session_id", s.ID)
	return s, token, nil
}

// RequestReset records a single-use reset token for identifier and mails the
// link that carries it.
func (u *AuthUsecase) RequestReset(ctx context.Context, identifier string) error {
	if identifier == "" {
		metrics.ResetRequestsTotal.WithLabelValues("missing_identifier").Inc()
		return domain.ErrMissingIdentifier
	}

	identity, err := u.identities.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ResetRequestsTotal.WithLabelValues("not_found").Inc()
			return domain.ErrNotFound
		}
		return fmt.Errorf("find identity: %w", err)
	}

	raw, err := opaque.New()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := u.now().Add(u.resetTTL)
	if err = u.resets.CreateResetRequest(ctx, identity.Identifier, opaque.Hash(raw), expiresAt); err != nil {
		return fmt.Errorf("store reset request: %w", err)
	}

	link := u.resetLinkBase + "/reset-password?token=" + url.QueryEscape(raw)
	if err = u.email.Send(ctx, email.ResetLink(identity.Identifier, link, u.resetTTL)); err != nil {
		return fmt.Errorf("send reset link: %w", err)
	}

	metrics.ResetRequestsTotal.WithLabelValues("sent").Inc()
	u.logger.InfoContext(ctx, "reset link issued", "expires_at", expiresAt)
	return nil
}

// ConfirmReset replaces the secret of the identity that owns token. Input
// checks run first, in order: both secrets present, secrets equal, secret
// strong enough. The token is consumed and the secret replaced in one store
// step, after which every session of that identity is revoked.
func (u *AuthUsecase) ConfirmReset(ctx context.Context, token, newSecret, confirmationSecret string) error {
	if err := checkNewSecret(newSecret, confirmationSecret); err != nil {
		metrics.ResetConfirmsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	if token == "" {
		metrics.ResetConfirmsTotal.WithLabelValues("token_invalid").Inc()
		return domain.ErrTokenInvalid
	}

	hash, err := password.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	rr, err := u.resets.ConsumeReset(ctx, opaque.Hash(token), hash, u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			metrics.ResetConfirmsTotal.WithLabelValues("token_invalid").Inc()
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("consume reset: %w", err)
	}

	n, err := u.sessions.RevokeAll(ctx, rr.Subject)
	if err != nil {
		// The secret is already replaced; stale sessions still expire on their own.
		u.logger.ErrorContext(ctx, "revoke sessions after reset", "error", err)
	} else if n > 0 {
		metrics.SessionsRevokedTotal.WithLabelValues("reset").Add(float64(n))
	}

	metrics.ResetConfirmsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "secret reset", "revoked_sessions", n)
	return nil
}

// Logout revokes the session behind token. It is idempotent: empty, unknown
// and already revoked tokens succeed.
func (u *AuthUsecase) Logout(ctx context.Context, token string) error {
	metrics.LogoutsTotal.Inc()
	if token == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	metrics.SessionsRevokedTotal.WithLabelValues("logout").Inc()
	return nil
}

func checkNewSecret(newSecret, confirmationSecret string) error {
	switch {
	case newSecret == "" || confirmationSecret == "":
		return domain.ErrMissingSecret
	case newSecret != confirmationSecret:
		return domain.ErrSecretConfirmMismatch
	case !validate.Secret(newSecret):
		return domain.ErrWeakSecret
	}
	return nil
}
