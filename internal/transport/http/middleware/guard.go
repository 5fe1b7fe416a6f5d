package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/admin-console/internal/authctx"
	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/ErlanBelekov/admin-console/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the *domain.AuthSession of an
// allowed request.
const SessionKey = "authSession"

// sessionValidator is satisfied by *session.Issuer.
type sessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.AuthSession, error)
}

// Guard gates every path the matcher covers. Requests without a live session
// are redirected to redirectTo; nothing is ever returned to the caller as an
// error, including validator faults and panics.
func Guard(v sessionValidator, matcher *PathMatcher, redirectTo string, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "route_guard")

	return func(c *gin.Context) {
		if !matcher.Matches(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			deny(c, redirectTo, "no_cookie")
			return
		}

		s, err := check(c.Request.Context(), v, token)
		if err != nil {
			reason := "invalid"
			if !errors.Is(err, domain.ErrUnauthorized) {
				reason = "error"
				logger.WarnContext(c.Request.Context(), "session validation failed", "error", err)
			}
			deny(c, redirectTo, reason)
			return
		}

		metrics.GuardDecisionsTotal.WithLabelValues("allowed", "valid").Inc()
		c.Set(SessionKey, s)
		c.Request = c.Request.WithContext(authctx.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

func check(ctx context.Context, v sessionValidator, token string) (s *domain.AuthSession, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("validator panic: %v", r)
		}
	}()
	return v.Validate(ctx, token)
}

func deny(c *gin.Context, redirectTo, reason string) {
	metrics.GuardDecisionsTotal.WithLabelValues("denied", reason).Inc()
	c.Redirect(http.StatusTemporaryRedirect, redirectTo)
	c.Abort()
}

// SessionFrom returns the session Guard stored on c, or nil.
func SessionFrom(c *gin.Context) *domain.AuthSession {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.AuthSession)
	return s
}
