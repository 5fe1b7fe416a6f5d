package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/admin-console/internal/session"
	"github.com/ErlanBelekov/admin-console/internal/transport/http/handler"
	"github.com/ErlanBelekov/admin-console/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// Config says which paths need a session, where denied requests go and
// which peers may set the client address.
type Config struct {
	ProtectedPrefixes []string
	PublicEntryPath   string
	// HSTS follows the cookie Secure flag.
	HSTS bool
	// TrustedProxies may set X-Forwarded-For. Empty trusts no one, so rate
	// limits key on the connection's address.
	TrustedProxies []string
}

// Limiters throttle the unauthenticated endpoints that cost something per call.
type Limiters struct {
	Login     *middleware.RateLimiter
	ResetLink *middleware.RateLimiter
}

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	dashboardHandler *handler.DashboardHandler,
	issuer *session.Issuer,
	cfg Config,
	limits Limiters,
) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Guard(issuer, middleware.NewPathMatcher(cfg.ProtectedPrefixes...), cfg.PublicEntryPath, logger))

	r.GET(cfg.PublicEntryPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "admin-console", "login": "/authentication/login"})
	})

	authn := r.Group("/authentication")
	authn.POST("/login", middleware.RateLimit(limits.Login, handler.TooManyRequests), authHandler.Login)
	authn.POST("/get-reset-link", middleware.RateLimit(limits.ResetLink, handler.TooManyRequests), authHandler.GetResetLink)
	authn.POST("/reset-password", authHandler.ResetPassword)
	authn.POST("/logout", authHandler.Logout)

	// Guarded by the global middleware, not by the group.
	dashboard := r.Group("/dashboard")
	dashboard.GET("", dashboardHandler.Index)
	dashboard.GET("/session", dashboardHandler.Session)

	return r
}
