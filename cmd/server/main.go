package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/admin-console/config"
	"github.com/ErlanBelekov/admin-console/internal/email"
	"github.com/ErlanBelekov/admin-console/internal/health"
	"github.com/ErlanBelekov/admin-console/internal/infrastructure/memory"
	"github.com/ErlanBelekov/admin-console/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/admin-console/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/admin-console/internal/log"
	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/ErlanBelekov/admin-console/internal/seed"
	"github.com/ErlanBelekov/admin-console/internal/session"
	httptransport "github.com/ErlanBelekov/admin-console/internal/transport/http"
	"github.com/ErlanBelekov/admin-console/internal/transport/http/handler"
	"github.com/ErlanBelekov/admin-console/internal/transport/http/middleware"
	"github.com/ErlanBelekov/admin-console/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

type stores struct {
	identities repository.IdentityRepository
	resets     repository.ResetRepository
	sessions   repository.SessionRepository
	deps       map[string]health.Pinger
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.CookieSecure {
		logger.Warn("session cookies are not marked Secure; use only over plain-http local setups")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer st.close()

	if cfg.SeedSampleIdentities() {
		n, err := seed.Run(ctx, st.identities, seed.Samples, logger)
		if err != nil {
			stop()
			log.Fatalf("seed: %v", err)
		}
		logger.Info("sample identities seeded", "created", n)
	}

	// Sessions
	issuer := session.NewIssuer(st.sessions, []byte(cfg.SessionSecret),
		session.WithTTL(cfg.SessionTTL),
		session.WithSecureCookie(cfg.CookieSecure),
	)

	// Auth
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(st.identities, st.resets, issuer, sender, cfg.ResetLinkBase, logger,
		usecase.WithResetTTL(cfg.ResetTokenTTL),
	)
	authHandler := handler.NewAuthHandler(authUsecase, issuer.CookiePolicy(), logger)
	dashboardHandler := handler.NewDashboardHandler()

	metrics.Register()
	checker := health.NewChecker(st.deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, dashboardHandler, issuer,
			httptransport.Config{
				ProtectedPrefixes: cfg.ProtectedPrefixes,
				PublicEntryPath:   cfg.PublicEntryPath,
				HSTS:              cfg.CookieSecure,
				TrustedProxies:    cfg.TrustedProxies,
			},
			httptransport.Limiters{
				Login:     middleware.NewRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst),
				ResetLink: middleware.NewRateLimiter(cfg.ResetLinkRatePerMin, cfg.ResetLinkBurst),
			},
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.Store, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// openStores wires the identity/reset backend and the session backend named
// by STORE and SESSION_STORE.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{deps: map[string]health.Pinger{}}

	switch cfg.Store {
	case "postgres":
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		st.deps["postgres"] = pool
		st.identities = postgres.NewIdentityRepository(pool)
		st.resets = postgres.NewResetRepository(pool)
		st.sessions = postgres.NewSessionRepository(pool)
		logger.Info("db connected")
	default:
		mem := memory.NewStore()
		st.identities, st.resets, st.sessions = mem, mem, mem
	}

	if cfg.SessionStore == "redis" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.deps["redis"] = health.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		st.sessions = redis.NewSessionRepository(client)
		logger.Info("redis connected")
	}

	return st, nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
