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
	"github.com/ErlanBelekov/admin-console/internal/health"
	"github.com/ErlanBelekov/admin-console/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/admin-console/internal/janitor"
	ctxlog "github.com/ErlanBelekov/admin-console/internal/log"
	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Store != "postgres" {
		log.Fatalf("janitor needs STORE=postgres, got %q", cfg.Store)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{"postgres": pool}, logger, prometheus.DefaultRegisterer)

	purgers := map[string]repository.Purger{
		"reset_requests": postgres.NewResetRepository(pool),
	}
	// Redis expires sessions itself.
	if cfg.SessionStore == "store" {
		purgers["sessions"] = postgres.NewSessionRepository(pool)
	}

	j, err := janitor.New(cfg.PurgeCron, purgers, logger)
	if err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}
	go j.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("janitor process shut down")
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
