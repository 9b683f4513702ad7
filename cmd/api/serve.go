// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/authgate/internal/api"
	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/config"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/metrics"
	"github.com/taibuivan/authgate/internal/platform/migration"
	pgstore "github.com/taibuivan/authgate/internal/platform/postgres"
	redisstore "github.com/taibuivan/authgate/internal/platform/redis"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Connect to PostgreSQL and Redis, apply pending migrations, and serve
HTTP until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

// runServe performs the startup sequence.
//
//  1. Load configuration, then initialize the structured logger.
//  2. Connect to PostgreSQL and Redis (bounded retry).
//  3. Run database migrations (idempotent).
//  4. Wire stores, services, and HTTP handlers.
//  5. Serve until ctx is cancelled, then shut down gracefully.
func runServe(ctx context.Context, opts *rootOptions) error {

	// ── 1. Configuration & Logger ─────────────────────────────────────────
	cfg, err := config.LoadFile(opts.envFile)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Debug)
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Startup deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(ctx, constants.StartupTimeout)
	defer startupCancel()

	// ── 2. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return startupFailure(log, "connect to postgres", err)
	}
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return startupFailure(log, "connect to redis", err)
	}
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return startupFailure(log, "run migrations", err)
	}

	// ── 4. Domain Wiring ──────────────────────────────────────────────────
	hasher, err := sec.NewHasher(cfg.PasswordHashCost)
	if err != nil {
		return startupFailure(log, "initialize password hasher", err)
	}

	signer, err := sec.NewCookieSigner(cfg.SessionSecret, constants.SessionIssuer)
	if err != nil {
		return startupFailure(log, "initialize session signer", err)
	}

	recorder := metrics.New()
	credentials := auth.NewCredentialStore(pool)
	sessions := auth.NewSessionManager(auth.NewSessionStore(rdb), credentials, signer, cfg.SessionTTL)
	authHandler := auth.NewHandler(auth.NewService(credentials, hasher), sessions, recorder, cfg.IsProduction())

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	server := api.NewServer(cfg, log, sessions, recorder, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Metrics:   recorder.Handler(),
	})

	// ── 5. Serve & Graceful Shutdown ──────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Block until OS signal or server error.
	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		if err != nil {
			log.Error("server_error", slog.Any("error", err))
			return err
		}
	}

	// Give in-flight requests enough time to complete.
	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		return err
	}

	log.Info("server_stopped_cleanly")
	return nil
}

// startupFailure logs a structured startup error and returns it wrapped.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func startupFailure(log *slog.Logger, step string, err error) error {
	log.Error("startup_failure",
		slog.String("step", step),
		slog.Any("error", err),
	)
	return fmt.Errorf("%s: %w", step, err)
}
