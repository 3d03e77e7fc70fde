// Copyright (c) 2026 Lexica. All rights reserved.
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
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/lexica/internal/api"
	"github.com/taibuivan/lexica/internal/corpus"
	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/flash"
	"github.com/taibuivan/lexica/internal/platform/metrics"
	"github.com/taibuivan/lexica/internal/platform/migration"
	pgstore "github.com/taibuivan/lexica/internal/platform/postgres"
	redisstore "github.com/taibuivan/lexica/internal/platform/redis"
	"github.com/taibuivan/lexica/internal/platform/render"
	"github.com/taibuivan/lexica/internal/platform/sec"
	"github.com/taibuivan/lexica/internal/users/auth"
)

// startupTimeout keeps a misconfigured dependency from hanging the boot.
const startupTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")
	return cmd
}

/*
serve runs the startup sequence:

 1. Load configuration and build the logger.
 2. Connect to PostgreSQL and Redis.
 3. Run database migrations (idempotent).
 4. Wire services and handlers.
 5. Serve until SIGINT/SIGTERM, then shut down gracefully.
*/
func serve(parent context.Context, skipMigrations bool) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, log, err := setup()
	if err != nil {
		log.Error("startup_failure", slog.String("stage", "load configuration"), slog.Any("error", err))
		return err
	}
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, startupTimeout)
	defer startupCancel()

	// # Storage
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
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	if !skipMigrations {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return startupFailure(log, "run migrations", err)
		}
	}

	// # Security
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return startupFailure(log, "initialize token service", err)
	}

	collectors, err := metrics.New()
	if err != nil {
		return startupFailure(log, "register metrics", err)
	}

	// # Domain Wiring
	flashes := flash.NewRedisStore(rdb, cfg.FlashTTL)

	corpusService := corpus.NewService(corpus.NewPostgresRepository(pool), collectors.Corpus, log)
	authService := auth.NewService(auth.NewAccountRepository(pool), tokens, log)

	renderer, err := render.New(flashes, corpusService.Nav)
	if err != nil {
		return startupFailure(log, "parse templates", err)
	}

	liveness, readiness := api.NewHealthHandlers(healthDependencies(pool, rdb), log)

	server := api.NewServer(ctx, cfg, log, tokens, collectors.HTTP, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   collectors.Handler(),
		Auth:      auth.NewHandler(authService, renderer, flashes, cfg.SecureCookies),
		Corpus:    corpus.NewHandler(corpusService, renderer, flashes, cfg.Lemmatizers),
	})

	// # Graceful Shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
		return err
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		return err
	}

	log.Info("server_stopped_cleanly")
	return nil
}

func healthDependencies(pool *pgxpool.Pool, rdb *goredis.Client) api.HealthDependencies {
	return api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}
}

// startupFailure logs a structured startup error and returns it for cobra.
func startupFailure(log *slog.Logger, stage string, err error) error {
	log.Error("startup_failure", slog.String("stage", stage), slog.Any("error", err))
	return fmt.Errorf("%s: %w", stage, err)
}
