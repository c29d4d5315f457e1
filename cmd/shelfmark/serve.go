// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/shelfmark/shelfmark/internal/access"
	"github.com/shelfmark/shelfmark/internal/auth"
	authpg "github.com/shelfmark/shelfmark/internal/auth/postgres"
	"github.com/shelfmark/shelfmark/internal/books"
	bookpg "github.com/shelfmark/shelfmark/internal/books/postgres"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/logging"
	"github.com/shelfmark/shelfmark/internal/observability"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/web"
	"github.com/shelfmark/shelfmark/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Shelfmark web server",
		Long: `Start the web server, the metrics endpoint, and the session
sweeper. Runs pending database migrations first unless disabled.`,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.String("server.addr", ":8080", "web listen address")
	flags.String("server.base_url", "http://localhost:8080", "external base URL")
	flags.String("database.url", "", "PostgreSQL connection URL")
	flags.String("metrics.addr", ":9090", "metrics listen address")
	flags.String("log.format", "json", "log format (json or text)")
	flags.String("log.level", "info", "log level")
	flags.Duration("session.ttl", 12*time.Hour, "session lifetime (0 disables expiry)")
	flags.Duration("session.sweep_interval", time.Minute, "expired-session sweep interval")
	flags.Int("auth.max_concurrent_hashes", 8, "password hashing concurrency limit")
	flags.String("seed.file", "", "YAML file of users to create at startup")
	flags.Bool("auto-migrate", true, "run pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault(logging.Options{
		Service: "shelfmark",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("database schema up to date")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := authpg.NewUserRepository(pool)
	bookRepo := bookpg.NewBookRepository(pool)

	if cfg.Seed.File != "" {
		if err := seedUsersFromFile(ctx, userRepo, cfg.Seed.File, logger); err != nil {
			return err
		}
	}

	hasher := auth.NewArgon2idHasher()
	authSvc, err := auth.NewService(userRepo, hasher, cfg.Auth.MaxConcurrentHashes)
	if err != nil {
		return err
	}

	sessionStore := auth.NewMemorySessionStore()
	sessions, err := auth.NewSessionManager(sessionStore, cfg.Session.TTL)
	if err != nil {
		return err
	}

	bookSvc, err := books.NewService(bookRepo)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.Metrics.Addr,
		func() bool { return pool.Ping(ctx) == nil },
		func() int {
			count, countErr := sessions.ActiveSessions(context.Background())
			if countErr != nil {
				return 0
			}
			return count
		})

	app, err := web.NewApp(web.AppConfig{
		Auth:     authSvc,
		Sessions: sessions,
		Gate:     access.NewDefaultGate(),
		Books:    bookSvc,
		Metrics:  obsServer.Metrics(),
		Logger:   logger,
		BaseURL:  cfg.Server.BaseURL,
	})
	if err != nil {
		return err
	}

	router, err := app.Router()
	if err != nil {
		return err
	}

	webServer, err := web.NewServer(cfg.Server.Addr, router)
	if err != nil {
		return err
	}

	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval, logger)

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	webErrCh, err := webServer.Start()
	if err != nil {
		stopServers(logger, obsServer, nil)
		return err
	}

	logger.Info("shelfmark started",
		slog.String("addr", webServer.Addr()),
		slog.String("metrics_addr", obsServer.Addr()))

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-webErrCh:
		if serveErr != nil {
			runErr = oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			runErr = oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	}

	stopServers(logger, obsServer, webServer)
	return runErr
}

func stopServers(logger *slog.Logger, obs *observability.Server, webSrv *web.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if webSrv != nil {
		if err := webSrv.Stop(ctx); err != nil {
			errutil.LogError(logger, "stopping web server", err)
		}
	}
	if err := obs.Stop(ctx); err != nil {
		errutil.LogError(logger, "stopping observability server", err)
	}
}

// migrateUp applies pending migrations.
func migrateUp(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			errutil.LogError(slog.Default(), "closing migrator", closeErr)
		}
	}()
	return migrator.Up()
}
