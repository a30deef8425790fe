// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/auth/postgres"
	"github.com/hireline/hireline/internal/config"
	"github.com/hireline/hireline/internal/logging"
	"github.com/hireline/hireline/internal/observability"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/internal/web"
	"github.com/hireline/hireline/internal/xdg"
)

// shutdownTimeout bounds graceful shutdown of both servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account API",
		Long: `Start the HTTP account API and the metrics/health endpoints.
DATABASE_URL and HIRELINE_SESSION_SECRET must be set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigFile(configFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path, cmd.Flags(), os.Getenv)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

// resolveConfigFile returns flagValue, or the XDG default config file when
// the flag is empty and that file exists.
func resolveConfigFile(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return xdg.FindConfigFile()
}

// runServeWithDeps starts the service with injectable dependencies and
// blocks until ctx is canceled, SIGINT/SIGTERM arrives or a server fails.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, url string, timeout time.Duration, logger *slog.Logger) (Pool, error) {
			return store.Connect(ctx, url, timeout, logger)
		}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, isReady observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, isReady, logger)
		}
	}
	if deps.APIServerFactory == nil {
		deps.APIServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) APIServer {
			return web.NewServer(addr, handler, logger)
		}
	}

	if err := cfg.Validate(); err != nil {
		return oops.With("operation", "validate config").Wrap(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	var logger *slog.Logger
	if deps.LogWriter != nil {
		logger = logging.Setup(serviceName, version, cfg.LogFormat, level, deps.LogWriter)
	} else {
		logger = logging.SetDefault(serviceName, version, cfg.LogFormat, level)
	}

	codec, err := auth.NewTokenCodec(cfg.SessionSecret)
	if err != nil {
		return err
	}

	logger.Info("starting account service",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool

	// The observability server comes up first so liveness answers while the
	// database connection is still being retried.
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, ready.Load, logger)
		obsErrCh, startErr := obsServer.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.MetricsAddr).Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
		metrics = obsServer.Metrics()
	}
	defer func() {
		if obsServer == nil {
			return
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			logger.Warn("error stopping observability server", "error", stopErr)
		}
	}()

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := autoMigrate(deps, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	svc, err := auth.NewServiceWithLogger(postgres.NewAccountRepository(pool), auth.NewArgon2idHasher(), codec, logger)
	if err != nil {
		return err
	}
	handler, err := web.NewHandler(svc, codec, web.Options{
		CookieSecure: cfg.CookieSecure,
		CORSOrigin:   cfg.CORSOrigin,
		Metrics:      metrics,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	apiServer := deps.APIServerFactory(cfg.HTTPAddr, handler.Routes(), logger)
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return oops.Code("HTTP_START_FAILED").With("addr", cfg.HTTPAddr).Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "http", logger)

	ready.Store(true)
	cmd.Println("Account service started")
	logger.Info("account service ready", "http_addr", apiServer.Addr())
	if deps.Started != nil {
		deps.Started()
	}

	<-ctx.Done()
	ready.Store(false)
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// autoMigrate applies pending migrations before the API starts.
func autoMigrate(deps *ServeDeps, databaseURL string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	if len(pending) == 0 {
		logger.Info("database schema up to date")
		return nil
	}

	logger.Info("applying migrations", "count", len(pending))
	if err := migrator.Up(); err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	return nil
}

// monitorServerErrors cancels ctx when errCh reports a serve error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
