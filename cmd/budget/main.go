package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/backend"
	"budgetbook/internal/budget"
	"budgetbook/internal/config"
	apphttp "budgetbook/internal/http"
	"budgetbook/internal/log"
	"budgetbook/internal/report"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := log.Setup(cfg.LogLevel, cfg.LogFormat, log.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	trigger, cleanup := newSyncTrigger(cfg, repo, logger)
	defer cleanup()

	deps := apphttp.Deps{
		Expenses:   services.NewExpenseService(repo),
		Savings:    services.NewSavingService(repo),
		Categories: budget.NewService(repo, budget.WithLogger(logger.WithComponent(log.ComponentBudget))),
		Reports:    report.NewBuilder(repo),
		Store:      repo,
		Logger:     logger,
	}
	if trigger != nil {
		deps.Sync = trigger
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, deps)
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2 * time.Minute
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting budget server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		"sync_enabled", trigger != nil,
		"amqp_enabled", cfg.AMQPEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// newSyncTrigger prefers the queue and falls back to running the
// synchronizer in-process. It returns nil when neither is available.
func newSyncTrigger(cfg *config.Config, repo *storage.SQLiteRepository, logger *log.Logger) (*services.SyncTrigger, func()) {
	noop := func() {}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err == nil {
			logger.Info("Sync requests go through AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			return services.NewSyncTrigger(client, nil), func() { client.Close() }
		}
		logger.Warn("Failed to initialize AMQP client, running sync inline", log.FieldError, err)
	}

	if !cfg.SyncConfigured() {
		logger.Info("Sync disabled, no destination configured")
		return nil, noop
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Warn("Sync disabled", log.FieldError, err)
		return nil, noop
	}
	syncer, err := backend.NewSynchronizer(repo, bcfg)
	if err != nil {
		logger.Warn("Sync disabled", log.FieldError, err)
		return nil, noop
	}
	return services.NewSyncTrigger(nil, syncer), noop
}
