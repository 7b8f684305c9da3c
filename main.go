package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/pharmainsight-api/accounts"
	"github.com/giygas/pharmainsight-api/config"
	"github.com/giygas/pharmainsight-api/data"
	"github.com/giygas/pharmainsight-api/handlers"
	"github.com/giygas/pharmainsight-api/health"
	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/lookup"
	"github.com/giygas/pharmainsight-api/scheduler"
	"github.com/giygas/pharmainsight-api/server"
	"github.com/giygas/pharmainsight-api/validation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		LogDir:         "logs",
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	if err := run(cfg); err != nil {
		logging.Error("Server stopped with error", "error", err)
		logging.Close()
		os.Exit(1)
	}
}

// loadEnv reads .env from the working directory, then next to the executable
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	// Plain environment variables are fine when no .env exists
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

func run(cfg *config.Config) error {
	status := data.NewStatusContainer()
	status.SetServerStartTime(time.Now())

	fetcher := lookup.NewHTTPFetcher(
		lookup.WithBaseURL(cfg.LabelAPIURL),
		lookup.WithAPIKey(cfg.LabelAPIKey),
		lookup.WithTimeout(cfg.LabelAPITimeout),
	)
	service := lookup.NewService(fetcher)

	prober := scheduler.NewScheduler(status, fetcher, cfg.ProbeInterval)
	if err := prober.Start(); err != nil {
		return fmt.Errorf("failed to start label API probe: %w", err)
	}
	defer prober.Stop()

	validator := validation.NewInputValidator()
	httpHandler := handlers.NewHTTPHandler(service, validator, health.NewHealthChecker(status, cfg.ProbeInterval), status)

	var accountHandler *handlers.AccountHandler
	if cfg.AccountsEnabled() {
		pool, err := openAccountStore(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		accountHandler = handlers.NewAccountHandler(accounts.NewStore(pool), validator)
	} else {
		logging.Info("DATABASE_URL not set, account routes disabled")
	}

	srv := server.NewServer(cfg, httpHandler, accountHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// openAccountStore connects the pool and makes sure the accounts table exists
func openAccountStore(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := accounts.NewStore(pool).EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to prepare accounts schema: %w", err)
	}

	logging.Info("Account store ready")
	return pool, nil
}
