package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/archbyuk/dermacare-engine-sub000/internal/config"
	"github.com/archbyuk/dermacare-engine-sub000/internal/importer"
	_ "github.com/archbyuk/dermacare-engine-sub000/internal/importer/tables" // Register all bindings
	"github.com/archbyuk/dermacare-engine-sub000/internal/logging"
	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
	"github.com/archbyuk/dermacare-engine-sub000/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
	)

	// Connect to database
	ctx := context.Background()
	pool, err := storage.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	registry := importer.DefaultRegistry()
	slog.Info("bindings registered", "tables", len(registry.Tables()))

	service := importer.NewService(pool, registry,
		importer.WithMaxFileSize(cfg.Import.MaxFileSize),
		importer.WithMaxConcurrent(cfg.Import.MaxConcurrent),
	)
	fetcher := importer.NewFetcher(cfg.Download.Timeout, cfg.Import.MaxFileSize, cfg.Download.MaxConcurrent)

	server := web.NewServer(service, fetcher, pool, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
