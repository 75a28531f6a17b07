package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"financas/internal/amqp"
	"financas/internal/backend"
	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/storage"
	"financas/internal/worker"
)

// The archive worker mirrors saved months from the live backend into a local
// SQLite archive, driven by AMQP notifications from the app.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting financas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the archive worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The source backend is whatever the app writes to.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker reads the source directly; it must not publish its own
	// archive notifications, so AMQP decoration is disabled here.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize source backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Cleanup()

	archivePath := os.Getenv("ARCHIVE_DB_PATH")
	if archivePath == "" {
		archivePath = "./data/financas-archive.db"
	}
	archive, err := storage.NewSQLiteRepository(archivePath)
	if err != nil {
		logger.Error("Failed to initialize archive", "error", err, "path", archivePath)
		os.Exit(1)
	}
	defer archive.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewArchiveWorker(result.Store, archive)
	logger.Info("Archive worker ready",
		"source", cfg.DataBackend,
		"archive", archivePath,
		"queue", cfg.AMQPQueue)

	if err := w.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
