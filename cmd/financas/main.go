package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"financas/internal/assistant"
	"financas/internal/backend"
	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/docs"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Cleanup()

	st := store.New(result.Store, store.Options{
		Watcher: result.Watcher,
		Remote:  result.Remote,
		Logger:  logger.Logger,
	})
	defer st.Close()

	// Remote backends sign in and reload the month under the new identity;
	// local backends keep the local user.
	if result.Auth != nil {
		stopAuth, err := result.Auth.Authenticate(ctx, func(id *docs.Identity) {
			if err := st.SetIdentity(context.Background(), id); err != nil {
				logger.Error("Failed to switch identity", "error", err)
			}
		})
		if err != nil {
			logger.Warn("Authentication failed, continuing with local data", "error", err)
		} else {
			defer stopAuth()
		}
	}

	if err := st.SetMonth(ctx, core.MonthKeyFor(time.Now())); err != nil {
		logger.Error("Failed to open current month", "error", err)
		os.Exit(1)
	}

	asst := assistant.New(cfg.GeminiAPIKey, cfg.GeminiModel, logger.Logger)
	if !asst.Configured() {
		logger.Info("Assistant disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, asst)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financas server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
