package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"hook-engine/internal/actions"
	"hook-engine/internal/cache"
	"hook-engine/internal/common/logging"
	"hook-engine/internal/config"
	"hook-engine/internal/delivery"
	"hook-engine/internal/email"
	"hook-engine/internal/handlers"
	"hook-engine/internal/hooks"
	"hook-engine/internal/server"
	"hook-engine/internal/storage"

	_ "hook-engine/internal/storage/postgres"
	_ "hook-engine/internal/storage/sqlite"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.NewZapLogger(logging.LogConfig{Level: logging.ParseLevel(cfg.LogLevel)})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logging.SetGlobalLogger(logger)
	defer logging.MustSync()

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logger.Error("failed to initialize storage", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.HookCacheEnabled {
		cached, err := cache.New(store, &cache.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDBInt(),
			TTL:      cfg.HookCacheTTLDuration(),
		}, logger)
		if err != nil {
			logger.Error("failed to initialize hook cache", err)
			os.Exit(1)
		}
		store = cached
		logger.Info("hook cache enabled", logging.String("address", cfg.RedisAddress))
	}

	deliveryClient := delivery.NewClient(delivery.Defaults{
		Timeout:    cfg.WebhookTimeoutDuration(),
		MaxRetries: cfg.WebhookMaxRetriesInt(),
		RetryDelay: cfg.WebhookRetryDelayDuration(),
	}, logger)

	registry := actions.NewRegistry(logger)
	registry.Register(hooks.ActionWebhook, actions.NewWebhookHandler(deliveryClient))

	var emailService actions.EmailService
	if cfg.SMTPEnabled {
		emailService = email.NewService(cfg, logger)
		logger.Info("SMTP email action enabled", logging.String("host", cfg.SMTPHost))
	}
	registry.Register(hooks.ActionEmail, actions.NewEmailHandler(emailService))
	registry.Register(hooks.ActionNotification, actions.NewNotificationHandler(nil))
	registry.Register(hooks.ActionCreateTask, actions.NewTaskHandler(nil))

	engine := hooks.NewEngine(store, registry, logger)

	h := handlers.New(store, engine, cfg, logger)

	srv := server.New(h.Router(), cfg.Port)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", err)
		os.Exit(1)
	}
	logger.Info("server started", logging.String("port", cfg.Port))
	fmt.Printf("Hook engine listening on port %s\n", cfg.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
