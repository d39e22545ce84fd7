package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/vaultex/vaultex_service/internal/adapters/ledger"
	"github.com/vaultex/vaultex_service/internal/api/handlers"
	"github.com/vaultex/vaultex_service/internal/api/routes"
	"github.com/vaultex/vaultex_service/internal/domain/services/twofa"
	"github.com/vaultex/vaultex_service/internal/domain/services/wallet"
	"github.com/vaultex/vaultex_service/internal/infrastructure/adapters"
	"github.com/vaultex/vaultex_service/internal/infrastructure/cache"
	"github.com/vaultex/vaultex_service/internal/infrastructure/config"
	"github.com/vaultex/vaultex_service/internal/infrastructure/database"
	"github.com/vaultex/vaultex_service/internal/infrastructure/repositories"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database connection", "error", err)
		}
	}()

	// Initialize redis token store
	redisClient, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis connection", "error", err)
		}
	}()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Ledger API client
	ledgerClient := ledger.NewClient(ledger.Config{
		APIKey:     cfg.Ledger.APIKey,
		BaseURL:    cfg.Ledger.BaseURL,
		Timeout:    time.Duration(cfg.Ledger.Timeout) * time.Second,
		MaxRetries: cfg.Ledger.MaxRetries,
	}, log)

	// Repositories and supporting services
	userRepo := repositories.NewUserRepository(db, log.Zap())
	otpService := twofa.NewService(userRepo, log)

	emailService, err := adapters.NewEmailService(log.Zap(), adapters.EmailServiceConfig{
		Provider:     cfg.Email.Provider,
		APIKey:       cfg.Email.APIKey,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
		Environment:  cfg.Environment,
		BaseURL:      cfg.Email.BaseURL,
		ReplyTo:      cfg.Email.ReplyTo,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		SMTPUseTLS:   cfg.Email.SMTPUseTLS,
	})
	if err != nil {
		log.Fatal("Failed to create email service", "error", err)
	}

	// Wallet policy provider with periodic refresh
	policyProvider := config.NewProvider(cfg)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		if err := policyProvider.Reload(); err != nil {
			log.Warn("Failed to reload wallet policy", "error", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule policy reload", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Core wallet service
	walletService := wallet.NewService(
		policyProvider,
		ledgerClient,
		userRepo,
		redisClient,
		emailService,
		otpService,
		log,
	)

	walletHandlers := handlers.NewWalletHandlers(walletService, log)

	router := routes.SetupRoutes(cfg, walletHandlers, log, db, redisClient)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
			"read_timeout", cfg.Server.ReadTimeout,
			"write_timeout", cfg.Server.WriteTimeout,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Give outstanding requests time to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited gracefully")
}
