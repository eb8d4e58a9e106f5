package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	apihttp "memberdesk-backend/internal/api/http"
	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/config"
	"memberdesk-backend/internal/logger"
	"memberdesk-backend/internal/repository/postgres"
	"memberdesk-backend/internal/security"
	"memberdesk-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MemberDesk Server...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db, time.Duration(cfg.Database.TimeoutSeconds)*time.Second)

	// Initialize token validation
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize rejection detail cache
	detailCache := cache.NewLRU[*service.RejectionDetail](
		cfg.Cache.Size,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
	)

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	notifier := service.NewEmailNotifier(store.Members, emailService)

	reviewService := service.NewReviewService(
		store,
		store.Rejections,
		store.Applications,
		store.Audit,
		detailCache,
		notifier,
	)
	conversationService := service.NewConversationService(store, detailCache, notifier)
	resubmissionService := service.NewResubmissionService(store, detailCache, notifier)
	applicationService := service.NewApplicationService(store, store.Applications, store.Snapshots)

	// Initialize HTTP handlers
	router := apihttp.NewRouter(
		tokenManager,
		apihttp.NewReviewHandler(reviewService),
		apihttp.NewConversationHandler(conversationService),
		apihttp.NewResubmissionHandler(resubmissionService),
		apihttp.NewApplicationHandler(applicationService),
	)

	addr := cfg.GetServerAddress()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("HTTP server listening", "address", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		log.Fatalf("Server failed: %v", err)
	}
}
