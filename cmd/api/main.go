package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/Michael-Yan-wun/meeting-tools/pkg/validator"

	"github.com/Michael-Yan-wun/meeting-tools/internal/adapter/handler"
	"github.com/Michael-Yan-wun/meeting-tools/internal/adapter/repository"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/cache"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/database"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/storage"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/analyze"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/minutes"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/transcribe"
	pkgai "github.com/Michael-Yan-wun/meeting-tools/pkg/ai"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Printf("📦 Connecting to database (%s)...", cfg.Database.Driver)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	log.Println("🔄 Ensuring schema...")
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Initialize document store
	log.Printf("📁 Initializing document store (%s)...", cfg.Storage.Backend)
	docs, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Initialize read cache
	log.Printf("📦 Initializing cache (%s)...", cfg.Cache.Backend)
	readCache, err := cache.New(&cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize pipeline components
	log.Println("🤖 Initializing pipeline components...")
	meetingRepo := repository.NewMeetingRepository(db)
	geminiClient := pkgai.NewGeminiClient(&cfg.Gemini)
	if !geminiClient.HasCredential() {
		log.Println("⚠️  No Gemini API key configured; structured analysis will be degraded")
	}
	analyzer := analyze.NewService(geminiClient, &cfg.Gemini, logger)
	transcriber := transcribe.NewAssemblyAITranscriber(&cfg.Assembly, logger)
	pipeline := minutes.NewService(cfg, meetingRepo, docs, transcriber, analyzer, logger)
	log.Printf("✅ Pipeline ready (strategy: %s)", cfg.Pipeline.Strategy)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	meetingHandler := handler.NewMeeting(pipeline, meetingRepo, docs, readCache, cfg, logger)
	router := handler.NewRouter(cfg, meetingHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
