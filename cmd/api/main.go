package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-recapper/pkg/validator"

	"github.com/johnquangdev/meeting-recapper/internal/adapter/handler"
	"github.com/johnquangdev/meeting-recapper/internal/adapter/repository"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/ingest"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/meetings"
	pkgai "github.com/johnquangdev/meeting-recapper/pkg/ai"
	"github.com/johnquangdev/meeting-recapper/pkg/config"
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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema migrations are idempotent, so running them on every start is
	// safe. Disable DB_AUTO_MIGRATE when the schema is managed by CI/CD.
	if cfg.Database.AutoMigrate {
		log.Println("🔄 Running schema migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping schema migrations; apply them with sql-migrate")
	}

	// Initialize cache
	log.Println("📦 Initializing cache...")
	cacheStore, err := cache.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	if closer, ok := cacheStore.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize recording storage
	log.Println("🗄️  Initializing recording storage...")
	store, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize AI client
	log.Println("🤖 Initializing transcription client...")
	aiClient := pkgai.NewClient(&cfg.Assembly, logger)

	// Initialize services
	log.Println("✨ Initializing services...")
	ingestService := ingest.NewService(meetingRepo, analysisRepo, jobRepo, store, aiClient, cacheStore, logger)
	meetingService := meetings.NewService(meetingRepo, analysisRepo, jobRepo, cacheStore,
		time.Duration(cfg.Redis.TTLSecs)*time.Second, logger)

	// Initialize handlers and routes
	log.Println("🛣️  Setting up routes...")
	meetingHandler := handler.NewMeetingHandler(ingestService, meetingService, logger)
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
