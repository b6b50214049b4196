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

	_ "github.com/codeverse/backend/docs"
	"github.com/codeverse/backend/internal/config"
	"github.com/codeverse/backend/internal/database"
	"github.com/codeverse/backend/internal/handlers"
	"github.com/codeverse/backend/internal/logger"
	"github.com/codeverse/backend/internal/middleware"
	"github.com/codeverse/backend/internal/repositories"
	"github.com/codeverse/backend/internal/scheduler"
	"github.com/codeverse/backend/internal/services"
	"github.com/codeverse/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title CodeVerse Tutorials API
// @version 1.0
// @description API for reading and editing tutorial content, backed by MongoDB with a local JSON mirror

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5000
// @BasePath /api/v1
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting CodeVerse tutorial service")

	// The database is connected lazily, the service starts on the mirror alone if it is down
	supervisor := database.NewSupervisor(cfg.Mongo, logger.Logger)
	if cfg.Mongo.URI == "" {
		logger.Logger.Warn("MONGO_URI is not set, serving tutorials from the mirror file only")
	} else {
		startupCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout+time.Second)
		availability := supervisor.EnsureConnected(startupCtx)
		cancel()
		logger.Logger.Info("Database state at startup", zap.String("database", availability.String()))
	}

	// Initialize storage
	mirrorStore := storage.NewFileStore(cfg.Mirror.Path, logger.Logger)

	// Initialize repositories
	tutorialRepo := repositories.NewTutorialRepository(supervisor, cfg.Mongo.OperationTimeout, logger.Logger)

	// Initialize services
	tutorialService := services.NewTutorialService(
		supervisor,
		tutorialRepo,
		mirrorStore,
		cfg.Resolver.FallbackOnEmptyList,
		logger.Logger,
	)

	// Periodic mirror refresh
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Sync.Schedule != "" {
		syncScheduler, err = scheduler.NewSyncScheduler(cfg.Sync.Schedule, tutorialService, cfg.Sync.Timeout, logger.Logger)
		if err != nil {
			logger.Logger.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		syncScheduler.Start()
	}

	// Initialize handlers
	baseHandler := handlers.NewBaseHandler(logger.Logger)
	tutorialHandler := handlers.NewTutorialHandler(tutorialService, logger.Logger)
	pageHandler, err := handlers.NewPageHandler(tutorialService, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to parse page templates", zap.Error(err))
	}

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	r.NotFound(baseHandler.NotFound)
	r.MethodNotAllowed(baseHandler.MethodNotAllowed)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Register routes
	pageHandler.RegisterRoutes(r)
	tutorialHandler.RegisterRoutes(r)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if syncScheduler != nil {
		syncScheduler.Stop()
	}

	if err := supervisor.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
