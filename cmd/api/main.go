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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/johnquangdev/meeting-filter/docs"
	pkgvalidator "github.com/johnquangdev/meeting-filter/pkg/validator"

	"github.com/johnquangdev/meeting-filter/internal/adapter/handler"
	"github.com/johnquangdev/meeting-filter/internal/adapter/repository"
	"github.com/johnquangdev/meeting-filter/internal/app"
	"github.com/johnquangdev/meeting-filter/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-filter/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-filter/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-filter/internal/usecase/classifier"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-filter/pkg/config"
	"github.com/johnquangdev/meeting-filter/pkg/metrics"
)

// @title           Meeting Filter API
// @version         1.0
// @description     Removes small talk from meeting transcripts and analyzes what remains.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

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

	// Transcripts can be large
	e.Use(middleware.BodyLimit("20M"))

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(reg)

	deps := pipeline.Deps{
		BatchSize:    cfg.Pipeline.BatchSize,
		LanguageCode: cfg.Assembly.LanguageCode,
		Logger:       logger,
		Metrics:      pipelineMetrics,
	}
	var backends app.Backends

	// Initialize Database
	if cfg.Database.Enabled {
		log.Println("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB(db)

		// Production deployments should manage schema via sql-migrate.
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
			}
			log.Println("🔄 Running GORM AutoMigrate (development only) ...")
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run AutoMigrate: %v", err)
			}
		} else {
			log.Println("🔄 Skipping GORM AutoMigrate; use `noisefilter migrate up` for schema migrations")
		}

		log.Println("⚙️  Initializing repositories...")
		noiseRepo := repository.NewNoiseRecordRepository(db)
		deps.Noise = noiseRepo
		deps.Analyses = repository.NewAnalysisRepository(db)
		deps.Runs = repository.NewPipelineRunRepository(db)
		backends.Noise = noiseRepo
	} else {
		log.Println("⚠️  Database disabled; runs and analyses will not be stored")
	}

	// Initialize Redis
	var predictionCache classifier.ResultCache
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		predictionCache = cache.NewRedisStore(redisClient, "noisefilter:")
		backends.Redis = redisClient
	} else {
		memStore := cache.NewMemoryStore()
		defer memStore.Stop()
		predictionCache = memStore
	}

	// Initialize object storage
	var objectStore *storage.MinIOClient
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(context.Background(), &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		objectStore = minioClient
		backends.Objects = minioClient
		if cfg.Audit.ToStorage {
			deps.Objects = minioClient
		}
		if cfg.Pipeline.RecordStages {
			deps.Stages = pipeline.NewStageRecorder(minioClient, logger)
		}
	}

	deps.Sink = app.NewAuditSink(cfg.Audit, backends)

	// Initialize models
	log.Println("🤖 Initializing AI components...")
	prompts, err := app.LoadPrompts(cfg)
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}
	models := app.NewModels(cfg, app.Options{
		Logger:  logger,
		Metrics: pipelineMetrics,
		Cache:   predictionCache,
		Prompts: prompts,
	})
	deps.Classifier = models.Classifier
	deps.Analyzer = models.Analyzer
	deps.Transcriber = models.Transcriber

	// Load models in the background so the first request does not pay for it
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		for name, err := range models.Registry.Preload(ctx) {
			log.Printf("⚠️  Model %s unavailable: %v", name, err)
		}
	}()

	pipelineService := pipeline.NewPipelineService(deps)
	pipelineHandler := handler.NewPipelineHandler(pipelineService, models.Registry, logger)
	log.Println("✅ Pipeline handler initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	router := handler.NewRouter(cfg, pipelineHandler, metricsHandler)
	if objectStore != nil {
		router.WithStorage(objectStore)
	}
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

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
