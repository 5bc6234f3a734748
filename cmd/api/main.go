package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"noteapi/internal/config"
	handlers "noteapi/internal/http/handler"
	"noteapi/internal/http/middleware"
	"noteapi/internal/jobs"
	"noteapi/internal/media"
	appotel "noteapi/internal/otel"
	"noteapi/internal/service"
	"noteapi/internal/store"
	"noteapi/internal/synth"
	"noteapi/pkg/logger"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)

	// Initialize tracing (no-ops gracefully when the exporter is unreachable)
	shutdownTracing, err := appotel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Job store backend: local directory by default, S3-compatible when configured
	jobStore, err := buildStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize job store: %v", err)
	}

	// A missing OpenAI key is deliberately not fatal: jobs then complete
	// with a textual error result instead.
	if cfg.OpenAI.APIKey == "" {
		appLog.Warn("OPENAI_API_KEY is not set; jobs will produce error-text results")
	}

	reg := prometheus.NewRegistry()

	// Wire the pipeline: synthesis adapter, status tracker, background
	// dispatcher, processor, and the note service on top.
	synthesizer := synth.NewOpenAI(cfg.OpenAI, jobStore, appLog)
	tracker := jobs.NewTracker()
	dispatcher := jobs.NewDispatcher(appLog)
	processor, err := jobs.NewProcessor(jobStore, media.NewCorrelator(jobStore), synthesizer, tracker, appLog, reg)
	if err != nil {
		log.Fatalf("failed to initialize processor: %v", err)
	}
	noteSvc := service.NewNoteService(jobStore, tracker, dispatcher, processor, appLog)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMW.Handler())

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, noteSvc, reg)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func buildStore(cfg config.StorageConfig) (store.JobStore, error) {
	switch cfg.Backend {
	case "minio":
		return store.NewMinIO(cfg.MinIO)
	default:
		return store.NewFilesystem(cfg.UploadDir)
	}
}
