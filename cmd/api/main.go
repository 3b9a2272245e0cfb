package main

import (
	"context"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfdrop/internal/config"
	"pdfdrop/internal/database"
	"pdfdrop/internal/database/migration"
	handlers "pdfdrop/internal/http/handler"
	"pdfdrop/internal/http/middleware"
	"pdfdrop/internal/ledger"
	ledgerfile "pdfdrop/internal/ledger/file"
	ledgerpg "pdfdrop/internal/ledger/postgres"
	apptrace "pdfdrop/internal/otel"
	"pdfdrop/internal/service"
	"pdfdrop/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	shutdown, err := apptrace.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdown(ctx)

	// Metadata ledger: the whole-file JSON ledger by default, PostgreSQL
	// for deployments that outgrow the single-writer file.
	var ldg ledger.Ledger
	switch cfg.LedgerBackend {
	case config.LedgerBackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := migration.EnsureMigrated(ctx, db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		ldg = ledgerpg.New(db)
	default:
		l, err := ledgerfile.New(cfg.LedgerPath())
		if err != nil {
			log.Fatalf("failed to initialize ledger: %v", err)
		}
		ldg = l
	}

	// Content store: local disk by default, S3-compatible object storage
	// when configured.
	var store storage.ContentStore
	switch cfg.StoreBackend {
	case config.StoreBackendMinIO:
		store, err = storage.NewMinIO(cfg.MinIO)
	default:
		store, err = storage.NewDisk(cfg.UploadDir())
	}
	if err != nil {
		log.Fatalf("failed to initialize content store: %v", err)
	}

	svc := service.NewDocumentService(store, ldg, cfg.MaxUploadBytes)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Headroom over the document cap so multipart framing does not
		// trip the body limit before validation can answer precisely.
		BodyLimit: int(cfg.MaxUploadBytes) + (1 << 20),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// The list and download endpoints are consumed from browser fronts
	// served off other origins, so CORS mirrors the request origin.
	app.Use(cors.New())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, cfg.AdminSecret, svc, promMW)

	addr := ":" + cfg.Port
	log.Printf("server running on %s (ledger=%s store=%s)", addr, cfg.LedgerBackend, cfg.StoreBackend)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
