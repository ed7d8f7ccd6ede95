package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docvault/internal/cache"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	handlers "docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/otel"
	"docvault/internal/repository/postgres"
	"docvault/internal/service"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	loc := time.UTC

	ctx := context.Background()

	// Tracing degrades to a noop provider if the OTLP exporter cannot start.
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	// PostgreSQL connection pool via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories and services share one Store; transactional flows get a
	// per-tx Store through the TxRunner.
	store := postgres.NewStore(db)
	txRunner := postgres.NewTxRunner(db)

	resolver := service.NewPermissionResolver(store.Users, store.Documents, store.Shares)

	// The permission cache is optional: without Redis the resolver hits the
	// database on every check.
	var invalidator handlers.PermissionInvalidator
	if redisClient, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn("redis unavailable, permission caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		permCache := cache.NewPermissionCache(redisClient, cfg.Redis.PermissionTTL())
		resolver = service.NewCachedPermissionResolver(resolver, permCache, logger)
		invalidator = permCache
	}

	ledger := service.NewVersionLedger(txRunner, store, resolver, logger)

	svcs := handlers.Services{
		Documents:  service.NewDocumentService(txRunner, store, resolver, ledger, logger),
		Versions:   ledger,
		Sharing:    service.NewSharingService(txRunner, store, logger),
		Categories: service.NewCategoryService(txRunner, store, logger),
		Areas:      service.NewAreaService(txRunner, store, logger),
		UserAdmin:  service.NewUserAdminService(store, logger),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	registry := prometheus.NewRegistry()
	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svcs, invalidator, cfg.Auth.JWTSecret)

	// Serve until interrupted, then drain in-flight requests.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
