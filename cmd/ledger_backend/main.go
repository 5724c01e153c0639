package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/tenant_ledger/cmd/docs"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/tenant_ledger/internal/core/services"
	"github.com/SscSPs/tenant_ledger/internal/handlers"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/SscSPs/tenant_ledger/internal/observability/metrics"
	"github.com/SscSPs/tenant_ledger/internal/platform/config"
	"github.com/SscSPs/tenant_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/tenant_ledger/internal/repositories/memory"
	"github.com/SscSPs/tenant_ledger/migrations"
	"github.com/SscSPs/tenant_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Tenant Ledger API
// @version 1.0
// @description Multi-tenant double-entry ledger: chart of accounts, journal entries, event ingestion and reports.

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	provider, shutdownMetrics, err := metrics.NewProvider(metrics.Config{
		Enabled:          cfg.MetricsEnabled,
		ExporterEndpoint: cfg.MetricsEndpoint,
		ServiceName:      cfg.MetricsService,
	})
	if err != nil {
		logger.Error("Failed to initialize metrics provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	ledgerMetrics, err := metrics.New(cfg.MetricsService, provider)
	if err != nil {
		logger.Error("Failed to create ledger instruments", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, healthCheck, closeStore, err := openStorage(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("storage", cfg.Storage), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	serviceContainer := services.NewServiceContainer(cfg, repos, ledgerMetrics)

	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.ActorHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter, healthCheck)
	setupSwaggerRoutes(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := shutdownMetrics(ctx); err != nil {
		logger.Error("Failed to flush metrics", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		// no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// openStorage builds the repositories for the configured backend, along with a
// health check and a close function.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, handlers.HealthCheck, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage")
		return memory.NewStore().Provider(), nil, func() {}, nil
	}

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, nil, err
	}
	logger.Info("Database connection pool established.")

	return pgsql.NewRepositoryProvider(dbPool), dbPool.Ping, func() { database.ClosePgxPool(dbPool) }, nil
}
