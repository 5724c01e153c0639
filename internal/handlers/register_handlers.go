package handlers

import (
	"context"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/tenant_ledger/internal/core/ports/services"
	"github.com/SscSPs/tenant_ledger/internal/middleware"
	"github.com/SscSPs/tenant_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// rateLimiter and healthCheck may be nil.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
	healthCheck HealthCheck,
) {
	r.GET("/health", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(c.Request.Context()); err != nil {
				middleware.GetLoggerFromContext(c).Error("Health check failed", slog.String("error", err.Error()))
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, rateLimiter)
}

// setupAPIV1Routes configures the tenant-scoped /api/v1 group and delegates to
// specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	tenant := r.Group("/api/v1/tenants/:tenant_id", middleware.ActorMiddleware())

	registerEventRoutes(tenant, service.Event, rateLimiter)
	registerAccountRoutes(tenant, service.Account)
	registerJournalRoutes(tenant, service.Journal, cfg.DefaultCurrency)
	registerReportingRoutes(tenant, service.Reporting)
}
