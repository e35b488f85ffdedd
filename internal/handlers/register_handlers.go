package handlers

import (
	"github.com/SscSPs/neuron_ledger/cmd/docs"
	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/SscSPs/neuron_ledger/internal/platform/config"
	"github.com/SscSPs/neuron_ledger/internal/platform/idempotency"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	idempotencyStore idempotency.Store,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome(cfg.DefaultCurrency))

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, idempotencyStore)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	idempotencyStore idempotency.Store,
) {
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.Idempotency(idempotencyStore, cfg.IdempotencyTTL),
	)

	registerInvoiceRoutes(v1, service.Invoice, service.Allocation, cfg.DefaultCurrency)
	registerCollectionRoutes(v1, service.Collection, service.Allocation, cfg.DefaultCurrency)
	registerExpenseRoutes(v1, service.Expense, cfg.DefaultCurrency)
	registerCategoryRoutes(v1, service.Category)
	registerAuditRoutes(v1, service.Audit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
