// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"forestech/internal/domain/movement"
	"forestech/internal/domain/stock"
	"forestech/internal/infrastructure/http/v1/handlers"
	"forestech/internal/infrastructure/http/v1/middleware"
	"forestech/internal/infrastructure/storage/postgres"
	"forestech/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// MovementService handles the movement ledger
	MovementService *movement.Service

	// StockService answers stock queries
	StockService *stock.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// --- MOVEMENTS ---
		{
			handler := handlers.NewMovementHandler(baseHandler, cfg.MovementService)
			movements := v1.Group("/movements")
			movements.POST("/entrada", handler.CreateEntrada)
			movements.POST("/salida", handler.CreateSalida)
			movements.GET("", handler.List)
			movements.GET("/:id", handler.GetByID)
			movements.GET("/:id/allocations", handler.GetAllocations)
			movements.PATCH("/:id/description", handler.UpdateDescription)
			movements.DELETE("/:id", handler.Delete)
		}

		// --- STOCK ---
		{
			handler := handlers.NewStockHandler(baseHandler, cfg.StockService)
			stockGroup := v1.Group("/stock")
			stockGroup.GET("/:productId", handler.GetStock)
			stockGroup.GET("/:productId/valued", handler.GetStockValued)
		}
	}

	return router
}
