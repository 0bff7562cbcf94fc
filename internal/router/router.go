package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "autoprice/docs"
	"autoprice/internal/handler"
	"autoprice/internal/middleware"
)

// Handlers groups the HTTP handlers. History is nil when history is disabled.
type Handlers struct {
	Estimate *handler.EstimateHandler
	History  *handler.HistoryHandler
	Schema   *handler.SchemaHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/", h.Health.Root)
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health.Health)
	v1.POST("/predict", h.Estimate.Predict)
	v1.GET("/usage", h.Estimate.Usage)
	v1.GET("/schema", h.Schema.Get)

	if h.History != nil {
		predictions := v1.Group("/predictions")
		predictions.GET("", h.History.List)
		predictions.GET("/export", h.History.Export)
		predictions.GET("/:id", h.History.GetByID)
	}

	return r
}
