// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"shutterplan/internal/http/handlers"
	"shutterplan/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Metrics(deps.Metrics),
		// Innermost, so a recovered panic still reaches the access log and metrics.
		middleware.Recovery(),
	)

	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	r.GET("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	api := r.Group("/api")

	chatHandler := handlers.NewChatHandler(deps.Planner, deps.RequestTimeout)
	api.POST("/chat", chatHandler.Chat)
	api.POST("/params", chatHandler.Params)

	modelsHandler := handlers.NewModelsHandler(deps.Catalog, deps.Availability)
	api.GET("/models", modelsHandler.List)

	compareHandler := handlers.NewCompareHandler(deps.Compare, deps.Catalog, deps.RequestTimeout)
	api.POST("/compare", compareHandler.Compare)

	usageHandler := handlers.NewUsageHandler(deps.Usage)
	api.GET("/usage", usageHandler.Summary)

	return r
}
