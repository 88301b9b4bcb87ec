package http

import (
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on router.
func RegisterRoutes(router *gin.Engine, h *Handlers, metrics *monitoring.Metrics) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	services := router.Group("/services")
	services.GET("", h.ListServices)
	services.GET("/tools/:tool_id", h.GetTool)
	services.POST("/discover", h.DiscoverServices)
	services.POST("/execute", h.ExecuteService)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
		router.GET("/metrics/summary", h.MetricsSummaryHandler)
	}
}
