// Package router provides askwx service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/askwx/internal/askwx/handler"
	"github.com/kart-io/askwx/pkg/infra/middleware/observability"
)

// Register registers the askwx routes. metrics may be nil.
func Register(engine *gin.Engine, h *handler.AskHandler, metrics *observability.MetricsCollector, metricsPath string) {
	logger.Info("Registering askwx routes...")

	engine.GET("/health", handler.Health)
	if metrics != nil {
		engine.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}

	// 与原始服务兼容的接口
	engine.POST("/askwx", h.Ask)

	v1 := engine.Group("/v1")
	{
		v1.POST("/ask", h.AskV1)
	}

	logger.Info("HTTP routes registered")
}
