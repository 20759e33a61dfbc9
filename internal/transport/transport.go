package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/Ace0731/Image-Converter/internal/transport/middleware"
)

func InitRoutes(h *Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), middleware.CORS(allowedOrigins))

	router.POST("/convert", h.Conversion.Convert)
	router.GET("/batch/:id", h.Conversion.GetBatch)

	// Health check
	router.GET("/health", h.Health.Health)
	return router
}
