package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ace0731/Image-Converter/internal/service"
)

func (h *HealthHandler) Health(c *gin.Context) {
	checker, ok := h.publisher.(service.HealthChecker)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "image-converter",
		})
		return
	}

	if err := checker.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"service":   "image-converter",
			"publisher": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "image-converter",
		"publisher": "ok",
	})
}
