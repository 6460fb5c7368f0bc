package handlers

import (
	"net/http"

	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	registry *registry.Registry
}

func NewHealthHandler(reg *registry.Registry) *HealthHandler {
	return &HealthHandler{registry: reg}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"models": gin.H{
			"loaded": len(h.registry.Genres()),
			"genres": h.registry.Genres(),
		},
	})
}
