package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/config"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	model *config.ModelConfig
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(model *config.ModelConfig) *HealthHandler {
	return &HealthHandler{model: model}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.model.PrimaryConfig().APIKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no model API key configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
