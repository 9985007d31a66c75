package handlers

import (
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	apiConfigured bool
}

func NewHealthHandler(apiConfigured bool) *HealthHandler {
	return &HealthHandler{apiConfigured: apiConfigured}
}

// HealthCheck is hit by external uptime monitors; no side effects.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	RespondOK(c, gin.H{
		"status":         "online",
		"api_configured": h.apiConfigured,
	})
}
