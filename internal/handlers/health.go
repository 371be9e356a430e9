package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/entrybox/internal/monitoring"
	"github.com/charlesng35/entrybox/pkg/response"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	manager *monitoring.HealthManager
}

func NewHealthHandler(manager *monitoring.HealthManager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// Overall handles GET /health.
func (h *HealthHandler) Overall(c *gin.Context) {
	writeReport(c, h.manager.Overall(c.Request.Context()))
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(c *gin.Context) {
	writeReport(c, h.manager.Liveness(c.Request.Context()))
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	writeReport(c, h.manager.Readiness(c.Request.Context()))
}

func writeReport(c *gin.Context, report monitoring.Report) {
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, report)
}
