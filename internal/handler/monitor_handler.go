package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suryanshu-Nabheet/Zenith/internal/hub"
)

// MonitorHandler handles monitoring API endpoints
type MonitorHandler interface {
	GetHubStats(c *gin.Context)
}

type monitorHandler struct {
	hub *hub.Hub
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(h *hub.Hub) MonitorHandler {
	return &monitorHandler{
		hub: h,
	}
}

// GetHubStats returns current hub statistics
// @Summary Get WebSocket hub statistics
// @Description Returns information about connected clients, rooms, and ringing calls
// @Tags Monitor
// @Produce json
// @Success 200 {object} model.MonitorResponse
// @Router /api/monitor/stats [get]
func (h *monitorHandler) GetHubStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}
