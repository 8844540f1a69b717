package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Suryanshu-Nabheet/Zenith/internal/configuration"
	"github.com/Suryanshu-Nabheet/Zenith/internal/handler"
)

// APIRouters wires the authenticated REST surface.
func APIRouters(router *gin.Engine, container *configuration.Container) {
	api := router.Group("/api")
	api.Use(handler.AuthMiddleware(container.Verifier))
	{
		api.GET("/conversations", container.HistoryHandler.GetConversations)
		api.GET("/conversations/:conversationId/messages", container.HistoryHandler.GetConversationMessages)
		api.GET("/users", container.HistoryHandler.GetUsers)
		api.GET("/calls", container.HistoryHandler.GetCalls)
	}
}

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorHandler := handler.NewMonitorHandler(container.Hub)

	monitorGroup := router.Group("/api/monitor")
	{
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
