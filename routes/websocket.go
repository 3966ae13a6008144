package routes

import (
	"zonetrack/controllers"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes wires the live event stream.
func SetupWebSocketRoutes(router *gin.Engine, wc *controllers.WebSocketController) {
	router.GET("/ws", wc.HandleWebSocket)
	router.GET("/ws/stats", wc.GetHubStats)
}
