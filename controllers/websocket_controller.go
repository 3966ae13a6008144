package controllers

import (
	"zonetrack/utils"
	"zonetrack/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleWebSocket upgrades the connection and streams zone events
// @Summary Zone event stream
// @Router /ws [get]
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	userID := utils.GetUserID(c)

	if _, err := websocket.ServeWS(wc.hub, c.Writer, c.Request, userID); err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
}

// GetHubStats reports connection counters
// @Summary WebSocket hub stats
// @Router /ws/stats [get]
func (wc *WebSocketController) GetHubStats(c *gin.Context) {
	utils.SuccessResponse(c, "Hub stats retrieved successfully", wc.hub.GetStats())
}
