package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"zonetrack/interfaces"
	"zonetrack/models"
	"zonetrack/utils"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

type HealthController struct {
	repo      interfaces.ZoneRepository
	hub       interfaces.EventBroadcaster
	startTime time.Time
}

func NewHealthController(repo interfaces.ZoneRepository, hub interfaces.EventBroadcaster) *HealthController {
	return &HealthController{
		repo:      repo,
		hub:       hub,
		startTime: time.Now(),
	}
}

// HealthCheck reports service liveness and storage reachability
// @Summary Health check
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (hc *HealthController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	services := map[string]string{
		"storage":   "up",
		"websocket": fmt.Sprintf("%d clients", hc.hub.ConnectedClients()),
	}
	if err := hc.repo.Ping(ctx); err != nil {
		status = "degraded"
		services["storage"] = "down"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   apiVersion,
		Uptime:    utils.FormatDuration(time.Since(hc.startTime)),
	})
}

// APIInfo returns service identification for the root path
func (hc *HealthController) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "zonetrack",
		"version": apiVersion,
		"docs":    "/health",
	})
}
