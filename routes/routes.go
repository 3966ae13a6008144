// routes/routes.go
package routes

import (
	"zonetrack/controllers"
	"zonetrack/middleware"
	"zonetrack/services"
	"zonetrack/utils"
	"zonetrack/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes initializes all application routes
func SetupRoutes(manager *services.ZoneManager, hub *websocket.Hub) *gin.Engine {
	router := gin.New()

	validator := utils.NewValidationService()

	zoneController := controllers.NewZoneController(manager, validator)
	healthController := controllers.NewHealthController(manager.Repository(), hub)
	wsController := controllers.NewWebSocketController(hub)

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.DefaultLoggerMiddleware())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.Identity())

	// Public routes
	router.GET("/", healthController.APIInfo)
	router.GET("/health", healthController.HealthCheck)

	// API group, caller identity required
	api := router.Group("/api/v1")
	api.Use(middleware.RequireIdentity())

	SetupZoneRoutes(api, zoneController)
	SetupWebSocketRoutes(router, wsController)

	return router
}
