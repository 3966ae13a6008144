package routes

import (
	"zonetrack/controllers"

	"github.com/gin-gonic/gin"
)

// SetupZoneRoutes wires the zone engine endpoints.
func SetupZoneRoutes(api *gin.RouterGroup, zc *controllers.ZoneController) {
	zones := api.Group("/zones")
	{
		zones.POST("", zc.CreateZone)
		zones.GET("", zc.GetZones)
		zones.POST("/validate", zc.ValidateZone)
		zones.GET("/check", zc.CheckZone)

		zones.GET("/:zoneId", zc.GetZone)
		zones.PUT("/:zoneId", zc.UpdateZone)
		zones.DELETE("/:zoneId", zc.DeleteZone)

		zones.GET("/:zoneId/devices", zc.GetZoneDevices)
		zones.POST("/:zoneId/devices/:deviceId", zc.AddDevice)
		zones.DELETE("/:zoneId/devices/:deviceId", zc.RemoveDevice)

		zones.GET("/:zoneId/permissions", zc.GetPermissions)
		zones.POST("/:zoneId/permissions", zc.GrantPermission)
		zones.DELETE("/:zoneId/permissions/:userId", zc.RevokePermission)
	}

	devices := api.Group("/devices")
	{
		devices.GET("/:deviceId/zone", zc.GetDeviceZone)
	}

	api.POST("/locations", zc.UpdateLocation)
	api.GET("/stats", zc.GetStats)
}
