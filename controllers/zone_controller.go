package controllers

import (
	"net/http"
	"strconv"

	"zonetrack/models"
	"zonetrack/services"
	"zonetrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ZoneController struct {
	manager   *services.ZoneManager
	validator *utils.ValidationService
}

func NewZoneController(manager *services.ZoneManager, validator *utils.ValidationService) *ZoneController {
	return &ZoneController{
		manager:   manager,
		validator: validator,
	}
}

// =================== ZONE CRUD ===================

// CreateZone creates a new geofence zone
// @Summary Create zone
// @Accept json
// @Produce json
// @Param request body models.CreateZoneRequest true "Zone data"
// @Success 201 {object} models.ZoneOperationResult
// @Router /zones [post]
func (zc *ZoneController) CreateZone(c *gin.Context) {
	userID := utils.GetUserID(c)

	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result := zc.manager.CreateZone(c.Request.Context(), req, userID)
	utils.OperationResultResponse(c, result, http.StatusCreated)
}

// GetZones returns every zone the caller can see
// @Summary List zones
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Zone}
// @Router /zones [get]
func (zc *ZoneController) GetZones(c *gin.Context) {
	userID := utils.GetUserID(c)

	zones, err := zc.manager.GetUserZones(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("List zones failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Zones retrieved successfully", zones)
}

// GetZone returns one zone by id
// @Summary Get zone
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Success 200 {object} models.APIResponse{data=models.Zone}
// @Router /zones/{zoneId} [get]
func (zc *ZoneController) GetZone(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")

	zone, err := zc.manager.GetZone(c.Request.Context(), zoneID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	if !zc.manager.HasZonePermission(c.Request.Context(), zoneID, userID, models.ZonePermissionViewer) {
		utils.ForbiddenResponse(c, "You don't have access to this zone")
		return
	}

	utils.SuccessResponse(c, "Zone retrieved successfully", zone)
}

// UpdateZone applies a partial update to a zone
// @Summary Update zone
// @Accept json
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Param request body models.UpdateZoneRequest true "Fields to change"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId} [put]
func (zc *ZoneController) UpdateZone(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")

	var req models.UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result := zc.manager.UpdateZone(c.Request.Context(), zoneID, req, userID)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// DeleteZone deletes a zone without children
// @Summary Delete zone
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId} [delete]
func (zc *ZoneController) DeleteZone(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")

	result := zc.manager.DeleteZone(c.Request.Context(), zoneID, userID)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// ValidateZone dry-runs zone validation without creating anything
// @Summary Validate zone definition
// @Accept json
// @Produce json
// @Param request body models.CreateZoneRequest true "Zone data"
// @Success 200 {object} models.APIResponse{data=models.ZoneValidationResult}
// @Router /zones/validate [post]
func (zc *ZoneController) ValidateZone(c *gin.Context) {
	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result := zc.manager.ValidateZoneInput(c.Request.Context(), req)
	utils.SuccessResponse(c, "Validation completed", result)
}

// =================== DEVICE ASSIGNMENT ===================

// AddDevice assigns a device to a zone
// @Summary Add device to zone
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Param deviceId path string true "Device ID"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId}/devices/{deviceId} [post]
func (zc *ZoneController) AddDevice(c *gin.Context) {
	zoneID := c.Param("zoneId")
	deviceID := c.Param("deviceId")

	result := zc.manager.AddDeviceToZone(c.Request.Context(), zoneID, deviceID)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// RemoveDevice removes a device from a zone
// @Summary Remove device from zone
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Param deviceId path string true "Device ID"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId}/devices/{deviceId} [delete]
func (zc *ZoneController) RemoveDevice(c *gin.Context) {
	zoneID := c.Param("zoneId")
	deviceID := c.Param("deviceId")

	result := zc.manager.RemoveDeviceFromZone(c.Request.Context(), zoneID, deviceID)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// GetZoneDevices lists the devices currently inside a zone
// @Summary Get zone devices
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Success 200 {object} models.APIResponse{data=[]string}
// @Router /zones/{zoneId}/devices [get]
func (zc *ZoneController) GetZoneDevices(c *gin.Context) {
	zoneID := c.Param("zoneId")

	devices, err := zc.manager.GetZoneDevices(c.Request.Context(), zoneID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Zone devices retrieved successfully", devices)
}

// GetDeviceZone returns the zone a device is currently assigned to
// @Summary Get device zone
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} models.APIResponse
// @Router /devices/{deviceId}/zone [get]
func (zc *ZoneController) GetDeviceZone(c *gin.Context) {
	deviceID := c.Param("deviceId")

	zoneID, ok := zc.manager.GetDeviceZone(deviceID)
	if !ok {
		utils.SuccessResponse(c, "Device is not inside any zone", gin.H{
			"deviceId": deviceID,
			"zoneId":   nil,
		})
		return
	}

	utils.SuccessResponse(c, "Device zone retrieved successfully", gin.H{
		"deviceId": deviceID,
		"zoneId":   zoneID,
	})
}

// =================== LOCATION PIPELINE ===================

// UpdateLocation feeds one device position report through the engine
// @Summary Process location update
// @Accept json
// @Produce json
// @Param request body models.LocationUpdateRequest true "Position report"
// @Success 200 {object} models.APIResponse{data=[]models.ZoneEvent}
// @Router /locations [post]
func (zc *ZoneController) UpdateLocation(c *gin.Context) {
	var req models.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := zc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	events, err := zc.manager.ProcessLocationUpdate(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Location update failed for device %s: %v", req.DeviceID, err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Location processed", events)
}

// CheckZone tests a position against one zone or all active zones
// @Summary Check position against zones
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param deviceId query string false "Device ID"
// @Param zoneId query string false "Restrict the test to one zone"
// @Success 200 {object} models.APIResponse{data=models.ZoneMatch}
// @Router /zones/check [get]
func (zc *ZoneController) CheckZone(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid latitude")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid longitude")
		return
	}

	match, err := zc.manager.CheckDeviceInZone(c.Request.Context(), c.Query("deviceId"), lat, lon, c.Query("zoneId"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	if match == nil {
		utils.SuccessResponse(c, "Position is outside all zones", nil)
		return
	}
	utils.SuccessResponse(c, "Position is inside a zone", match)
}

// =================== ACCESS CONTROL ===================

// GrantPermission grants or replaces a user's permission on a zone
// @Summary Grant zone permission
// @Accept json
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Param request body models.GrantPermissionRequest true "Grant data"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId}/permissions [post]
func (zc *ZoneController) GrantPermission(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")

	var req models.GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result := zc.manager.GrantZonePermission(c.Request.Context(), zoneID, userID, req)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// RevokePermission removes a user's permission on a zone
// @Summary Revoke zone permission
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Param userId path string true "User whose access is revoked"
// @Success 200 {object} models.ZoneOperationResult
// @Router /zones/{zoneId}/permissions/{userId} [delete]
func (zc *ZoneController) RevokePermission(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")
	targetID := c.Param("userId")

	result := zc.manager.RevokeZonePermission(c.Request.Context(), zoneID, userID, targetID)
	utils.OperationResultResponse(c, result, http.StatusOK)
}

// GetPermissions lists the zone's ACL
// @Summary Get zone permissions
// @Produce json
// @Param zoneId path string true "Zone ID"
// @Success 200 {object} models.APIResponse{data=[]models.ZoneAccessEntry}
// @Router /zones/{zoneId}/permissions [get]
func (zc *ZoneController) GetPermissions(c *gin.Context) {
	userID := utils.GetUserID(c)
	zoneID := c.Param("zoneId")

	entries, err := zc.manager.GetZoneAccess(c.Request.Context(), zoneID, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Zone permissions retrieved successfully", entries)
}

// =================== STATS ===================

// GetStats returns engine counters
// @Summary Engine stats
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.EngineStats}
// @Router /stats [get]
func (zc *ZoneController) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, "Engine stats retrieved successfully", zc.manager.Stats())
}
