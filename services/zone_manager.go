package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"zonetrack/interfaces"
	"zonetrack/models"
	"zonetrack/utils"
	"zonetrack/workers"

	"github.com/sirupsen/logrus"
)

// ZoneManager owns all zone definitions, device-to-zone assignment, spatial
// membership testing, hierarchy validation, dwell-time scheduling, and event
// dispatch. One mutex serializes every state transition; events are derived
// under the lock and dispatched after it is released so listeners may
// re-enter the engine.
type ZoneManager struct {
	repo      interfaces.ZoneRepository
	sink      interfaces.NotificationSink
	clock     interfaces.Clock
	scheduler *workers.DwellScheduler

	mutex         sync.Mutex
	deviceZones   map[string]string // deviceID -> zoneID, 1:1
	lastPositions map[string]models.DevicePosition

	listenerMutex sync.RWMutex
	listeners     map[int]interfaces.EventListener
	nextListener  int

	statsMutex sync.RWMutex
	stats      models.EngineStats
}

func NewZoneManager(
	repo interfaces.ZoneRepository,
	sink interfaces.NotificationSink,
	clock interfaces.Clock,
) *ZoneManager {
	zm := &ZoneManager{
		repo:          repo,
		sink:          sink,
		clock:         clock,
		deviceZones:   make(map[string]string),
		lastPositions: make(map[string]models.DevicePosition),
		listeners:     make(map[int]interfaces.EventListener),
		stats: models.EngineStats{
			EventsEmitted: make(map[models.ZoneEventType]int64),
		},
	}
	zm.scheduler = workers.NewDwellScheduler(clock, zm.fireDwellTimer)
	return zm
}

// Scheduler exposes the dwell scheduler so main can run it.
func (zm *ZoneManager) Scheduler() *workers.DwellScheduler {
	return zm.scheduler
}

// Repository exposes the backing store for health checks.
func (zm *ZoneManager) Repository() interfaces.ZoneRepository {
	return zm.repo
}

// ==================== VALIDATION ====================

// ValidateZoneInput applies every field rule independently and collects all
// violations. Overlap with existing zone circles is reported as a single
// aggregate warning, never an error.
func (zm *ZoneManager) ValidateZoneInput(ctx context.Context, req models.CreateZoneRequest) models.ZoneValidationResult {
	return zm.validateZoneInput(ctx, req, "")
}

func (zm *ZoneManager) validateZoneInput(ctx context.Context, req models.CreateZoneRequest, excludeZoneID string) models.ZoneValidationResult {
	result := utils.ValidateZoneDefinition(req)

	zones, err := zm.repo.List(ctx)
	if err != nil {
		logrus.Errorf("Overlap check skipped, listing zones failed: %v", err)
		return result
	}

	overlaps := 0
	for _, zone := range zones {
		if zone.ID == excludeZoneID {
			continue
		}
		if utils.CirclesOverlap(req.Latitude, req.Longitude, req.Radius, zone.Latitude, zone.Longitude, zone.Radius) {
			overlaps++
		}
	}
	if overlaps > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("zone overlaps with %d existing zone(s)", overlaps))
	}

	return result
}

// validateHierarchy walks the parent chain starting at parentZoneID and
// rejects cycles, links back to zoneID itself, and chains longer than
// MaxHierarchyDepth. Must be called with the prospective link BEFORE the
// zone is attached to the new parent.
func (zm *ZoneManager) validateHierarchy(ctx context.Context, zoneID, parentZoneID string) bool {
	visited := make(map[string]bool)
	current := parentZoneID
	depth := 0

	for current != "" {
		if current == zoneID {
			return false
		}
		if visited[current] {
			return false
		}
		visited[current] = true

		depth++
		if depth > models.MaxHierarchyDepth {
			return false
		}

		zone, err := zm.repo.Get(ctx, current)
		if err != nil || zone == nil {
			break
		}
		current = zone.ParentZoneID
	}

	return true
}

// ==================== ZONE CRUD ====================

func (zm *ZoneManager) CreateZone(ctx context.Context, req models.CreateZoneRequest, createdBy string) (result models.ZoneOperationResult) {
	const operation = "create_zone"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	validation := zm.validateZoneInput(ctx, req, "")
	for _, warning := range validation.Warnings {
		logrus.Warnf("Zone %q: %s", req.Name, warning)
	}
	if !validation.IsValid {
		return zm.failure(operation, utils.NewValidationFailedError(validation.Errors))
	}

	count, err := zm.repo.CountByCreator(ctx, createdBy)
	if err != nil {
		return zm.failure(operation, err)
	}
	if count >= models.MaxZonesPerUser {
		return zm.failure(operation, utils.NewQuotaExceededError(createdBy, models.MaxZonesPerUser))
	}

	// The id is generated before the hierarchy check so a self-referencing
	// parent link is caught.
	zoneID := utils.GenerateUUID()

	var parent *models.Zone
	if req.ParentZoneID != "" {
		parent, err = zm.repo.Get(ctx, req.ParentZoneID)
		if err != nil {
			return zm.failure(operation, err)
		}
		if parent == nil {
			return zm.failure(operation, utils.NewParentZoneNotFoundError(req.ParentZoneID))
		}
		if !zm.validateHierarchy(ctx, zoneID, req.ParentZoneID) {
			return zm.failure(operation, utils.NewHierarchyInvalidError("cycle or depth limit exceeded"))
		}
	}

	now := zm.clock.Now()

	priority := req.Priority
	if priority == "" {
		priority = models.ZonePriorityMedium
	}
	status := req.Status
	if status == "" {
		status = models.ZoneStatusActive
	}

	settings := req.Settings.Apply(models.DefaultZoneSettings())
	if settings.AutoActivate && status == models.ZoneStatusInactive {
		status = models.ZoneStatusActive
	}

	zone := models.Zone{
		ID:           zoneID,
		Name:         strings.TrimSpace(req.Name),
		Type:         req.Type,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Radius:       req.Radius,
		Priority:     priority,
		Status:       status,
		ParentZoneID: req.ParentZoneID,
		ChildZoneIDs: []string{},
		DeviceIDs:    []string{},
		Settings:     settings,
		Metadata:     req.Metadata,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := zm.repo.Insert(ctx, &zone); err != nil {
		return zm.failure(operation, err)
	}

	if parent != nil {
		parent.ChildZoneIDs = append(parent.ChildZoneIDs, zoneID)
		parent.UpdatedAt = now
		if err := zm.repo.Update(ctx, parent); err != nil {
			return zm.failure(operation, err)
		}
	}

	access := []models.ZoneAccessEntry{{
		UserID:     createdBy,
		Permission: models.ZonePermissionOwner,
		GrantedBy:  createdBy,
		GrantedAt:  now,
	}}
	if err := zm.repo.SetAccess(ctx, zoneID, access); err != nil {
		return zm.failure(operation, err)
	}

	zm.statsMutex.Lock()
	zm.stats.TotalZones++
	if zone.Status == models.ZoneStatusActive {
		zm.stats.ActiveZones++
	}
	zm.statsMutex.Unlock()

	logrus.Infof("Zone %q created by %s (%s)", zone.Name, createdBy, zoneID)
	return zm.success(operation, &zone)
}

func (zm *ZoneManager) UpdateZone(ctx context.Context, zoneID string, req models.UpdateZoneRequest, updatedBy string) (result models.ZoneOperationResult) {
	const operation = "update_zone"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}
	if zone == nil {
		return zm.failure(operation, utils.NewZoneNotFoundError(zoneID))
	}

	if !zm.hasPermission(ctx, zoneID, updatedBy, models.ZonePermissionAdmin) {
		return zm.failure(operation, utils.NewPermissionDeniedError(updatedBy, models.ZonePermissionAdmin))
	}

	wasActive := zone.Status == models.ZoneStatusActive

	// Merge updates over the existing record. ID and CreatedAt are immutable.
	merged := *zone
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Type != nil {
		merged.Type = *req.Type
	}
	if req.Latitude != nil {
		merged.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		merged.Longitude = *req.Longitude
	}
	if req.Radius != nil {
		merged.Radius = *req.Radius
	}
	if req.Priority != nil {
		merged.Priority = *req.Priority
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}
	merged.Settings = req.Settings.Apply(zone.Settings)
	if req.Metadata != nil {
		if merged.Metadata == nil {
			merged.Metadata = make(map[string]string)
		} else {
			copied := make(map[string]string, len(zone.Metadata))
			for k, v := range zone.Metadata {
				copied[k] = v
			}
			merged.Metadata = copied
		}
		for k, v := range req.Metadata {
			merged.Metadata[k] = v
		}
	}

	validation := zm.validateZoneInput(ctx, models.CreateZoneRequest{
		Name:      merged.Name,
		Type:      merged.Type,
		Latitude:  merged.Latitude,
		Longitude: merged.Longitude,
		Radius:    merged.Radius,
		Priority:  merged.Priority,
		Status:    merged.Status,
	}, zoneID)
	if !validation.IsValid {
		return zm.failure(operation, utils.NewValidationFailedError(validation.Errors))
	}

	now := zm.clock.Now()

	if req.ParentZoneID != nil && *req.ParentZoneID != zone.ParentZoneID {
		newParentID := *req.ParentZoneID

		if newParentID != "" {
			newParent, err := zm.repo.Get(ctx, newParentID)
			if err != nil {
				return zm.failure(operation, err)
			}
			if newParent == nil {
				return zm.failure(operation, utils.NewParentZoneNotFoundError(newParentID))
			}
			if !zm.validateHierarchy(ctx, zoneID, newParentID) {
				return zm.failure(operation, utils.NewHierarchyInvalidError("cycle or depth limit exceeded"))
			}
		}

		if zone.ParentZoneID != "" {
			oldParent, err := zm.repo.Get(ctx, zone.ParentZoneID)
			if err == nil && oldParent != nil {
				oldParent.ChildZoneIDs = utils.RemoveStringFromSlice(oldParent.ChildZoneIDs, zoneID)
				oldParent.UpdatedAt = now
				if err := zm.repo.Update(ctx, oldParent); err != nil {
					return zm.failure(operation, err)
				}
			}
		}

		if newParentID != "" {
			newParent, err := zm.repo.Get(ctx, newParentID)
			if err != nil || newParent == nil {
				return zm.failure(operation, utils.NewParentZoneNotFoundError(newParentID))
			}
			if !utils.StringSliceContains(newParent.ChildZoneIDs, zoneID) {
				newParent.ChildZoneIDs = append(newParent.ChildZoneIDs, zoneID)
			}
			newParent.UpdatedAt = now
			if err := zm.repo.Update(ctx, newParent); err != nil {
				return zm.failure(operation, err)
			}
		}

		merged.ParentZoneID = newParentID
	}

	merged.UpdatedAt = now
	if err := zm.repo.Update(ctx, &merged); err != nil {
		return zm.failure(operation, err)
	}

	isActive := merged.Status == models.ZoneStatusActive
	if wasActive != isActive {
		zm.statsMutex.Lock()
		if isActive {
			zm.stats.ActiveZones++
		} else {
			zm.stats.ActiveZones--
		}
		zm.statsMutex.Unlock()
	}

	logrus.Infof("Zone %s updated by %s", zoneID, updatedBy)
	return zm.success(operation, &merged)
}

func (zm *ZoneManager) DeleteZone(ctx context.Context, zoneID, deletedBy string) (result models.ZoneOperationResult) {
	const operation = "delete_zone"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}
	if zone == nil {
		return zm.failure(operation, utils.NewZoneNotFoundError(zoneID))
	}

	if !zm.hasPermission(ctx, zoneID, deletedBy, models.ZonePermissionOwner) {
		return zm.failure(operation, utils.NewPermissionDeniedError(deletedBy, models.ZonePermissionOwner))
	}

	// No cascading delete: children must be removed first. Nothing is
	// mutated on this rejection.
	if len(zone.ChildZoneIDs) > 0 {
		return zm.failure(operation, utils.NewHasChildrenError(zoneID))
	}

	for _, deviceID := range zone.DeviceIDs {
		if zm.deviceZones[deviceID] == zoneID {
			delete(zm.deviceZones, deviceID)
		}
	}

	if zone.ParentZoneID != "" {
		parent, err := zm.repo.Get(ctx, zone.ParentZoneID)
		if err == nil && parent != nil {
			parent.ChildZoneIDs = utils.RemoveStringFromSlice(parent.ChildZoneIDs, zoneID)
			parent.UpdatedAt = zm.clock.Now()
			if err := zm.repo.Update(ctx, parent); err != nil {
				return zm.failure(operation, err)
			}
		}
	}

	zm.scheduler.CancelZone(zoneID)

	if err := zm.repo.Delete(ctx, zoneID); err != nil {
		return zm.failure(operation, err)
	}
	if err := zm.repo.DeleteAccess(ctx, zoneID); err != nil {
		return zm.failure(operation, err)
	}

	zm.statsMutex.Lock()
	zm.stats.TotalZones--
	if zone.Status == models.ZoneStatusActive {
		zm.stats.ActiveZones--
	}
	zm.statsMutex.Unlock()

	logrus.Infof("Zone %q deleted by %s", zone.Name, deletedBy)
	return zm.success(operation, nil)
}

// GetZone returns the zone record, or a ZONE_NOT_FOUND error.
func (zm *ZoneManager) GetZone(ctx context.Context, zoneID string) (*models.Zone, error) {
	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, utils.NewZoneNotFoundError(zoneID)
	}
	return zone, nil
}

// GetUserZones returns every zone the user can see through its ACL.
func (zm *ZoneManager) GetUserZones(ctx context.Context, userID string) ([]*models.Zone, error) {
	zones, err := zm.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var visible []*models.Zone
	for _, zone := range zones {
		if zm.hasPermission(ctx, zone.ID, userID, models.ZonePermissionViewer) {
			visible = append(visible, zone)
		}
	}
	return visible, nil
}

// GetZoneDevices returns the device ids currently inside the zone.
func (zm *ZoneManager) GetZoneDevices(ctx context.Context, zoneID string) ([]string, error) {
	zone, err := zm.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	return zone.DeviceIDs, nil
}

// ==================== DEVICE-ZONE ASSIGNMENT ====================

// AddDeviceToZone assigns a device to a zone. A device occupies at most one
// zone; entering a new zone implicitly removes it from the previous one.
// Assignment does not check permissions, it is driven by the location
// pipeline rather than direct user action.
func (zm *ZoneManager) AddDeviceToZone(ctx context.Context, zoneID, deviceID string) (result models.ZoneOperationResult) {
	const operation = "add_device_to_zone"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.addDeviceLocked(ctx, zoneID, deviceID)
	if err != nil {
		return zm.failure(operation, err)
	}
	return zm.success(operation, zone)
}

// RemoveDeviceFromZone removes a device from a zone, clears its assignment,
// and cancels any pending dwell timer for the pair.
func (zm *ZoneManager) RemoveDeviceFromZone(ctx context.Context, zoneID, deviceID string) (result models.ZoneOperationResult) {
	const operation = "remove_device_from_zone"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.removeDeviceLocked(ctx, zoneID, deviceID)
	if err != nil {
		return zm.failure(operation, err)
	}
	return zm.success(operation, zone)
}

func (zm *ZoneManager) addDeviceLocked(ctx context.Context, zoneID, deviceID string) (*models.Zone, error) {
	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, utils.NewZoneNotFoundError(zoneID)
	}

	// The old assignment must be cleared before the new one is recorded.
	if currentZoneID, ok := zm.deviceZones[deviceID]; ok && currentZoneID != zoneID {
		if _, err := zm.removeDeviceLocked(ctx, currentZoneID, deviceID); err != nil {
			logrus.Warnf("Failed to remove device %s from previous zone %s: %v", deviceID, currentZoneID, err)
		}
	}

	if !utils.StringSliceContains(zone.DeviceIDs, deviceID) {
		zone.DeviceIDs = append(zone.DeviceIDs, deviceID)
		zone.UpdatedAt = zm.clock.Now()
		if err := zm.repo.Update(ctx, zone); err != nil {
			return nil, err
		}
	}

	zm.deviceZones[deviceID] = zoneID
	return zone, nil
}

func (zm *ZoneManager) removeDeviceLocked(ctx context.Context, zoneID, deviceID string) (*models.Zone, error) {
	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, utils.NewZoneNotFoundError(zoneID)
	}

	if utils.StringSliceContains(zone.DeviceIDs, deviceID) {
		zone.DeviceIDs = utils.RemoveStringFromSlice(zone.DeviceIDs, deviceID)
		zone.UpdatedAt = zm.clock.Now()
		if err := zm.repo.Update(ctx, zone); err != nil {
			return nil, err
		}
	}

	delete(zm.deviceZones, deviceID)
	zm.scheduler.Cancel(zoneID, deviceID)

	return zone, nil
}

// GetDeviceZone returns the zone currently assigned to a device.
func (zm *ZoneManager) GetDeviceZone(deviceID string) (string, bool) {
	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zoneID, ok := zm.deviceZones[deviceID]
	return zoneID, ok
}

// GetLastPosition returns the device's most recent reported position.
func (zm *ZoneManager) GetLastPosition(deviceID string) (models.DevicePosition, bool) {
	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	pos, ok := zm.lastPositions[deviceID]
	return pos, ok
}

// ==================== ACCESS CONTROL ====================

// HasZonePermission reports whether the user holds at least the required
// permission on the zone. The check is flat: child zones do not inherit
// parent ACLs. Expired grants never match.
func (zm *ZoneManager) HasZonePermission(ctx context.Context, zoneID, userID string, required models.ZonePermission) bool {
	return zm.hasPermission(ctx, zoneID, userID, required)
}

func (zm *ZoneManager) hasPermission(ctx context.Context, zoneID, userID string, required models.ZonePermission) bool {
	entries, err := zm.repo.GetAccess(ctx, zoneID)
	if err != nil {
		logrus.Errorf("Failed to load ACL for zone %s: %v", zoneID, err)
		return false
	}

	for _, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		if entry.ExpiresAt != nil && entry.ExpiresAt.Before(zm.clock.Now()) {
			return false
		}
		return entry.Permission.Rank() >= required.Rank()
	}
	return false
}

// GrantZonePermission adds or replaces an ACL entry. Granting requires
// admin; granting owner requires owner.
func (zm *ZoneManager) GrantZonePermission(ctx context.Context, zoneID, grantedBy string, req models.GrantPermissionRequest) (result models.ZoneOperationResult) {
	const operation = "grant_zone_permission"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}
	if zone == nil {
		return zm.failure(operation, utils.NewZoneNotFoundError(zoneID))
	}

	if !req.Permission.IsValid() {
		return zm.failure(operation, utils.NewValidationFailedError([]string{
			fmt.Sprintf("permission %q is not a valid permission level", req.Permission),
		}))
	}

	requiredRank := models.ZonePermissionAdmin
	if req.Permission == models.ZonePermissionOwner {
		requiredRank = models.ZonePermissionOwner
	}
	if !zm.hasPermission(ctx, zoneID, grantedBy, requiredRank) {
		return zm.failure(operation, utils.NewPermissionDeniedError(grantedBy, requiredRank))
	}

	entries, err := zm.repo.GetAccess(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}

	entry := models.ZoneAccessEntry{
		UserID:     req.UserID,
		Permission: req.Permission,
		GrantedBy:  grantedBy,
		GrantedAt:  zm.clock.Now(),
		ExpiresAt:  req.ExpiresAt,
	}

	replaced := false
	for i := range entries {
		if entries[i].UserID == req.UserID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := zm.repo.SetAccess(ctx, zoneID, entries); err != nil {
		return zm.failure(operation, err)
	}

	logrus.Infof("Permission %s on zone %s granted to %s by %s", req.Permission, zoneID, req.UserID, grantedBy)
	return zm.success(operation, zone)
}

// RevokeZonePermission removes a user's ACL entry. Revoking requires admin;
// revoking an owner requires owner.
func (zm *ZoneManager) RevokeZonePermission(ctx context.Context, zoneID, revokedBy, userID string) (result models.ZoneOperationResult) {
	const operation = "revoke_zone_permission"
	defer zm.recoverOperation(operation, &result)

	zm.mutex.Lock()
	defer zm.mutex.Unlock()

	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}
	if zone == nil {
		return zm.failure(operation, utils.NewZoneNotFoundError(zoneID))
	}

	entries, err := zm.repo.GetAccess(ctx, zoneID)
	if err != nil {
		return zm.failure(operation, err)
	}

	requiredRank := models.ZonePermissionAdmin
	for _, entry := range entries {
		if entry.UserID == userID && entry.Permission == models.ZonePermissionOwner {
			requiredRank = models.ZonePermissionOwner
		}
	}
	if !zm.hasPermission(ctx, zoneID, revokedBy, requiredRank) {
		return zm.failure(operation, utils.NewPermissionDeniedError(revokedBy, requiredRank))
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if entry.UserID != userID {
			filtered = append(filtered, entry)
		}
	}

	if err := zm.repo.SetAccess(ctx, zoneID, filtered); err != nil {
		return zm.failure(operation, err)
	}

	logrus.Infof("Permissions on zone %s revoked for %s by %s", zoneID, userID, revokedBy)
	return zm.success(operation, zone)
}

// GetZoneAccess returns the zone's ACL. Requires admin.
func (zm *ZoneManager) GetZoneAccess(ctx context.Context, zoneID, userID string) ([]models.ZoneAccessEntry, error) {
	if _, err := zm.GetZone(ctx, zoneID); err != nil {
		return nil, err
	}
	if !zm.hasPermission(ctx, zoneID, userID, models.ZonePermissionAdmin) {
		return nil, utils.NewPermissionDeniedError(userID, models.ZonePermissionAdmin)
	}
	return zm.repo.GetAccess(ctx, zoneID)
}

// ==================== STATS ====================

func (zm *ZoneManager) Stats() models.EngineStats {
	zm.mutex.Lock()
	tracked := len(zm.lastPositions)
	zm.mutex.Unlock()

	zm.statsMutex.RLock()
	stats := zm.stats
	stats.EventsEmitted = make(map[models.ZoneEventType]int64, len(zm.stats.EventsEmitted))
	for k, v := range zm.stats.EventsEmitted {
		stats.EventsEmitted[k] = v
	}
	zm.statsMutex.RUnlock()

	stats.TrackedDevices = tracked
	stats.PendingDwellTimers = zm.scheduler.Pending()
	return stats
}

// ==================== RESULT HELPERS ====================

func (zm *ZoneManager) success(operation string, zone *models.Zone) models.ZoneOperationResult {
	return models.ZoneOperationResult{
		Success:   true,
		Zone:      zone,
		Timestamp: zm.clock.Now(),
		Operation: operation,
	}
}

func (zm *ZoneManager) failure(operation string, err error) models.ZoneOperationResult {
	logrus.Debugf("Operation %s failed: %v", operation, err)
	return models.ZoneOperationResult{
		Success:   false,
		Error:     utils.ToOperationError(err),
		Timestamp: zm.clock.Now(),
		Operation: operation,
	}
}

// recoverOperation converts a panic inside a mutating operation into the
// structured failure envelope instead of unwinding into the caller.
func (zm *ZoneManager) recoverOperation(operation string, result *models.ZoneOperationResult) {
	if r := recover(); r != nil {
		logrus.Errorf("Recovered panic in %s: %v", operation, r)
		*result = models.ZoneOperationResult{
			Success: false,
			Error: &models.OperationError{
				Code:    models.ErrCodeInternal,
				Message: fmt.Sprintf("Unexpected failure in %s", operation),
				Details: fmt.Sprintf("%v", r),
			},
			Timestamp: zm.clock.Now(),
			Operation: operation,
		}
	}
}
