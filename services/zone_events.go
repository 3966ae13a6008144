package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"zonetrack/interfaces"
	"zonetrack/models"
	"zonetrack/utils"

	"github.com/sirupsen/logrus"
)

// ==================== LISTENERS ====================

// AddEventListener registers a callback invoked synchronously for every
// emitted zone event. Returns a handle for RemoveEventListener.
func (zm *ZoneManager) AddEventListener(listener interfaces.EventListener) int {
	zm.listenerMutex.Lock()
	defer zm.listenerMutex.Unlock()

	id := zm.nextListener
	zm.nextListener++
	zm.listeners[id] = listener
	return id
}

func (zm *ZoneManager) RemoveEventListener(id int) {
	zm.listenerMutex.Lock()
	defer zm.listenerMutex.Unlock()
	delete(zm.listeners, id)
}

// ==================== BOUNDARY TESTING ====================

// CheckDeviceInZone tests a position against zone boundaries. With a zoneID
// it tests that single zone; with an empty zoneID it tests every active zone
// and returns the best match, breaking ties between overlapping zones by the
// smallest absolute distance from the boundary. Returns nil when the
// position is inside no zone.
func (zm *ZoneManager) CheckDeviceInZone(ctx context.Context, deviceID string, latitude, longitude float64, zoneID string) (*models.ZoneMatch, error) {
	if zoneID != "" {
		zone, err := zm.repo.Get(ctx, zoneID)
		if err != nil {
			return nil, err
		}
		if zone == nil {
			return nil, utils.NewZoneNotFoundError(zoneID)
		}
		match := matchZone(zone, latitude, longitude)
		if !match.Inside() {
			return nil, nil
		}
		return &match, nil
	}

	zones, err := zm.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var best *models.ZoneMatch
	for _, zone := range zones {
		if zone.Status != models.ZoneStatusActive {
			continue
		}
		match := matchZone(zone, latitude, longitude)
		if !match.Inside() {
			continue
		}
		if best == nil || math.Abs(match.DistanceFromBoundary) < math.Abs(best.DistanceFromBoundary) {
			m := match
			best = &m
		}
	}
	return best, nil
}

func matchZone(zone *models.Zone, latitude, longitude float64) models.ZoneMatch {
	center := utils.CalculateDistance(latitude, longitude, zone.Latitude, zone.Longitude)
	return models.ZoneMatch{
		Zone:                 zone,
		DistanceFromCenter:   center,
		DistanceFromBoundary: center - zone.Radius,
	}
}

// ==================== LOCATION PIPELINE ====================

// ProcessLocationUpdate runs one position report through every active zone
// and derives enter and exit events from the membership change. Each zone is
// tested independently against the report; the device-to-zone assignment
// recorded before the update decides which transitions count. Derived events
// are dispatched after the engine lock is released.
func (zm *ZoneManager) ProcessLocationUpdate(ctx context.Context, req models.LocationUpdateRequest) ([]models.ZoneEvent, error) {
	zm.mutex.Lock()

	now := zm.clock.Now()
	zm.lastPositions[req.DeviceID] = models.DevicePosition{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Timestamp: now,
	}

	currentZoneID := zm.deviceZones[req.DeviceID]

	zones, err := zm.repo.List(ctx)
	if err != nil {
		zm.mutex.Unlock()
		return nil, err
	}

	location := models.EventLocation{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
	}

	var events []models.ZoneEvent
	for _, zone := range zones {
		if zone.Status != models.ZoneStatusActive {
			continue
		}

		match := matchZone(zone, req.Latitude, req.Longitude)
		inside := match.Inside()
		wasIn := currentZoneID == zone.ID

		switch {
		case inside && !wasIn:
			updated, err := zm.addDeviceLocked(ctx, zone.ID, req.DeviceID)
			if err != nil {
				logrus.Errorf("Failed to add device %s to zone %s: %v", req.DeviceID, zone.ID, err)
				continue
			}

			updated.Stats.TotalEntries++
			updated.Stats.LastEntryTime = now
			updated.Stats.LastActivity = now
			if err := zm.repo.Update(ctx, updated); err != nil {
				logrus.Errorf("Failed to record entry stats for zone %s: %v", zone.ID, err)
			}

			events = append(events, zm.newEvent(models.ZoneEventEnter, updated, req.DeviceID, location, now))

			if updated.Settings.NotifyOnDwell && updated.Settings.DwellTimeThreshold > 0 {
				delay := time.Duration(updated.Settings.DwellTimeThreshold) * time.Minute
				zm.scheduler.Schedule(updated.ID, req.DeviceID, delay)
			}

		case !inside && wasIn:
			updated, err := zm.removeDeviceLocked(ctx, zone.ID, req.DeviceID)
			if err != nil {
				logrus.Errorf("Failed to remove device %s from zone %s: %v", req.DeviceID, zone.ID, err)
				continue
			}

			updated.Stats.TotalExits++
			updated.Stats.LastActivity = now
			if !updated.Stats.LastEntryTime.IsZero() {
				dwell := now.Sub(updated.Stats.LastEntryTime).Seconds()
				if dwell >= 0 {
					if updated.Stats.AvgDwellTime == 0 {
						updated.Stats.AvgDwellTime = dwell
					} else {
						updated.Stats.AvgDwellTime = (updated.Stats.AvgDwellTime + dwell) / 2
					}
				}
			}
			if err := zm.repo.Update(ctx, updated); err != nil {
				logrus.Errorf("Failed to record exit stats for zone %s: %v", zone.ID, err)
			}

			events = append(events, zm.newEvent(models.ZoneEventExit, updated, req.DeviceID, location, now))
		}
	}

	zm.mutex.Unlock()

	for _, event := range events {
		zm.dispatchEvent(event)
	}
	return events, nil
}

func (zm *ZoneManager) newEvent(eventType models.ZoneEventType, zone *models.Zone, deviceID string, location models.EventLocation, at time.Time) models.ZoneEvent {
	return models.ZoneEvent{
		ID:        utils.GenerateUUID(),
		Type:      eventType,
		ZoneID:    zone.ID,
		ZoneName:  zone.Name,
		DeviceID:  deviceID,
		Location:  location,
		Timestamp: at,
	}
}

// ==================== DWELL ====================

// fireDwellTimer is the scheduler callback. The timer is one-shot and fires
// on schedule without re-verifying containment; a device that slipped out
// without an exit event still produces the dwell event.
func (zm *ZoneManager) fireDwellTimer(zoneID, deviceID string) {
	ctx := context.Background()

	zm.mutex.Lock()

	zone, err := zm.repo.Get(ctx, zoneID)
	if err != nil || zone == nil {
		zm.mutex.Unlock()
		logrus.Warnf("Dwell timer fired for missing zone %s, dropping", zoneID)
		return
	}

	now := zm.clock.Now()
	location := models.EventLocation{}
	if pos, ok := zm.lastPositions[deviceID]; ok {
		location.Latitude = pos.Latitude
		location.Longitude = pos.Longitude
		location.Accuracy = pos.Accuracy
	}

	zone.Stats.LastActivity = now
	if err := zm.repo.Update(ctx, zone); err != nil {
		logrus.Errorf("Failed to record dwell activity for zone %s: %v", zoneID, err)
	}

	event := zm.newEvent(models.ZoneEventDwell, zone, deviceID, location, now)

	zm.mutex.Unlock()

	zm.dispatchEvent(event)
}

// ==================== DISPATCH ====================

// dispatchEvent delivers the event to every listener and, when the zone's
// settings ask for it, to the notification sink. A panicking listener is
// isolated and logged; the remaining listeners still run.
func (zm *ZoneManager) dispatchEvent(event models.ZoneEvent) {
	zm.listenerMutex.RLock()
	snapshot := make([]interfaces.EventListener, 0, len(zm.listeners))
	for _, listener := range zm.listeners {
		snapshot = append(snapshot, listener)
	}
	zm.listenerMutex.RUnlock()

	for _, listener := range snapshot {
		zm.invokeListener(listener, event)
	}

	zm.statsMutex.Lock()
	zm.stats.EventsEmitted[event.Type]++
	zm.stats.LastEventAt = event.Timestamp
	zm.statsMutex.Unlock()

	zm.notify(event)
}

func (zm *ZoneManager) invokeListener(listener interfaces.EventListener, event models.ZoneEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Zone event listener panicked on %s event for zone %s: %v", event.Type, event.ZoneID, r)
		}
	}()
	listener(event)
}

func (zm *ZoneManager) notify(event models.ZoneEvent) {
	ctx := context.Background()

	zone, err := zm.repo.Get(ctx, event.ZoneID)
	if err != nil || zone == nil {
		return
	}

	var enabled bool
	switch event.Type {
	case models.ZoneEventEnter:
		enabled = zone.Settings.NotifyOnEntry
	case models.ZoneEventExit:
		enabled = zone.Settings.NotifyOnExit
	case models.ZoneEventDwell:
		enabled = zone.Settings.NotifyOnDwell
	case models.ZoneEventBreach:
		enabled = zone.Settings.NotifyOnBreach
	}
	if !enabled {
		return
	}

	priority := models.NotificationPriorityMedium
	if zone.Priority == models.ZonePriorityCritical {
		priority = models.NotificationPriorityHigh
	}

	message := zone.Settings.CustomMessage
	if message == "" {
		message = defaultNotificationMessage(event.Type, event.DeviceID, zone.Name)
	}

	zm.sink.ShowNotification(models.ZoneNotification{
		Type:     event.Type,
		Title:    fmt.Sprintf("Zone %s", event.Type),
		Message:  message,
		ZoneID:   event.ZoneID,
		DeviceID: event.DeviceID,
		Priority: priority,
	})

	zm.statsMutex.Lock()
	zm.stats.NotificationsSent++
	zm.statsMutex.Unlock()
}

func defaultNotificationMessage(eventType models.ZoneEventType, deviceID, zoneName string) string {
	switch eventType {
	case models.ZoneEventEnter:
		return fmt.Sprintf("Device %s entered %s", deviceID, zoneName)
	case models.ZoneEventExit:
		return fmt.Sprintf("Device %s left %s", deviceID, zoneName)
	case models.ZoneEventDwell:
		return fmt.Sprintf("Device %s is still in %s", deviceID, zoneName)
	default:
		return fmt.Sprintf("Device %s triggered a %s alert in %s", deviceID, eventType, zoneName)
	}
}
