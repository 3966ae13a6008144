package models

import "time"

// ==================== ZONE EVENTS ====================

type ZoneEventType string

const (
	ZoneEventEnter     ZoneEventType = "enter"
	ZoneEventExit      ZoneEventType = "exit"
	ZoneEventDwell     ZoneEventType = "dwell"
	ZoneEventBreach    ZoneEventType = "breach"
	ZoneEventProximity ZoneEventType = "proximity"
)

type EventLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// ZoneEvent is an immutable record produced by the event-derivation logic.
type ZoneEvent struct {
	ID        string            `json:"id"`
	Type      ZoneEventType     `json:"type"`
	ZoneID    string            `json:"zoneId"`
	ZoneName  string            `json:"zoneName"`
	DeviceID  string            `json:"deviceId"`
	Location  EventLocation     `json:"location"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DevicePosition is the single most recent location report per device.
type DevicePosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ZoneMatch is the outcome of a boundary test against a single zone.
type ZoneMatch struct {
	Zone                 *Zone   `json:"zone"`
	DistanceFromCenter   float64 `json:"distanceFromCenter"`   // meters
	DistanceFromBoundary float64 `json:"distanceFromBoundary"` // negative inside
}

func (m ZoneMatch) Inside() bool {
	return m.DistanceFromBoundary <= 0
}

// ==================== NOTIFICATIONS ====================

type NotificationPriority string

const (
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// ZoneNotification is the payload handed to the external notification sink.
type ZoneNotification struct {
	Type     ZoneEventType        `json:"type"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	ZoneID   string               `json:"zoneId"`
	DeviceID string               `json:"deviceId"`
	Priority NotificationPriority `json:"priority"`
}

// ==================== ENGINE STATS ====================

type EngineStats struct {
	TotalZones         int                     `json:"totalZones"`
	ActiveZones        int                     `json:"activeZones"`
	TrackedDevices     int                     `json:"trackedDevices"`
	PendingDwellTimers int                     `json:"pendingDwellTimers"`
	EventsEmitted      map[ZoneEventType]int64 `json:"eventsEmitted"`
	NotificationsSent  int64                   `json:"notificationsSent"`
	LastEventAt        time.Time               `json:"lastEventAt,omitempty"`
}
