package models

import (
	"time"
)

// ==================== ZONE MODELS ====================

type ZoneType string

const (
	ZoneTypeHome    ZoneType = "home"
	ZoneTypeOffice  ZoneType = "office"
	ZoneTypeSchool  ZoneType = "school"
	ZoneTypeCustom  ZoneType = "custom"
	ZoneTypeNoAlert ZoneType = "no-alert"
	ZoneTypeSafe    ZoneType = "safe"
)

type ZonePriority string

const (
	ZonePriorityLow      ZonePriority = "low"
	ZonePriorityMedium   ZonePriority = "medium"
	ZonePriorityHigh     ZonePriority = "high"
	ZonePriorityCritical ZonePriority = "critical"
)

type ZoneStatus string

const (
	ZoneStatusActive   ZoneStatus = "active"
	ZoneStatusInactive ZoneStatus = "inactive"
	ZoneStatusPaused   ZoneStatus = "paused"
	ZoneStatusArchived ZoneStatus = "archived"
)

// Geometry and membership limits
const (
	MinZoneRadius     = 5     // meters
	MaxZoneRadius     = 10000 // meters
	MaxZoneNameLength = 50
	MaxZonesPerUser   = 50
	MaxHierarchyDepth = 5
)

type Zone struct {
	ID           string            `json:"id" bson:"_id"`
	Name         string            `json:"name" bson:"name"`
	Type         ZoneType          `json:"type" bson:"type"`
	Latitude     float64           `json:"latitude" bson:"latitude"`
	Longitude    float64           `json:"longitude" bson:"longitude"`
	Radius       float64           `json:"radius" bson:"radius"` // meters
	Priority     ZonePriority      `json:"priority" bson:"priority"`
	Status       ZoneStatus        `json:"status" bson:"status"`
	ParentZoneID string            `json:"parentZoneId,omitempty" bson:"parentZoneId,omitempty"`
	ChildZoneIDs []string          `json:"childZoneIds" bson:"childZoneIds"`
	DeviceIDs    []string          `json:"deviceIds" bson:"deviceIds"`
	Settings     ZoneSettings      `json:"settings" bson:"settings"`
	Stats        ZoneStats         `json:"stats" bson:"stats"`
	Metadata     map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedBy    string            `json:"createdBy" bson:"createdBy"`
	CreatedAt    time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type ZoneSettings struct {
	NotifyOnEntry      bool   `json:"notifyOnEntry" bson:"notifyOnEntry"`
	NotifyOnExit       bool   `json:"notifyOnExit" bson:"notifyOnExit"`
	NotifyOnDwell      bool   `json:"notifyOnDwell" bson:"notifyOnDwell"`
	NotifyOnBreach     bool   `json:"notifyOnBreach" bson:"notifyOnBreach"`
	DwellTimeThreshold int    `json:"dwellTimeThreshold" bson:"dwellTimeThreshold"` // minutes
	AutoActivate       bool   `json:"autoActivate" bson:"autoActivate"`
	IsShared           bool   `json:"isShared" bson:"isShared"`
	CustomMessage      string `json:"customMessage,omitempty" bson:"customMessage,omitempty"`
}

// DefaultZoneSettings returns the documented setting defaults merged under
// whatever the caller supplies on create.
func DefaultZoneSettings() ZoneSettings {
	return ZoneSettings{
		NotifyOnEntry:      true,
		NotifyOnExit:       true,
		NotifyOnDwell:      false,
		NotifyOnBreach:     false,
		DwellTimeThreshold: 0,
		AutoActivate:       false,
		IsShared:           false,
	}
}

// ZoneSettingsUpdate carries a partial settings change. Nil fields keep the
// current value, so settings are merged, never replaced wholesale.
type ZoneSettingsUpdate struct {
	NotifyOnEntry      *bool   `json:"notifyOnEntry,omitempty"`
	NotifyOnExit       *bool   `json:"notifyOnExit,omitempty"`
	NotifyOnDwell      *bool   `json:"notifyOnDwell,omitempty"`
	NotifyOnBreach     *bool   `json:"notifyOnBreach,omitempty"`
	DwellTimeThreshold *int    `json:"dwellTimeThreshold,omitempty"`
	AutoActivate       *bool   `json:"autoActivate,omitempty"`
	IsShared           *bool   `json:"isShared,omitempty"`
	CustomMessage      *string `json:"customMessage,omitempty"`
}

// Apply merges the update over base and returns the result.
func (u *ZoneSettingsUpdate) Apply(base ZoneSettings) ZoneSettings {
	if u == nil {
		return base
	}
	if u.NotifyOnEntry != nil {
		base.NotifyOnEntry = *u.NotifyOnEntry
	}
	if u.NotifyOnExit != nil {
		base.NotifyOnExit = *u.NotifyOnExit
	}
	if u.NotifyOnDwell != nil {
		base.NotifyOnDwell = *u.NotifyOnDwell
	}
	if u.NotifyOnBreach != nil {
		base.NotifyOnBreach = *u.NotifyOnBreach
	}
	if u.DwellTimeThreshold != nil {
		base.DwellTimeThreshold = *u.DwellTimeThreshold
	}
	if u.AutoActivate != nil {
		base.AutoActivate = *u.AutoActivate
	}
	if u.IsShared != nil {
		base.IsShared = *u.IsShared
	}
	if u.CustomMessage != nil {
		base.CustomMessage = *u.CustomMessage
	}
	return base
}

type ZoneStats struct {
	TotalEntries  int64     `json:"totalEntries" bson:"totalEntries"`
	TotalExits    int64     `json:"totalExits" bson:"totalExits"`
	AvgDwellTime  float64   `json:"avgDwellTime" bson:"avgDwellTime"` // seconds
	LastActivity  time.Time `json:"lastActivity,omitempty" bson:"lastActivity,omitempty"`
	LastEntryTime time.Time `json:"lastEntryTime,omitempty" bson:"lastEntryTime,omitempty"`
}

// ==================== ACCESS CONTROL ====================

type ZonePermission string

const (
	ZonePermissionViewer ZonePermission = "viewer"
	ZonePermissionMember ZonePermission = "member"
	ZonePermissionAdmin  ZonePermission = "admin"
	ZonePermissionOwner  ZonePermission = "owner"
)

var zonePermissionRank = map[ZonePermission]int{
	ZonePermissionViewer: 1,
	ZonePermissionMember: 2,
	ZonePermissionAdmin:  3,
	ZonePermissionOwner:  4,
}

// Rank returns the ordering value of a permission level, 0 for unknown levels.
func (p ZonePermission) Rank() int {
	return zonePermissionRank[p]
}

func (p ZonePermission) IsValid() bool {
	_, ok := zonePermissionRank[p]
	return ok
}

type ZoneAccessEntry struct {
	UserID     string         `json:"userId" bson:"userId"`
	Permission ZonePermission `json:"permission" bson:"permission"`
	GrantedBy  string         `json:"grantedBy" bson:"grantedBy"`
	GrantedAt  time.Time      `json:"grantedAt" bson:"grantedAt"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

// ==================== VALIDATION ====================

type ZoneValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func ValidZoneType(t ZoneType) bool {
	switch t {
	case ZoneTypeHome, ZoneTypeOffice, ZoneTypeSchool, ZoneTypeCustom, ZoneTypeNoAlert, ZoneTypeSafe:
		return true
	}
	return false
}

func ValidZonePriority(p ZonePriority) bool {
	switch p {
	case ZonePriorityLow, ZonePriorityMedium, ZonePriorityHigh, ZonePriorityCritical:
		return true
	}
	return false
}

func ValidZoneStatus(s ZoneStatus) bool {
	switch s {
	case ZoneStatusActive, ZoneStatusInactive, ZoneStatusPaused, ZoneStatusArchived:
		return true
	}
	return false
}

// ==================== REQUEST MODELS ====================

type CreateZoneRequest struct {
	Name         string            `json:"name" validate:"required,max=50"`
	Type         ZoneType          `json:"type" validate:"required,zone_type"`
	Latitude     float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64           `json:"longitude" validate:"gte=-180,lte=180"`
	Radius       float64           `json:"radius" validate:"gte=5,lte=10000"`
	Priority     ZonePriority      `json:"priority,omitempty" validate:"omitempty,zone_priority"`
	Status       ZoneStatus        `json:"status,omitempty" validate:"omitempty,zone_status"`
	ParentZoneID string              `json:"parentZoneId,omitempty"`
	Settings     *ZoneSettingsUpdate `json:"settings,omitempty"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
}

type UpdateZoneRequest struct {
	Name         *string           `json:"name,omitempty" validate:"omitempty,max=50"`
	Type         *ZoneType         `json:"type,omitempty" validate:"omitempty,zone_type"`
	Latitude     *float64          `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64          `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Radius       *float64          `json:"radius,omitempty" validate:"omitempty,gte=5,lte=10000"`
	Priority     *ZonePriority     `json:"priority,omitempty" validate:"omitempty,zone_priority"`
	Status       *ZoneStatus       `json:"status,omitempty" validate:"omitempty,zone_status"`
	ParentZoneID *string             `json:"parentZoneId,omitempty"`
	Settings     *ZoneSettingsUpdate `json:"settings,omitempty"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
}

type GrantPermissionRequest struct {
	UserID     string         `json:"userId" validate:"required"`
	Permission ZonePermission `json:"permission" validate:"required"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
}

type LocationUpdateRequest struct {
	DeviceID  string   `json:"deviceId" validate:"required"`
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}
