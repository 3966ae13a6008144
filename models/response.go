package models

import "time"

// ==================== OPERATION RESULTS ====================

// ZoneOperationResult is the structured envelope every zone-mutating
// operation returns instead of a bare error. Unexpected panics inside an
// operation are recovered at the method boundary and converted into this
// same failure shape.
type ZoneOperationResult struct {
	Success   bool            `json:"success"`
	Zone      *Zone           `json:"zone,omitempty"`
	Error     *OperationError `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Operation string          `json:"operation"`
}

type OperationError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Recognized operation error codes. None of these are retried automatically.
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeZoneNotFound       = "ZONE_NOT_FOUND"
	ErrCodeParentZoneNotFound = "PARENT_ZONE_NOT_FOUND"
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrCodeHierarchyInvalid   = "HIERARCHY_INVALID"
	ErrCodeHasChildren        = "HAS_CHILDREN"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ==================== API RESPONSES ====================

// Standard API response wrapper for the HTTP surface.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}
