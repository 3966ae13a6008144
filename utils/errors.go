package utils

import (
	"fmt"
	"net/http"

	"zonetrack/models"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	Cause      error       `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// IsServiceError checks if an error is a service error
func IsServiceError(err error) bool {
	_, ok := err.(ServiceError)
	return ok
}

// GetServiceError extracts a ServiceError from an error
func GetServiceError(err error) (ServiceError, bool) {
	if serviceErr, ok := err.(ServiceError); ok {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// Zone engine error constructors. One per recognized error kind; callers
// decide whether to retry after fixing the reported problem.

func NewValidationFailedError(errors []string) error {
	return ServiceError{
		Code:       models.ErrCodeValidationFailed,
		Message:    "Zone validation failed",
		Details:    errors,
		StatusCode: http.StatusBadRequest,
	}
}

func NewZoneNotFoundError(zoneID string) error {
	return ServiceError{
		Code:       models.ErrCodeZoneNotFound,
		Message:    fmt.Sprintf("Zone %s not found", zoneID),
		StatusCode: http.StatusNotFound,
	}
}

func NewParentZoneNotFoundError(parentZoneID string) error {
	return ServiceError{
		Code:       models.ErrCodeParentZoneNotFound,
		Message:    fmt.Sprintf("Parent zone %s not found", parentZoneID),
		StatusCode: http.StatusNotFound,
	}
}

func NewPermissionDeniedError(userID string, required models.ZonePermission) error {
	return ServiceError{
		Code:       models.ErrCodePermissionDenied,
		Message:    fmt.Sprintf("User %s does not have %s permission", userID, required),
		StatusCode: http.StatusForbidden,
	}
}

func NewQuotaExceededError(userID string, limit int) error {
	return ServiceError{
		Code:       models.ErrCodeQuotaExceeded,
		Message:    fmt.Sprintf("User %s has reached the limit of %d zones", userID, limit),
		StatusCode: http.StatusConflict,
	}
}

func NewHierarchyInvalidError(reason string) error {
	return ServiceError{
		Code:       models.ErrCodeHierarchyInvalid,
		Message:    fmt.Sprintf("Invalid zone hierarchy: %s", reason),
		StatusCode: http.StatusBadRequest,
	}
}

func NewHasChildrenError(zoneID string) error {
	return ServiceError{
		Code:       models.ErrCodeHasChildren,
		Message:    fmt.Sprintf("Zone %s has child zones, delete children first", zoneID),
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) error {
	return ServiceError{
		Code:       models.ErrCodeInternal,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewDatabaseError(operation string, cause error) error {
	return ServiceError{
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("Storage operation failed: %s", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// ToOperationError converts any error into the structured envelope error.
// Non-ServiceError values are wrapped as internal failures with the original
// error attached as details.
func ToOperationError(err error) *models.OperationError {
	if serviceErr, ok := GetServiceError(err); ok {
		return &models.OperationError{
			Code:    serviceErr.Code,
			Message: serviceErr.Message,
			Details: serviceErr.Details,
		}
	}
	return &models.OperationError{
		Code:    models.ErrCodeInternal,
		Message: "Unexpected error",
		Details: err.Error(),
	}
}
