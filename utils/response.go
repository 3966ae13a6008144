package utils

import (
	"net/http"
	"time"

	"zonetrack/models"

	"github.com/gin-gonic/gin"
)

// Success responses
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

func ValidationErrorResponse(c *gin.Context, validationErrors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Validation failed", validationErrors)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationFailed, message, nil)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	ErrorResponse(c, http.StatusForbidden, models.ErrCodePermissionDenied, message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, models.ErrCodeZoneNotFound, resource+" not found", nil)
}

func InternalServerErrorResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternal, message, nil)
}

// ServiceErrorResponse maps a ServiceError to the matching HTTP response.
func ServiceErrorResponse(c *gin.Context, err error) {
	if serviceErr, ok := GetServiceError(err); ok {
		status := serviceErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		ErrorResponse(c, status, serviceErr.Code, serviceErr.Message, serviceErr.Details)
		return
	}
	InternalServerErrorResponse(c, "Internal server error")
}

// OperationResultResponse writes a zone operation envelope with the HTTP
// status derived from its error code.
func OperationResultResponse(c *gin.Context, result models.ZoneOperationResult, successStatus int) {
	if result.Success {
		c.JSON(successStatus, result)
		return
	}

	status := http.StatusInternalServerError
	if result.Error != nil {
		switch result.Error.Code {
		case models.ErrCodeValidationFailed, models.ErrCodeHierarchyInvalid:
			status = http.StatusBadRequest
		case models.ErrCodeZoneNotFound, models.ErrCodeParentZoneNotFound:
			status = http.StatusNotFound
		case models.ErrCodePermissionDenied:
			status = http.StatusForbidden
		case models.ErrCodeQuotaExceeded, models.ErrCodeHasChildren:
			status = http.StatusConflict
		}
	}
	c.JSON(status, result)
}
