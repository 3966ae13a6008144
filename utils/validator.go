package utils

import (
	"fmt"
	"strings"

	"zonetrack/models"

	"github.com/go-playground/validator/v10"
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("zone_type", validateZoneType)
	v.RegisterValidation("zone_priority", validateZonePriority)
	v.RegisterValidation("zone_status", validateZoneStatus)

	return &ValidationService{
		validator: v,
	}
}

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: vs.getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "zone_type":
		return "Invalid zone type"
	case "zone_priority":
		return "Invalid zone priority"
	case "zone_status":
		return "Invalid zone status"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Custom validation functions
func validateZoneType(fl validator.FieldLevel) bool {
	return models.ValidZoneType(models.ZoneType(fl.Field().String()))
}

func validateZonePriority(fl validator.FieldLevel) bool {
	return models.ValidZonePriority(models.ZonePriority(fl.Field().String()))
}

func validateZoneStatus(fl validator.FieldLevel) bool {
	return models.ValidZoneStatus(models.ZoneStatus(fl.Field().String()))
}

// ValidateZoneDefinition applies the zone field rules and collects every
// violation instead of stopping at the first one. Overlap warnings are
// appended by the caller, which owns the zone store.
func ValidateZoneDefinition(req models.CreateZoneRequest) models.ZoneValidationResult {
	result := models.ZoneValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		result.Errors = append(result.Errors, "name is required")
	} else if len(name) > models.MaxZoneNameLength {
		result.Errors = append(result.Errors, fmt.Sprintf("name must be at most %d characters", models.MaxZoneNameLength))
	}
	if name != req.Name && name != "" {
		result.Warnings = append(result.Warnings, "name has leading or trailing whitespace")
	}

	if req.Type == "" {
		result.Errors = append(result.Errors, "type is required")
	} else if !models.ValidZoneType(req.Type) {
		result.Errors = append(result.Errors, fmt.Sprintf("type %q is not a valid zone type", req.Type))
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		result.Errors = append(result.Errors, "latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		result.Errors = append(result.Errors, "longitude must be between -180 and 180")
	}

	if req.Radius < models.MinZoneRadius || req.Radius > models.MaxZoneRadius {
		result.Errors = append(result.Errors, fmt.Sprintf("radius must be between %d and %d meters", models.MinZoneRadius, models.MaxZoneRadius))
	}

	if req.Priority != "" && !models.ValidZonePriority(req.Priority) {
		result.Errors = append(result.Errors, fmt.Sprintf("priority %q is not a valid zone priority", req.Priority))
	}

	if req.Status != "" && !models.ValidZoneStatus(req.Status) {
		result.Errors = append(result.Errors, fmt.Sprintf("status %q is not a valid zone status", req.Status))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
