package utils

import (
	"strings"
	"testing"

	"zonetrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() models.CreateZoneRequest {
	return models.CreateZoneRequest{
		Name:      "Home",
		Type:      models.ZoneTypeHome,
		Latitude:  37.7749,
		Longitude: -122.4194,
		Radius:    50,
	}
}

func TestValidateZoneDefinition(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		result := ValidateZoneDefinition(validCreateRequest())
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("collects every violation", func(t *testing.T) {
		req := models.CreateZoneRequest{
			Name:      "",
			Type:      "castle",
			Latitude:  95,
			Longitude: 200,
			Radius:    2,
		}
		result := ValidateZoneDefinition(req)
		require.False(t, result.IsValid)
		assert.Len(t, result.Errors, 5)
	})

	t.Run("name at limit accepted", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = strings.Repeat("a", models.MaxZoneNameLength)
		assert.True(t, ValidateZoneDefinition(req).IsValid)
	})

	t.Run("name over limit rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = strings.Repeat("a", models.MaxZoneNameLength+1)
		result := ValidateZoneDefinition(req)
		require.False(t, result.IsValid)
		assert.Contains(t, result.Errors[0], "at most 50")
	})

	t.Run("whitespace name warns but passes", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = "  Home  "
		result := ValidateZoneDefinition(req)
		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "whitespace")
	})

	t.Run("whitespace-only name is required error", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = "   "
		result := ValidateZoneDefinition(req)
		require.False(t, result.IsValid)
		assert.Contains(t, result.Errors[0], "required")
	})

	t.Run("radius boundaries inclusive", func(t *testing.T) {
		req := validCreateRequest()

		req.Radius = models.MinZoneRadius
		assert.True(t, ValidateZoneDefinition(req).IsValid)

		req.Radius = models.MaxZoneRadius
		assert.True(t, ValidateZoneDefinition(req).IsValid)

		req.Radius = models.MinZoneRadius - 0.5
		assert.False(t, ValidateZoneDefinition(req).IsValid)

		req.Radius = models.MaxZoneRadius + 1
		assert.False(t, ValidateZoneDefinition(req).IsValid)
	})

	t.Run("optional priority and status validated when present", func(t *testing.T) {
		req := validCreateRequest()
		req.Priority = "urgent"
		req.Status = "sleeping"
		result := ValidateZoneDefinition(req)
		require.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})
}

func TestValidationServiceStruct(t *testing.T) {
	vs := NewValidationService()

	t.Run("valid location update", func(t *testing.T) {
		errs := vs.ValidateStruct(models.LocationUpdateRequest{
			DeviceID:  "device-1",
			Latitude:  37.7749,
			Longitude: -122.4194,
		})
		assert.Empty(t, errs)
	})

	t.Run("missing device id", func(t *testing.T) {
		errs := vs.ValidateStruct(models.LocationUpdateRequest{
			Latitude:  37.7749,
			Longitude: -122.4194,
		})
		require.Len(t, errs, 1)
		assert.Equal(t, "DeviceID", errs[0].Field)
		assert.Equal(t, "required", errs[0].Tag)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		errs := vs.ValidateStruct(models.LocationUpdateRequest{
			DeviceID:  "device-1",
			Latitude:  91,
			Longitude: -181,
		})
		assert.Len(t, errs, 2)
	})
}
