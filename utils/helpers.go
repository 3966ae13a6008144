package utils

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the user ID from the Gin context, assuming it is stored as "userID" in context.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("userID"); exists {
		if idStr, ok := userID.(string); ok {
			return idStr
		}
	}
	return ""
}

// UUID Generation
func GenerateUUID() string {
	return uuid.New().String()
}

// DwellTimerKey builds the timer map key for a (zone, device) pair.
func DwellTimerKey(zoneID, deviceID string) string {
	return fmt.Sprintf("%s-%s", zoneID, deviceID)
}

// String Utilities
func StringSliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func RemoveStringFromSlice(slice []string, item string) []string {
	result := slice[:0]
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}

// FormatDuration formats a duration for log and health output
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
