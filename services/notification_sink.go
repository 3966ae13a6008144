package services

import (
	"github.com/sirupsen/logrus"

	"zonetrack/models"
)

// LogNotificationSink writes zone notifications to the structured log. It is
// the default sink when no push transport is configured.
type LogNotificationSink struct {
	logger *logrus.Logger
}

func NewLogNotificationSink(logger *logrus.Logger) *LogNotificationSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotificationSink{logger: logger}
}

func (s *LogNotificationSink) ShowNotification(notification models.ZoneNotification) {
	s.logger.WithFields(logrus.Fields{
		"type":     notification.Type,
		"zoneId":   notification.ZoneID,
		"deviceId": notification.DeviceID,
		"priority": notification.Priority,
		"title":    notification.Title,
	}).Info(notification.Message)
}
