package interfaces

import (
	"context"
	"time"

	"zonetrack/models"
)

// ZoneRepository is the storage port for zone records and their access
// control lists. The engine's event ordering follows List's insertion order.
type ZoneRepository interface {
	Insert(ctx context.Context, zone *models.Zone) error
	Get(ctx context.Context, zoneID string) (*models.Zone, error)
	Update(ctx context.Context, zone *models.Zone) error
	Delete(ctx context.Context, zoneID string) error
	List(ctx context.Context) ([]*models.Zone, error)
	CountByCreator(ctx context.Context, userID string) (int, error)

	GetAccess(ctx context.Context, zoneID string) ([]models.ZoneAccessEntry, error)
	SetAccess(ctx context.Context, zoneID string, entries []models.ZoneAccessEntry) error
	DeleteAccess(ctx context.Context, zoneID string) error

	Ping(ctx context.Context) error
}

// NotificationSink is the external notification collaborator. Calls are
// fire-and-forget; the engine consumes no return value.
type NotificationSink interface {
	ShowNotification(notification models.ZoneNotification)
}

// EventListener receives one ZoneEvent per call. Panics raised by a
// listener are isolated by the dispatcher.
type EventListener func(event models.ZoneEvent)

// Clock abstracts time for deterministic dwell-timer tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// EventBroadcaster is what the HTTP/WebSocket layer needs from the hub.
type EventBroadcaster interface {
	BroadcastZoneEvent(event models.ZoneEvent)
	ConnectedClients() int
}
