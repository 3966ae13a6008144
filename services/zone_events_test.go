package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"zonetrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insideLat  = 37.7749
	insideLon  = -122.4194
	outsideLat = 37.8049 // ~3.3km north
	outsideLon = -122.4194
)

type eventRecorder struct {
	mutex  sync.Mutex
	events []models.ZoneEvent
}

func (r *eventRecorder) record(event models.ZoneEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []models.ZoneEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]models.ZoneEvent(nil), r.events...)
}

func locationUpdate(deviceID string, lat, lon float64) models.LocationUpdateRequest {
	return models.LocationUpdateRequest{DeviceID: deviceID, Latitude: lat, Longitude: lon}
}

func TestEnterAndExitEvents(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	recorder := &eventRecorder{}
	e.manager.AddEventListener(recorder.record)

	zone := e.mustCreate(t, baseZoneRequest("Home"), "alice")

	// Move inside
	events, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ZoneEventEnter, events[0].Type)
	assert.Equal(t, zone.ID, events[0].ZoneID)
	assert.Equal(t, "Home", events[0].ZoneName)
	assert.Equal(t, "d1", events[0].DeviceID)
	assert.Equal(t, insideLat, events[0].Location.Latitude)

	zoneID, ok := e.manager.GetDeviceZone("d1")
	require.True(t, ok)
	assert.Equal(t, zone.ID, zoneID)

	// Staying inside derives nothing
	events, err = e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	assert.Empty(t, events)

	// Move out after an hour
	e.clock.Advance(time.Hour)
	events, err = e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", outsideLat, outsideLon))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ZoneEventExit, events[0].Type)

	_, ok = e.manager.GetDeviceZone("d1")
	assert.False(t, ok)

	// Staying outside derives nothing
	events, err = e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", outsideLat, outsideLon))
	require.NoError(t, err)
	assert.Empty(t, events)

	// Listener saw the same two events in order
	seen := recorder.all()
	require.Len(t, seen, 2)
	assert.Equal(t, models.ZoneEventEnter, seen[0].Type)
	assert.Equal(t, models.ZoneEventExit, seen[1].Type)

	// Zone stats recorded entry, exit and dwell time
	reloaded, err := e.manager.GetZone(ctx, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.Stats.TotalEntries)
	assert.Equal(t, int64(1), reloaded.Stats.TotalExits)
	assert.InDelta(t, 3600, reloaded.Stats.AvgDwellTime, 1)
}

func TestInactiveZonesIgnored(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	req := baseZoneRequest("Paused")
	req.Status = models.ZoneStatusPaused
	e.mustCreate(t, req, "alice")

	events, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOverlappingZonesEnterBoth(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	first := e.mustCreate(t, baseZoneRequest("First"), "alice")
	reqB := baseZoneRequest("Second")
	reqB.Radius = 200
	second := e.mustCreate(t, reqB, "alice")

	events, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)

	// Each overlapping zone derives its own enter event, in creation order
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ZoneID)
	assert.Equal(t, second.ID, events[1].ZoneID)

	// The device ends up assigned to the last zone entered
	zoneID, ok := e.manager.GetDeviceZone("d1")
	require.True(t, ok)
	assert.Equal(t, second.ID, zoneID)
}

func TestCheckDeviceInZone(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	small := e.mustCreate(t, baseZoneRequest("Small"), "alice")
	reqBig := baseZoneRequest("Big")
	reqBig.Radius = 500
	big := e.mustCreate(t, reqBig, "alice")

	t.Run("single zone inside", func(t *testing.T) {
		match, err := e.manager.CheckDeviceInZone(ctx, "d1", insideLat, insideLon, small.ID)
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, small.ID, match.Zone.ID)
		assert.Negative(t, match.DistanceFromBoundary)
	})

	t.Run("single zone outside", func(t *testing.T) {
		match, err := e.manager.CheckDeviceInZone(ctx, "d1", outsideLat, outsideLon, small.ID)
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("missing zone", func(t *testing.T) {
		_, err := e.manager.CheckDeviceInZone(ctx, "d1", insideLat, insideLon, "ghost")
		require.Error(t, err)
	})

	t.Run("tie-break picks nearest boundary", func(t *testing.T) {
		// At the shared center the small zone's boundary is 50m away,
		// the big one's is 500m away
		match, err := e.manager.CheckDeviceInZone(ctx, "d1", insideLat, insideLon, "")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, small.ID, match.Zone.ID)
	})

	t.Run("point between boundaries matches big only", func(t *testing.T) {
		// ~111m from the center: outside the 50m zone, inside the 500m zone
		match, err := e.manager.CheckDeviceInZone(ctx, "d1", insideLat+0.001, insideLon, "")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, big.ID, match.Zone.ID)
	})

	t.Run("outside everything", func(t *testing.T) {
		match, err := e.manager.CheckDeviceInZone(ctx, "d1", outsideLat, outsideLon, "")
		require.NoError(t, err)
		assert.Nil(t, match)
	})
}

func TestBoundaryInclusive(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	zone := e.mustCreate(t, baseZoneRequest("Edge"), "alice")

	// A point essentially on the center is inside; distanceFromCenter - radius <= 0
	match, err := e.manager.CheckDeviceInZone(ctx, "d1", insideLat, insideLon, zone.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.True(t, match.Inside())
	assert.InDelta(t, -50, match.DistanceFromBoundary, 0.01)
}

func TestDwellTimerFiresOnce(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	dwell := true
	threshold := 10
	req := baseZoneRequest("Office")
	req.Settings = &models.ZoneSettingsUpdate{NotifyOnDwell: &dwell, DwellTimeThreshold: &threshold}
	zone := e.mustCreate(t, req, "alice")

	recorder := &eventRecorder{}
	e.manager.AddEventListener(recorder.record)

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	assert.Equal(t, 1, e.manager.Scheduler().Pending())

	// Not yet due
	e.clock.Advance(9 * time.Minute)
	e.manager.Scheduler().Tick()
	for _, event := range recorder.all() {
		assert.NotEqual(t, models.ZoneEventDwell, event.Type)
	}

	// Due
	e.clock.Advance(time.Minute)
	e.manager.Scheduler().Tick()

	var dwellEvents []models.ZoneEvent
	for _, event := range recorder.all() {
		if event.Type == models.ZoneEventDwell {
			dwellEvents = append(dwellEvents, event)
		}
	}
	require.Len(t, dwellEvents, 1)
	assert.Equal(t, zone.ID, dwellEvents[0].ZoneID)
	assert.Equal(t, "d1", dwellEvents[0].DeviceID)
	assert.Equal(t, insideLat, dwellEvents[0].Location.Latitude)

	// One-shot: nothing further fires
	e.clock.Advance(time.Hour)
	e.manager.Scheduler().Tick()
	count := 0
	for _, event := range recorder.all() {
		if event.Type == models.ZoneEventDwell {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Zero(t, e.manager.Scheduler().Pending())
}

func TestDwellTimerCanceledByExit(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	dwell := true
	threshold := 10
	req := baseZoneRequest("Office")
	req.Settings = &models.ZoneSettingsUpdate{NotifyOnDwell: &dwell, DwellTimeThreshold: &threshold}
	e.mustCreate(t, req, "alice")

	recorder := &eventRecorder{}
	e.manager.AddEventListener(recorder.record)

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	require.Equal(t, 1, e.manager.Scheduler().Pending())

	// Leave before the threshold
	e.clock.Advance(5 * time.Minute)
	_, err = e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", outsideLat, outsideLon))
	require.NoError(t, err)
	assert.Zero(t, e.manager.Scheduler().Pending())

	e.clock.Advance(time.Hour)
	e.manager.Scheduler().Tick()
	for _, event := range recorder.all() {
		assert.NotEqual(t, models.ZoneEventDwell, event.Type)
	}
}

func TestDwellNotScheduledWithoutSetting(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	e.mustCreate(t, baseZoneRequest("Home"), "alice")

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	assert.Zero(t, e.manager.Scheduler().Pending())
}

func TestListenerPanicIsolated(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	e.mustCreate(t, baseZoneRequest("Home"), "alice")

	e.manager.AddEventListener(func(models.ZoneEvent) {
		panic("listener bug")
	})
	recorder := &eventRecorder{}
	e.manager.AddEventListener(recorder.record)

	events, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Len(t, recorder.all(), 1)
}

func TestRemoveEventListener(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	e.mustCreate(t, baseZoneRequest("Home"), "alice")

	recorder := &eventRecorder{}
	id := e.manager.AddEventListener(recorder.record)
	e.manager.RemoveEventListener(id)

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	assert.Empty(t, recorder.all())
}

func TestNotificationPriorityAndMessage(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	critical := baseZoneRequest("Vault")
	critical.Priority = models.ZonePriorityCritical
	e.mustCreate(t, critical, "alice")

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)

	notifications := e.sink.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationPriorityHigh, notifications[0].Priority)
	assert.Equal(t, "Device d1 entered Vault", notifications[0].Message)
	assert.Equal(t, models.ZoneEventEnter, notifications[0].Type)
}

func TestNotificationCustomMessage(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	custom := "Heads up!"
	req := baseZoneRequest("Home")
	req.Settings = &models.ZoneSettingsUpdate{CustomMessage: &custom}
	e.mustCreate(t, req, "alice")

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)

	notifications := e.sink.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Heads up!", notifications[0].Message)
	assert.Equal(t, models.NotificationPriorityMedium, notifications[0].Priority)
}

func TestNotificationSuppressedBySettings(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	entry := false
	req := baseZoneRequest("Quiet")
	req.Settings = &models.ZoneSettingsUpdate{NotifyOnEntry: &entry}
	e.mustCreate(t, req, "alice")

	events, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)

	// The event is still derived, only the notification is suppressed
	require.Len(t, events, 1)
	assert.Empty(t, e.sink.all())
}

func TestEventStatsTracked(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	e.mustCreate(t, baseZoneRequest("Home"), "alice")

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)
	_, err = e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", outsideLat, outsideLon))
	require.NoError(t, err)

	stats := e.manager.Stats()
	assert.Equal(t, int64(1), stats.EventsEmitted[models.ZoneEventEnter])
	assert.Equal(t, int64(1), stats.EventsEmitted[models.ZoneEventExit])
	assert.Equal(t, int64(2), stats.NotificationsSent)
	assert.Equal(t, 1, stats.TrackedDevices)
	assert.False(t, stats.LastEventAt.IsZero())
}

func TestLastPositionRecorded(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.manager.ProcessLocationUpdate(ctx, locationUpdate("d1", insideLat, insideLon))
	require.NoError(t, err)

	pos, ok := e.manager.GetLastPosition("d1")
	require.True(t, ok)
	assert.Equal(t, insideLat, pos.Latitude)
	assert.Equal(t, insideLon, pos.Longitude)
	assert.Equal(t, e.clock.Now(), pos.Timestamp)
}
