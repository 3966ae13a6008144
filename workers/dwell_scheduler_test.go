package workers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

type firedRecorder struct {
	mutex sync.Mutex
	pairs [][2]string
}

func (r *firedRecorder) record(zoneID, deviceID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.pairs = append(r.pairs, [2]string{zoneID, deviceID})
}

func (r *firedRecorder) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.pairs)
}

func TestSchedulerFiresAfterDelay(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z1", "d1", 5*time.Minute)
	assert.Equal(t, 1, ds.Pending())

	ds.Tick()
	assert.Zero(t, recorder.count())

	clock.Advance(4 * time.Minute)
	ds.Tick()
	assert.Zero(t, recorder.count())

	clock.Advance(time.Minute)
	ds.Tick()
	require.Equal(t, 1, recorder.count())
	assert.Equal(t, [2]string{"z1", "d1"}, recorder.pairs[0])
	assert.Zero(t, ds.Pending())
}

func TestSchedulerIsOneShot(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z1", "d1", time.Minute)
	clock.Advance(time.Minute)
	ds.Tick()
	require.Equal(t, 1, recorder.count())

	// Further ticks never refire
	clock.Advance(time.Hour)
	ds.Tick()
	assert.Equal(t, 1, recorder.count())
}

func TestSchedulerReplacesExistingTimer(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z1", "d1", time.Minute)
	ds.Schedule("z1", "d1", 10*time.Minute)
	assert.Equal(t, 1, ds.Pending())

	clock.Advance(time.Minute)
	ds.Tick()
	assert.Zero(t, recorder.count())

	clock.Advance(9 * time.Minute)
	ds.Tick()
	assert.Equal(t, 1, recorder.count())
}

func TestSchedulerCancel(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z1", "d1", time.Minute)
	ds.Cancel("z1", "d1")
	assert.Zero(t, ds.Pending())

	clock.Advance(time.Hour)
	ds.Tick()
	assert.Zero(t, recorder.count())
}

func TestSchedulerCancelZone(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z1", "d1", time.Minute)
	ds.Schedule("z1", "d2", time.Minute)
	ds.Schedule("z2", "d1", time.Minute)
	require.Equal(t, 3, ds.Pending())

	ds.CancelZone("z1")
	assert.Equal(t, 1, ds.Pending())

	clock.Advance(time.Hour)
	ds.Tick()
	require.Equal(t, 1, recorder.count())
	assert.Equal(t, [2]string{"z2", "d1"}, recorder.pairs[0])
}

func TestSchedulerFiresInTimeOrder(t *testing.T) {
	clock := newFakeClock()
	recorder := &firedRecorder{}
	ds := NewDwellScheduler(clock, recorder.record)

	ds.Schedule("z3", "d1", 3*time.Minute)
	ds.Schedule("z1", "d1", time.Minute)
	ds.Schedule("z2", "d1", 2*time.Minute)

	clock.Advance(time.Hour)
	ds.Tick()

	require.Equal(t, 3, recorder.count())
	assert.Equal(t, "z1", recorder.pairs[0][0])
	assert.Equal(t, "z2", recorder.pairs[1][0])
	assert.Equal(t, "z3", recorder.pairs[2][0])
}

func TestSchedulerCallbackMayReschedule(t *testing.T) {
	clock := newFakeClock()

	var ds *DwellScheduler
	fired := 0
	ds = NewDwellScheduler(clock, func(zoneID, deviceID string) {
		fired++
		if fired == 1 {
			ds.Schedule(zoneID, deviceID, time.Minute)
		}
	})

	ds.Schedule("z1", "d1", time.Minute)
	clock.Advance(time.Minute)
	ds.Tick()
	require.Equal(t, 1, fired)
	assert.Equal(t, 1, ds.Pending())

	clock.Advance(time.Minute)
	ds.Tick()
	assert.Equal(t, 2, fired)
}
