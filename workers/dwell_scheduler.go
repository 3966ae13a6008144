package workers

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"zonetrack/interfaces"
	"zonetrack/utils"

	"github.com/sirupsen/logrus"
)

// DwellCallback is invoked when a dwell timer fires.
type DwellCallback func(zoneID, deviceID string)

type dwellEntry struct {
	key      string
	zoneID   string
	deviceID string
	fireAt   time.Time
	index    int
	canceled bool
}

// DwellScheduler holds at most one pending one-shot timer per (zone, device)
// pair, keyed "{zoneId}-{deviceId}". Scheduling the same pair again replaces
// the pending timer. Entries are kept in a min-heap ordered by fire time;
// Run drives the heap off a real timer, Tick drains due entries against the
// injected clock so tests can use virtual time.
type DwellScheduler struct {
	clock interfaces.Clock
	fire  DwellCallback

	mutex   sync.Mutex
	queue   dwellQueue
	entries map[string]*dwellEntry
	wake    chan struct{}
}

func NewDwellScheduler(clock interfaces.Clock, fire DwellCallback) *DwellScheduler {
	return &DwellScheduler{
		clock:   clock,
		fire:    fire,
		entries: make(map[string]*dwellEntry),
		wake:    make(chan struct{}, 1),
	}
}

// Schedule registers a one-shot timer for the pair, replacing any pending
// timer under the same key.
func (ds *DwellScheduler) Schedule(zoneID, deviceID string, delay time.Duration) {
	key := utils.DwellTimerKey(zoneID, deviceID)

	ds.mutex.Lock()
	if existing, ok := ds.entries[key]; ok {
		existing.canceled = true
		delete(ds.entries, key)
	}

	entry := &dwellEntry{
		key:      key,
		zoneID:   zoneID,
		deviceID: deviceID,
		fireAt:   ds.clock.Now().Add(delay),
	}
	ds.entries[key] = entry
	heap.Push(&ds.queue, entry)
	ds.mutex.Unlock()

	ds.notifyRun()

	logrus.Debugf("Dwell timer scheduled for %s, firing in %s", key, delay)
}

// Cancel removes the pending timer for the pair, if any.
func (ds *DwellScheduler) Cancel(zoneID, deviceID string) {
	key := utils.DwellTimerKey(zoneID, deviceID)

	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if entry, ok := ds.entries[key]; ok {
		entry.canceled = true
		delete(ds.entries, key)
		logrus.Debugf("Dwell timer canceled for %s", key)
	}
}

// CancelZone removes every pending timer belonging to the zone. Called on
// zone deletion.
func (ds *DwellScheduler) CancelZone(zoneID string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	for key, entry := range ds.entries {
		if entry.zoneID == zoneID {
			entry.canceled = true
			delete(ds.entries, key)
		}
	}
}

// Pending returns the number of live timers.
func (ds *DwellScheduler) Pending() int {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	return len(ds.entries)
}

// Tick fires every entry due at the clock's current time. Callbacks run
// outside the scheduler lock, so they may re-enter the scheduler.
func (ds *DwellScheduler) Tick() {
	for {
		entry := ds.popDue()
		if entry == nil {
			return
		}
		ds.fire(entry.zoneID, entry.deviceID)
	}
}

func (ds *DwellScheduler) popDue() *dwellEntry {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	now := ds.clock.Now()
	for ds.queue.Len() > 0 {
		next := ds.queue[0]
		if next.canceled {
			heap.Pop(&ds.queue)
			continue
		}
		if next.fireAt.After(now) {
			return nil
		}
		heap.Pop(&ds.queue)
		delete(ds.entries, next.key)
		return next
	}
	return nil
}

// nextFireAt returns the earliest pending fire time, or false when idle.
func (ds *DwellScheduler) nextFireAt() (time.Time, bool) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	for ds.queue.Len() > 0 {
		next := ds.queue[0]
		if next.canceled {
			heap.Pop(&ds.queue)
			continue
		}
		return next.fireAt, true
	}
	return time.Time{}, false
}

func (ds *DwellScheduler) notifyRun() {
	select {
	case ds.wake <- struct{}{}:
	default:
	}
}

// Run drives the scheduler until the context is canceled. Only needed in
// production; tests call Tick directly with a fake clock.
func (ds *DwellScheduler) Run(ctx context.Context) {
	logrus.Info("Dwell scheduler started")

	for {
		fireAt, ok := ds.nextFireAt()

		var timer *time.Timer
		var timerC <-chan time.Time
		if ok {
			delay := fireAt.Sub(ds.clock.Now())
			if delay < 0 {
				delay = 0
			}
			timer = time.NewTimer(delay)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logrus.Info("Dwell scheduler stopped")
			return
		case <-ds.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
			ds.Tick()
		}
	}
}

// dwellQueue is a min-heap of entries ordered by fire time.
type dwellQueue []*dwellEntry

func (q dwellQueue) Len() int { return len(q) }

func (q dwellQueue) Less(i, j int) bool {
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q dwellQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *dwellQueue) Push(x interface{}) {
	entry := x.(*dwellEntry)
	entry.index = len(*q)
	*q = append(*q, entry)
}

func (q *dwellQueue) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*q = old[:n-1]
	return entry
}
