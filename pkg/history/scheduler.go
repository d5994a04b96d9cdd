package history

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Scheduler schedules single-shot deferred calls. The wall-clock
// implementation delegates to time.AfterFunc; [ManualScheduler] drives time
// by hand for deterministic tests.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

// Timer is a handle on a scheduled call.
type Timer interface {
	// Stop cancels the call, reporting whether it was still pending.
	Stop() bool
}

// NewScheduler returns the wall-clock scheduler.
func NewScheduler() Scheduler { return realScheduler{} }

type realScheduler struct{}

func (realScheduler) Schedule(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

type realTimer struct{ t *time.Timer }

func (t realTimer) Stop() bool { return t.t.Stop() }

// ManualScheduler is a Scheduler whose clock only moves when Advance is
// called. Due callbacks run inline on the Advance caller's goroutine, in
// deadline order, which makes debounce behavior fully deterministic in
// tests.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

// NewManualScheduler creates a manual scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// Schedule registers fn to fire once the virtual clock has advanced by d.
func (m *ManualScheduler) Schedule(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{deadline: m.now + d, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the current virtual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the virtual clock forward and fires every timer whose
// deadline has passed. Callbacks may schedule new timers; those only fire
// on a later Advance.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	remaining := m.timers[:0]
	for _, t := range m.timers {
		switch {
		case t.Stopped():
		case t.deadline <= m.now:
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	m.timers = remaining
	m.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *manualTimer) int {
		return cmp.Compare(a.deadline, b.deadline)
	})
	for _, t := range due {
		if t.markFired() {
			t.fn()
		}
	}
}

type manualTimer struct {
	mu       sync.Mutex
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (t *manualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *manualTimer) markFired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.fired = true
	return true
}
