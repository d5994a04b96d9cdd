package document

import (
	"time"

	"github.com/matzehuels/stemma/pkg/history"
)

// DefaultAutosaveDelay coalesces mutation bursts into one write.
const DefaultAutosaveDelay = 500 * time.Millisecond

// saveTimeout bounds a background write.
const saveTimeout = 5 * time.Second

// autosaver debounces persistence writes. Arm restarts the countdown
// and bumps the generation; a fired timer must Claim its generation
// before saving, so a timer that was superseded while in flight quietly
// loses. All methods run under the document mutex.
type autosaver struct {
	sched history.Scheduler
	delay time.Duration
	fire  func(gen uint64)

	timer history.Timer
	gen   uint64
}

func newAutosaver(sched history.Scheduler, delay time.Duration, fire func(gen uint64)) *autosaver {
	return &autosaver{sched: sched, delay: delay, fire: fire}
}

// Arm starts or restarts the debounce countdown.
func (a *autosaver) Arm() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = a.sched.Schedule(a.delay, func() { a.fire(gen) })
}

// Claim consumes the pending timer if gen is still current. Stale
// generations report false.
func (a *autosaver) Claim(gen uint64) bool {
	if gen != a.gen || a.timer == nil {
		return false
	}
	a.timer = nil
	return true
}

// Pending reports whether a save is armed, which doubles as the
// dirty-since-last-save flag: every mutation arms, every completed save
// consumes.
func (a *autosaver) Pending() bool { return a.timer != nil }

// Cancel drops any armed save without writing.
func (a *autosaver) Cancel() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}
