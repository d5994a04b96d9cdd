package history

import (
	"time"

	"github.com/matzehuels/stemma/pkg/chart"
)

// DefaultQuietWindow is how long a typing burst must pause before its
// history entry commits.
const DefaultQuietWindow = 600 * time.Millisecond

// OnQuiet is invoked on the scheduler goroutine when a text burst's quiet
// window elapses. Implementations re-enter the owner's lock and call
// [Batcher.FlushText] with the generation they were handed; a stale
// generation is ignored there.
type OnQuiet func(gen uint64)

// Batcher coalesces gesture bursts into single history entries. The first
// event of a gesture captures the pre-gesture snapshot; the gesture commits
// exactly once when it ends:
//
//   - Drags commit on [Batcher.DragEnd], however many position events the
//     pointer produced.
//   - Text edits commit after a quiet window with no further edits. An edit
//     inside the window restarts the timer without replacing the captured
//     snapshot.
//
// Batcher is not safe for concurrent use: the owning document serializes
// every call, including the FlushText re-entry from OnQuiet.
type Batcher struct {
	stack   *Stack
	sched   Scheduler
	window  time.Duration
	onQuiet OnQuiet

	dragPending *chart.Snapshot
	textPending *chart.Snapshot
	textTimer   Timer
	textGen     uint64
}

// NewBatcher creates a batcher committing into stack. A nil scheduler uses
// wall-clock timers, a non-positive window uses DefaultQuietWindow, and a
// nil onQuiet flushes directly on the scheduler goroutine (only safe for
// single-threaded use, such as tests driving a ManualScheduler).
func NewBatcher(stack *Stack, sched Scheduler, window time.Duration, onQuiet OnQuiet) *Batcher {
	if sched == nil {
		sched = NewScheduler()
	}
	if window <= 0 {
		window = DefaultQuietWindow
	}
	b := &Batcher{stack: stack, sched: sched, window: window, onQuiet: onQuiet}
	if b.onQuiet == nil {
		b.onQuiet = func(gen uint64) { b.FlushText(gen) }
	}
	return b
}

// DragStart opens a drag gesture with pre as the state to commit at
// DragEnd. Calls during an open gesture are ignored, so only the first
// event's capture survives.
func (b *Batcher) DragStart(pre *chart.Snapshot) {
	if b.dragPending != nil {
		return
	}
	b.dragPending = pre
}

// Dragging reports whether a drag gesture is open.
func (b *Batcher) Dragging() bool { return b.dragPending != nil }

// DragEnd closes the gesture and commits its pre-state as one entry.
// Reports whether an entry landed.
func (b *Batcher) DragEnd() bool {
	if b.dragPending == nil {
		return false
	}
	b.stack.Commit(b.dragPending)
	b.dragPending = nil
	return true
}

// TextEdit notes a payload edit. The first edit of a burst captures pre and
// arms the quiet timer; later edits restart the timer and keep the original
// capture.
func (b *Batcher) TextEdit(pre *chart.Snapshot) {
	if b.textPending == nil {
		b.textPending = pre
	}
	if b.textTimer != nil {
		b.textTimer.Stop()
	}
	b.textGen++
	gen := b.textGen
	b.textTimer = b.sched.Schedule(b.window, func() { b.onQuiet(gen) })
}

// TextPending reports whether a text burst is waiting out its quiet window.
func (b *Batcher) TextPending() bool { return b.textPending != nil }

// FlushText commits the pending text burst if gen still matches the armed
// timer. A stale generation - the timer was restarted or the batcher reset
// after the callback was scheduled - is a no-op. Reports whether an entry
// landed.
func (b *Batcher) FlushText(gen uint64) bool {
	if gen != b.textGen || b.textPending == nil {
		return false
	}
	return b.flushText()
}

// FlushTextNow commits the pending text burst immediately, disarming the
// quiet timer. Discrete operations call this before their own commit so
// history entries stay in mutation order. Reports whether an entry landed.
func (b *Batcher) FlushTextNow() bool {
	if b.textPending == nil {
		return false
	}
	b.textGen++
	return b.flushText()
}

func (b *Batcher) flushText() bool {
	if b.textTimer != nil {
		b.textTimer.Stop()
		b.textTimer = nil
	}
	b.stack.Commit(b.textPending)
	b.textPending = nil
	return true
}

// Reset drops any open gesture without committing and disarms the timer, so
// a reload cannot leak a stale capture into the next gesture.
func (b *Batcher) Reset() {
	b.dragPending = nil
	b.textPending = nil
	b.textGen++
	if b.textTimer != nil {
		b.textTimer.Stop()
		b.textTimer = nil
	}
}
