// Package history implements bounded undo/redo over chart snapshots.
//
// The model is snapshot-based: every entry on the undo stack is the complete
// pre-mutation state of the chart, captured with [chart.Capture]. Undo and
// redo therefore never replay operations - they exchange whole states, which
// makes them total and lossless regardless of what mutated in between.
//
// [Stack] is the bounded two-stack core. [Batcher] layers gesture coalescing
// on top of it, so a drag of a hundred position events or a typing burst
// lands as a single entry. Timing goes through the [Scheduler] interface;
// tests drive it deterministically with [ManualScheduler].
//
// Neither type locks: the owning document serializes access.
package history

import (
	"slices"

	"github.com/matzehuels/stemma/pkg/chart"
)

// MaxEntries bounds both the undo and the redo stack. Once full, committing
// drops the oldest undo entry.
const MaxEntries = 50

// Stack holds the undo (past) and redo (future) snapshots. The zero value
// is unbounded; use New.
type Stack struct {
	past   []*chart.Snapshot
	future []*chart.Snapshot
	limit  int
}

// New creates an empty stack bounded to MaxEntries.
func New() *Stack {
	return &Stack{limit: MaxEntries}
}

// Commit pushes a pre-mutation snapshot onto past and clears future: once a
// new mutation lands, the redo chain is unreachable. Nil snapshots are
// ignored.
func (s *Stack) Commit(snap *chart.Snapshot) {
	if snap == nil {
		return
	}
	s.past = pushBounded(s.past, snap, s.limit)
	s.future = nil
}

// Undo exchanges states: current (the caller's live state) moves onto
// future, and the most recent past entry is returned for restoring.
// Reports false, leaving the stack untouched, when there is nothing to undo.
func (s *Stack) Undo(current *chart.Snapshot) (*chart.Snapshot, bool) {
	if len(s.past) == 0 {
		return nil, false
	}
	top := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = pushBounded(s.future, current, s.limit)
	return top, true
}

// Redo is the mirror of [Stack.Undo]: current moves onto past and the most
// recent future entry is returned for restoring.
func (s *Stack) Redo(current *chart.Snapshot) (*chart.Snapshot, bool) {
	if len(s.future) == 0 {
		return nil, false
	}
	top := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	s.past = pushBounded(s.past, current, s.limit)
	return top, true
}

// CanUndo reports whether an undo entry is available.
func (s *Stack) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether a redo entry is available.
func (s *Stack) CanRedo() bool { return len(s.future) > 0 }

// PastLen returns the number of undo entries.
func (s *Stack) PastLen() int { return len(s.past) }

// FutureLen returns the number of redo entries.
func (s *Stack) FutureLen() int { return len(s.future) }

// Reset drops both stacks. Loading or resetting a document calls this so no
// undo crosses a reload.
func (s *Stack) Reset() {
	s.past, s.future = nil, nil
}

// pushBounded appends keeping at most limit entries, dropping the oldest.
// A non-positive limit means unbounded.
func pushBounded(stack []*chart.Snapshot, snap *chart.Snapshot, limit int) []*chart.Snapshot {
	stack = append(stack, snap)
	if limit > 0 && len(stack) > limit {
		stack = slices.Delete(stack, 0, len(stack)-limit)
	}
	return stack
}
