package document

import (
	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/observability"
)

// DragNode moves a node as part of a drag gesture. The first call opens
// the gesture and captures the pre-drag state; every further call
// coalesces into it until EndDrag commits a single undo entry. Unknown
// ids report false without opening a gesture.
func (d *Document) DragNode(id string, pos chart.Position) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.chart.Node(id)
	if !ok {
		return false
	}
	if !d.batcher.Dragging() {
		d.flushTextLocked()
		d.batcher.DragStart(chart.Capture(d.chart))
	}
	n.Dragging = true
	d.chart.MoveNode(id, pos)
	d.scheduleSave()
	return true
}

// EndDrag closes an open drag gesture. Reports whether an entry was
// committed; without a preceding DragNode it is a no-op.
func (d *Document) EndDrag() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.endDragLocked() {
		return false
	}
	d.scheduleSave()
	return true
}

// EditNodeData applies a data change as part of a typing burst.
// Successive edits inside the quiet window collapse into one undo
// entry; the burst also commits when a discrete operation, undo, or
// drag interrupts it. Reports whether anything changed.
func (d *Document) EditNodeData(id string, patch chart.DataPatch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pre := chart.Capture(d.chart)
	if !d.chart.UpdateNodeData(id, patch) {
		return false
	}
	d.batcher.TextEdit(pre)
	d.scheduleSave()
	return true
}

// endDragLocked clears drag flags and commits the open gesture, if any.
func (d *Document) endDragLocked() bool {
	if !d.batcher.Dragging() {
		return false
	}
	for _, n := range d.chart.Nodes() {
		n.Dragging = false
	}
	if !d.batcher.DragEnd() {
		return false
	}
	observability.Document().OnCommit("drag", d.history.PastLen())
	d.logger.Debug("drag committed", "depth", d.history.PastLen())
	return true
}
