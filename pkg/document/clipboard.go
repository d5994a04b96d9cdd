package document

import (
	"fmt"

	"github.com/matzehuels/stemma/pkg/chart"
)

// PasteOffset is the diagonal shift applied to pasted content, and to
// the clipboard itself after each paste so repeated pastes fan out
// instead of stacking.
const PasteOffset = 40.0

// Preset instances drop near the top-left with bounded jitter so
// repeated applies do not land exactly on top of each other.
const (
	presetBaseX  = 120.0
	presetBaseY  = 120.0
	presetJitter = 80.0
)

// CopySelection captures the selected nodes and the connections running
// between them. Returns the number of nodes copied; an empty selection
// leaves the clipboard untouched. Copying is not undoable.
func (d *Document) CopySelection() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.chart.SelectedNodes()
	if len(sel) == 0 {
		return 0
	}
	d.clipNodes, d.clipConns = chart.CopySubgraph(sel, d.chart.Connections())
	d.logger.Debug("copied", "nodes", len(d.clipNodes), "connections", len(d.clipConns))
	return len(d.clipNodes)
}

// ClipboardCount reports how many nodes the clipboard holds.
func (d *Document) ClipboardCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clipNodes)
}

// Paste inserts the clipboard content with fresh ids, shifted
// down-right, as one undo entry. Pasting more than one node moves the
// selection to the pasted group; a single pasted node leaves the
// selection alone. Returns the new node ids, nil on an empty clipboard.
func (d *Document) Paste() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.clipNodes) == 0 {
		return nil
	}
	d.settleGesturesLocked()

	nodes := make([]*chart.Node, 0, len(d.clipNodes))
	for _, n := range d.clipNodes {
		nodes = append(nodes, n.Clone())
	}
	conns := make([]*chart.Connection, 0, len(d.clipConns))
	for _, c := range d.clipConns {
		conns = append(conns, c.Clone())
	}
	chart.OffsetNodes(nodes, PasteOffset, PasteOffset)
	chart.RemapIDs(nodes, conns)

	pre := chart.Capture(d.chart)
	d.chart.Insert(nodes, conns)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if len(ids) > 1 {
		d.chart.SetSelection(ids)
	}
	d.commitLocked(pre, "paste")

	// The clipboard walks with its pastes.
	chart.OffsetNodes(d.clipNodes, PasteOffset, PasteOffset)
	return ids
}

// ============================================================================
// Preset library
// ============================================================================

// CreatePreset saves the current selection as a reusable preset with an
// ordinal name and positions normalized to the selection's bounding box.
// Returns the preset id, or "" when nothing is selected. The preset
// library persists in the envelope but is never undo-tracked.
func (d *Document) CreatePreset() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.chart.SelectedNodes()
	if len(sel) == 0 {
		return ""
	}
	nodes, conns := chart.CopySubgraph(sel, d.chart.Connections())
	name := fmt.Sprintf("Preset %d", d.chart.PresetCount()+1)
	p := chart.NewPreset(name, nodes, conns)
	d.chart.AddPreset(p)
	d.logger.Debug("preset created", "id", p.ID, "name", name, "nodes", len(nodes))
	d.scheduleSave()
	return p.ID
}

// ApplyPreset instantiates a preset with fresh ids at a jittered drop
// position, as one undo entry. Multi-node presets move the selection to
// the inserted nodes. Returns the new node ids, nil for unknown preset
// ids.
func (d *Document) ApplyPreset(id string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.chart.Preset(id)
	if !ok {
		return nil
	}
	d.settleGesturesLocked()

	base := chart.Position{
		X: presetBaseX + d.rng.Float64()*presetJitter,
		Y: presetBaseY + d.rng.Float64()*presetJitter,
	}
	nodes, conns := p.Instantiate(base)

	pre := chart.Capture(d.chart)
	d.chart.Insert(nodes, conns)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if len(ids) > 1 {
		d.chart.SetSelection(ids)
	}
	d.commitLocked(pre, "preset applied")
	return ids
}

// RenamePreset changes a preset's display name. Library edits are
// direct: not undoable, persisted on the next save.
func (d *Document) RenamePreset(id, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.chart.RenamePreset(id, name) {
		return false
	}
	d.scheduleSave()
	return true
}

// RemovePreset deletes a preset from the library. Instances already in
// the chart are unaffected.
func (d *Document) RemovePreset(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.chart.RemovePreset(id) {
		return false
	}
	d.scheduleSave()
	return true
}
