package document

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/chart/layout"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/history"
	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/store"
)

// Options configures a Document. The zero value is a usable in-memory
// document with wall clock timers.
type Options struct {
	// Store persists the document. Nil keeps everything in memory.
	Store store.Store

	// DisplayName is carried in the persistence envelope meta. An
	// envelope loaded from the store overrides it.
	DisplayName string

	// Layout configures automatic layout runs.
	Layout layout.Options

	// QuietWindow overrides the typing burst window. Zero uses
	// history.DefaultQuietWindow.
	QuietWindow time.Duration

	// AutosaveDelay overrides the save debounce. Zero uses
	// DefaultAutosaveDelay.
	AutosaveDelay time.Duration

	// Scheduler drives the batching and autosave timers. Nil uses wall
	// clock timers; tests inject history.NewManualScheduler.
	Scheduler history.Scheduler

	// Seed fixes the preset placement jitter. Zero seeds from the
	// clock.
	Seed uint64

	// Logger receives debug events. Nil discards them.
	Logger *log.Logger
}

// Document is the single mutable owner of a diagram: graph content,
// selection, undo history, clipboard, preset library, and persistence
// all hang off it. Every method is safe for concurrent use.
type Document struct {
	mu sync.Mutex

	chart   *chart.Chart
	history *history.Stack
	batcher *history.Batcher

	clipNodes []*chart.Node
	clipConns []*chart.Connection

	rng *rand.Rand

	store    store.Store
	autosave *autosaver
	name     string
	schema   int
	layout   layout.Options
	logger   *log.Logger
}

// New assembles a document from the given options.
func New(opts Options) *Document {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = history.NewScheduler()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	d := &Document{
		chart:   chart.New(),
		history: history.New(),
		rng:     rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		store:   opts.Store,
		name:    opts.DisplayName,
		schema:  1,
		layout:  opts.Layout,
		logger:  logger,
	}
	if d.layout.Logger == nil {
		d.layout.Logger = logger
	}
	d.batcher = history.NewBatcher(d.history, sched, opts.QuietWindow, func(gen uint64) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.batcher.FlushText(gen) {
			observability.Document().OnCommit("text edit", d.history.PastLen())
		}
	})
	if opts.Store != nil {
		delay := opts.AutosaveDelay
		if delay <= 0 {
			delay = DefaultAutosaveDelay
		}
		d.autosave = newAutosaver(sched, delay, d.fireAutosave)
	}
	return d
}

// ============================================================================
// Discrete mutations
// ============================================================================

// AddNode creates a node of the given kind at pos and returns its id.
func (d *Document) AddNode(kind chart.Kind, pos chart.Position) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	id := d.chart.AddNode(kind, pos)
	d.commitLocked(pre, "node added")
	return id
}

// RemoveNode deletes a node and every connection touching it. Unknown
// ids report false and leave the history alone.
func (d *Document) RemoveNode(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	if !d.chart.RemoveNode(id) {
		return false
	}
	d.commitLocked(pre, "node removed")
	return true
}

// UpdateNodeData applies a data patch as a single undoable step. Use
// EditNodeData for keystroke-grained edits that should coalesce.
func (d *Document) UpdateNodeData(id string, patch chart.DataPatch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	if !d.chart.UpdateNodeData(id, patch) {
		return false
	}
	d.commitLocked(pre, "node updated")
	return true
}

// MoveNode repositions a node as a single undoable step, independent of
// any drag gesture.
func (d *Document) MoveNode(id string, pos chart.Position) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	if !d.chart.MoveNode(id, pos) {
		return false
	}
	d.commitLocked(pre, "node moved")
	return true
}

// Connect creates a connection between two nodes and returns its id, or
// "" when the endpoints or anchors are invalid.
func (d *Document) Connect(source, target string, sourceAnchor, targetAnchor chart.Anchor) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	id := d.chart.Connect(source, target, sourceAnchor, targetAnchor)
	if id == "" {
		return ""
	}
	d.commitLocked(pre, "connected")
	return id
}

// RemoveConnection deletes a connection.
func (d *Document) RemoveConnection(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	if !d.chart.RemoveConnection(id) {
		return false
	}
	d.commitLocked(pre, "connection removed")
	return true
}

// UpdateConnectionStyle changes a connection's color or dash pattern as
// a single undoable step.
func (d *Document) UpdateConnectionStyle(id string, patch chart.StylePatch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	pre := chart.Capture(d.chart)
	if !d.chart.UpdateConnectionStyle(id, patch) {
		return false
	}
	d.commitLocked(pre, "style changed")
	return true
}

// ============================================================================
// History
// ============================================================================

// Undo restores the state before the most recent committed operation.
// Open gestures settle first so the undo targets them. Reports whether
// anything was undone.
func (d *Document) Undo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	current := chart.Capture(d.chart)
	snap, ok := d.history.Undo(current)
	observability.Document().OnUndo(ok)
	if !ok {
		return false
	}
	snap.ApplyTo(d.chart)
	d.logger.Debug("undo", "depth", d.history.PastLen())
	d.scheduleSave()
	return true
}

// Redo reapplies the most recently undone operation. Settling a pending
// typing burst first commits it, which intentionally clears the redo
// stack: the burst had already branched history when the keys were
// pressed.
func (d *Document) Redo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	current := chart.Capture(d.chart)
	snap, ok := d.history.Redo(current)
	observability.Document().OnRedo(ok)
	if !ok {
		return false
	}
	snap.ApplyTo(d.chart)
	d.logger.Debug("redo", "depth", d.history.PastLen())
	d.scheduleSave()
	return true
}

// CanUndo reports whether an undo entry exists. Open gestures do not
// count until they settle.
func (d *Document) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.CanUndo()
}

// CanRedo reports whether a redo entry exists.
func (d *Document) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.CanRedo()
}

// ============================================================================
// Layout
// ============================================================================

// AutoLayout recomputes person positions and applies them as one undo
// step. Reports whether any node moved; an already laid-out chart is a
// no-op with no history entry.
func (d *Document) AutoLayout() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	start := time.Now()
	pos, changed := layout.Apply(d.chart.Nodes(), d.chart.Connections(), d.layout)
	if !changed {
		observability.Layout().OnLayout(d.chart.NodeCount(), 0, time.Since(start))
		return false
	}
	pre := chart.Capture(d.chart)
	moved := d.chart.ApplyPositions(pos)
	observability.Layout().OnLayout(d.chart.NodeCount(), moved, time.Since(start))
	d.commitLocked(pre, "layout")
	return true
}

// ============================================================================
// Selection
// ============================================================================

// Select replaces the selection with exactly the given ids; unknown ids
// are dropped. Selection is volatile: never undoable, never persisted.
func (d *Document) Select(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chart.SetSelection(ids)
}

// ClearSelection deselects everything.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chart.ClearSelection()
}

// Selection returns the selected node ids in insertion order.
func (d *Document) Selection() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chart.SelectedIDs()
}

// ============================================================================
// Read access
// ============================================================================

// Snapshot returns a deep copy of the current graph content.
func (d *Document) Snapshot() *chart.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return chart.Capture(d.chart)
}

// Node returns a deep copy of one node.
func (d *Document) Node(id string) (*chart.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.chart.Node(id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Nodes returns deep copies of all nodes in insertion order.
func (d *Document) Nodes() []*chart.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := d.chart.Nodes()
	out := make([]*chart.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Connections returns deep copies of all connections in insertion
// order.
func (d *Document) Connections() []*chart.Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	conns := d.chart.Connections()
	out := make([]*chart.Connection, len(conns))
	for i, c := range conns {
		out[i] = c.Clone()
	}
	return out
}

// Presets returns deep copies of the preset library in insertion order.
func (d *Document) Presets() []*chart.Preset {
	d.mu.Lock()
	defer d.mu.Unlock()
	presets := d.chart.Presets()
	out := make([]*chart.Preset, len(presets))
	for i, p := range presets {
		out[i] = p.Clone()
	}
	return out
}

// DisplayName returns the document's display name.
func (d *Document) DisplayName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetDisplayName renames the document. Not undoable.
func (d *Document) SetDisplayName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.name == name {
		return
	}
	d.name = name
	d.scheduleSave()
}

// SchemaVersion returns the envelope schema version the next save will
// carry.
func (d *Document) SchemaVersion() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schema
}

// SetSchemaVersion overrides the schema version, floored at 1.
func (d *Document) SetSchemaVersion(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schema = max(v, 1)
	d.scheduleSave()
}

// Stats summarizes a document for display.
type Stats struct {
	Nodes       int
	Persons     int
	Sections    int
	Connections int
	TreeEdges   int
	SideEdges   int
	Presets     int
	Selected    int
	CanUndo     bool
	CanRedo     bool
}

// Stats counts the document's content in one pass.
func (d *Document) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Stats{
		Nodes:       d.chart.NodeCount(),
		Connections: d.chart.ConnectionCount(),
		Presets:     d.chart.PresetCount(),
		Selected:    len(d.chart.SelectedIDs()),
		CanUndo:     d.history.CanUndo(),
		CanRedo:     d.history.CanRedo(),
	}
	for _, n := range d.chart.Nodes() {
		switch n.Kind {
		case chart.KindPerson:
			s.Persons++
		case chart.KindSection:
			s.Sections++
		}
	}
	for _, c := range d.chart.Connections() {
		if c.IsTree() {
			s.TreeEdges++
		} else {
			s.SideEdges++
		}
	}
	return s
}

// ============================================================================
// Persistence
// ============================================================================

// Load reads the store and replaces the document content, resetting
// history and open gestures. A store that was never saved leaves the
// document empty.
func (d *Document) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.store == nil {
		return nil
	}
	data, err := d.store.Load(ctx)
	observability.Store().OnLoad(d.store.Location(), len(data), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "load document")
	}
	if data == nil {
		d.resetLocked(chart.New())
		return nil
	}
	env, err := Decode(data)
	if err != nil {
		return err
	}
	fresh, err := buildChart(env)
	if err != nil {
		return err
	}
	if env.Meta.DisplayName != "" {
		d.name = env.Meta.DisplayName
	}
	d.schema = env.Meta.SchemaVersion
	d.resetLocked(fresh)
	d.logger.Debug("document loaded",
		"nodes", fresh.NodeCount(),
		"connections", fresh.ConnectionCount(),
		"presets", fresh.PresetCount())
	return nil
}

// Save writes the document through the store synchronously.
func (d *Document) Save(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(ctx)
}

// Location returns the store location, or "" for in-memory documents.
func (d *Document) Location() string {
	if d.store == nil {
		return ""
	}
	return d.store.Location()
}

// Dirty reports whether changes are still waiting on the debounced
// autosave. In-memory documents are never dirty.
func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.autosave != nil && d.autosave.Pending()
}

// Close settles open gestures, flushes one final save when edits are
// still pending, and releases the store.
func (d *Document) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleGesturesLocked()
	var err error
	if d.autosave != nil && d.autosave.Pending() {
		d.autosave.Cancel()
		err = d.saveLocked(ctx)
	}
	if d.store != nil {
		if cerr := d.store.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeStorageFailed, cerr, "close store")
		}
	}
	return err
}

// ============================================================================
// Internal plumbing (all run under d.mu)
// ============================================================================

// commitLocked records pre as an undo entry and schedules persistence.
func (d *Document) commitLocked(pre *chart.Snapshot, op string) {
	d.history.Commit(pre)
	observability.Document().OnCommit(op, d.history.PastLen())
	d.logger.Debug("committed", "op", op, "depth", d.history.PastLen())
	d.scheduleSave()
}

// flushTextLocked commits a pending typing burst immediately.
func (d *Document) flushTextLocked() {
	if d.batcher.FlushTextNow() {
		observability.Document().OnCommit("text edit", d.history.PastLen())
	}
}

// settleGesturesLocked closes any open drag and pending typing burst so
// a discrete operation gets its own undo entry.
func (d *Document) settleGesturesLocked() {
	d.flushTextLocked()
	d.endDragLocked()
}

// resetLocked swaps the chart wholesale and discards history, open
// gestures, and any armed autosave.
func (d *Document) resetLocked(c *chart.Chart) {
	d.chart = c
	d.history.Reset()
	d.batcher.Reset()
	if d.autosave != nil {
		d.autosave.Cancel()
	}
}

func (d *Document) saveLocked(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	data, err := Encode(d.envelopeLocked())
	if err != nil {
		return err
	}
	start := time.Now()
	err = d.store.Save(ctx, data)
	observability.Store().OnSave(d.store.Location(), len(data), time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "save document")
	}
	return nil
}

// scheduleSave arms the debounced autosave. In-memory documents skip
// it.
func (d *Document) scheduleSave() {
	if d.autosave == nil {
		return
	}
	d.autosave.Arm()
}

// fireAutosave runs on the scheduler goroutine after the debounce
// window. Failures are logged and counted by hooks but never surface;
// an explicit Save or Close reports them.
func (d *Document) fireAutosave(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.autosave == nil || !d.autosave.Claim(gen) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := d.saveLocked(ctx); err != nil {
		d.logger.Debug("autosave failed", "error", err)
	}
}
