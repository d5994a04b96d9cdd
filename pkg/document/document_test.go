package document

import (
	"testing"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/chart/layout"
	"github.com/matzehuels/stemma/pkg/history"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// newTestDoc returns an in-memory document driven by a manual clock.
func newTestDoc() (*Document, *history.ManualScheduler) {
	ms := history.NewManualScheduler()
	return New(Options{Scheduler: ms, Seed: 1}), ms
}

func addPerson(t *testing.T, d *Document, x, y float64) string {
	t.Helper()
	id := d.AddNode(chart.KindPerson, chart.Position{X: x, Y: y})
	if id == "" {
		t.Fatal("AddNode returned an empty id")
	}
	return id
}

func TestDiscreteOps_CommitOneEntryEach(t *testing.T) {
	d, _ := newTestDoc()

	n1 := addPerson(t, d, 100, 100)
	if got := d.history.PastLen(); got != 1 {
		t.Fatalf("PastLen after AddNode = %d, want 1", got)
	}

	n2 := addPerson(t, d, 300, 100)
	e1 := d.Connect(n1, n2, chart.AnchorBottom, chart.AnchorTop)
	if e1 == "" {
		t.Fatal("Connect returned an empty id")
	}
	if !d.UpdateConnectionStyle(e1, chart.StylePatch{Dashed: boolPtr(true)}) {
		t.Fatal("UpdateConnectionStyle reported no change")
	}
	if !d.UpdateNodeData(n1, chart.DataPatch{Name: strPtr("Ada")}) {
		t.Fatal("UpdateNodeData reported no change")
	}
	if !d.MoveNode(n2, chart.Position{X: 320, Y: 140}) {
		t.Fatal("MoveNode reported no change")
	}
	if !d.RemoveConnection(e1) {
		t.Fatal("RemoveConnection failed")
	}
	if !d.RemoveNode(n2) {
		t.Fatal("RemoveNode failed")
	}

	if got := d.history.PastLen(); got != 8 {
		t.Fatalf("PastLen = %d, want 8 (one entry per operation)", got)
	}
}

func TestNoOpMutations_LeaveHistoryAlone(t *testing.T) {
	d, _ := newTestDoc()
	n1 := addPerson(t, d, 100, 100)
	before := d.history.PastLen()

	if d.RemoveNode("ghost") {
		t.Error("RemoveNode(ghost) should report false")
	}
	if d.MoveNode(n1, chart.Position{X: 100, Y: 100}) {
		t.Error("MoveNode to the same position should be a no-op")
	}
	if d.UpdateNodeData(n1, chart.DataPatch{}) {
		t.Error("empty patch should be a no-op")
	}
	if d.Connect(n1, n1, chart.AnchorBottom, chart.AnchorTop) != "" {
		t.Error("self connection should be rejected")
	}
	if d.Connect(n1, "ghost", chart.AnchorBottom, chart.AnchorTop) != "" {
		t.Error("connection to a missing node should be rejected")
	}
	if d.RemoveConnection("ghost") {
		t.Error("RemoveConnection(ghost) should report false")
	}

	if got := d.history.PastLen(); got != before {
		t.Errorf("PastLen = %d, want %d: no-ops must not commit", got, before)
	}
}

func TestUndoRedo_StackSymmetry(t *testing.T) {
	d, _ := newTestDoc()
	n1 := addPerson(t, d, 100, 100)
	n2 := addPerson(t, d, 300, 100)
	if d.Connect(n1, n2, chart.AnchorBottom, chart.AnchorTop) == "" {
		t.Fatal("Connect failed")
	}
	final := d.Snapshot()

	if !d.Undo() {
		t.Fatal("undo connect failed")
	}
	if got := d.Stats().Connections; got != 0 {
		t.Fatalf("connections after undo = %d, want 0", got)
	}
	if !d.Undo() {
		t.Fatal("undo second add failed")
	}
	if !d.Undo() {
		t.Fatal("undo first add failed")
	}
	if got := d.Stats().Nodes; got != 0 {
		t.Fatalf("nodes after full undo = %d, want 0", got)
	}
	if d.Undo() {
		t.Error("undo on an exhausted stack should report false")
	}

	for i := range 3 {
		if !d.Redo() {
			t.Fatalf("redo %d failed", i+1)
		}
	}
	if !d.Snapshot().Equal(final) {
		t.Error("redo should replay forward losslessly")
	}
	if d.Redo() {
		t.Error("redo past the top should report false")
	}
}

func TestUndoRedo_EmptyDocument(t *testing.T) {
	d, _ := newTestDoc()
	if d.CanUndo() || d.CanRedo() {
		t.Error("fresh document should have no history")
	}
	if d.Undo() || d.Redo() {
		t.Error("undo/redo on a fresh document should report false")
	}
}

func TestDrag_CoalescesIntoOneEntry(t *testing.T) {
	d, _ := newTestDoc()
	id := addPerson(t, d, 100, 100)
	before := d.history.PastLen()

	for i := 1; i <= 10; i++ {
		if !d.DragNode(id, chart.Position{X: 100 + float64(i)*10, Y: 100}) {
			t.Fatalf("drag event %d rejected", i)
		}
	}
	if got := d.history.PastLen(); got != before {
		t.Fatalf("PastLen during drag = %d, want %d", got, before)
	}
	if n, _ := d.Node(id); !n.Dragging {
		t.Error("node should carry the drag flag mid-gesture")
	}

	if !d.EndDrag() {
		t.Fatal("EndDrag should commit")
	}
	if got := d.history.PastLen(); got != before+1 {
		t.Fatalf("PastLen after drag = %d, want %d", got, before+1)
	}
	n, _ := d.Node(id)
	if n.Dragging {
		t.Error("drag flag should clear on EndDrag")
	}
	if n.X != 200 {
		t.Errorf("dragged X = %v, want 200", n.X)
	}

	if !d.Undo() {
		t.Fatal("undo failed")
	}
	if n, _ := d.Node(id); n.X != 100 {
		t.Errorf("undo should restore the pre-drag position, got X=%v", n.X)
	}
}

func TestDrag_UnknownNodeAndBareEnd(t *testing.T) {
	d, _ := newTestDoc()
	if d.DragNode("ghost", chart.Position{X: 1, Y: 1}) {
		t.Error("dragging an unknown node should report false")
	}
	if d.EndDrag() {
		t.Error("EndDrag without a gesture should report false")
	}
	if d.history.PastLen() != 0 {
		t.Error("nothing should have committed")
	}
}

func TestTextBurst_OneEntryPerQuietWindow(t *testing.T) {
	d, ms := newTestDoc()
	id := addPerson(t, d, 0, 0)
	before := d.history.PastLen()

	for _, name := range []string{"A", "Ad", "Ada"} {
		if !d.EditNodeData(id, chart.DataPatch{Name: strPtr(name)}) {
			t.Fatalf("edit %q rejected", name)
		}
	}
	if got := d.history.PastLen(); got != before {
		t.Fatalf("burst committed early: PastLen = %d, want %d", got, before)
	}

	ms.Advance(history.DefaultQuietWindow)
	if got := d.history.PastLen(); got != before+1 {
		t.Fatalf("PastLen after quiet window = %d, want %d", got, before+1)
	}

	// A pause then more typing opens a second entry.
	if !d.EditNodeData(id, chart.DataPatch{Role: strPtr("Engineer")}) {
		t.Fatal("second burst rejected")
	}
	ms.Advance(history.DefaultQuietWindow)
	if got := d.history.PastLen(); got != before+2 {
		t.Fatalf("PastLen after second burst = %d, want %d", got, before+2)
	}

	if !d.Undo() {
		t.Fatal("undo failed")
	}
	n, _ := d.Node(id)
	if n.Person.Name != "Ada" || n.Person.Role != "" {
		t.Errorf("after one undo: name=%q role=%q, want name=Ada role empty", n.Person.Name, n.Person.Role)
	}
	if !d.Undo() {
		t.Fatal("undo failed")
	}
	if n, _ := d.Node(id); n.Person.Name != "" {
		t.Errorf("after two undos name = %q, want empty", n.Person.Name)
	}
}

func TestTextBurst_KeystrokeRestartsWindow(t *testing.T) {
	d, ms := newTestDoc()
	id := addPerson(t, d, 0, 0)
	before := d.history.PastLen()

	d.EditNodeData(id, chart.DataPatch{Name: strPtr("A")})
	ms.Advance(history.DefaultQuietWindow / 2)
	d.EditNodeData(id, chart.DataPatch{Name: strPtr("AB")})
	ms.Advance(history.DefaultQuietWindow / 2)
	if got := d.history.PastLen(); got != before {
		t.Fatal("the second keystroke should have restarted the window")
	}
	ms.Advance(history.DefaultQuietWindow / 2)
	if got := d.history.PastLen(); got != before+1 {
		t.Fatalf("PastLen = %d, want %d", got, before+1)
	}

	d.Undo()
	if n, _ := d.Node(id); n.Person.Name != "" {
		t.Errorf("both keystrokes should undo together, got %q", n.Person.Name)
	}
}

func TestTextBurst_DiscreteOpFlushesFirst(t *testing.T) {
	d, _ := newTestDoc()
	id := addPerson(t, d, 0, 0)
	before := d.history.PastLen()

	d.EditNodeData(id, chart.DataPatch{Name: strPtr("Ada")})
	d.AddNode(chart.KindSection, chart.Position{X: 10, Y: 10})
	if got := d.history.PastLen(); got != before+2 {
		t.Fatalf("PastLen = %d, want %d (burst entry then add entry)", got, before+2)
	}

	d.Undo()
	if got := d.Stats().Sections; got != 0 {
		t.Fatalf("first undo should remove the section, have %d", got)
	}
	if n, _ := d.Node(id); n.Person.Name != "Ada" {
		t.Errorf("text should survive the first undo, got %q", n.Person.Name)
	}
	d.Undo()
	if n, _ := d.Node(id); n.Person.Name != "" {
		t.Errorf("second undo should revert the text, got %q", n.Person.Name)
	}
}

func TestUndo_FlushesPendingText(t *testing.T) {
	d, _ := newTestDoc()
	id := addPerson(t, d, 0, 0)

	d.EditNodeData(id, chart.DataPatch{Name: strPtr("Ada")})
	if !d.Undo() {
		t.Fatal("undo should target the pending burst")
	}
	if n, _ := d.Node(id); n.Person.Name != "" {
		t.Errorf("name = %q, want empty", n.Person.Name)
	}
	if !d.Redo() {
		t.Fatal("redo failed")
	}
	if n, _ := d.Node(id); n.Person.Name != "Ada" {
		t.Errorf("redo should restore the text, got %q", n.Person.Name)
	}
}

func TestRedo_InvalidatedByBranchingEdit(t *testing.T) {
	d, ms := newTestDoc()
	id := addPerson(t, d, 0, 0)
	d.UpdateNodeData(id, chart.DataPatch{Name: strPtr("Ada")})
	d.Undo()
	if !d.CanRedo() {
		t.Fatal("undo should populate the redo stack")
	}

	// Typing branches history: the redo stack dies when the burst
	// commits, whether through the quiet window or a direct redo call.
	d.EditNodeData(id, chart.DataPatch{Name: strPtr("B")})
	if d.Redo() {
		t.Error("redo after a branching edit should report false")
	}
	if n, _ := d.Node(id); n.Person.Name != "B" {
		t.Errorf("branch content should survive, got %q", n.Person.Name)
	}

	ms.Advance(history.DefaultQuietWindow)
	if d.CanRedo() {
		t.Error("redo stack should stay empty")
	}
}

func TestAutoLayout_CommitsOnceAndIsIdempotent(t *testing.T) {
	d, _ := newTestDoc()
	boss := addPerson(t, d, 400, 50)
	left := addPerson(t, d, 100, 300)
	right := addPerson(t, d, 360, 310)
	d.Connect(boss, left, chart.AnchorBottom, chart.AnchorTop)
	d.Connect(boss, right, chart.AnchorBottom, chart.AnchorTop)
	before := d.history.PastLen()

	if !d.AutoLayout() {
		t.Fatal("layout should move nodes")
	}
	if got := d.history.PastLen(); got != before+1 {
		t.Fatalf("PastLen = %d, want %d (layout commits once)", got, before+1)
	}

	if d.AutoLayout() {
		t.Error("immediate relayout should be a no-op")
	}
	if got := d.history.PastLen(); got != before+1 {
		t.Errorf("no-op layout must not commit, PastLen = %d", got)
	}
}

func TestScenario_BuildConnectLayoutUndoToEmpty(t *testing.T) {
	d, _ := newTestDoc()

	n1 := d.AddNode(chart.KindPerson, chart.Position{X: 100, Y: 100})
	n2 := d.AddNode(chart.KindPerson, chart.Position{X: 300, Y: 100})
	if d.Connect(n1, n2, chart.AnchorBottom, chart.AnchorTop) == "" {
		t.Fatal("Connect failed")
	}
	if !d.AutoLayout() {
		t.Fatal("layout should move nodes")
	}

	p1, _ := d.Node(n1)
	p2, _ := d.Node(n2)
	if p1.X != p2.X {
		t.Errorf("child should center under its parent: parent X=%v, child X=%v", p1.X, p2.X)
	}
	if got := p2.Y - p1.Y; got != layout.DefaultRankSep {
		t.Errorf("rank separation = %v, want %v", got, layout.DefaultRankSep)
	}

	if !d.Undo() {
		t.Fatal("undo layout failed")
	}
	if p1, _ = d.Node(n1); p1.X != 100 || p1.Y != 100 {
		t.Errorf("undo should restore the hand-placed position, got (%v,%v)", p1.X, p1.Y)
	}
	for i := range 3 {
		if !d.Undo() {
			t.Fatalf("undo %d failed", i+2)
		}
	}
	if got := d.Stats(); got.Nodes != 0 || got.Connections != 0 {
		t.Errorf("full undo should reach the empty graph, got %d nodes %d connections", got.Nodes, got.Connections)
	}
	if d.CanUndo() {
		t.Error("stack should be exhausted")
	}
}

func TestSelection_VolatileAndNotUndoable(t *testing.T) {
	d, _ := newTestDoc()
	n1 := addPerson(t, d, 0, 0)
	n2 := addPerson(t, d, 50, 0)
	before := d.history.PastLen()

	d.Select(n1, n2)
	if got := d.Selection(); len(got) != 2 {
		t.Fatalf("Selection = %v, want both ids", got)
	}
	d.Select(n2)
	if got := d.Selection(); len(got) != 1 || got[0] != n2 {
		t.Fatalf("Selection = %v, want [%s]", got, n2)
	}
	d.ClearSelection()
	if got := d.Selection(); len(got) != 0 {
		t.Fatalf("Selection after clear = %v", got)
	}

	if got := d.history.PastLen(); got != before {
		t.Errorf("selection changes must not commit, PastLen = %d", got)
	}

	d.Select(n1)
	snap := d.Snapshot()
	for _, n := range snap.Nodes {
		if n.Selected {
			t.Error("snapshots must strip selection flags")
		}
	}
}

func TestStats_Counts(t *testing.T) {
	d, _ := newTestDoc()
	p1 := addPerson(t, d, 0, 0)
	p2 := addPerson(t, d, 100, 0)
	p3 := addPerson(t, d, 200, 0)
	d.AddNode(chart.KindSection, chart.Position{X: 0, Y: 300})
	d.Connect(p1, p2, chart.AnchorBottom, chart.AnchorTop)
	d.Connect(p1, p3, chart.AnchorBottom, chart.AnchorLeft)
	d.Select(p1)

	got := d.Stats()
	want := Stats{
		Nodes: 4, Persons: 3, Sections: 1,
		Connections: 2, TreeEdges: 1, SideEdges: 1,
		Selected: 1, CanUndo: true,
	}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}
