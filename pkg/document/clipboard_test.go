package document

import (
	"testing"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/history"
)

func TestCopyPaste_PreservesTopology(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 100, 100)
	b := addPerson(t, d, 100, 240)
	c := addPerson(t, d, 500, 100)
	if d.Connect(a, b, chart.AnchorBottom, chart.AnchorTop) == "" {
		t.Fatal("inner connect failed")
	}
	if d.Connect(c, a, chart.AnchorBottom, chart.AnchorLeft) == "" {
		t.Fatal("boundary connect failed")
	}

	d.Select(a, b)
	if got := d.CopySelection(); got != 2 {
		t.Fatalf("CopySelection = %d, want 2", got)
	}

	before := d.history.PastLen()
	ids := d.Paste()
	if len(ids) != 2 {
		t.Fatalf("Paste returned %d ids, want 2", len(ids))
	}
	if got := d.history.PastLen(); got != before+1 {
		t.Fatalf("paste should commit once, PastLen = %d want %d", got, before+1)
	}
	for _, id := range ids {
		if id == a || id == b || id == c {
			t.Fatalf("paste reused id %s", id)
		}
	}

	pa, ok := d.Node(ids[0])
	if !ok {
		t.Fatal("pasted node missing")
	}
	pb, _ := d.Node(ids[1])
	if pa.X != 140 || pa.Y != 140 || pb.X != 140 || pb.Y != 280 {
		t.Errorf("pasted positions (%v,%v) (%v,%v), want (140,140) (140,280)",
			pa.X, pa.Y, pb.X, pb.Y)
	}

	// The inner connection came along, the boundary one did not.
	if got := d.Stats().Connections; got != 3 {
		t.Fatalf("connections = %d, want 3", got)
	}
	pasted := 0
	for _, conn := range d.Connections() {
		if conn.Source == ids[0] && conn.Target == ids[1] {
			pasted++
		}
	}
	if pasted != 1 {
		t.Errorf("pasted pair has %d connections, want exactly the inner one", pasted)
	}

	sel := d.Selection()
	if len(sel) != 2 || !((sel[0] == ids[0] && sel[1] == ids[1]) || (sel[0] == ids[1] && sel[1] == ids[0])) {
		t.Errorf("multi-node paste should select the pasted group, got %v", sel)
	}

	if !d.Undo() {
		t.Fatal("undo failed")
	}
	if got := d.Stats(); got.Nodes != 3 || got.Connections != 2 {
		t.Errorf("undo should remove the pasted group, got %d nodes %d connections",
			got.Nodes, got.Connections)
	}
}

func TestPaste_FansOutDiagonally(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	d.Select(a)
	d.CopySelection()

	want := []float64{40, 80, 120}
	for i, offset := range want {
		ids := d.Paste()
		if len(ids) != 1 {
			t.Fatalf("paste %d returned %d ids", i+1, len(ids))
		}
		n, _ := d.Node(ids[0])
		if n.X != offset || n.Y != offset {
			t.Errorf("paste %d landed at (%v,%v), want (%v,%v)", i+1, n.X, n.Y, offset, offset)
		}
	}
}

func TestPaste_SingleNodeKeepsSelection(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	d.Select(a)
	d.CopySelection()

	if ids := d.Paste(); len(ids) != 1 {
		t.Fatalf("Paste returned %d ids, want 1", len(ids))
	}
	if got := d.Selection(); len(got) != 1 || got[0] != a {
		t.Errorf("single-node paste should leave the selection alone, got %v", got)
	}
}

func TestPaste_EmptyClipboard(t *testing.T) {
	d, _ := newTestDoc()
	addPerson(t, d, 0, 0)
	before := d.history.PastLen()
	if ids := d.Paste(); ids != nil {
		t.Errorf("paste with an empty clipboard returned %v", ids)
	}
	if got := d.history.PastLen(); got != before {
		t.Error("empty paste must not commit")
	}
}

func TestCopySelection_EmptyKeepsClipboard(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	d.Select(a)
	if got := d.CopySelection(); got != 1 {
		t.Fatalf("CopySelection = %d, want 1", got)
	}
	d.ClearSelection()
	if got := d.CopySelection(); got != 0 {
		t.Fatalf("empty-selection copy = %d, want 0", got)
	}
	if got := d.ClipboardCount(); got != 1 {
		t.Errorf("clipboard should survive an empty copy, count = %d", got)
	}
	if ids := d.Paste(); len(ids) != 1 {
		t.Errorf("clipboard content should still paste, got %v", ids)
	}
}

// ============================================================================
// Presets
// ============================================================================

func TestCreatePreset_NormalizesToOrigin(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 120, 80)
	b := addPerson(t, d, 170, 80)
	d.Connect(a, b, chart.AnchorBottom, chart.AnchorTop)
	d.Select(a, b)
	before := d.history.PastLen()

	id := d.CreatePreset()
	if id == "" {
		t.Fatal("CreatePreset returned empty id")
	}
	if got := d.history.PastLen(); got != before {
		t.Error("preset creation must not commit")
	}

	ps := d.Presets()
	if len(ps) != 1 {
		t.Fatalf("preset count = %d, want 1", len(ps))
	}
	p := ps[0]
	if p.Name != "Preset 1" {
		t.Errorf("name = %q, want %q", p.Name, "Preset 1")
	}
	if len(p.Nodes) != 2 || len(p.Connections) != 1 {
		t.Fatalf("preset content %d nodes %d connections, want 2 and 1",
			len(p.Nodes), len(p.Connections))
	}
	if p.Nodes[0].X != 0 || p.Nodes[0].Y != 0 {
		t.Errorf("first node at (%v,%v), want origin", p.Nodes[0].X, p.Nodes[0].Y)
	}
	if p.Nodes[1].X != 50 || p.Nodes[1].Y != 0 {
		t.Errorf("second node at (%v,%v), want (50,0)", p.Nodes[1].X, p.Nodes[1].Y)
	}

	// Ordinal naming continues from the library size.
	if d.CreatePreset() == "" {
		t.Fatal("second CreatePreset failed")
	}
	if got := d.Presets()[1].Name; got != "Preset 2" {
		t.Errorf("second name = %q, want %q", got, "Preset 2")
	}
}

func TestCreatePreset_EmptySelection(t *testing.T) {
	d, _ := newTestDoc()
	addPerson(t, d, 0, 0)
	if id := d.CreatePreset(); id != "" {
		t.Errorf("CreatePreset without a selection returned %q", id)
	}
	if got := len(d.Presets()); got != 0 {
		t.Errorf("preset count = %d, want 0", got)
	}
}

func TestApplyPreset_JitterBoundsAndDeterminism(t *testing.T) {
	build := func(seed uint64) (*Document, string) {
		d := New(Options{Scheduler: history.NewManualScheduler(), Seed: seed})
		a := d.AddNode(chart.KindPerson, chart.Position{X: 120, Y: 80})
		b := d.AddNode(chart.KindPerson, chart.Position{X: 170, Y: 80})
		d.Connect(a, b, chart.AnchorBottom, chart.AnchorTop)
		d.Select(a, b)
		return d, d.CreatePreset()
	}

	d1, p1 := build(7)
	ids := d1.ApplyPreset(p1)
	if len(ids) != 2 {
		t.Fatalf("ApplyPreset returned %d ids, want 2", len(ids))
	}
	na, _ := d1.Node(ids[0])
	nb, _ := d1.Node(ids[1])
	if na.X < 120 || na.X >= 200 || na.Y < 120 || na.Y >= 200 {
		t.Errorf("drop position (%v,%v) outside the jitter window [120,200)", na.X, na.Y)
	}
	if nb.X-na.X != 50 || nb.Y != na.Y {
		t.Errorf("relative offsets should survive instantiation: (%v,%v) vs (%v,%v)",
			na.X, na.Y, nb.X, nb.Y)
	}

	// Same seed, same sequence, same drop position.
	d2, p2 := build(7)
	ids2 := d2.ApplyPreset(p2)
	ma, _ := d2.Node(ids2[0])
	if ma.X != na.X || ma.Y != na.Y {
		t.Errorf("fixed seed should reproduce placement: (%v,%v) vs (%v,%v)",
			ma.X, ma.Y, na.X, na.Y)
	}

	// Successive applies draw fresh jitter.
	ids3 := d1.ApplyPreset(p1)
	oa, _ := d1.Node(ids3[0])
	if oa.X == na.X && oa.Y == na.Y {
		t.Error("repeated applies should not stack exactly")
	}
}

func TestApplyPreset_SelectsInsertedAndCommitsOnce(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	b := addPerson(t, d, 50, 0)
	d.Select(a, b)
	id := d.CreatePreset()
	before := d.history.PastLen()

	ids := d.ApplyPreset(id)
	if len(ids) != 2 {
		t.Fatalf("ApplyPreset returned %d ids", len(ids))
	}
	if got := d.history.PastLen(); got != before+1 {
		t.Errorf("apply should commit once, PastLen = %d want %d", got, before+1)
	}
	sel := d.Selection()
	if len(sel) != 2 || (sel[0] != ids[0] && sel[0] != ids[1]) {
		t.Errorf("selection should move to the inserted nodes, got %v", sel)
	}

	if got := d.ApplyPreset("ghost"); got != nil {
		t.Errorf("unknown preset returned %v", got)
	}
}

func TestRenameRemovePreset_DirectAndNotUndoable(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	d.Select(a)
	id := d.CreatePreset()
	before := d.history.PastLen()

	if !d.RenamePreset(id, "Leadership") {
		t.Fatal("rename failed")
	}
	if got := d.Presets()[0].Name; got != "Leadership" {
		t.Errorf("name = %q", got)
	}
	if d.RenamePreset(id, "Leadership") {
		t.Error("renaming to the same name should report false")
	}
	if d.RenamePreset("ghost", "x") {
		t.Error("renaming an unknown preset should report false")
	}

	if !d.RemovePreset(id) {
		t.Fatal("remove failed")
	}
	if d.RemovePreset(id) {
		t.Error("removing twice should report false")
	}
	if got := len(d.Presets()); got != 0 {
		t.Errorf("preset count = %d, want 0", got)
	}
	if got := d.history.PastLen(); got != before {
		t.Error("library edits must not commit")
	}
}

func TestRemovePreset_LeavesInstancesAlone(t *testing.T) {
	d, _ := newTestDoc()
	a := addPerson(t, d, 0, 0)
	d.Select(a)
	id := d.CreatePreset()
	ids := d.ApplyPreset(id)
	if len(ids) != 1 {
		t.Fatal("apply failed")
	}
	d.RemovePreset(id)
	if _, ok := d.Node(ids[0]); !ok {
		t.Error("removing a preset must not touch instantiated nodes")
	}
}
