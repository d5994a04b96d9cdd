// Package layout computes the automatic arrangement of person cards in a
// chart. It implements a layered ("org chart") layout over the hierarchical
// connections, with lateral connections handled as a separate placement pass.
//
// # Pipeline
//
// Layout runs in five stages:
//
//  1. Classify: restrict to person nodes, split connections into tree edges
//     (target anchored at the top) and side edges (left/right).
//  2. Rank: assign each node a row via longest-path layering over tree edges.
//  3. Order: arrange each row to minimize edge crossings using median sweeps
//     with adjacent-transpose refinement.
//  4. Place: assign coordinates with fixed rank and node separation, centering
//     each row against the widest one.
//  5. Laterals: hang side children beside their parent, dragging each child's
//     tree subtree along rigidly.
//
// Sections never move; the result map only contains person positions.
//
// # Determinism
//
// Layout is a pure function of the chart structure. Node insertion order and
// connection insertion order break all ties, so repeated runs over the same
// chart produce identical positions and report no change. Nodes caught in a
// connection cycle are left at their current position and still anchor their
// own side children there.
//
// # Usage
//
//	positions, changed := layout.Apply(c.Nodes(), c.Connections(), layout.Options{})
//	if changed {
//	    c.ApplyPositions(positions)
//	}
package layout
