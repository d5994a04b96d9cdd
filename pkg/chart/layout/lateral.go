package layout

import "github.com/matzehuels/stemma/pkg/chart"

// placeSideChildren positions lateral children beside their parent, dragging
// each child's tree subtree along rigidly.
//
// Side edges are grouped per parent by anchor; children sharing a (parent,
// anchor) pair stack vertically below the parent, the first SideStartY down
// and each further one SideGapY apart. The horizontal mapping follows
// [chart.Connection]: right-anchored children land on the parent's LEFT,
// left-anchored children on the parent's RIGHT.
//
// Parents are processed in the given order - breadth-first from tree roots
// with unplaced nodes appended - so a parent that was itself repositioned is
// read at its final location. A parent with multiple side edges to the same
// child applies them in connection order; the last one wins.
func placeSideChildren(g *treeGraph, order []string, pos map[string]chart.Position, opts Options) {
	for _, parent := range order {
		edges := g.sides[parent]
		if len(edges) == 0 {
			continue
		}
		p := pos[parent]

		slots := make(map[chart.Anchor]int, 2)
		for _, e := range edges {
			slot := slots[e.anchor]
			slots[e.anchor]++

			x := p.X + opts.SideOffsetX
			if e.anchor == chart.AnchorRight {
				x = p.X - opts.SideOffsetX
			}
			y := p.Y + opts.SideStartY + float64(slot)*opts.SideGapY

			child := pos[e.target]
			shiftSubtree(g, pos, e.target, x-child.X, y-child.Y)
		}
	}
}

// shiftSubtree moves root and every node reachable from it over tree edges
// by (dx, dy). A visited set guards against diamonds and cycles, so each
// node moves exactly once.
func shiftSubtree(g *treeGraph, pos map[string]chart.Position, root string, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	seen := map[string]bool{root: true}
	stack := []string{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pos[id] = pos[id].Add(dx, dy)
		for _, child := range g.children[id] {
			if !seen[child] {
				seen[child] = true
				stack = append(stack, child)
			}
		}
	}
}
