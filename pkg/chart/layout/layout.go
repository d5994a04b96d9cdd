package layout

import (
	"slices"

	"github.com/matzehuels/stemma/pkg/chart"
)

// Apply computes new positions for every person node and reports whether any
// position differs from the node's current one. Sections are never included
// in the result. The inputs are not modified; callers write the positions
// back with [chart.Chart.ApplyPositions].
//
// Nodes unreachable from any tree root (members of a connection cycle) keep
// their current position, which still anchors their own side children.
func Apply(nodes []*chart.Node, conns []*chart.Connection, opts Options) (map[string]chart.Position, bool) {
	opts.SetDefaults()

	g := buildGraph(nodes, conns)
	pos := make(map[string]chart.Position, len(g.persons))
	for _, id := range g.persons {
		pos[id] = g.pos[id]
	}
	if len(g.persons) == 0 {
		return pos, false
	}

	ranks, placed := assignRanks(g)
	lists := rankLists(ranks, placed)
	lists = barycentric{passes: opts.OrderingPasses}.orderRanks(g, lists)
	assignCoords(g, lists, pos, opts)

	order := slices.Clone(placed)
	for _, id := range g.persons {
		if _, ok := ranks[id]; !ok {
			order = append(order, id)
		}
	}
	placeSideChildren(g, order, pos, opts)

	changed := false
	for _, id := range g.persons {
		if pos[id] != g.pos[id] {
			changed = true
			break
		}
	}
	opts.Logger.Debug("layout computed", "persons", len(g.persons), "ranks", len(lists), "changed", changed)
	return pos, changed
}

// assignCoords writes grid coordinates for every ranked node. Rows are
// centered against the widest row, which keeps a lone parent over the middle
// of its children. Side-only children occupy a rank slot but contribute no
// width and no gap, so they cannot distort their siblings' spacing; the
// lateral pass moves them to their real position afterwards.
func assignCoords(g *treeGraph, lists [][]string, pos map[string]chart.Position, opts Options) {
	widths := make([]float64, len(lists))
	maxWidth := 0.0
	for r, row := range lists {
		solid := 0
		for _, id := range row {
			if !g.sideOnly[id] {
				solid++
			}
		}
		if solid > 0 {
			widths[r] = float64(solid)*opts.PersonWidth + float64(solid-1)*opts.NodeSep
		}
		if widths[r] > maxWidth {
			maxWidth = widths[r]
		}
	}

	for r, row := range lists {
		x := opts.MarginX + (maxWidth-widths[r])/2
		y := opts.MarginY + float64(r)*opts.RankSep
		for _, id := range row {
			pos[id] = chart.Position{X: x, Y: y}
			if !g.sideOnly[id] {
				x += opts.PersonWidth + opts.NodeSep
			}
		}
	}
}
