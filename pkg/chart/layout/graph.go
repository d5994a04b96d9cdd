package layout

import "github.com/matzehuels/stemma/pkg/chart"

// sideEdge is a lateral connection seen from its source.
type sideEdge struct {
	target string
	anchor chart.Anchor
}

// treeGraph is the layout engine's view of a chart: person nodes only, with
// tree and side edges separated. All slices preserve insertion order, which
// is what makes layout deterministic.
type treeGraph struct {
	persons  []string                  // person ids in node insertion order
	pos      map[string]chart.Position // current position of every person
	children map[string][]string       // tree out-edges in connection order
	parents  map[string][]string       // tree in-edges in connection order
	sides    map[string][]sideEdge     // side out-edges by source, connection order
	sideOnly map[string]bool           // has a side parent but no tree parent
}

// buildGraph classifies nodes and connections for layout. Non-person nodes,
// connections touching them, and self edges are ignored.
func buildGraph(nodes []*chart.Node, conns []*chart.Connection) *treeGraph {
	g := &treeGraph{
		pos:      make(map[string]chart.Position, len(nodes)),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		sides:    make(map[string][]sideEdge),
		sideOnly: make(map[string]bool),
	}

	for _, n := range nodes {
		if n.Kind != chart.KindPerson {
			continue
		}
		g.persons = append(g.persons, n.ID)
		g.pos[n.ID] = n.Position
	}

	hasSideParent := make(map[string]bool)
	for _, c := range conns {
		if _, ok := g.pos[c.Source]; !ok {
			continue
		}
		if _, ok := g.pos[c.Target]; !ok {
			continue
		}
		if c.Source == c.Target {
			continue
		}
		switch {
		case c.IsTree():
			g.children[c.Source] = append(g.children[c.Source], c.Target)
			g.parents[c.Target] = append(g.parents[c.Target], c.Source)
		case c.IsSide():
			g.sides[c.Source] = append(g.sides[c.Source], sideEdge{target: c.Target, anchor: c.TargetAnchor})
			hasSideParent[c.Target] = true
		}
	}

	for id := range hasSideParent {
		if len(g.parents[id]) == 0 {
			g.sideOnly[id] = true
		}
	}
	return g
}

// posMap creates a position lookup map from an ordered id slice.
func posMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
