package layout

import "slices"

// countCrossings returns the total number of tree-edge crossings for the
// given row orderings, summing the crossings between each pair of
// consecutive ranks. Edges spanning more than one rank are not counted;
// hierarchies built interactively almost never produce them and the
// ordering heuristic only needs a relative measure.
func countCrossings(g *treeGraph, lists [][]string) int {
	crossings := 0
	for i := 0; i+1 < len(lists); i++ {
		crossings += countLayerCrossings(g, lists[i], lists[i+1])
	}
	return crossings
}

// countLayerCrossings counts edge crossings between two adjacent ranks using
// a Fenwick tree (binary indexed tree) for O(E log V) performance.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target
// positions when edges are sorted by source position.
func countLayerCrossings(g *treeGraph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := posMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, id := range upper {
		for _, child := range g.children[id] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	// Sort edges by source position, then by target position
	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Query: count edges seen so far with target <= e.lower
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = edges seen so far with target > e.lower
		crossings += total - lessOrEqual

		// Update: increment count at target position
		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// countPairCrossings counts the crossings between the edges of two nodes
// occupying adjacent slots (left then right) in their rank, against one
// neighboring rank. If useParents is true it considers edges to the rank
// above, otherwise edges to the rank below. The transpose heuristic calls
// this for both orders of a pair to decide whether swapping helps.
func countPairCrossings(g *treeGraph, left, right string, adjPos map[string]int, useParents bool) int {
	var lnbr, rnbr []string
	if useParents {
		lnbr, rnbr = g.parents[left], g.parents[right]
	} else {
		lnbr, rnbr = g.children[left], g.children[right]
	}

	crossings := 0
	for _, ln := range lnbr {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range rnbr {
			// If left's neighbor is to the right of right's neighbor, they cross
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}
