package layout

import (
	"cmp"
	"slices"
)

// barycentric implements the classic Sugiyama crossing-minimization
// heuristic: alternate top-down and bottom-up sweeps that sort each rank by
// the median position of its neighbors in the adjacent rank, followed by an
// adjacent-transpose pass, keeping the best ordering seen.
type barycentric struct {
	passes int
}

// orderRanks returns the best row ordering found. The input lists are not
// modified.
func (b barycentric) orderRanks(g *treeGraph, lists [][]string) [][]string {
	best := cloneLists(lists)
	bestCrossings := countCrossings(g, best)

	curr := cloneLists(lists)
	for pass := 0; pass < b.passes && bestCrossings > 0; pass++ {
		if pass%2 == 0 {
			sweepDown(g, curr)
		} else {
			sweepUp(g, curr)
		}
		transpose(g, curr)

		if n := countCrossings(g, curr); n < bestCrossings {
			bestCrossings = n
			best = cloneLists(curr)
		}
	}
	return best
}

func sweepDown(g *treeGraph, lists [][]string) {
	for r := 1; r < len(lists); r++ {
		reorderByMedian(lists[r], lists[r-1], func(id string) []string { return g.parents[id] })
	}
}

func sweepUp(g *treeGraph, lists [][]string) {
	for r := len(lists) - 2; r >= 0; r-- {
		reorderByMedian(lists[r], lists[r+1], func(id string) []string { return g.children[id] })
	}
}

// reorderByMedian stably sorts row by the median position of each node's
// neighbors in the adjacent row. Nodes without neighbors there keep their
// current slot as the sort key, which leaves them roughly in place.
func reorderByMedian(row, adjacent []string, neighbors func(string) []string) {
	adjPos := posMap(adjacent)

	keys := make(map[string]float64, len(row))
	for i, id := range row {
		positions := make([]int, 0, 4)
		for _, n := range neighbors(id) {
			if p, ok := adjPos[n]; ok {
				positions = append(positions, p)
			}
		}
		if len(positions) == 0 {
			keys[id] = float64(i)
			continue
		}
		slices.Sort(positions)
		mid := len(positions) / 2
		if len(positions)%2 == 1 {
			keys[id] = float64(positions[mid])
		} else {
			keys[id] = float64(positions[mid-1]+positions[mid]) / 2
		}
	}

	slices.SortStableFunc(row, func(a, b string) int {
		return cmp.Compare(keys[a], keys[b])
	})
}

// transpose greedily swaps adjacent pairs while a swap reduces crossings
// against the neighboring ranks, bounded so degenerate inputs stay cheap.
func transpose(g *treeGraph, lists [][]string) {
	const maxRounds = 4
	for round := 0; round < maxRounds; round++ {
		improved := false
		for r, row := range lists {
			var abovePos, belowPos map[string]int
			if r > 0 {
				abovePos = posMap(lists[r-1])
			}
			if r+1 < len(lists) {
				belowPos = posMap(lists[r+1])
			}
			for i := 0; i+1 < len(row); i++ {
				left, right := row[i], row[i+1]
				current, swapped := 0, 0
				if abovePos != nil {
					current += countPairCrossings(g, left, right, abovePos, true)
					swapped += countPairCrossings(g, right, left, abovePos, true)
				}
				if belowPos != nil {
					current += countPairCrossings(g, left, right, belowPos, false)
					swapped += countPairCrossings(g, right, left, belowPos, false)
				}
				if swapped < current {
					row[i], row[i+1] = right, left
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

func cloneLists(lists [][]string) [][]string {
	out := make([][]string, len(lists))
	for i, l := range lists {
		out[i] = slices.Clone(l)
	}
	return out
}
