package layout

// assignRanks assigns each tree-reachable node to a row based on its depth
// in the tree-edge subgraph.
//
// It uses a longest-path algorithm via topological sort (Kahn's algorithm):
// each node is placed one row below the deepest of its tree parents, so
// roots (no incoming tree edge) sit at rank 0 and every parent is strictly
// above its children. Isolated persons count as roots.
//
// Nodes caught in a connection cycle never reach zero in-degree and are left
// out: ranks carries no entry for them and they do not appear in placed.
// They keep their current canvas position and are handled at the end of the
// lateral pass instead.
//
// The returned placed slice is the dequeue order, which doubles as the
// breadth-first processing order for side-child placement.
func assignRanks(g *treeGraph) (ranks map[string]int, placed []string) {
	ranks = make(map[string]int, len(g.persons))
	inDegree := make(map[string]int, len(g.persons))
	queue := make([]string, 0, len(g.persons))

	for _, id := range g.persons {
		degree := len(g.parents[id])
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
			ranks[id] = 0
		}
	}

	placed = make([]string, 0, len(g.persons))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		placed = append(placed, curr)

		for _, child := range g.children[curr] {
			if rank := ranks[curr] + 1; rank > ranks[child] {
				ranks[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	// A placed parent feeding into a cycle leaves a rank entry on the cycle
	// member; drop those so ranks covers exactly the placed set.
	for id, degree := range inDegree {
		if degree > 0 {
			delete(ranks, id)
		}
	}
	return ranks, placed
}

// rankLists groups placed nodes into per-rank rows, preserving dequeue order
// within each row. Every rank from 0 to the maximum is non-empty because
// longest-path layering gives each ranked node a parent one rank above.
func rankLists(ranks map[string]int, placed []string) [][]string {
	maxRank := 0
	for _, id := range placed {
		if r := ranks[id]; r > maxRank {
			maxRank = r
		}
	}
	lists := make([][]string, maxRank+1)
	for _, id := range placed {
		r := ranks[id]
		lists[r] = append(lists[r], id)
	}
	return lists
}
