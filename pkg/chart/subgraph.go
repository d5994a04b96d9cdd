package chart

import "github.com/google/uuid"

// CopySubgraph extracts a deep copy of the given nodes plus every
// connection from conns whose BOTH endpoints lie inside that node set.
// Connections crossing the boundary are dropped. Volatile interaction
// state is stripped from the copies.
//
// This is the shared extraction step behind clipboard copy and preset
// creation.
func CopySubgraph(nodes []*Node, conns []*Connection) ([]*Node, []*Connection) {
	inside := make(map[string]struct{}, len(nodes))
	outNodes := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		cp := n.Clone()
		stripVolatile(cp)
		outNodes = append(outNodes, cp)
		inside[n.ID] = struct{}{}
	}

	var outConns []*Connection
	for _, conn := range conns {
		if _, ok := inside[conn.Source]; !ok {
			continue
		}
		if _, ok := inside[conn.Target]; !ok {
			continue
		}
		outConns = append(outConns, conn.Clone())
	}
	return outNodes, outConns
}

// RemapIDs assigns a fresh id to every node in place, building an
// old-id→new-id map, and rewrites every connection's id and endpoints
// through it. Connections referencing nodes outside the slice keep their
// endpoints untouched (callers extract with [CopySubgraph] first, which
// makes that case impossible).
func RemapIDs(nodes []*Node, conns []*Connection) {
	remap := make(map[string]string, len(nodes))
	for _, n := range nodes {
		fresh := uuid.NewString()
		remap[n.ID] = fresh
		n.ID = fresh
	}
	for _, conn := range conns {
		conn.ID = uuid.NewString()
		if mapped, ok := remap[conn.Source]; ok {
			conn.Source = mapped
		}
		if mapped, ok := remap[conn.Target]; ok {
			conn.Target = mapped
		}
	}
}

// BoundsMin returns the minimum x and y across the nodes. Returns the
// zero position for an empty slice.
func BoundsMin(nodes []*Node) Position {
	if len(nodes) == 0 {
		return Position{}
	}
	min := nodes[0].Position
	for _, n := range nodes[1:] {
		if n.X < min.X {
			min.X = n.X
		}
		if n.Y < min.Y {
			min.Y = n.Y
		}
	}
	return min
}

// OffsetNodes translates every node in place by dx/dy.
func OffsetNodes(nodes []*Node, dx, dy float64) {
	for _, n := range nodes {
		n.Position = n.Position.Add(dx, dy)
	}
}

// NormalizeToOrigin translates the nodes in place so their bounding-box
// minimum sits at (0,0).
func NormalizeToOrigin(nodes []*Node) {
	min := BoundsMin(nodes)
	OffsetNodes(nodes, -min.X, -min.Y)
}
