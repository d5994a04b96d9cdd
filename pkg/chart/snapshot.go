package chart

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Snapshot is a deep, render-agnostic copy of a chart's nodes and
// connections, used for undo/redo and persistence. Interaction-derived
// state (selection, drag/resize flags, measured sizes) is stripped at
// capture so a restored chart never resurrects stale UI state.
//
// Presets are deliberately not part of snapshots: the preset library is
// not graph content and undo never touches it.
type Snapshot struct {
	Nodes       []*Node       `json:"nodes" bson:"nodes"`
	Connections []*Connection `json:"connections" bson:"connections"`
}

// stripVolatile is the single projection that removes interaction-derived
// state from a cloned node. Snapshot capture and clipboard extraction both
// run through it; add new volatile fields here, nowhere else.
func stripVolatile(n *Node) {
	n.Selected = false
	n.Dragging = false
	n.Resizing = false
	n.MeasuredW = 0
	n.MeasuredH = 0
}

// Capture produces a snapshot of the chart's current nodes and
// connections. The snapshot shares no memory with the chart.
func Capture(c *Chart) *Snapshot {
	s := &Snapshot{
		Nodes:       make([]*Node, 0, c.NodeCount()),
		Connections: make([]*Connection, 0, c.ConnectionCount()),
	}
	for _, n := range c.Nodes() {
		cp := n.Clone()
		stripVolatile(cp)
		s.Nodes = append(s.Nodes, cp)
	}
	for _, conn := range c.Connections() {
		s.Connections = append(s.Connections, conn.Clone())
	}
	return s
}

// ApplyTo replaces the chart's nodes and connections with the snapshot's
// content in one mutation. The chart's preset library is untouched. The
// snapshot remains valid: the chart receives clones.
func (s *Snapshot) ApplyTo(c *Chart) {
	nodes := make([]*Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, n.Clone())
	}
	conns := make([]*Connection, 0, len(s.Connections))
	for _, conn := range s.Connections {
		conns = append(conns, conn.Clone())
	}
	c.ReplaceContent(nodes, conns)
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	cp := &Snapshot{
		Nodes:       make([]*Node, 0, len(s.Nodes)),
		Connections: make([]*Connection, 0, len(s.Connections)),
	}
	for _, n := range s.Nodes {
		cp.Nodes = append(cp.Nodes, n.Clone())
	}
	for _, conn := range s.Connections {
		cp.Connections = append(cp.Connections, conn.Clone())
	}
	return cp
}

// CanonicalBytes returns the snapshot's canonical serialization: nodes and
// connections sorted by id, marshaled with the stable wire field order.
// Two snapshots represent the same chart state iff their canonical bytes
// are identical.
func (s *Snapshot) CanonicalBytes() []byte {
	nodes := slices.Clone(s.Nodes)
	slices.SortFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.ID, b.ID)
	})
	conns := slices.Clone(s.Connections)
	slices.SortFunc(conns, func(a, b *Connection) int {
		return strings.Compare(a.ID, b.ID)
	})

	canon := Snapshot{Nodes: nodes, Connections: conns}
	data, err := json.Marshal(canon)
	if err != nil {
		// Model types contain only marshalable fields; this cannot fire
		// for a well-formed snapshot.
		return nil
	}
	return data
}

// Equal reports whether two snapshots have identical canonical bytes.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return bytes.Equal(s.CanonicalBytes(), other.CanonicalBytes())
}
