package chart

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateID is returned by [Chart.Validate] when two nodes or two
	// connections share an id. This indicates model corruption.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDanglingEndpoint is returned by [Chart.Validate] when a connection
	// references a node that doesn't exist. Cascade deletion normally makes
	// this impossible.
	ErrDanglingEndpoint = errors.New("connection references missing node")

	// ErrPayloadMismatch is returned by [Chart.Validate] when a node's
	// payload pointer doesn't match its kind (a person without a Person
	// payload, a section carrying one, and so on).
	ErrPayloadMismatch = errors.New("node payload does not match kind")
)

// Chart is the mutable diagram model: nodes, connections, and the stored
// preset library. Node and connection iteration follows insertion order,
// which keeps serialization and layout deterministic.
//
// All mutations are silently tolerant: operations referencing unknown ids
// are no-ops, and Connect refuses (returning an empty id) rather than
// fails. Callers that need to know whether anything happened use the
// boolean returns.
//
// The zero value is not usable - use New. Chart is not safe for concurrent
// use without external synchronization.
type Chart struct {
	nodes     map[string]*Node
	nodeOrder []string

	conns     map[string]*Connection
	connOrder []string

	presets     map[string]*Preset
	presetOrder []string
}

// New creates an empty chart.
func New() *Chart {
	return &Chart{
		nodes:   make(map[string]*Node),
		conns:   make(map[string]*Connection),
		presets: make(map[string]*Preset),
	}
}

// ============================================================================
// Node operations
// ============================================================================

// AddNode creates a node of the given kind at the given position and
// returns its fresh id.
func (c *Chart) AddNode(kind Kind, pos Position) string {
	n := NewNode(kind, pos)
	c.put(n)
	return n.ID
}

// put inserts a prepared node, silently skipping empty or duplicate ids.
func (c *Chart) put(n *Node) {
	if n == nil || n.ID == "" {
		return
	}
	if _, exists := c.nodes[n.ID]; exists {
		return
	}
	c.nodes[n.ID] = n
	c.nodeOrder = append(c.nodeOrder, n.ID)
}

// RemoveNode deletes the node and cascades removal of every connection
// touching it. Unknown ids are a no-op. Reports whether a node was removed.
func (c *Chart) RemoveNode(id string) bool {
	if _, ok := c.nodes[id]; !ok {
		return false
	}
	delete(c.nodes, id)
	c.nodeOrder = slices.DeleteFunc(c.nodeOrder, func(s string) bool { return s == id })

	for _, connID := range c.connOrder {
		conn := c.conns[connID]
		if conn != nil && (conn.Source == id || conn.Target == id) {
			delete(c.conns, connID)
		}
	}
	c.connOrder = slices.DeleteFunc(c.connOrder, func(s string) bool {
		_, ok := c.conns[s]
		return !ok
	})
	return true
}

// UpdateNodeData merges the patch into the node's payload. Unknown ids and
// empty patches are no-ops. Reports whether any field changed.
func (c *Chart) UpdateNodeData(id string, patch DataPatch) bool {
	n, ok := c.nodes[id]
	if !ok {
		return false
	}
	return patch.apply(n)
}

// MoveNode sets the node's position. Unknown ids are a no-op. Reports
// whether the position changed.
func (c *Chart) MoveNode(id string, pos Position) bool {
	n, ok := c.nodes[id]
	if !ok || n.Position == pos {
		return false
	}
	n.Position = pos
	return true
}

// Node returns the node with the given id, or nil and false.
func (c *Chart) Node(id string) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice is fresh but the
// pointers refer to live nodes.
func (c *Chart) Nodes() []*Node {
	out := make([]*Node, 0, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		out = append(out, c.nodes[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (c *Chart) NodeCount() int { return len(c.nodes) }

// ============================================================================
// Connection operations
// ============================================================================

// Connect creates a connection between two existing nodes and returns its
// id. Returns an empty id without mutating anything when either endpoint
// is missing, the endpoints are the same node, or the anchors are invalid.
func (c *Chart) Connect(source, target string, sourceAnchor, targetAnchor Anchor) string {
	if source == target {
		return ""
	}
	if _, ok := c.nodes[source]; !ok {
		return ""
	}
	if _, ok := c.nodes[target]; !ok {
		return ""
	}
	if !validSourceAnchor(sourceAnchor) || !validTargetAnchor(targetAnchor) {
		return ""
	}
	conn := NewConnection(source, target, sourceAnchor, targetAnchor)
	c.putConnection(conn)
	return conn.ID
}

// putConnection inserts a prepared connection, silently skipping empty or
// duplicate ids and dangling endpoints.
func (c *Chart) putConnection(conn *Connection) {
	if conn == nil || conn.ID == "" {
		return
	}
	if _, exists := c.conns[conn.ID]; exists {
		return
	}
	if _, ok := c.nodes[conn.Source]; !ok {
		return
	}
	if _, ok := c.nodes[conn.Target]; !ok {
		return
	}
	c.conns[conn.ID] = conn
	c.connOrder = append(c.connOrder, conn.ID)
}

// RemoveConnection deletes the connection. Unknown ids are a no-op.
// Reports whether a connection was removed.
func (c *Chart) RemoveConnection(id string) bool {
	if _, ok := c.conns[id]; !ok {
		return false
	}
	delete(c.conns, id)
	c.connOrder = slices.DeleteFunc(c.connOrder, func(s string) bool { return s == id })
	return true
}

// UpdateConnectionStyle merges the patch into the connection's style.
// Unknown ids are a no-op. Reports whether any field changed.
func (c *Chart) UpdateConnectionStyle(id string, patch StylePatch) bool {
	conn, ok := c.conns[id]
	if !ok {
		return false
	}
	return patch.apply(&conn.Style)
}

// Connection returns the connection with the given id, or nil and false.
func (c *Chart) Connection(id string) (*Connection, bool) {
	conn, ok := c.conns[id]
	return conn, ok
}

// Connections returns all connections in insertion order. The slice is
// fresh but the pointers refer to live connections.
func (c *Chart) Connections() []*Connection {
	out := make([]*Connection, 0, len(c.connOrder))
	for _, id := range c.connOrder {
		out = append(out, c.conns[id])
	}
	return out
}

// ConnectionCount returns the number of connections.
func (c *Chart) ConnectionCount() int { return len(c.conns) }

// ============================================================================
// Selection
// ============================================================================

// SetSelection marks exactly the given nodes as selected, clearing any
// previous selection. Unknown ids are ignored.
func (c *Chart) SetSelection(ids []string) {
	for _, n := range c.nodes {
		n.Selected = false
	}
	for _, id := range ids {
		if n, ok := c.nodes[id]; ok {
			n.Selected = true
		}
	}
}

// Select marks the given nodes as selected without touching the rest.
func (c *Chart) Select(ids ...string) {
	for _, id := range ids {
		if n, ok := c.nodes[id]; ok {
			n.Selected = true
		}
	}
}

// ClearSelection deselects every node.
func (c *Chart) ClearSelection() {
	for _, n := range c.nodes {
		n.Selected = false
	}
}

// SelectedNodes returns the selected nodes in insertion order.
func (c *Chart) SelectedNodes() []*Node {
	var out []*Node
	for _, id := range c.nodeOrder {
		if n := c.nodes[id]; n.Selected {
			out = append(out, n)
		}
	}
	return out
}

// SelectedIDs returns the ids of selected nodes in insertion order.
func (c *Chart) SelectedIDs() []string {
	var out []string
	for _, id := range c.nodeOrder {
		if c.nodes[id].Selected {
			out = append(out, id)
		}
	}
	return out
}

// ============================================================================
// Bulk operations
// ============================================================================

// Insert adds prepared nodes and connections in one pass, preserving their
// order. Duplicate ids and dangling endpoints are silently skipped.
// Paste and preset application build their content first and insert here.
func (c *Chart) Insert(nodes []*Node, conns []*Connection) {
	for _, n := range nodes {
		c.put(n)
	}
	for _, conn := range conns {
		c.putConnection(conn)
	}
}

// ReplaceContent swaps the chart's nodes and connections for the given
// sets in one mutation, dropping any connection with a dangling endpoint.
// The preset library is untouched. Used by snapshot restore and import.
func (c *Chart) ReplaceContent(nodes []*Node, conns []*Connection) {
	c.nodes = make(map[string]*Node, len(nodes))
	c.nodeOrder = c.nodeOrder[:0]
	c.conns = make(map[string]*Connection, len(conns))
	c.connOrder = c.connOrder[:0]
	for _, n := range nodes {
		c.put(n)
	}
	for _, conn := range conns {
		c.putConnection(conn)
	}
}

// ApplyPositions moves every listed node to its new position in one pass.
// Unknown ids are ignored. Returns the number of nodes that moved.
func (c *Chart) ApplyPositions(positions map[string]Position) int {
	moved := 0
	for _, id := range c.nodeOrder {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		if n := c.nodes[id]; n.Position != pos {
			n.Position = pos
			moved++
		}
	}
	return moved
}

// ============================================================================
// Preset library
// ============================================================================

// AddPreset stores a preset. Empty or duplicate ids are silently skipped.
func (c *Chart) AddPreset(p *Preset) {
	if p == nil || p.ID == "" {
		return
	}
	if _, exists := c.presets[p.ID]; exists {
		return
	}
	c.presets[p.ID] = p
	c.presetOrder = append(c.presetOrder, p.ID)
}

// RemovePreset deletes a preset. Unknown ids are a no-op. Reports whether
// a preset was removed.
func (c *Chart) RemovePreset(id string) bool {
	if _, ok := c.presets[id]; !ok {
		return false
	}
	delete(c.presets, id)
	c.presetOrder = slices.DeleteFunc(c.presetOrder, func(s string) bool { return s == id })
	return true
}

// RenamePreset changes a preset's display name. Unknown ids are a no-op.
// Reports whether the name changed.
func (c *Chart) RenamePreset(id, name string) bool {
	p, ok := c.presets[id]
	if !ok || p.Name == name {
		return false
	}
	p.Name = name
	return true
}

// Preset returns the preset with the given id, or nil and false.
func (c *Chart) Preset(id string) (*Preset, bool) {
	p, ok := c.presets[id]
	return p, ok
}

// Presets returns all presets in insertion order.
func (c *Chart) Presets() []*Preset {
	out := make([]*Preset, 0, len(c.presetOrder))
	for _, id := range c.presetOrder {
		out = append(out, c.presets[id])
	}
	return out
}

// PresetCount returns the number of stored presets.
func (c *Chart) PresetCount() int { return len(c.presets) }

// ReplacePresets swaps the preset library wholesale, keeping the given
// order. Graph content is untouched.
func (c *Chart) ReplacePresets(ps []*Preset) {
	c.presets = make(map[string]*Preset, len(ps))
	c.presetOrder = c.presetOrder[:0]
	for _, p := range ps {
		c.AddPreset(p)
	}
}

// ============================================================================
// Integrity
// ============================================================================

// Validate checks model integrity and returns nil if valid.
// It verifies three constraints:
//
//  1. Node and connection ids are unique (ErrDuplicateID)
//  2. Every connection endpoint references an existing node
//     (ErrDanglingEndpoint)
//  3. Every node carries exactly the payload its kind requires
//     (ErrPayloadMismatch)
//
// Cascade deletion and the silent-tolerant mutation surface normally keep
// these invariants; Validate exists for import paths and tests.
func (c *Chart) Validate() error {
	seen := make(map[string]struct{}, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		if _, dup := seen[id]; dup {
			return ErrDuplicateID
		}
		seen[id] = struct{}{}

		n := c.nodes[id]
		switch n.Kind {
		case KindPerson:
			if n.Person == nil || n.Section != nil {
				return ErrPayloadMismatch
			}
		case KindSection:
			if n.Section == nil || n.Person != nil {
				return ErrPayloadMismatch
			}
		default:
			return ErrPayloadMismatch
		}
	}

	seenConn := make(map[string]struct{}, len(c.connOrder))
	for _, id := range c.connOrder {
		if _, dup := seenConn[id]; dup {
			return ErrDuplicateID
		}
		seenConn[id] = struct{}{}

		conn := c.conns[id]
		if _, ok := c.nodes[conn.Source]; !ok {
			return ErrDanglingEndpoint
		}
		if _, ok := c.nodes[conn.Target]; !ok {
			return ErrDanglingEndpoint
		}
	}
	return nil
}

// Clone returns a deep copy of the chart, including presets and volatile
// interaction state.
func (c *Chart) Clone() *Chart {
	cp := New()
	for _, id := range c.nodeOrder {
		cp.put(c.nodes[id].Clone())
	}
	for _, id := range c.connOrder {
		cp.putConnection(c.conns[id].Clone())
	}
	for _, id := range c.presetOrder {
		cp.AddPreset(c.presets[id].Clone())
	}
	return cp
}
