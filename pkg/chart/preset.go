package chart

import (
	"time"

	"github.com/google/uuid"
)

// Preset is a named, reusable, self-contained sub-graph template. Node
// positions are normalized so the selection's bounding-box minimum sits at
// the origin, and connections reference only nodes inside the preset.
//
// A preset is a value: applying it instantiates fresh copies with new ids
// and never mutates the stored template.
type Preset struct {
	ID        string            `json:"id" bson:"id"`
	Name      string            `json:"name" bson:"name"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	Meta      map[string]string `json:"meta,omitempty" bson:"meta,omitempty"`

	Nodes       []*Node       `json:"nodes" bson:"nodes"`
	Connections []*Connection `json:"connections" bson:"connections"`
}

// NewPreset builds a preset from an extracted sub-graph (see
// [CopySubgraph]). The given nodes and connections are cloned, volatile
// state is stripped, and positions are normalized to the origin.
func NewPreset(name string, nodes []*Node, conns []*Connection) *Preset {
	p := &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Meta:      map[string]string{},
	}
	for _, n := range nodes {
		cp := n.Clone()
		stripVolatile(cp)
		p.Nodes = append(p.Nodes, cp)
	}
	for _, conn := range conns {
		p.Connections = append(p.Connections, conn.Clone())
	}
	NormalizeToOrigin(p.Nodes)
	return p
}

// Instantiate returns fresh copies of the preset's content with new ids,
// rewritten endpoints, and every position offset by base. The preset
// itself is never modified.
func (p *Preset) Instantiate(base Position) ([]*Node, []*Connection) {
	nodes := make([]*Node, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		cp := n.Clone()
		cp.Position = cp.Position.Add(base.X, base.Y)
		nodes = append(nodes, cp)
	}
	conns := make([]*Connection, 0, len(p.Connections))
	for _, conn := range p.Connections {
		conns = append(conns, conn.Clone())
	}
	RemapIDs(nodes, conns)
	return nodes, conns
}

// Clone returns a deep copy of the preset.
func (p *Preset) Clone() *Preset {
	if p == nil {
		return nil
	}
	cp := &Preset{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
	if p.Meta != nil {
		cp.Meta = make(map[string]string, len(p.Meta))
		for k, v := range p.Meta {
			cp.Meta[k] = v
		}
	}
	for _, n := range p.Nodes {
		cp.Nodes = append(cp.Nodes, n.Clone())
	}
	for _, conn := range p.Connections {
		cp.Connections = append(cp.Connections, conn.Clone())
	}
	return cp
}
