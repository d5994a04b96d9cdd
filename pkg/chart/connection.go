package chart

import (
	"fmt"

	"github.com/google/uuid"
)

// Anchor identifies the side of a node a connection attaches to.
type Anchor int

const (
	// AnchorBottom is the only valid source anchor: connections always
	// leave from the bottom of their source node.
	AnchorBottom Anchor = iota
	// AnchorTop marks a hierarchical (tree) connection. The target becomes
	// a layout child of the source.
	AnchorTop
	// AnchorLeft marks a lateral connection whose target stacks beside the
	// source. Note the placement inversion described on [Connection].
	AnchorLeft
	// AnchorRight marks the opposite lateral connection.
	AnchorRight
)

// anchorNames maps anchors to their wire representation.
var anchorNames = map[Anchor]string{
	AnchorBottom: "bottom",
	AnchorTop:    "top",
	AnchorLeft:   "left",
	AnchorRight:  "right",
}

// String returns the wire name of the anchor.
func (a Anchor) String() string {
	if s, ok := anchorNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler so anchors serialize as
// "bottom"/"top"/"left"/"right" in JSON.
func (a Anchor) MarshalText() ([]byte, error) {
	s, ok := anchorNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown anchor %d", int(a))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(text []byte) error {
	for anchor, name := range anchorNames {
		if name == string(text) {
			*a = anchor
			return nil
		}
	}
	return fmt.Errorf("unknown anchor %q", string(text))
}

// ParseAnchor converts a wire name to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	var a Anchor
	if err := a.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return a, nil
}

// Style holds the visual attributes of a connection.
type Style struct {
	Color  string `json:"color,omitempty" bson:"color,omitempty"`
	Dashed bool   `json:"dashed,omitempty" bson:"dashed,omitempty"`
}

// StylePatch is a partial style update. Only non-nil fields are applied.
type StylePatch struct {
	Color  *string `json:"color,omitempty"`
	Dashed *bool   `json:"dashed,omitempty"`
}

// apply merges the patch into the style and reports whether any field
// actually changed value.
func (p StylePatch) apply(s *Style) bool {
	changed := false
	if p.Color != nil && s.Color != *p.Color {
		s.Color = *p.Color
		changed = true
	}
	if p.Dashed != nil && s.Dashed != *p.Dashed {
		s.Dashed = *p.Dashed
		changed = true
	}
	return changed
}

// Connection is a directed edge between two nodes. The target anchor
// classifies it: top-anchored connections are hierarchical (tree edges in
// layout), left/right-anchored connections are lateral (side edges).
//
// Lateral placement is inverted relative to the anchor name: anchor
// "right" stacks children to the parent's LEFT and anchor "left" to the
// parent's RIGHT, because the connector leaves the source's bottom and
// hooks around the card. This is the established product behavior and
// documents persisted with it rely on the inversion.
type Connection struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	Target       string `json:"target" bson:"target"`
	SourceAnchor Anchor `json:"sourceAnchor" bson:"sourceAnchor"`
	TargetAnchor Anchor `json:"targetAnchor" bson:"targetAnchor"`
	Style        Style  `json:"style" bson:"style"`
}

// NewConnection creates a connection with a fresh id.
func NewConnection(source, target string, sourceAnchor, targetAnchor Anchor) *Connection {
	return &Connection{
		ID:           uuid.NewString(),
		Source:       source,
		Target:       target,
		SourceAnchor: sourceAnchor,
		TargetAnchor: targetAnchor,
	}
}

// IsTree reports whether the connection is hierarchical (target anchor is
// the top of the target node).
func (c *Connection) IsTree() bool { return c.TargetAnchor == AnchorTop }

// IsSide reports whether the connection is lateral (target anchor is left
// or right).
func (c *Connection) IsSide() bool {
	return c.TargetAnchor == AnchorLeft || c.TargetAnchor == AnchorRight
}

// Clone returns a copy of the connection.
func (c *Connection) Clone() *Connection {
	cp := *c
	return &cp
}

// validSourceAnchor and validTargetAnchor gate what Connect accepts.
func validSourceAnchor(a Anchor) bool { return a == AnchorBottom }

func validTargetAnchor(a Anchor) bool {
	return a == AnchorTop || a == AnchorLeft || a == AnchorRight
}
