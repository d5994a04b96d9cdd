package chart

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind distinguishes the two node variants in a chart.
type Kind int

const (
	// KindPerson represents a person card: the primary diagram content,
	// positioned by the layout engine.
	KindPerson Kind = iota
	// KindSection represents a grouping backdrop drawn behind person cards.
	// Sections never participate in automatic layout.
	KindSection
)

// kindNames maps kinds to their wire representation.
var kindNames = map[Kind]string{
	KindPerson:  "person",
	KindSection: "section",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as
// "person"/"section" in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", string(text))
}

// Position is a point on the canvas. It embeds flat into node
// serialization, so nodes carry plain "x"/"y" fields on the wire.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the position translated by dx/dy.
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Person is the payload of a KindPerson node.
type Person struct {
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	Role        string `json:"role,omitempty" bson:"role,omitempty"`
	Comment     string `json:"comment,omitempty" bson:"comment,omitempty"`
	ShowComment bool   `json:"showComment,omitempty" bson:"showComment,omitempty"`
	PhotoRef    string `json:"photoRef,omitempty" bson:"photoRef,omitempty"`
	FillColor   string `json:"fillColor,omitempty" bson:"fillColor,omitempty"`
	BorderColor string `json:"borderColor,omitempty" bson:"borderColor,omitempty"`
}

// Clone returns a deep copy of the payload.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Section is the payload of a KindSection node.
type Section struct {
	Title     string  `json:"title,omitempty" bson:"title,omitempty"`
	FillColor string  `json:"fillColor,omitempty" bson:"fillColor,omitempty"`
	Width     float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height    float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// Clone returns a deep copy of the payload.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Node is a vertex in the chart. Exactly one of Person/Section is non-nil,
// matching Kind. Identity is immutable after creation; Position and payload
// are freely mutable.
//
// The Selected/Dragging/Resizing flags and measured extent are derived
// purely from interaction. They are excluded from serialization and
// stripped from snapshots (see [Capture]).
type Node struct {
	ID   string `json:"id" bson:"id"`
	Kind Kind   `json:"kind" bson:"kind"`
	Position

	Person  *Person  `json:"person,omitempty" bson:"person,omitempty"`
	Section *Section `json:"section,omitempty" bson:"section,omitempty"`

	Selected  bool    `json:"-" bson:"-"`
	Dragging  bool    `json:"-" bson:"-"`
	Resizing  bool    `json:"-" bson:"-"`
	MeasuredW float64 `json:"-" bson:"-"`
	MeasuredH float64 `json:"-" bson:"-"`
}

// NewNode creates a node of the given kind at the given position with a
// fresh id and an empty payload for its kind.
func NewNode(kind Kind, pos Position) *Node {
	n := &Node{
		ID:       uuid.NewString(),
		Kind:     kind,
		Position: pos,
	}
	switch kind {
	case KindPerson:
		n.Person = &Person{}
	case KindSection:
		n.Section = &Section{}
	}
	return n
}

// Stack order bands. Person cards always draw above sections; a selected
// section lifts slightly above its unselected peers but stays below every
// person.
const (
	stackSection         = 0
	stackSectionSelected = 1
	stackPerson          = 10
)

// StackOrder returns the draw-order hint for the node. Higher values draw
// on top.
func (n *Node) StackOrder() int {
	switch n.Kind {
	case KindPerson:
		return stackPerson
	case KindSection:
		if n.Selected {
			return stackSectionSelected
		}
		return stackSection
	}
	return stackSection
}

// Label returns the user-facing text for the node: the person's name or
// the section's title. Empty when unset.
func (n *Node) Label() string {
	switch n.Kind {
	case KindPerson:
		if n.Person != nil {
			return n.Person.Name
		}
	case KindSection:
		if n.Section != nil {
			return n.Section.Title
		}
	}
	return ""
}

// Clone returns a deep copy of the node, including its payload and
// volatile interaction state.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Person = n.Person.Clone()
	cp.Section = n.Section.Clone()
	return &cp
}

// DataPatch is a partial payload update. Only non-nil fields are applied;
// fields that do not apply to the node's kind are ignored.
type DataPatch struct {
	// Person fields
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	ShowComment *bool   `json:"showComment,omitempty"`
	PhotoRef    *string `json:"photoRef,omitempty"`
	BorderColor *string `json:"borderColor,omitempty"`

	// Section fields
	Title  *string  `json:"title,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	// Shared fields
	FillColor *string `json:"fillColor,omitempty"`
}

// IsZero reports whether the patch sets no fields at all.
func (p DataPatch) IsZero() bool {
	return p == DataPatch{}
}

// apply merges the patch into the node's payload and reports whether any
// field actually changed value.
func (p DataPatch) apply(n *Node) bool {
	changed := false

	setStr := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}

	switch n.Kind {
	case KindPerson:
		if n.Person == nil {
			return false
		}
		setStr(&n.Person.Name, p.Name)
		setStr(&n.Person.Role, p.Role)
		setStr(&n.Person.Comment, p.Comment)
		setBool(&n.Person.ShowComment, p.ShowComment)
		setStr(&n.Person.PhotoRef, p.PhotoRef)
		setStr(&n.Person.FillColor, p.FillColor)
		setStr(&n.Person.BorderColor, p.BorderColor)
	case KindSection:
		if n.Section == nil {
			return false
		}
		setStr(&n.Section.Title, p.Title)
		setStr(&n.Section.FillColor, p.FillColor)
		setFloat(&n.Section.Width, p.Width)
		setFloat(&n.Section.Height, p.Height)
	}

	return changed
}

