package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/chart/layout"
)

// Fallback extent for sections whose payload never got an explicit size.
const (
	sectionFallbackW = 300.0
	sectionFallbackH = 200.0
)

// compass maps connection anchors to Graphviz port names.
var compass = map[chart.Anchor]string{
	chart.AnchorBottom: "s",
	chart.AnchorTop:    "n",
	chart.AnchorLeft:   "w",
	chart.AnchorRight:  "e",
}

// ToDOT converts a chart snapshot to Graphviz DOT for interchange. The
// dot engine lays the graph out from scratch: tree connections rank the
// hierarchy top-to-bottom and side connections are emitted with
// constraint=false so they attach without affecting ranks. Chart
// positions are not part of the output.
//
// For position-faithful image output use [RenderSVG] or [RenderPNG].
func ToDOT(snap *chart.Snapshot) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph chart {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range snap.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, c := range snap.Connections {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, strings.Join(edgeAttrs(c, false), ", "))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// pinnedDOT converts a snapshot to DOT with every node pinned to its
// chart coordinates, for the neato engine. Graphviz only routes the
// connectors; positions, sizes and stacking come from the chart. The
// chart's y axis grows downward, Graphviz's upward, hence the flip.
func pinnedDOT(snap *chart.Snapshot) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph chart {\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	// Emission order is draw order: sections first so they render as
	// backdrops behind the person cards.
	nodes := slices.Clone(snap.Nodes)
	slices.SortStableFunc(nodes, func(a, b *chart.Node) int {
		return a.StackOrder() - b.StackOrder()
	})
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(pinnedAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, c := range snap.Connections {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, strings.Join(edgeAttrs(c, true), ", "))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// nodeExtent returns the node's drawn size in chart pixels.
func nodeExtent(n *chart.Node) (w, h float64) {
	if n.Kind == chart.KindSection {
		w, h = sectionFallbackW, sectionFallbackH
		if n.Section != nil && n.Section.Width > 0 {
			w = n.Section.Width
		}
		if n.Section != nil && n.Section.Height > 0 {
			h = n.Section.Height
		}
		return w, h
	}
	return layout.DefaultPersonWidth, layout.DefaultPersonHeight
}

func nodeAttrs(n *chart.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n))}
	switch n.Kind {
	case chart.KindSection:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		if n.Section != nil && n.Section.FillColor != "" {
			attrs[len(attrs)-1] = fmt.Sprintf("fillcolor=%q", n.Section.FillColor)
		}
	case chart.KindPerson:
		attrs = append(attrs, personColorAttrs(n.Person)...)
	}
	return attrs
}

// pinnedAttrs renders a node at its exact chart position. Graphviz pos
// is the node center in points; width/height are inches at 72dpi.
func pinnedAttrs(n *chart.Node) []string {
	w, h := nodeExtent(n)
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n)),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X+w/2, -(n.Y + h/2)),
		fmt.Sprintf("width=%.3f", w/72),
		fmt.Sprintf("height=%.3f", h/72),
		"fixedsize=true",
	}
	switch n.Kind {
	case chart.KindSection:
		attrs = append(attrs, "style=filled", "labelloc=t", "color=\"#cccccc\"", "fontcolor=\"#666666\"")
		fill := "#f2f2f2"
		if n.Section != nil && n.Section.FillColor != "" {
			fill = n.Section.FillColor
		}
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	case chart.KindPerson:
		attrs = append(attrs, personColorAttrs(n.Person)...)
	}
	return attrs
}

func personColorAttrs(p *chart.Person) []string {
	if p == nil {
		return nil
	}
	var attrs []string
	if p.FillColor != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", p.FillColor))
	}
	if p.BorderColor != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", p.BorderColor))
	}
	return attrs
}

// nodeLabel builds the multi-line label text for a node. Person cards
// show name, role and, when flagged visible, the comment. Sections show
// their title.
func nodeLabel(n *chart.Node) string {
	if n.Kind == chart.KindSection {
		return n.Label()
	}
	p := n.Person
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Role != "" {
		parts = append(parts, p.Role)
	}
	if p.ShowComment && p.Comment != "" {
		parts = append(parts, p.Comment)
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(c *chart.Connection, pinned bool) []string {
	attrs := []string{
		fmt.Sprintf("tailport=%s", compass[c.SourceAnchor]),
		fmt.Sprintf("headport=%s", compass[c.TargetAnchor]),
	}
	if c.Style.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", c.Style.Color))
	}
	if c.Style.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	if !pinned && c.IsSide() {
		attrs = append(attrs, "constraint=false")
	}
	return attrs
}
