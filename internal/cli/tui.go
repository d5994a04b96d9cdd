package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/document"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editorMode selects what keystrokes mean.
type editorMode int

const (
	modeList editorMode = iota
	modeRename
	modeConnect
)

// tickMsg refreshes the save indicator while the autosave debounce runs.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// editorModel - the stemma edit TUI
// =============================================================================

// editorModel is the bubbletea model behind stemma edit: a node list with
// a cursor, plus rename and connect sub-modes. Every action goes through
// the document, so undo, batching, and autosave behave exactly as they do
// for the HTTP API.
type editorModel struct {
	doc *document.Document

	nodes  []*chart.Node
	cursor int
	mode   editorMode

	input       string // rename buffer, pushed into the node on every keystroke
	connectFrom string // source node id while picking a connection target
	connectSide bool   // side connection instead of tree

	status string
	width  int
	height int
}

func newEditorModel(doc *document.Document) editorModel {
	m := editorModel{doc: doc}
	m.refresh()
	return m
}

// refresh re-reads the node list and clamps the cursor.
func (m *editorModel) refresh() {
	m.nodes = m.doc.Nodes()
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m editorModel) current() *chart.Node {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.nodes[m.cursor]
}

func (m *editorModel) moveCursorTo(id string) {
	for i, n := range m.nodes {
		if n.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m editorModel) Init() tea.Cmd {
	return tick()
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		switch m.mode {
		case modeRename:
			return m.updateRename(msg)
		case modeConnect:
			return m.updateConnect(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m editorModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
		}
	case "p":
		id := m.doc.AddNode(chart.KindPerson, m.dropPosition())
		m.refresh()
		m.moveCursorTo(id)
		m.status = "person added"
	case "s":
		id := m.doc.AddNode(chart.KindSection, m.dropPosition())
		m.refresh()
		m.moveCursorTo(id)
		m.status = "section added"
	case "d":
		if n := m.current(); n != nil {
			m.doc.RemoveNode(n.ID)
			m.refresh()
			m.status = "node removed"
		}
	case "c", "C":
		if n := m.current(); n != nil && len(m.nodes) > 1 {
			m.mode = modeConnect
			m.connectFrom = n.ID
			m.connectSide = msg.String() == "C"
			if m.connectSide {
				m.status = "pick a target, enter attaches it beside the source"
			} else {
				m.status = "pick a target, enter connects it below the source"
			}
		}
	case "u":
		if m.doc.Undo() {
			m.refresh()
			m.status = "undone"
		} else {
			m.status = "nothing to undo"
		}
	case "r":
		if m.doc.Redo() {
			m.refresh()
			m.status = "redone"
		} else {
			m.status = "nothing to redo"
		}
	case "l":
		if m.doc.AutoLayout() {
			m.refresh()
			m.status = "layout updated"
		} else {
			m.status = "layout already settled"
		}
	case "enter":
		if n := m.current(); n != nil {
			m.mode = modeRename
			m.input = nodeTitle(n)
			m.status = ""
		}
	}
	return m, nil
}

// updateRename captures text for the selected node. Each keystroke lands
// in the document immediately, so the whole burst collapses into a
// single undo entry.
func (m editorModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeList
		m.refresh()
	case tea.KeyBackspace:
		if m.input != "" {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
			m.applyRename()
		}
	case tea.KeySpace:
		m.input += " "
		m.applyRename()
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		m.applyRename()
	}
	return m, nil
}

func (m editorModel) applyRename() {
	n := m.current()
	if n == nil {
		return
	}
	text := m.input
	patch := chart.DataPatch{Name: &text}
	if n.Kind == chart.KindSection {
		patch = chart.DataPatch{Title: &text}
	}
	m.doc.EditNodeData(n.ID, patch)
}

func (m editorModel) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeList
		m.status = "connect canceled"
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
		}
	case "enter", "c", "C":
		target := m.current()
		if target == nil {
			return m, nil
		}
		if target.ID == m.connectFrom {
			m.status = "cannot connect a node to itself"
			return m, nil
		}
		anchor := chart.AnchorTop
		if m.connectSide {
			anchor = chart.AnchorRight
		}
		if m.doc.Connect(m.connectFrom, target.ID, chart.AnchorBottom, anchor) != "" {
			m.status = "connected"
		} else {
			m.status = "connection refused"
		}
		m.mode = modeList
		m.refresh()
	}
	return m, nil
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.doc.DisplayName()
	if title == "" {
		title = "stemma"
	}
	b.WriteString(StyleTitle.Render(title))
	if ind := m.saveIndicator(); ind != "" {
		b.WriteString("  ")
		b.WriteString(ind)
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  p person  s section  d delete  c connect  C side  ⏎ rename  u undo  r redo  l layout  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  empty chart - press p to add a person"))
		b.WriteString("\n")
	}

	for i, n := range m.nodes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		switch {
		case m.mode == modeConnect && n.ID == m.connectFrom:
			b.WriteString(StyleHighlight.Render(cursor + nodeLine(n)))
		case i == m.cursor && m.mode == modeRename:
			b.WriteString(listSelectedStyle.Render(cursor + kindIcon(n) + " " + m.input + "▌"))
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(cursor + nodeLine(n)))
		default:
			b.WriteString(listNormalStyle.Render(cursor + nodeLine(n)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	s := m.doc.Stats()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d persons · %d sections · %d connections", s.Persons, s.Sections, s.Connections)))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  " + m.status))
	}

	return b.String()
}

// saveIndicator reflects the autosave debounce: changes inside the
// window show as unsaved until the timer fires.
func (m editorModel) saveIndicator() string {
	if m.doc.Location() == "" {
		return ""
	}
	if m.doc.Dirty() {
		return StyleWarning.Render("● unsaved")
	}
	return StyleSuccess.Render("✓ saved")
}

// dropPosition staggers new nodes down-right so they never pile up on
// one spot before the first layout run.
func (m editorModel) dropPosition() chart.Position {
	n := float64(len(m.nodes))
	return chart.Position{X: 120 + 40*n, Y: 120 + 30*n}
}

func kindIcon(n *chart.Node) string {
	if n.Kind == chart.KindSection {
		return "▣"
	}
	return "•"
}

// nodeTitle returns the editable text of a node: the person name or the
// section title.
func nodeTitle(n *chart.Node) string {
	if n.Kind == chart.KindSection {
		if n.Section != nil {
			return n.Section.Title
		}
		return ""
	}
	if n.Person != nil {
		return n.Person.Name
	}
	return ""
}

func nodeLine(n *chart.Node) string {
	pos := listDimStyle.Render(fmt.Sprintf("(%.0f, %.0f)", n.X, n.Y))

	if n.Kind == chart.KindSection {
		title := nodeTitle(n)
		if title == "" {
			title = "(untitled section)"
		}
		return fmt.Sprintf("%s %-24s %s", kindIcon(n), title, pos)
	}

	name := nodeTitle(n)
	if name == "" {
		name = "(unnamed)"
	}
	line := fmt.Sprintf("%s %-24s", kindIcon(n), name)
	if n.Person != nil && n.Person.Role != "" {
		line += " " + listDimStyle.Render(n.Person.Role)
	}
	return line + " " + pos
}
