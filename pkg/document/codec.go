package document

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/errors"
)

// AppName tags envelopes written by this application.
const AppName = "stemma"

// Meta identifies an envelope's origin and version.
type Meta struct {
	AppName       string    `json:"appName"`
	SchemaVersion int       `json:"schemaVersion"`
	DisplayName   string    `json:"displayName,omitempty"`
	ExportedAt    time.Time `json:"exportedAt"`
}

// Envelope is the JSON persistence format: the graph content plus the
// preset library under a meta header. Volatile node state (selection,
// drag flags, measurements) never appears in it.
type Envelope struct {
	Meta        Meta                `json:"meta"`
	Nodes       []*chart.Node       `json:"nodes"`
	Connections []*chart.Connection `json:"connections"`
	Presets     []*chart.Preset     `json:"presets"`
}

// Encode marshals an envelope as indented JSON.
func Encode(env *Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return data, nil
}

// Decode parses an envelope. Payloads whose nodes or connections field
// is missing or not a JSON list are rejected; a missing preset list is
// tolerated as empty, and the schema version is floored at 1.
func Decode(data []byte) (*Envelope, error) {
	var shape struct {
		Nodes       json.RawMessage `json:"nodes"`
		Connections json.RawMessage `json:"connections"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImportFailed, err, "parse document")
	}
	if !isJSONList(shape.Nodes) {
		return nil, errors.New(errors.ErrCodeImportFailed, "nodes must be a list")
	}
	if !isJSONList(shape.Connections) {
		return nil, errors.New(errors.ErrCodeImportFailed, "connections must be a list")
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImportFailed, err, "parse document")
	}
	if env.Meta.SchemaVersion < 1 {
		env.Meta.SchemaVersion = 1
	}
	if env.Presets == nil {
		env.Presets = []*chart.Preset{}
	}
	return &env, nil
}

// isJSONList reports whether raw's first significant byte opens a list.
func isJSONList(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// buildChart assembles and validates a chart from envelope content,
// leaving the envelope untouched. Connections with dangling endpoints
// are dropped; structurally broken nodes reject the whole envelope.
func buildChart(env *Envelope) (*chart.Chart, error) {
	nodes := make([]*chart.Node, 0, len(env.Nodes))
	for _, n := range env.Nodes {
		nodes = append(nodes, n.Clone())
	}
	conns := make([]*chart.Connection, 0, len(env.Connections))
	for _, c := range env.Connections {
		conns = append(conns, c.Clone())
	}
	presets := make([]*chart.Preset, 0, len(env.Presets))
	for _, p := range env.Presets {
		presets = append(presets, p.Clone())
	}

	fresh := chart.New()
	fresh.ReplaceContent(nodes, conns)
	fresh.ReplacePresets(presets)
	if err := fresh.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImportFailed, err, "invalid document content")
	}
	return fresh, nil
}

// Serialize captures the document as an envelope.
func (d *Document) Serialize() *Envelope {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.envelopeLocked()
}

func (d *Document) envelopeLocked() *Envelope {
	snap := chart.Capture(d.chart)
	presets := make([]*chart.Preset, 0, d.chart.PresetCount())
	for _, p := range d.chart.Presets() {
		presets = append(presets, p.Clone())
	}
	return &Envelope{
		Meta: Meta{
			AppName:       AppName,
			SchemaVersion: d.schema,
			DisplayName:   d.name,
			ExportedAt:    time.Now().UTC(),
		},
		Nodes:       snap.Nodes,
		Connections: snap.Connections,
		Presets:     presets,
	}
}

// Export marshals the document for an explicit export, bumping the
// schema version first. Autosaves reuse the current version; only
// deliberate exports increment it.
func (d *Document) Export() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schema++
	data, err := Encode(d.envelopeLocked())
	if err != nil {
		return nil, err
	}
	d.scheduleSave()
	return data, nil
}

// Restore replaces the graph content and preset library from an
// envelope. The graph swap commits as one undoable step; the preset
// library is replaced outright, matching its non-undoable nature. On
// error the document is unchanged. Callers own the destructive
// confirmation.
func (d *Document) Restore(env *Envelope) error {
	if env == nil {
		return errors.New(errors.ErrCodeImportFailed, "empty document payload")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fresh, err := buildChart(env)
	if err != nil {
		return err
	}
	d.settleGesturesLocked()

	pre := chart.Capture(d.chart)
	d.chart.ReplaceContent(fresh.Nodes(), fresh.Connections())
	d.chart.ReplacePresets(fresh.Presets())
	if env.Meta.DisplayName != "" {
		d.name = env.Meta.DisplayName
	}
	d.schema = max(env.Meta.SchemaVersion, 1)
	d.commitLocked(pre, "import")
	d.logger.Debug("document restored",
		"nodes", d.chart.NodeCount(),
		"connections", d.chart.ConnectionCount(),
		"presets", d.chart.PresetCount())
	return nil
}
