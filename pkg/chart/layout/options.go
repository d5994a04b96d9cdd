package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Document
// =============================================================================

const (
	// DefaultRankSep is the vertical distance between consecutive ranks.
	DefaultRankSep = 120.0

	// DefaultNodeSep is the horizontal gap between adjacent cards in a rank.
	DefaultNodeSep = 60.0

	// DefaultMarginX is the left margin of the laid-out grid.
	DefaultMarginX = 60.0

	// DefaultMarginY is the top margin of the laid-out grid.
	DefaultMarginY = 60.0

	// DefaultSideOffsetX is the horizontal offset of a side child from its
	// parent.
	DefaultSideOffsetX = 160.0

	// DefaultSideStartY is the vertical offset of the first side child below
	// its parent.
	DefaultSideStartY = 80.0

	// DefaultSideGapY is the vertical gap between stacked side children.
	DefaultSideGapY = 90.0

	// DefaultPersonWidth is the nominal person card width used for spacing
	// and centering.
	DefaultPersonWidth = 140.0

	// DefaultPersonHeight is the nominal person card height. Layout spacing
	// keys off RankSep alone; renderers use this for the card box.
	DefaultPersonHeight = 90.0

	// DefaultOrderingPasses is the number of median sweep passes used for
	// crossing minimization.
	DefaultOrderingPasses = 8
)

// Options contains all configuration for the layout engine. The zero value
// is usable: Apply fills every unset field with its default. This struct
// supports JSON serialization for API requests.
type Options struct {
	RankSep     float64 `json:"rank_sep,omitempty"`
	NodeSep     float64 `json:"node_sep,omitempty"`
	MarginX     float64 `json:"margin_x,omitempty"`
	MarginY     float64 `json:"margin_y,omitempty"`
	SideOffsetX float64 `json:"side_offset_x,omitempty"`
	SideStartY  float64 `json:"side_start_y,omitempty"`
	SideGapY    float64 `json:"side_gap_y,omitempty"`

	// PersonWidth and PersonHeight are the nominal card footprint.
	PersonWidth  float64 `json:"person_width,omitempty"`
	PersonHeight float64 `json:"person_height,omitempty"`

	// OrderingPasses bounds the crossing-minimization sweeps.
	OrderingPasses int `json:"ordering_passes,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset (zero or negative) fields with the standard
// values. Calling it multiple times has the same effect as calling it once.
func (o *Options) SetDefaults() {
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.MarginX <= 0 {
		o.MarginX = DefaultMarginX
	}
	if o.MarginY <= 0 {
		o.MarginY = DefaultMarginY
	}
	if o.SideOffsetX <= 0 {
		o.SideOffsetX = DefaultSideOffsetX
	}
	if o.SideStartY <= 0 {
		o.SideStartY = DefaultSideStartY
	}
	if o.SideGapY <= 0 {
		o.SideGapY = DefaultSideGapY
	}
	if o.PersonWidth <= 0 {
		o.PersonWidth = DefaultPersonWidth
	}
	if o.PersonHeight <= 0 {
		o.PersonHeight = DefaultPersonHeight
	}
	if o.OrderingPasses <= 0 {
		o.OrderingPasses = DefaultOrderingPasses
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
