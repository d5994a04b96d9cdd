// Package pkg provides the core libraries for Stemma chart editing.
//
// # Overview
//
// Stemma edits and renders tree-style people charts: person cards and
// section backdrops joined by directional connections, with bounded undo,
// automatic layout, and a JSON persistence format. The pkg directory is
// organized into four main areas:
//
//  1. [chart] - Domain model (nodes, connections, presets, layout)
//  2. [document] - State ownership (mutations, history, clipboard, autosave)
//  3. [render] - Output formats (SVG, PNG, PDF, DOT)
//  4. [store], [cache] - Persistence and photo caching
//
// # Architecture
//
// The typical data flow through Stemma:
//
//	Chart file (JSON envelope)
//	         ↓
//	    [store] package (load / debounced autosave)
//	         ↓
//	    [document] package (mutations, undo history, selection, clipboard)
//	         ↓
//	    [chart/layout] package (automatic hierarchy layout)
//	         ↓
//	    [render] package (SVG / PNG / PDF / DOT output)
//
// # Quick Start
//
// Build a small chart and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stemma/pkg/chart"
//	    "github.com/matzehuels/stemma/pkg/document"
//	    "github.com/matzehuels/stemma/pkg/render"
//	)
//
//	// 1. Create an in-memory document
//	doc := document.New(document.Options{})
//
//	// 2. Add content; every call is one undoable step
//	parent := doc.AddNode(chart.KindPerson, chart.Position{X: 60, Y: 60})
//	child := doc.AddNode(chart.KindPerson, chart.Position{X: 60, Y: 180})
//	doc.Connect(parent, child, chart.AnchorBottom, chart.AnchorTop)
//
//	// 3. Let the layout engine place the cards
//	doc.AutoLayout()
//
//	// 4. Render to SVG
//	svg, _ := render.RenderSVG(context.Background(), doc.Snapshot(), render.Options{})
//
// # Main Packages
//
// ## Domain Model
//
// [chart] - The chart graph: person and section nodes, anchored directional
// connections, the preset library, sub-graph extraction for copy/paste, and
// immutable snapshots.
//
// [chart/layout] - Automatic hierarchical layout. Tree connections place
// targets in ranks below their source with median-based crossing reduction;
// lateral connections stack targets beside their source.
//
// ## State and History
//
// [document] - The single mutable owner of an open chart. Serializes all
// access, commits every mutation to the undo history, and carries the
// selection, clipboard, preset operations, the JSON envelope codec, and
// debounced autosave.
//
// [history] - Bounded undo/redo over full-content snapshots, with gesture
// batching: drag sequences and typing bursts coalesce into single entries.
//
// ## Persistence and Assets
//
// [store] - Persistence backends behind a small interface: file-based
// storage for the CLI, in-memory storage for tests.
//
// [assets] - Avatar photo fetching for rendered output, with cache-aside
// lookups and an embedded fallback avatar.
//
// [cache] - Pluggable photo cache: filesystem, Redis, or disabled.
//
// [httputil] - Shared HTTP client with timeouts and retry/backoff, used by
// the photo fetcher.
//
// ## Rendering
//
// [render] - Chart rendering through Graphviz DOT: SVG as the base format,
// PNG and PDF by converting the SVG, photo embedding as a post-processing
// step.
//
// ## Support
//
// [errors] - Coded errors with user-safe messages, shared by the CLI and
// the HTTP API.
//
// [observability] - Hook points the document invokes on commits, undo
// traffic, and saves.
//
// [buildinfo] - Build metadata injected at link time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/history/...    # Specific package
//	go test -run Example         # Examples only
//
// [chart]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/chart
// [chart/layout]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/chart/layout
// [document]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/document
// [history]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/history
// [store]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/store
// [assets]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/assets
// [cache]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/httputil
// [render]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stemma/pkg/buildinfo
package pkg
