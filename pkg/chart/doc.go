// Package chart provides the diagram model at the core of Stemma:
// people and section nodes joined by directional connections, plus the
// named preset library and the snapshot machinery that powers undo/redo
// and persistence.
//
// # Overview
//
// A [Chart] owns the canonical set of [Node] and [Connection] values and
// the stored [Preset] library. All mutation operations are synchronous,
// total, and silently tolerant: referencing a missing id is a no-op, never
// an error. Cascade rules keep the model consistent (removing a node
// removes every connection touching it).
//
// # Basic Usage
//
// Create a chart with [New], add nodes with [Chart.AddNode], and connect
// them with [Chart.Connect]:
//
//	c := chart.New()
//	boss := c.AddNode(chart.KindPerson, chart.Position{X: 100, Y: 100})
//	dev := c.AddNode(chart.KindPerson, chart.Position{X: 300, Y: 100})
//	c.Connect(boss, dev, chart.AnchorBottom, chart.AnchorTop)
//
// # Node Kinds
//
// Nodes are a closed tagged variant: [KindPerson] carries a [Person]
// payload (name, role, comment, photo, colors) and [KindSection] carries a
// [Section] payload (title, fill, extent). Exactly one payload pointer is
// non-nil per node; every site that branches on kind switches exhaustively.
//
// # Connections
//
// A connection leaves the source's bottom anchor and arrives at the
// target's top, left, or right anchor. The target anchor classifies it:
// [AnchorTop] makes a hierarchical (tree) connection that participates in
// layered layout, [AnchorLeft] and [AnchorRight] make lateral (side)
// connections that stack their target beside the source instead.
//
// # Snapshots
//
// [Capture] produces a deep, render-agnostic [Snapshot] of the chart's
// nodes and connections with all interaction-derived state (selection,
// drag/resize flags, measured sizes) stripped by an explicit projection.
// Snapshots restore losslessly and compare by canonical serialization.
//
// # Concurrency
//
// Chart instances are not safe for concurrent use. The document facade
// (package document) serializes access; use it rather than sharing a
// Chart across goroutines.
package chart
