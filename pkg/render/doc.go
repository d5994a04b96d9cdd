// Package render exports charts as Graphviz-based images.
//
// # Overview
//
// Two DOT flavors come out of this package. [ToDOT] produces an
// interchange graph for external Graphviz tooling: tree connections are
// ranked top-to-bottom and side connections carry constraint=false so
// they do not distort the hierarchy. Chart positions are deliberately
// ignored there. [RenderSVG] and [RenderPNG] instead pin every node to
// the chart's own coordinates and only let Graphviz route the
// connectors, so exports match what the editor shows.
//
// # Usage
//
//	dot := render.ToDOT(snap)
//	svg, err := render.RenderSVG(ctx, snap, render.Options{})
//	png, err := render.RenderPNG(ctx, snap, render.Options{Scale: 2.0})
//
// # Photos
//
// With [Options.EmbedPhotos] set, person photos resolve through
// [github.com/matzehuels/stemma/pkg/assets] and are inlined into the SVG
// as data URIs, producing a self-contained file. Persons without a photo
// get the embedded placeholder avatar.
//
// # Dependencies
//
// SVG rendering runs in-process via [github.com/goccy/go-graphviz]. PNG
// and PDF conversion shell out to rsvg-convert and require librsvg.
package render
