package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stemma/pkg/assets"
	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/observability"
)

// Export format names accepted by the CLI and HTTP surfaces.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Avatar placement inside a person card, in SVG pixels.
const (
	avatarSize = 40.0
	avatarPad  = 8.0
)

// Options configures image rendering.
type Options struct {
	// EmbedPhotos inlines person photos into the SVG as data URIs,
	// producing a self-contained file. Persons without a photo get the
	// placeholder avatar.
	EmbedPhotos bool

	// Photos resolves photo references when EmbedPhotos is set. Nil
	// falls back to an uncached fetcher.
	Photos *assets.Fetcher

	// Scale multiplies PNG resolution; 2.0 renders at 2x for high-DPI
	// displays. Zero or negative means 1x.
	Scale float64
}

// RenderSVG renders the snapshot to SVG with every node pinned to its
// chart position; Graphviz only routes the connectors. The returned
// bytes are ready for display or further conversion with [ToPNG] or
// [ToPDF].
func RenderSVG(ctx context.Context, snap *chart.Snapshot, opts Options) ([]byte, error) {
	start := time.Now()
	svg, err := renderDOT(ctx, pinnedDOT(snap), graphviz.NEATO)
	if err == nil && opts.EmbedPhotos {
		svg, err = embedPhotos(ctx, svg, snap, opts.Photos)
	}
	observability.Render().OnRender("svg", len(snap.Nodes), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return svg, nil
}

// RenderPNG renders the snapshot to PNG via SVG conversion, so embedded
// photos survive rasterization.
//
// Requires librsvg: brew install librsvg (macOS), apt install
// librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, snap *chart.Snapshot, opts Options) ([]byte, error) {
	start := time.Now()
	png, err := renderRaster(ctx, snap, opts, "png")
	observability.Render().OnRender("png", len(snap.Nodes), time.Since(start), err)
	return png, err
}

// RenderPDF renders the snapshot to PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install
// librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, snap *chart.Snapshot, opts Options) ([]byte, error) {
	start := time.Now()
	pdf, err := renderRaster(ctx, snap, opts, "pdf")
	observability.Render().OnRender("pdf", len(snap.Nodes), time.Since(start), err)
	return pdf, err
}

func renderRaster(ctx context.Context, snap *chart.Snapshot, opts Options, format string) ([]byte, error) {
	svg, err := renderDOT(ctx, pinnedDOT(snap), graphviz.NEATO)
	if err == nil && opts.EmbedPhotos {
		svg, err = embedPhotos(ctx, svg, snap, opts.Photos)
	}
	if err != nil {
		return nil, err
	}
	if format == "pdf" {
		return ToPDF(svg)
	}
	return ToPNG(svg, opts.Scale)
}

// renderDOT runs Graphviz on the DOT source with the given layout
// engine and returns normalized SVG.
func renderDOT(ctx context.Context, dot []byte, engine graphviz.Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg root tag to a zero-origin viewBox
// with explicit pixel dimensions, so browsers and converters size the
// image consistently.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// embedPhotos inlines a photo into every person card of the rendered
// SVG. Resolution failures fall back to the placeholder avatar so one
// broken URL cannot sink an export; only context cancellation aborts.
func embedPhotos(ctx context.Context, svg []byte, snap *chart.Snapshot, f *assets.Fetcher) ([]byte, error) {
	if f == nil {
		f = assets.NewFetcher(nil, nil)
	}
	for _, n := range snap.Nodes {
		if n.Kind != chart.KindPerson {
			continue
		}
		ref := ""
		if n.Person != nil {
			ref = n.Person.PhotoRef
		}
		data, mime, err := f.Resolve(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrCodeRenderFailed, ctx.Err(), "embedding photos")
			}
			data, mime = assets.DefaultAvatar()
		}
		svg = injectImage(svg, n.ID, dataURI(mime, data))
	}
	return svg, nil
}

// injectImage inserts an <image> element into the SVG group Graphviz
// emitted for the given node, placed over the left edge of the card.
// SVGs that do not contain the node are returned unchanged.
func injectImage(svg []byte, nodeID, uri string) []byte {
	re := regexp.MustCompile(`(?s)<title>` + regexp.QuoteMeta(nodeID) + `</title>.*?<polygon[^>]*points="([^"]+)"[^>]*/>`)
	loc := re.FindSubmatchIndex(svg)
	if loc == nil {
		return svg
	}

	x, y, w, h, ok := polygonBounds(svg[loc[2]:loc[3]])
	if !ok || w <= 0 {
		return svg
	}

	side := avatarSize
	if fit := h - 2*avatarPad; fit < side {
		side = fit
	}
	if side <= 0 {
		return svg
	}

	img := fmt.Sprintf(`<image x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid slice" href=%q/>`,
		x+avatarPad, y+(h-side)/2, side, side, uri)

	out := make([]byte, 0, len(svg)+len(img))
	out = append(out, svg[:loc[1]]...)
	out = append(out, img...)
	out = append(out, svg[loc[1]:]...)
	return out
}

// polygonBounds computes the bounding box of an SVG polygon points
// attribute ("x1,y1 x2,y2 ...") as origin plus size.
func polygonBounds(points []byte) (x, y, w, h float64, ok bool) {
	var minX, minY, maxX, maxY float64
	for _, pair := range bytes.Fields(points) {
		xs, ys, found := bytes.Cut(pair, []byte(","))
		if !found {
			continue
		}
		px, errX := strconv.ParseFloat(string(xs), 64)
		py, errY := strconv.ParseFloat(string(ys), 64)
		if errX != nil || errY != nil {
			continue
		}
		if !ok {
			minX, maxX, minY, maxY, ok = px, px, py, py, true
			continue
		}
		minX, maxX = min(minX, px), max(maxX, px)
		minY, maxY = min(minY, py), max(maxY, py)
	}
	return minX, minY, maxX - minX, maxY - minY, ok
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
