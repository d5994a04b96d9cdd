package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/assets"
	"github.com/matzehuels/stemma/pkg/document"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format      string  // dot, svg, png, or pdf; empty falls back to config
	out         string  // output path; empty derives from the input name
	embedPhotos bool    // inline avatar photos into the SVG
	noCache     bool    // bypass the photo cache
	scale       float64 // raster scale factor for png
}

// exportCommand creates the "export" command for rendering chart files.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a chart to DOT, SVG, PNG, or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireFile(args[0]); err != nil {
				return err
			}

			format := c.cfg.exportFormat(opts.format)
			if err := validateFormat(format); err != nil {
				return err
			}

			doc, err := c.openDocument(ctx, args[0])
			if err != nil {
				return err
			}
			defer doc.Close(ctx)

			data, err := c.renderChart(ctx, doc, format, &opts)
			if err != nil {
				return err
			}

			out := opts.out
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			printSuccess("Exported %s", format)
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, png, pdf")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().BoolVar(&opts.embedPhotos, "embed-photos", false, "inline avatar photos")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the photo cache")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor for png")

	return cmd
}

// renderChart produces the export bytes for one format. DOT needs no
// graphviz engine and returns immediately; the rendered formats run
// behind a spinner since photo fetches and rasterization take a moment.
func (c *CLI) renderChart(ctx context.Context, doc *document.Document, format string, opts *exportOpts) ([]byte, error) {
	snap := doc.Snapshot()

	if format == render.FormatDOT {
		return render.ToDOT(snap), nil
	}

	ropts := render.Options{
		EmbedPhotos: opts.embedPhotos,
		Scale:       opts.scale,
	}
	if opts.embedPhotos {
		ropts.Photos = assets.NewFetcher(c.newCache(ctx, opts.noCache), c.Logger)
	}

	sp := startSpinner(fmt.Sprintf("Rendering %s...", format))
	defer sp.Stop()

	switch format {
	case render.FormatSVG:
		return render.RenderSVG(ctx, snap, ropts)
	case render.FormatPNG:
		return render.RenderPNG(ctx, snap, ropts)
	case render.FormatPDF:
		return render.RenderPDF(ctx, snap, ropts)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
}

// validFormats is the set of supported export formats.
var validFormats = map[string]bool{
	render.FormatDOT: true,
	render.FormatSVG: true,
	render.FormatPNG: true,
	render.FormatPDF: true,
}

// validateFormat checks that the requested format is supported.
func validateFormat(format string) error {
	if !validFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %s (must be 'dot', 'svg', 'png', or 'pdf')", format)
	}
	return nil
}
