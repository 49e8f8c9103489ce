package render

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/matzehuels/netview/pkg/errors"
)

// Output formats.
const (
	FormatSVG   = "svg"
	FormatDOT   = "dot"
	FormatNeato = "neato"
	FormatJSON  = "json"
	FormatPDF   = "pdf"
	FormatPNG   = "png"
)

// Formats lists the formats accepted by [Render].
var Formats = []string{FormatSVG, FormatDOT, FormatNeato, FormatJSON, FormatPDF, FormatPNG}

// Options configures [Render].
type Options struct {
	// Viewport draws through the view transform instead of fitting.
	Viewport   bool
	Background string
	// Scale is the PNG resolution factor.
	Scale float64
	DOT   DOTOptions
}

// Render encodes the scene in one of [Formats].
func Render(ctx context.Context, sc Scene, format string, opts Options) ([]byte, error) {
	svgOpts := []SVGOption{WithBackground(opts.Background)}
	if opts.Viewport {
		svgOpts = append(svgOpts, WithViewport())
	}

	switch format {
	case FormatSVG:
		return RenderSVG(sc, svgOpts...), nil
	case FormatDOT:
		return []byte(ToDOT(sc, opts.DOT)), nil
	case FormatNeato:
		return RenderDOT(ctx, ToDOT(sc, opts.DOT))
	case FormatJSON:
		return RenderJSON(sc)
	case FormatPDF:
		return ToPDF(ctx, RenderSVG(sc, svgOpts...))
	case FormatPNG:
		return ToPNG(ctx, RenderSVG(sc, svgOpts...), opts.Scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %v)", format, Formats)
}

// ValidFormat reports whether f is one of [Formats].
func ValidFormat(f string) bool { return slices.Contains(Formats, f) }

// RenderJSON encodes the scene as indented JSON.
func RenderJSON(sc Scene) ([]byte, error) {
	return json.MarshalIndent(sc, "", "  ")
}
