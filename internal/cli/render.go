package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/viewstate"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	view       viewFlags
	output     string   // output file path (or base path for multiple outputs)
	formats    []string // output formats, see render.Formats
	viewport   bool     // draw only what the view transform shows
	background string   // fill color; transparent when empty
	scale      float64  // PNG scale factor
	directed   bool     // DOT arrows
	labels     bool     // DOT id labels
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:               "render <session>",
		ValidArgsFunction: c.completeSession,
		Short:             "Render a view of a session to SVG, DOT, JSON, PDF or PNG",
		Long: `Render a view of a session. The view starts from the given snapshot (or from
defaults), applies filters and bindings and, unless the snapshot already holds
a settled layout, runs the force layout first.

Examples:
  netview render karate -s 0
  netview render karate -f svg,png -o out/karate
  netview render karate --bind nodeColor=node.club --bind nodeSize=node.degree
  netview render karate -f neato --directed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.withView(cmd.Context(), args[0], opts.view, func(ctx context.Context, v *viewstate.ViewState) error {
				return c.runRender(ctx, v, &opts)
			})
		},
	}

	opts.view.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().BoolVar(&opts.viewport, "viewport", false, "render through the saved pan/zoom instead of fitting the whole network")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (default transparent)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.directed, "directed", false, "draw edges as arrows (dot, neato)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label nodes with their ids (dot, neato)")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

// validateFormats checks that all requested formats are supported.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !render.ValidFormat(f) {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be one of %s)", f, strings.Join(render.Formats, ", "))
		}
	}
	return nil
}

// extension returns the file extension of a format.
func extension(format string) string {
	switch format {
	case render.FormatNeato:
		return ".svg"
	case render.FormatDOT:
		return ".dot"
	}
	return "." + format
}

// basePath derives the base output path. Without output the session name is
// used; a known format extension on output is stripped.
func basePath(output, sessionName string) string {
	if output == "" {
		return sanitizeFileName(sessionName)
	}
	ext := filepath.Ext(output)
	if render.ValidFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format written to
// an explicit output keeps that name as given.
func outputPath(opts *renderOpts, base, format string) string {
	if len(opts.formats) == 1 && opts.output != "" && filepath.Ext(opts.output) != "" {
		return opts.output
	}
	if format == render.FormatNeato {
		return base + ".neato.svg"
	}
	return base + extension(format)
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return appName
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func (c *CLI) runRender(ctx context.Context, v *viewstate.ViewState, opts *renderOpts) error {
	var sc render.Scene
	read := v.ReadFiltered
	if opts.viewport {
		read = v.Read
	}
	read(func(f viewstate.Frame) { sc = render.Build(f) })

	h := v.Header()
	c.Logger.Infof("Rendering %s at %s: %d nodes, %d edges", h.SessionName, describeSnapshot(h), len(sc.Nodes), len(sc.Edges))
	if sc.EdgesSuppressed {
		printWarning("Edges hidden: %d visible edges exceed the view's threshold", h.FilteredEdges)
	}

	ropts := render.Options{
		Viewport:   opts.viewport,
		Background: opts.background,
		Scale:      opts.scale,
		DOT:        render.DOTOptions{Directed: opts.directed, Labels: opts.labels},
	}
	base := basePath(opts.output, h.SessionName)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	for _, format := range opts.formats {
		data, err := render.Render(ctx, sc, format, ropts)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(opts, base, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		c.Logger.Debug("wrote output", "format", format, "bytes", len(data))
		printFile(path)
	}
	return nil
}
