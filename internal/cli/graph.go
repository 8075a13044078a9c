package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nabshq/nabs/pkg/graph"
	"github.com/nabshq/nabs/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format string // text, json, dot or svg
	output string // output file path (stdout if empty)
}

// newGraphCmd creates the graph command, which builds the full workspace
// dependency graph and writes it in the requested format.
func newGraphCmd() *cobra.Command {
	opts := graphOpts{format: "text"}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the workspace dependency graph and write it out",
		Long: `Discover every package in the workspace, build the dependency graph and
write it to stdout or a file.

Formats:
  text   one "target -> [dependents]" line per target (default)
  json   nodes and edges as JSON
  dot    Graphviz DOT source
  svg    rendered with Graphviz`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ws, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			sp := newSpinnerWithContext(c.Context(), "building dependency graph")
			sp.Start()
			g, _, err := buildWorkspaceGraph(c.Context(), ws)
			sp.Stop()
			if err != nil {
				return err
			}
			return writeFormatted(c, g, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (text|json|dot|svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func writeFormatted(c *cobra.Command, g *graph.TargetGraph, opts *graphOpts) error {
	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	switch strings.ToLower(opts.format) {
	case "text":
		_, err = io.WriteString(out, g.String())
	case "json":
		err = graph.WriteGraph(g, out)
	case "dot":
		_, err = io.WriteString(out, render.ToDOT(g, render.Options{Detailed: true}))
	case "svg":
		var svg []byte
		svg, err = render.RenderSVG(c.Context(), render.ToDOT(g, render.Options{Detailed: true}))
		if err == nil {
			_, err = out.Write(svg)
		}
	default:
		return fmt.Errorf("unknown format: %s (available: text, json, dot, svg)", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method so os.Stdout can
// be used as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout when path
// is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
