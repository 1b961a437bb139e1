package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	input      string
	output     string
	formats    string
	width      int
	height     int
	noYears    bool
	highlight  bool
	photoLinks bool
	noCache    bool
	refresh    bool
	layout     layoutFlags
}

// renderCommand creates the render command for generating tree images.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the family tree",
		Long: `Render the family tree to one or more formats.

Formats: svg (default), json (layout JSON), dot (Graphviz source),
graphviz (SVG laid out by Graphviz), png and pdf (require rsvg-convert).

Saved view settings (title, background, overlay and transforms) are applied;
without a saved tree position the tree is fitted to the canvas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(cmd.Context(), ro.layout)
			opts.Formats = parseFormats(ro.formats)
			opts.Width, opts.Height = ro.width, ro.height
			opts.NoYears, opts.Highlight, opts.PhotoLinks = ro.noYears, ro.highlight, ro.photoLinks
			opts.Refresh = ro.refresh
			opts.SetRenderDefaults()
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.ErrOrStderr(), ro, opts)
		},
	}

	cmd.Flags().StringVarP(&ro.input, "input", "i", "", "member file (.json, .yaml) instead of the store")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated)")
	cmd.Flags().IntVar(&ro.width, "width", render.DefaultWidth, "canvas width")
	cmd.Flags().IntVar(&ro.height, "height", render.DefaultHeight, "canvas height")
	cmd.Flags().BoolVar(&ro.noYears, "no-years", false, "omit birth and death years")
	cmd.Flags().BoolVar(&ro.highlight, "highlight", false, "highlight relatives on hover")
	cmd.Flags().BoolVar(&ro.photoLinks, "photo-links", false, "link member boxes to their photos")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "re-render even when cached")
	ro.layout.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, progressOut io.Writer, ro renderOpts, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, progressOut, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := c.execute(ctx, runner, ro.input, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}

	spinner.SetMessage("Writing files...")
	base := basePath(ro.output, ro.input)
	var paths []string
	for _, format := range opts.Formats {
		path := outputPath(ro.output, base, format, len(opts.Formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			spinner.StopWithError("Write failed")
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	spinner.Stop()

	for _, p := range result.ConfigProblems {
		printWarning("%v", p)
	}
	prog.done("Rendered formats", "count", len(paths), "cached", result.CacheInfo.RenderHit)

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.MemberCount, result.Stats.ConnectorCount, result.Stats.ProblemCount, result.CacheInfo.RenderHit)
	return nil
}

// basePath derives the base output path. Without --output it is "tree" or
// the input file name without extension; a known format extension on
// --output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "tree"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format with an
// explicit --output writes exactly there.
func outputPath(output, base, format string, count int) string {
	if count == 1 && output != "" {
		return output
	}
	ext := format
	switch format {
	case render.FormatGraphviz:
		return base + ".graphviz.svg"
	case render.FormatJSON:
		ext = "layout.json"
	}
	return base + "." + ext
}
