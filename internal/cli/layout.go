package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		input   string
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute member positions and connectors",
		Long: `Compute member positions and connectors.

The layout command lays out the members of the configured store (or of a
member file given with --input) and writes the result as layout JSON: node
boxes, connector polylines, bounds and the view transforms that 'view' and
the HTTP API start from.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(cmd.Context(), flags)
			opts.Formats = []string{render.FormatJSON}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), cmd.ErrOrStderr(), input, output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "member file (.json, .yaml) instead of the store")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	flags.register(cmd)

	return cmd
}

// runLayout loads members, computes the layout, and writes layout JSON.
func (c *CLI) runLayout(ctx context.Context, progressOut io.Writer, input, output string, noCache bool, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, progressOut, fmt.Sprintf("Computing %s layout...", opts.Layout.Strategy))
	spinner.Start()

	result, err := c.execute(ctx, runner, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data := result.Artifacts[render.FormatJSON]
	if output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.MemberCount, result.Stats.ConnectorCount, result.Stats.ProblemCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render -o tree.svg")
	return nil
}

// execute runs the pipeline over a member file when input is set, otherwise
// over the configured store.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*pipeline.Result, error) {
	if input != "" {
		members, values, err := readInput(input)
		if err != nil {
			return nil, err
		}
		return runner.Execute(ctx, members, values, opts)
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return runner.ExecuteStore(ctx, st, opts)
}

func readInput(path string) ([]family.Member, viewconfig.Values, error) {
	doc, err := kio.ImportFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load members %s: %w", path, err)
	}
	return doc.Members, doc.Config, nil
}
