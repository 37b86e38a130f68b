package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbtlineage/internal/config"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
//
// Without flags it behaves like the classic lineage scripts: it prints the
// summary and writes the PNG plot and the interactive HTML page to the
// working directory.
func (c *CLI) renderCommand() *cobra.Command {
	var noSummary, noOpenHint bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the lineage graph to PNG, HTML, SVG, DOT or JSON",
		Example: `  dbtlineage render
  dbtlineage render --profile advanced -f png,svg
  dbtlineage render --manifest target/manifest.json -o site -f html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, renderFlags{summary: !noSummary, openHint: !noOpenHint})
		},
	}

	cmd.Flags().StringSliceP("formats", "f", nil, "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (default png,html)")
	cmd.Flags().StringP("output-dir", "o", "", "directory for output files (default: working directory)")
	cmd.Flags().Int("dpi", 0, fmt.Sprintf("PNG resolution (default %d)", pipeline.DefaultDPI))
	cmd.Flags().String("title", "", "override the profile title")
	cmd.Flags().Bool("ranked", false, "let Graphviz rank the SVG/DOT instead of pinning layer positions")
	cmd.Flags().Bool("detailed", false, "include type and layer in SVG/DOT labels")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "do not print the lineage summary")
	cmd.Flags().BoolVar(&noOpenHint, "no-open-hint", false, "do not suggest opening the HTML page")

	_ = cmd.RegisterFlagCompletionFunc("formats", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.FormatNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// renderFlags toggle the informational output of render.
type renderFlags struct {
	summary  bool
	openHint bool
}

// runRender loads the manifest, prints the summary, renders every requested
// format and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, cfg *config.Config, flags renderFlags) error {
	runner := c.newRunner()
	opts := cfg.PipelineOptions()
	opts.RunID = uuid.NewString()

	printInfo(c.Out, "Loading manifest from: %s", opts.Manifest)
	_, g, report, err := runner.Load(ctx, opts)
	if err != nil {
		return c.handleLoadError(err, cfg.Strict)
	}
	printInfo(c.Out, "Extracting lineage relationships...")
	printStats(c.Out, g.NodeCount(), g.EdgeCount())
	if n := len(report.Dangling); n > 0 {
		printWarning(c.Out, "%d references to entities outside the manifest were skipped (run with -v to list them)", n)
	}

	profile := layout.MustProfile(cfg.Profile)
	if flags.summary {
		writeSummaryText(c.Out, lineage.Summarize(g), profile)
	}

	l, err := runner.Layout(ctx, g, opts)
	if err != nil {
		return err
	}

	run := startRun(c.Logger, opts.RunID)
	spin := newSpinnerWithContext(ctx, c.Out, "Creating visualization...")
	spin.Start()
	artifacts, err := runner.Render(ctx, g, l, opts)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return ctx.Err()
		}
		spin.StopWithError("Rendering failed")
		return err
	}
	spin.StopWithSuccess("Visualization created")

	paths, err := writeArtifacts(cfg, opts.Formats, artifacts)
	if err != nil {
		return err
	}
	run.finish(paths)

	printSuccess(c.Out, "Lineage visualization saved to:")
	for _, p := range paths {
		printFile(c.Out, p)
	}
	printNewline(c.Out)
	if flags.openHint && opts.Wants(pipeline.FormatHTML) {
		printNextStep(c.Out, "Open in your browser", cfg.OutputPath(pipeline.FormatHTML))
	}
	printSuccess(c.Out, "Done! Your data lineage visualization is ready.")
	return nil
}
