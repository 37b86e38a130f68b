package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbtlineage/internal/config"
	"github.com/matzehuels/dbtlineage/internal/doctor"
	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/pipeline"
)

const doctorRuleWidth = 60

// doctorCommand checks that the dbt project and its artifacts are in place.
// It always exits successfully; failed checks are reported, not returned.
func (c *CLI) doctorCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify the dbt project setup and generated artifacts",
		Long: `Check the dbt project directory, seeds, models, the DuckDB database, the
manifest written by 'dbt docs generate' and the rendered visualizations.

When the manifest is present it is also parsed and its lineage checked for
cycles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid doctor format: %q (must be text or json)", format)
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			report := doctor.Run(doctorOptions(cfg))
			loggerFromContext(cmd.Context()).Debug("doctor finished", "passed", report.Passed, "failed", report.Failed)
			if format == "json" {
				return writeDoctorJSON(c.Out, report)
			}
			writeDoctorText(c.Out, cfg, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func doctorOptions(cfg *config.Config) doctor.Options {
	return doctor.Options{
		ProjectDir: cfg.ProjectDir,
		Manifest:   cfg.ManifestPath(),
		Outputs: []string{
			cfg.OutputPath(pipeline.FormatPNG),
			cfg.OutputPath(pipeline.FormatHTML),
		},
	}
}

func writeDoctorText(w io.Writer, cfg *config.Config, r doctor.Report) {
	printRule(w, doctorRuleWidth)
	fmt.Fprintln(w, StyleTitle.Render("dbt Lineage Setup Verification"))
	printRule(w, doctorRuleWidth)

	for _, g := range r.Groups {
		printNewline(w)
		fmt.Fprintln(w, StyleHighlight.Render(g.Title+":"))
		for _, check := range g.Checks {
			writeCheck(w, check)
		}
	}

	printNewline(w)
	printRule(w, doctorRuleWidth)
	if r.OK() {
		printSuccess(w, "ALL CHECKS PASSED!")
		printNewline(w)
		printNextStep(w, "Open the interactive lineage", cfg.OutputPath(pipeline.FormatHTML))
		printNextStep(w, "Or regenerate it", appName+" render")
	} else {
		printWarning(w, "SOME CHECKS FAILED (%d of %d)", r.Failed, r.Passed+r.Failed)
		printNewline(w)
		printNextStep(w, "Build the project", "cd "+cfg.ProjectDir+" && dbt seed && dbt run && dbt docs generate")
		printNextStep(w, "Then render the lineage", appName+" render")
	}
	printRule(w, doctorRuleWidth)

	printNewline(w)
	fmt.Fprintln(w, StyleTitle.Render("Project Statistics"))
	printKeyValue(w, "Seed files", strconv.Itoa(r.Seeds))
	printKeyValue(w, "dbt models", strconv.Itoa(r.Models))
}

func writeCheck(w io.Writer, check doctor.Check) {
	switch {
	case check.Kind == doctor.KindCount:
		printKeyValue(w, "  "+check.Name, fmt.Sprintf("%d files", check.Count))
	case check.OK:
		label := check.Name
		if check.Path != "" && check.Kind != doctor.KindTool {
			label += ": " + check.Path
		}
		printSuccess(w, "%s", label)
	default:
		label := check.Name
		if check.Path != "" {
			label += ": " + check.Path
		}
		status := "MISSING"
		if check.Kind == doctor.KindGraph || check.Kind == doctor.KindTool {
			status = "FAILED"
		}
		printError(w, "%s (%s)", label, status)
	}
	if check.Detail != "" {
		printDetail(w, "%s", check.Detail)
	}
}

func writeDoctorJSON(w io.Writer, r doctor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		OK bool `json:"ok"`
		doctor.Report
	}{r.OK(), r}); err != nil {
		return fmt.Errorf("encode doctor report: %w", err)
	}
	return nil
}
