package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// Summary output formats.
const (
	summaryText     = "text"
	summaryMarkdown = "markdown"
	summaryJSON     = "json"
)

const leavesLabel = "Leaf nodes (final outputs)"

// summaryCommand prints node counts, kinds, roots and leaves.
func (c *CLI) summaryCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a summary of the lineage graph",
		Long: `Print the number of entities and dependencies, the count per resource
type, the root entities (no upstream) and the leaf entities (no downstream).

The default format is text on a terminal and markdown otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if format == "" {
				format = c.defaultSummaryFormat()
			}
			if err := validateSummaryFormat(format); err != nil {
				return err
			}

			opts := cfg.PipelineOptions()
			_, g, _, err := c.newRunner().Load(cmd.Context(), opts)
			if err != nil {
				return c.handleLoadError(err, cfg.Strict)
			}
			return writeSummary(c.Out, format, lineage.Summarize(g), layout.MustProfile(cfg.Profile))
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: text, markdown, json")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{summaryText, summaryMarkdown, summaryJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func validateSummaryFormat(format string) error {
	switch format {
	case summaryText, summaryMarkdown, summaryJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid summary format: %q (must be one of: text, markdown, json)", format)
}

// defaultSummaryFormat picks text for terminals and markdown for pipes.
func (c *CLI) defaultSummaryFormat() string {
	if f, ok := c.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return summaryText
	}
	return summaryMarkdown
}

func writeSummary(w io.Writer, format string, s lineage.Summary, p layout.Profile) error {
	switch format {
	case summaryJSON:
		return writeSummaryJSON(w, s)
	case summaryMarkdown:
		writeSummaryMarkdown(w, s, p)
		return nil
	default:
		writeSummaryText(w, s, p)
		return nil
	}
}

// writeSummaryText prints the summary block shown before a render.
func writeSummaryText(w io.Writer, s lineage.Summary, p layout.Profile) {
	printNewline(w)
	printRule(w, p.RuleWidth)
	fmt.Fprintln(w, StyleTitle.Render(p.SummaryTitle))
	printRule(w, p.RuleWidth)

	printNewline(w)
	fmt.Fprintf(w, "Total nodes: %s\n", StyleNumber.Render(strconv.Itoa(s.Nodes)))
	fmt.Fprintf(w, "Total edges: %s\n", StyleNumber.Render(strconv.Itoa(s.Edges)))

	printNewline(w)
	fmt.Fprintln(w, "Nodes by type:")
	if len(s.ByKind) > 0 {
		fmt.Fprintln(w, kindTable(s).Render())
	}

	printNewline(w)
	fmt.Fprintf(w, "%s: %s\n", p.RootsLabel, StyleNumber.Render(strconv.Itoa(len(s.Roots))))
	for _, name := range lineage.Names(s.Roots) {
		fmt.Fprintf(w, "  - %s\n", name)
	}

	printNewline(w)
	fmt.Fprintf(w, "%s: %s\n", leavesLabel, StyleNumber.Render(strconv.Itoa(len(s.Leaves))))
	for _, name := range lineage.Names(s.Leaves) {
		fmt.Fprintf(w, "  - %s\n", name)
	}

	printNewline(w)
	printRule(w, p.RuleWidth)
	printNewline(w)
}

// kindTable lays out the per-kind counts, sorted by kind.
func kindTable(s lineage.Summary) *ltable.Table {
	rows := make([][]string, 0, len(s.ByKind))
	for _, k := range s.Kinds() {
		rows = append(rows, []string{string(k), strconv.Itoa(s.ByKind[k])})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return cellStyle.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return cellStyle
		})
}

// writeSummaryMarkdown renders the summary as GitHub-flavored markdown.
func writeSummaryMarkdown(w io.Writer, s lineage.Summary, p layout.Profile) {
	title := p.SummaryTitle
	if s.Project != "" {
		title += " · " + s.Project
	}
	fmt.Fprintf(w, "## %s\n\n", title)
	fmt.Fprintf(w, "- Total nodes: %d\n- Total edges: %d\n\n", s.Nodes, s.Edges)

	kinds := table.NewWriter()
	kinds.SetOutputMirror(w)
	kinds.AppendHeader(table.Row{"Type", "Count"})
	for _, k := range s.Kinds() {
		kinds.AppendRow(table.Row{string(k), s.ByKind[k]})
	}
	kinds.AppendFooter(table.Row{"Total", s.Nodes})
	kinds.RenderMarkdown()

	writeEntityMarkdown(w, fmt.Sprintf("%s: %d", p.RootsLabel, len(s.Roots)), s.Roots)
	writeEntityMarkdown(w, fmt.Sprintf("%s: %d", leavesLabel, len(s.Leaves)), s.Leaves)
}

func writeEntityMarkdown(w io.Writer, heading string, entities []lineage.Entity) {
	fmt.Fprintf(w, "\n### %s\n\n", heading)
	if len(entities) == 0 {
		fmt.Fprintln(w, "_none_")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Type", "ID"})
	for _, e := range entities {
		t.AppendRow(table.Row{e.Name, string(e.Kind), "`" + strings.ReplaceAll(e.ID, "|", "\\|") + "`"})
	}
	t.RenderMarkdown()
}

func writeSummaryJSON(w io.Writer, s lineage.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
