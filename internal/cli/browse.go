package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	detailBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	listCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const defaultListHeight = 15

// browseCommand opens an interactive entity list in the terminal.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse lineage entities interactively",
		Long: `Browse the entities of the lineage graph in the terminal, ordered by layer.

Keys: up/k and down/j move, enter shows upstream and downstream entities,
q or esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			runner := c.newRunner()
			opts := cfg.PipelineOptions()
			_, g, _, err := runner.Load(cmd.Context(), opts)
			if err != nil {
				return c.handleLoadError(err, cfg.Strict)
			}
			l, err := runner.Layout(cmd.Context(), g, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewEntityListModel(g, l),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(c.Out))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// EntityListModel - Interactive lineage browser
// =============================================================================

// entityRow is one entity with its resolved neighbours.
type entityRow struct {
	Entity     lineage.Entity
	Layer      int
	Upstream   []string
	Downstream []string
}

// EntityListModel is the bubbletea model for browsing lineage entities.
type EntityListModel struct {
	Title   string
	Rows    []entityRow
	Layers  map[int]string
	Cursor  int
	Height  int
	Offset  int
	Details bool
}

// NewEntityListModel lists g's entities ordered by layer, keeping manifest
// order within a layer.
func NewEntityListModel(g *lineage.Graph, l layout.Layout) EntityListModel {
	rows := make([]entityRow, 0, g.NodeCount())
	for _, e := range g.Entities() {
		rows = append(rows, entityRow{
			Entity:     e,
			Layer:      l.Layers[e.ID],
			Upstream:   lineage.Names(g.Upstream(e.ID)),
			Downstream: lineage.Names(g.Downstream(e.ID)),
		})
	}
	slices.SortStableFunc(rows, func(a, b entityRow) int {
		return cmp.Compare(a.Layer, b.Layer)
	})

	return EntityListModel{
		Title:  l.Profile.Title,
		Rows:   rows,
		Layers: l.Profile.LayerNames,
		Height: defaultListHeight,
	}
}

func (m EntityListModel) Init() tea.Cmd {
	return nil
}

func (m EntityListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m EntityListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no entities in manifest"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.table().Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	b.WriteString("\n")

	if m.Details {
		b.WriteString(m.details())
		b.WriteString("\n")
	}
	return b.String()
}

func (m EntityListModel) table() *table.Table {
	end := min(m.Offset+m.Height, len(m.Rows))

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := " "
		if i == m.Cursor {
			cursor = "▸"
		}
		rows = append(rows, []string{
			cursor,
			r.Entity.Name,
			string(r.Entity.Kind),
			m.layerName(r.Layer),
			strconv.Itoa(len(r.Upstream)),
			strconv.Itoa(len(r.Downstream)),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Type", "Layer", "Up", "Down").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			style := listCellStyle
			if col >= 4 {
				style = style.Align(lipgloss.Right)
			}
			if m.Offset+row == m.Cursor {
				return style.Foreground(colorCyan).Bold(true)
			}
			if col == 2 || col == 3 {
				return style.Foreground(colorGray)
			}
			return style.Foreground(colorWhite)
		})
}

func (m EntityListModel) details() string {
	r := m.Rows[m.Cursor]
	lines := []string{
		detailKeyStyle.Render("ID") + " " + r.Entity.ID,
		detailKeyStyle.Render("Type") + " " + string(r.Entity.Kind),
		detailKeyStyle.Render("Layer") + " " + m.layerName(r.Layer),
	}
	if r.Entity.Description != "" {
		lines = append(lines, detailKeyStyle.Render("Description")+" "+r.Entity.Description)
	}
	lines = append(lines,
		detailKeyStyle.Render("Upstream")+" "+joinOrNone(r.Upstream),
		detailKeyStyle.Render("Downstream")+" "+joinOrNone(r.Downstream),
	)
	return detailBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m EntityListModel) layerName(layer int) string {
	if name, ok := m.Layers[layer]; ok {
		return name
	}
	return strconv.Itoa(layer)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return listDimStyle.Render("none")
	}
	return strings.Join(names, ", ")
}
