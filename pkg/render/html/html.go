package html

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/fonts"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// ScriptURL is the vis-network bundle the document loads.
const ScriptURL = "https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"

// DefaultTitle is the page heading when no title is configured.
const DefaultTitle = "Data Lineage Visualization"

//go:embed templates/lineage.html
var lineageHTML string

var tmpl = template.Must(template.New("lineage").Funcs(sprig.HtmlFuncMap()).Parse(lineageHTML))

// Node is a vis-network node.
type Node struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Color       string `json:"color"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Layer       int    `json:"layer"`
}

// Edge is a vis-network edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type stat struct {
	Value int
	Label string
}

type legendItem struct {
	Color string
	Label string
}

type document struct {
	Title       string
	Project     string
	DBTVersion  string
	RunID       string
	GeneratedAt time.Time
	ScriptURL   string
	FontFamily  string
	Stats       []stat
	Legend      []legendItem
	Nodes       []Node
	Edges       []Edge
}

// Option configures HTML rendering.
type Option func(*document)

// WithTitle sets the page title and heading.
func WithTitle(title string) Option {
	return func(d *document) {
		if title != "" {
			d.Title = title
		}
	}
}

// WithRunID stamps the footer with an identifier for this run.
func WithRunID(id string) Option {
	return func(d *document) { d.RunID = id }
}

// WithGeneratedAt sets the footer timestamp. It defaults to the current time.
func WithGeneratedAt(t time.Time) Option {
	return func(d *document) { d.GeneratedAt = t }
}

// WithDBTVersion shows the dbt version in the footer.
func WithDBTVersion(v string) Option {
	return func(d *document) { d.DBTVersion = v }
}

// legendLabels describe each kind in the page legend.
var legendLabels = []struct {
	kind  lineage.Kind
	label string
}{
	{lineage.KindSeed, "Seeds (Raw Data)"},
	{lineage.KindModel, "Models (Transformations)"},
	{lineage.KindSource, "Sources"},
	{lineage.KindSnapshot, "Snapshots"},
}

// Render produces a self-contained HTML page showing g as an interactive
// vis-network graph. The widget lays the graph out itself (hierarchical,
// left to right) so l contributes only colours and layer numbers.
func Render(g *lineage.Graph, l layout.Layout, opts ...Option) ([]byte, error) {
	d := document{
		Title:       DefaultTitle,
		GeneratedAt: time.Now(),
		ScriptURL:   ScriptURL,
		FontFamily:  fonts.FontFamily,
		Nodes:       Nodes(g, l),
		Edges:       Edges(g),
	}
	if p, ok := g.DAG().Meta()["project"].(string); ok {
		d.Project = p
	}
	for _, opt := range opts {
		opt(&d)
	}

	s := lineage.Summarize(g)
	d.Stats = []stat{
		{s.Nodes, "Total Nodes"},
		{s.Edges, "Dependencies"},
		{s.ByKind[lineage.KindSeed], "Seeds"},
		{s.ByKind[lineage.KindModel], "Models"},
		{s.ByKind[lineage.KindSource], "Sources"},
	}
	for _, item := range legendLabels {
		if _, ok := l.Profile.Palette[item.kind]; !ok {
			continue
		}
		if item.kind == lineage.KindSnapshot && s.ByKind[item.kind] == 0 {
			continue
		}
		d.Legend = append(d.Legend, legendItem{Color: l.Profile.Color(item.kind), Label: item.label})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "execute html template")
	}
	return buf.Bytes(), nil
}

// Nodes converts g's entities to vis-network nodes, in manifest order.
func Nodes(g *lineage.Graph, l layout.Layout) []Node {
	entities := g.Entities()
	nodes := make([]Node, 0, len(entities))
	for _, e := range entities {
		nodes = append(nodes, Node{
			ID:          e.ID,
			Label:       e.Name,
			Title:       e.Name + "<br>Type: " + string(e.Kind),
			Color:       l.Profile.Color(e.Kind),
			Type:        string(e.Kind),
			Description: e.Description,
			Layer:       l.Layers[e.ID],
		})
	}
	return nodes
}

// Edges converts g's dependency edges to vis-network edges.
func Edges(g *lineage.Graph) []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, Edge{From: e.From, To: e.To})
	}
	return edges
}
