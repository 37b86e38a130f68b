package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// Graph is the JSON form of a laid-out lineage graph.
type Graph struct {
	Project    string `json:"project,omitempty"`
	DBTVersion string `json:"dbt_version,omitempty"`
	Profile    string `json:"profile"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
}

// Node is an entity with its layer and position.
type Node struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Layer       int     `json:"layer"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Edge points from an upstream entity to the entity that depends on it.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromLineage converts g and its layout to the serialization form.
// Nodes keep manifest order.
func FromLineage(g *lineage.Graph, l layout.Layout) Graph {
	out := Graph{
		Profile: l.Profile.Name,
		Nodes:   make([]Node, 0, g.NodeCount()),
		Edges:   make([]Edge, 0, g.EdgeCount()),
	}
	meta := g.DAG().Meta()
	out.Project, _ = meta["project"].(string)
	out.DBTVersion, _ = meta["dbt_version"].(string)

	for _, e := range g.Entities() {
		pos := l.Positions[e.ID]
		out.Nodes = append(out.Nodes, Node{
			ID:          e.ID,
			Label:       e.Name,
			Kind:        string(e.Kind),
			Description: e.Description,
			Layer:       l.Layers[e.ID],
			X:           pos.X,
			Y:           pos.Y,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}
	return out
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a lineage graph and layout to indented JSON bytes.
func MarshalGraph(g *lineage.Graph, l layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a lineage graph and layout as JSON to an io.Writer.
func WriteGraph(g *lineage.Graph, l layout.Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromLineage(g, l)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraphFile reads a JSON file written by [WriteGraph].
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return data, nil
}
