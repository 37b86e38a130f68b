package lineage

import (
	"github.com/matzehuels/dbtlineage/pkg/dag"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

// Kind is a dbt resource type. Values other than the constants below are
// kept verbatim from the manifest.
type Kind string

const (
	KindSeed     Kind = "seed"
	KindModel    Kind = "model"
	KindSource   Kind = "source"
	KindSnapshot Kind = "snapshot"
	KindTest     Kind = "test"
	KindUnknown  Kind = "unknown"
)

// SourceDescription is given to sources whose description is empty.
const SourceDescription = "Source data"

// Entity is a dataset in the lineage graph.
type Entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	Description string `json:"description,omitempty"`
}

// Metadata keys set on every dag node.
const (
	MetaName        = "name"
	MetaKind        = "kind"
	MetaDescription = "description"
)

// DanglingRef is a depends_on entry naming an ID that is neither a node nor
// a source. Such references are dropped from the graph.
type DanglingRef struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// Report lists what extraction dropped or merged.
type Report struct {
	Dangling   []DanglingRef `json:"dangling,omitempty"`
	Duplicates []string      `json:"duplicates,omitempty"` // IDs seen more than once; the first entry won
}

// Graph is the lineage of one manifest: entities in manifest order and
// upstream → downstream edges between them.
type Graph struct {
	d        *dag.DAG
	entities map[string]Entity
}

// Extract builds the lineage graph of m. It never fails: a missing name falls
// back to the ID and a missing resource_type to [KindUnknown], while keys that
// are present keep their value even when it is "". Every key is an entity,
// the empty key included. References to unknown IDs are dropped.
func Extract(m *manifest.Manifest) *Graph {
	g, _ := ExtractWithReport(m)
	return g
}

// ExtractWithReport is [Extract] that also returns what was dropped.
func ExtractWithReport(m *manifest.Manifest) (*Graph, Report) {
	g := &Graph{
		d:        dag.New(dag.Metadata{"project": m.ProjectName, "dbt_version": m.DBTVersion}),
		entities: make(map[string]Entity, m.Len()),
	}
	var rep Report

	for _, e := range m.Nodes {
		kind := Kind(e.ResourceType)
		if kind == "" && !e.HasResourceType {
			kind = KindUnknown
		}
		if !g.add(Entity{ID: e.ID, Name: displayName(e), Kind: kind, Description: e.Description}) {
			rep.Duplicates = append(rep.Duplicates, e.ID)
		}
	}
	for _, e := range m.Sources {
		desc := e.Description
		if desc == "" {
			desc = SourceDescription
		}
		if !g.add(Entity{ID: e.ID, Name: displayName(e), Kind: KindSource, Description: desc}) {
			rep.Duplicates = append(rep.Duplicates, e.ID)
		}
	}

	for _, e := range m.Nodes {
		for _, parent := range e.DependsOn {
			if !g.d.HasNode(parent) {
				rep.Dangling = append(rep.Dangling, DanglingRef{Child: e.ID, Parent: parent})
				continue
			}
			if g.d.HasEdge(parent, e.ID) {
				continue
			}
			_ = g.d.AddEdge(dag.Edge{From: parent, To: e.ID})
		}
	}
	return g, rep
}

func displayName(e manifest.Entry) string {
	if e.Name == "" && !e.HasName {
		return e.ID
	}
	return e.Name
}

// add inserts e unless an entity with its ID already exists.
func (g *Graph) add(e Entity) bool {
	if g.d.HasNode(e.ID) {
		return false
	}
	err := g.d.AddNode(dag.Node{ID: e.ID, Meta: dag.Metadata{
		MetaName:        e.Name,
		MetaKind:        string(e.Kind),
		MetaDescription: e.Description,
	}})
	if err != nil {
		return false
	}
	g.entities[e.ID] = e
	return true
}

// DAG returns the underlying graph. Callers may set rows on it but should
// not add nodes or edges.
func (g *Graph) DAG() *dag.DAG { return g.d }

// Entities returns all entities in manifest order: nodes first, then sources.
func (g *Graph) Entities() []Entity { return g.collect(g.d.Nodes()) }

// Entity returns the entity with the given ID.
func (g *Graph) Entity(id string) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// Edges returns every dependency edge in insertion order.
func (g *Graph) Edges() []dag.Edge { return g.d.Edges() }

func (g *Graph) NodeCount() int { return g.d.NodeCount() }
func (g *Graph) EdgeCount() int { return g.d.EdgeCount() }

// Roots returns entities nothing depends on upstream (in-degree zero).
func (g *Graph) Roots() []Entity { return g.collect(g.d.Sources()) }

// Leaves returns entities nothing consumes (out-degree zero).
func (g *Graph) Leaves() []Entity { return g.collect(g.d.Sinks()) }

// Upstream returns the direct parents of id.
func (g *Graph) Upstream(id string) []Entity { return g.lookup(g.d.Parents(id)) }

// Downstream returns the direct children of id.
func (g *Graph) Downstream(id string) []Entity { return g.lookup(g.d.Children(id)) }

func (g *Graph) collect(nodes []*dag.Node) []Entity {
	return g.lookup(dag.NodeIDsOf(nodes))
}

func (g *Graph) lookup(ids []string) []Entity {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.entities[id])
	}
	return out
}
