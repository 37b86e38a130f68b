package lineage

import (
	"maps"
	"slices"
)

// Summary is the headline numbers of a lineage graph.
type Summary struct {
	Project string       `json:"project,omitempty"`
	Nodes   int          `json:"nodes"`
	Edges   int          `json:"edges"`
	ByKind  map[Kind]int `json:"by_kind"`
	Roots   []Entity     `json:"roots"`
	Leaves  []Entity     `json:"leaves"`
}

// Summarize counts g's entities and edges and lists its roots and leaves.
func Summarize(g *Graph) Summary {
	s := Summary{
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
		ByKind: make(map[Kind]int),
		Roots:  orEmpty(g.Roots()),
		Leaves: orEmpty(g.Leaves()),
	}
	if p, ok := g.d.Meta()["project"].(string); ok {
		s.Project = p
	}
	for _, e := range g.entities {
		s.ByKind[e.Kind]++
	}
	return s
}

// orEmpty keeps JSON output as [] rather than null.
func orEmpty(entities []Entity) []Entity {
	if entities == nil {
		return []Entity{}
	}
	return entities
}

// Kinds returns the kinds present in s, sorted by name.
func (s Summary) Kinds() []Kind {
	return slices.Sorted(maps.Keys(s.ByKind))
}

// Names returns the display names of entities, in order.
func Names(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
