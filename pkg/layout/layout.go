package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// Point is a position in layout units. Y grows upward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the placement of every entity of a graph.
type Layout struct {
	Profile   Profile          `json:"-"`
	Positions map[string]Point `json:"positions"`
	Layers    map[string]int   `json:"layers"`
	Order     []string         `json:"order"` // entity IDs in placement order
	Counts    map[int]int      `json:"counts"`
}

// LayerLabel is the caption drawn above one layer.
type LayerLabel struct {
	Layer int
	Name  string
	At    Point
}

// Compute places every entity of g. Entities of the same layer share
// x = layer*HSpacing and are stacked from the bottom in manifest order with
// y = (index - count/2) * VSpacing, so each column is centred near zero.
//
// Compute also stores the layers as rows on g's dag.
func Compute(g *lineage.Graph, p Profile) Layout {
	entities := g.Entities()
	l := Layout{
		Profile:   p,
		Positions: make(map[string]Point, len(entities)),
		Layers:    make(map[string]int, len(entities)),
		Order:     make([]string, 0, len(entities)),
		Counts:    make(map[int]int),
	}

	for _, e := range entities {
		layer := Layer(e.Name, p)
		l.Layers[e.ID] = layer
		l.Counts[layer]++
	}

	next := make(map[int]int)
	for _, e := range entities {
		layer := l.Layers[e.ID]
		idx := next[layer]
		next[layer]++
		l.Positions[e.ID] = Point{
			X: float64(layer) * p.HSpacing,
			Y: (float64(idx) - float64(l.Counts[layer])/2) * p.VSpacing,
		}
		l.Order = append(l.Order, e.ID)
	}

	g.DAG().SetRows(l.Layers)
	return l
}

// Bounds returns the smallest and largest coordinates of any position.
// Both are the origin for an empty layout.
func (l Layout) Bounds() (lo, hi Point) {
	if len(l.Order) == 0 {
		return Point{}, Point{}
	}
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, id := range l.Order {
		pt := l.Positions[id]
		lo.X, lo.Y = min(lo.X, pt.X), min(lo.Y, pt.Y)
		hi.X, hi.Y = max(hi.X, pt.X), max(hi.Y, pt.Y)
	}
	return lo, hi
}

// Labels returns one caption per named layer of the profile, whether or not
// the layer holds any entity, placed LabelOffset above the highest node.
func (l Layout) Labels() []LayerLabel {
	_, hi := l.Bounds()
	layers := make([]int, 0, len(l.Profile.LayerNames))
	for layer := range l.Profile.LayerNames {
		layers = append(layers, layer)
	}
	slices.Sort(layers)

	labels := make([]LayerLabel, 0, len(layers))
	for _, layer := range layers {
		labels = append(labels, LayerLabel{
			Layer: layer,
			Name:  l.Profile.LayerNames[layer],
			At:    Point{X: float64(layer) * l.Profile.HSpacing, Y: hi.Y + l.Profile.LabelOffset},
		})
	}
	return labels
}
