package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

func TestLayer(t *testing.T) {
	basic, advanced := MustProfile(Basic), MustProfile(Advanced)

	tests := []struct {
		name     string
		basic    int
		advanced int
	}{
		{"raw_patients", 0, 0},
		{"stg_patients", 1, 1},
		{"int_visits", 2, 2},
		{"dim_provider", 3, 3},
		{"fct_claims", 3, 3},
		{"snap_patients", 2, 4},
		{"orders", 2, 2},
		{"", 2, 2},
		{"RAW_upper", 2, 2},
		{"raw_stg_mixed", 0, 0},
		{"stg", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Layer(tt.name, basic); got != tt.basic {
				t.Errorf("Layer(%q, basic) = %d, want %d", tt.name, got, tt.basic)
			}
			if got := Layer(tt.name, advanced); got != tt.advanced {
				t.Errorf("Layer(%q, advanced) = %d, want %d", tt.name, got, tt.advanced)
			}
		})
	}
}

func TestLookupProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", Basic, false},
		{"basic", Basic, false},
		{"ADVANCED", Advanced, false},
		{"fancy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := LookupProfile(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LookupProfile(%q) error = %v", tt.in, err)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidProfile) {
					t.Errorf("code = %v", errors.GetCode(err))
				}
				return
			}
			if p.Name != tt.want {
				t.Errorf("Name = %q, want %q", p.Name, tt.want)
			}
		})
	}
}

func TestProfileColor(t *testing.T) {
	basic, advanced := MustProfile(Basic), MustProfile(Advanced)

	if got := basic.Color(lineage.KindSnapshot); got != "#FFA07A" {
		t.Errorf("basic snapshot = %s", got)
	}
	if got := advanced.Color(lineage.KindSnapshot); got != "#FF69B4" {
		t.Errorf("advanced snapshot = %s", got)
	}
	if got := advanced.Color(lineage.KindTest); got != DefaultColor {
		t.Errorf("advanced test = %s, want default", got)
	}
	if got := basic.Color("analysis"); got != DefaultColor {
		t.Errorf("unknown kind = %s, want default", got)
	}
	if got := (Profile{}).Color(lineage.KindSeed); got != DefaultColor {
		t.Errorf("zero profile = %s, want default", got)
	}
}

func graphOf(t *testing.T, names ...string) *lineage.Graph {
	t.Helper()
	m := &manifest.Manifest{}
	for _, n := range names {
		m.Nodes = append(m.Nodes, manifest.Entry{ID: "model.p." + n, Name: n, ResourceType: "model"})
	}
	return lineage.Extract(m)
}

func TestCompute(t *testing.T) {
	g := graphOf(t, "raw_a", "stg_a", "raw_b", "fct_x", "raw_c", "other")
	l := Compute(g, MustProfile(Basic))

	tests := []struct {
		id   string
		want Point
	}{
		// three raw nodes: y = (i - 1.5) * 1.5
		{"model.p.raw_a", Point{0, -2.25}},
		{"model.p.raw_b", Point{0, -0.75}},
		{"model.p.raw_c", Point{0, 0.75}},
		// single node layers sit at -0.5 * VSpacing
		{"model.p.stg_a", Point{3, -0.75}},
		{"model.p.fct_x", Point{9, -0.75}},
		{"model.p.other", Point{6, -0.75}},
	}
	for _, tt := range tests {
		if got := l.Positions[tt.id]; got != tt.want {
			t.Errorf("Positions[%s] = %v, want %v", tt.id, got, tt.want)
		}
	}

	if l.Counts[LayerRaw] != 3 || l.Counts[LayerIntermediate] != 1 {
		t.Errorf("Counts = %v", l.Counts)
	}
	if !slices.Equal(l.Order, g.DAG().NodeIDs()) {
		t.Errorf("Order = %v", l.Order)
	}
	if n, _ := g.DAG().Node("model.p.fct_x"); n.Row != LayerMarts {
		t.Errorf("dag row = %d, want %d", n.Row, LayerMarts)
	}
}

func TestComputeSameLayerSharesX(t *testing.T) {
	g := graphOf(t, "snap_a", "int_a", "x", "snap_b")
	l := Compute(g, MustProfile(Advanced))

	byLayer := make(map[int][]Point)
	for id, layer := range l.Layers {
		byLayer[layer] = append(byLayer[layer], l.Positions[id])
	}
	for layer, pts := range byLayer {
		for _, p := range pts {
			if p.X != float64(layer)*4 {
				t.Errorf("layer %d has x = %v", layer, p.X)
			}
		}
	}
	if len(byLayer[LayerSnapshots]) != 2 {
		t.Errorf("snapshots layer = %v", byLayer[LayerSnapshots])
	}
}

func TestComputeDeterministic(t *testing.T) {
	names := []string{"raw_a", "stg_a", "stg_b", "int_a", "dim_a", "fct_a"}
	a := Compute(graphOf(t, names...), MustProfile(Basic))
	b := Compute(graphOf(t, names...), MustProfile(Basic))

	if !slices.Equal(a.Order, b.Order) {
		t.Fatal("order differs")
	}
	for _, id := range a.Order {
		if a.Positions[id] != b.Positions[id] {
			t.Errorf("%s: %v vs %v", id, a.Positions[id], b.Positions[id])
		}
	}
}

func TestBoundsAndLabels(t *testing.T) {
	l := Compute(graphOf(t, "raw_a", "raw_b", "fct_a"), MustProfile(Basic))

	lo, hi := l.Bounds()
	if lo != (Point{0, -1.5}) || hi != (Point{9, 0}) {
		t.Errorf("Bounds() = %v %v", lo, hi)
	}

	labels := l.Labels()
	if len(labels) != 4 {
		t.Fatalf("len(Labels()) = %d, want 4", len(labels))
	}
	if labels[0].Name != "Raw Data" || labels[3].Name != "Marts" {
		t.Errorf("labels = %v", labels)
	}
	if labels[2].At != (Point{6, 2}) {
		t.Errorf("Intermediate label at %v, want {6 2}", labels[2].At)
	}
}

func TestComputeEmpty(t *testing.T) {
	l := Compute(graphOf(t), MustProfile(Advanced))
	if len(l.Positions) != 0 {
		t.Errorf("Positions = %v", l.Positions)
	}
	lo, hi := l.Bounds()
	if lo != (Point{}) || hi != (Point{}) {
		t.Errorf("Bounds() = %v %v", lo, hi)
	}
	if got := len(l.Labels()); got != 5 {
		t.Errorf("len(Labels()) = %d, want 5", got)
	}
}
