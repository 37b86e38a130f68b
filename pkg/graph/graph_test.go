package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

func sample() (*lineage.Graph, layout.Layout) {
	g := lineage.Extract(&manifest.Manifest{
		ProjectName: "shop",
		DBTVersion:  "1.8.0",
		Nodes: []manifest.Entry{
			{ID: "seed.shop.raw_orders", Name: "raw_orders", ResourceType: "seed"},
			{ID: "model.shop.stg_orders", Name: "stg_orders", ResourceType: "model", DependsOn: []string{"seed.shop.raw_orders"}},
		},
	})
	return g, layout.Compute(g, layout.MustProfile(layout.Basic))
}

func TestFromLineage(t *testing.T) {
	g, l := sample()
	out := FromLineage(g, l)

	if out.Project != "shop" || out.DBTVersion != "1.8.0" || out.Profile != layout.Basic {
		t.Errorf("header = %q %q %q", out.Project, out.DBTVersion, out.Profile)
	}
	if len(out.Nodes) != 2 || len(out.Edges) != 1 {
		t.Fatalf("got %d nodes %d edges", len(out.Nodes), len(out.Edges))
	}
	stg := out.Nodes[1]
	if stg.Label != "stg_orders" || stg.Kind != "model" || stg.Layer != 1 || stg.X != 3 || stg.Y != -0.75 {
		t.Errorf("Nodes[1] = %+v", stg)
	}
	if out.Edges[0] != (Edge{From: "seed.shop.raw_orders", To: "model.shop.stg_orders"}) {
		t.Errorf("Edges[0] = %+v", out.Edges[0])
	}
}

func TestMarshalGraphRoundTrip(t *testing.T) {
	g, l := sample()
	data, err := MarshalGraph(g, l)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}

	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error = %v", err)
	}
	want := FromLineage(g, l)
	if len(got.Nodes) != len(want.Nodes) {
		t.Fatalf("nodes = %d, want %d", len(got.Nodes), len(want.Nodes))
	}
	for i := range want.Nodes {
		if got.Nodes[i] != want.Nodes[i] {
			t.Errorf("Nodes[%d] = %+v, want %+v", i, got.Nodes[i], want.Nodes[i])
		}
	}

	again, _ := MarshalGraph(g, l)
	if !bytes.Equal(data, again) {
		t.Error("MarshalGraph() is not deterministic")
	}
}

func TestEmptyGraphEncodesArrays(t *testing.T) {
	g := lineage.Extract(&manifest.Manifest{})
	data, err := MarshalGraph(g, layout.Compute(g, layout.MustProfile(layout.Basic)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"nodes": []`)) || !bytes.Contains(data, []byte(`"edges": []`)) {
		t.Errorf("empty graph JSON = %s", data)
	}
}

func TestReadGraphFile(t *testing.T) {
	g, l := sample()
	path := filepath.Join(t.TempDir(), "lineage.json")
	data, _ := MarshalGraph(g, l)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile() error = %v", err)
	}
	if got.Project != "shop" {
		t.Errorf("Project = %q", got.Project)
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadGraphFile(missing) error = nil")
	}
}
