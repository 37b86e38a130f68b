package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
)

func sampleGraph() (*lineage.Graph, layout.Layout) {
	g := lineage.Extract(&manifest.Manifest{Nodes: []manifest.Entry{
		{ID: "seed.p.raw_a", Name: "raw_a", ResourceType: "seed"},
		{ID: "model.p.stg_a", Name: "stg_a", ResourceType: "model", DependsOn: []string{"seed.p.raw_a"}},
	}})
	return g, layout.Compute(g, layout.MustProfile(layout.Basic))
}

func TestToDOT_Basic(t *testing.T) {
	g, l := sampleGraph()
	dot := ToDOT(g, l, Options{})

	wants := []string{
		"digraph lineage",
		`"seed.p.raw_a"`,
		`"model.p.stg_a"`,
		`"seed.p.raw_a" -> "model.p.stg_a"`,
		`fillcolor="#90EE90"`,
		`fillcolor="#87CEEB"`,
		`pos="0,-0.75!"`,
		`pos="3,-0.75!"`,
		`label="raw\na"`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s", want)
		}
	}
	if strings.Contains(dot, "rankdir") {
		t.Error("pinned output should not set rankdir")
	}
}

func TestToDOT_Ranked(t *testing.T) {
	g, l := sampleGraph()
	dot := ToDOT(g, l, Options{Ranked: true, Title: "Shop"})

	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("ToDOT() ranked output missing rankdir")
	}
	if strings.Contains(dot, "pos=") {
		t.Error("ToDOT() ranked output should not pin positions")
	}
	if !strings.Contains(dot, `label="Shop"`) {
		t.Error("ToDOT() output missing title")
	}
}

func TestFmtLabel(t *testing.T) {
	g, l := sampleGraph()
	e, _ := g.Entity("model.p.stg_a")

	if got := fmtLabel(e, l, false); got != "stg\na" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	if got := fmtLabel(e, l, true); got != "stg\na\n(model, layer 1)" {
		t.Errorf("fmtLabel() detailed = %q", got)
	}
}

func TestEngine(t *testing.T) {
	if (Options{}).Engine() != graphviz.NEATO {
		t.Error("pinned layout should use neato")
	}
	if (Options{Ranked: true}).Engine() != graphviz.DOT {
		t.Error("ranked layout should use dot")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 62.00 116.00" width="62" height="116"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz wasm startup is slow")
	}
	g, l := sampleGraph()
	opts := Options{}
	svg, err := RenderSVG(context.Background(), ToDOT(g, l, opts), opts.Engine())
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
