package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/fonts"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the resource kind and layer to node labels.
	// When false, only the display name is shown.
	Detailed bool

	// Ranked lets Graphviz rank nodes left to right with the dot engine
	// instead of pinning them at the computed layout positions.
	Ranked bool

	// Title is drawn above the diagram when set.
	Title string
}

// Engine returns the Graphviz layout engine matching opts.
func (o Options) Engine() graphviz.Layout {
	if o.Ranked {
		return graphviz.DOT
	}
	return graphviz.NEATO
}

// ToDOT converts a lineage graph to Graphviz DOT source. Unless opts.Ranked
// is set, every node is pinned at its layout position (one layout unit per
// inch), which the neato engine honours.
func ToDOT(g *lineage.Graph, l layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	if opts.Ranked {
		buf.WriteString("  rankdir=LR;\n")
		buf.WriteString("  ranksep=1.2;\n")
	} else {
		buf.WriteString("  splines=curved;\n")
	}
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  fontname=%q;\n", fonts.FontFamily)
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", opts.Title)
	}
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, width=0.9, fontsize=8, fontname=%q, penwidth=2];\n", fonts.FontFamily)
	buf.WriteString("  edge [color=\"#80808099\", penwidth=1.5, arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, e := range g.Entities() {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(e, l, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", l.Profile.Color(e.Kind)),
			fmt.Sprintf("tooltip=%q", string(e.Kind)),
		}
		if p, ok := l.Positions[e.ID]; ok && !opts.Ranked {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X), fmtFloat(p.Y)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(e lineage.Entity, l layout.Layout, detailed bool) string {
	label := strings.ReplaceAll(e.Name, "_", "\n")
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n(%s, layer %d)", label, e.Kind, l.Layers[e.ID])
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the given Graphviz engine.
func RenderSVG(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	out, err := render(ctx, dot, engine, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG with the given Graphviz engine.
func RenderPNG(ctx context.Context, dot string, engine graphviz.Layout) ([]byte, error) {
	return render(ctx, dot, engine, graphviz.PNG)
}

func render(ctx context.Context, dot string, engine graphviz.Layout, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container instead of using Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
