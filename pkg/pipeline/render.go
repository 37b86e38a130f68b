package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/graph"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/render/html"
	"github.com/matzehuels/dbtlineage/pkg/render/nodelink"
	"github.com/matzehuels/dbtlineage/pkg/render/plot"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered in order and the first failure aborts the run.
func Render(ctx context.Context, g *lineage.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	opts.setLogger()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatPNG:
			data, err = plot.RenderPNG(g, l, plot.WithDPI(opts.DPI), plot.WithTitle(opts.Title))
		case FormatHTML:
			data, err = html.Render(g, l, htmlOptions(g, opts)...)
		case FormatSVG, FormatDOT:
			if dot == "" {
				dot = nodelink.ToDOT(g, l, nodelinkOptions(l, opts))
			}
			if format == FormatDOT {
				data = []byte(dot)
				break
			}
			data, err = nodelink.RenderSVG(ctx, dot, nodelinkOptions(l, opts).Engine())
		case FormatJSON:
			data, err = graph.MarshalGraph(g, l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
	}

	return artifacts, nil
}

func htmlOptions(g *lineage.Graph, opts Options) []html.Option {
	out := []html.Option{
		html.WithTitle(opts.Title),
		html.WithRunID(opts.RunID),
	}
	if !opts.GeneratedAt.IsZero() {
		out = append(out, html.WithGeneratedAt(opts.GeneratedAt))
	}
	if v, ok := g.DAG().Meta()["dbt_version"].(string); ok {
		out = append(out, html.WithDBTVersion(v))
	}
	return out
}

func nodelinkOptions(l layout.Layout, opts Options) nodelink.Options {
	title := opts.Title
	if title == "" {
		title = l.Profile.Title
	}
	return nodelink.Options{
		Detailed: opts.Detailed,
		Ranked:   opts.Ranked,
		Title:    title,
	}
}
