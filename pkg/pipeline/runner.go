package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
	"github.com/matzehuels/dbtlineage/pkg/observability"
)

// Runner executes pipeline stages with a shared logger.
//
// The Runner holds no pipeline results, so multiple goroutines can use the
// same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	m, g, report, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Manifest = m
	result.Graph = g
	result.Report = report
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("loaded lineage",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Summary = lineage.Summarize(g)
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Debug("computed layout",
		"profile", l.Profile.Name,
		"layers", len(l.Counts),
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, g, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the manifest and extracts the lineage graph. References to
// entities outside the manifest are dropped from the graph, logged at debug
// level one by one and summarized at warn level.
func (r *Runner) Load(ctx context.Context, opts Options) (*manifest.Manifest, *lineage.Graph, lineage.Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, lineage.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, lineage.Report{}, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, opts.Manifest)

	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.Manifest, 0, 0, time.Since(start), err)
		return nil, nil, lineage.Report{}, err
	}
	g, report := lineage.ExtractWithReport(m)
	r.logReport(report)
	hooks.OnLoadComplete(ctx, opts.Manifest, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
	return m, g, report, nil
}

// Layout computes layers and positions for g under the profile in opts.
func (r *Runner) Layout(ctx context.Context, g *lineage.Graph, opts Options) (layout.Layout, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}
	if err := ctx.Err(); err != nil {
		return layout.Layout{}, err
	}
	p, err := layout.LookupProfile(opts.Profile)
	if err != nil {
		return layout.Layout{}, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, p.Name, g.NodeCount())
	l := layout.Compute(g, p)
	hooks.OnLayoutComplete(ctx, p.Name, time.Since(start), nil)
	return l, nil
}

// Render generates every requested artifact.
func (r *Runner) Render(ctx context.Context, g *lineage.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(ctx, g, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func (r *Runner) logReport(report lineage.Report) {
	for _, ref := range report.Dangling {
		r.Logger.Debug("dropped dependency on unknown entity", "child", ref.Child, "parent", ref.Parent)
	}
	if n := len(report.Dangling); n > 0 {
		r.Logger.Warn("dropped dependencies on entities outside the manifest", "count", n)
	}
	for _, id := range report.Duplicates {
		r.Logger.Warn("duplicate entity id, keeping the first entry", "id", id)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
