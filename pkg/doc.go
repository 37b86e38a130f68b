// Package pkg provides the core libraries for dbtlineage.
//
// # Overview
//
// dbtlineage turns the manifest.json written by 'dbt docs generate' into a
// layered picture of how data flows from raw seeds and sources through
// staging and intermediate models into marts. The pkg directory is organized
// into these areas:
//
//  1. [manifest] - Reading the dbt manifest
//  2. [lineage] and [dag] - The dependency graph between entities
//  3. [layout] - Layer assignment, positions and visual profiles
//  4. [render] - Output backends (PNG, HTML, SVG, DOT)
//  5. [pipeline] - Orchestration (load → layout → render)
//  6. [graph] - Serialization of graphs and positions
//
// # Architecture
//
// The typical data flow:
//
//	target/manifest.json
//	         ↓
//	    [manifest] package (nodes and sources, in document order)
//	         ↓
//	    [lineage] package (entities + upstream → downstream edges)
//	         ↓
//	    [layout] package (layers by name prefix, column positions)
//	         ↓
//	    [render] packages (PNG, HTML, SVG, DOT) and [graph] (JSON)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/dbtlineage/pkg/pipeline"
//	)
//
//	result, err := pipeline.NewRunner(nil).Execute(context.Background(), pipeline.Options{
//	    Manifest: "lineage_demo/target/manifest.json",
//	    Formats:  []string{pipeline.FormatPNG, pipeline.FormatHTML},
//	})
//	png := result.Artifacts[pipeline.FormatPNG]
//
// # Supporting Packages
//
// [errors] - Coded errors; a missing manifest is FILE_NOT_FOUND with a hint.
//
// [fonts] - Embedded fonts for the static plot.
//
// [observability] - Hooks for pipeline stage and HTTP request events.
//
// [buildinfo] - Version information set via ldflags.
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/manifest
// [lineage]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/lineage
// [dag]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/dag
// [layout]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/graph
// [errors]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/errors
// [fonts]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/fonts
// [observability]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dbtlineage/pkg/buildinfo
package pkg
