// Package render groups the output backends for lineage graphs.
//
//   - [plot] draws the static PNG with fixed layer columns
//   - [html] writes the interactive vis-network page
//   - [nodelink] emits Graphviz DOT and renders it to SVG
//
// Every backend takes a [lineage.Graph] and the [layout.Layout] computed for
// it, so colours and layer captions stay consistent across formats.
//
// [plot]: github.com/matzehuels/dbtlineage/pkg/render/plot
// [html]: github.com/matzehuels/dbtlineage/pkg/render/html
// [nodelink]: github.com/matzehuels/dbtlineage/pkg/render/nodelink
// [lineage.Graph]: github.com/matzehuels/dbtlineage/pkg/lineage#Graph
// [layout.Layout]: github.com/matzehuels/dbtlineage/pkg/layout#Layout
package render
