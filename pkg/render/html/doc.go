// Package html renders lineage as an interactive browser page.
//
// The page embeds nodes and edges as JSON and draws them with vis-network,
// loaded from unpkg. The widget uses its own left-to-right hierarchical
// layout with physics disabled, so positions from package layout are not
// used; only colours and layer numbers are taken from the [layout.Layout].
// Clicking a node shows its name, type and description.
//
// The page template is embedded with go:embed and executed with html/template
// plus the sprig function map, so names and descriptions from the manifest
// are escaped for the context they land in.
package html
