// Package nodelink renders lineage graphs through Graphviz.
//
// # Usage
//
// Convert a graph and its layout to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{}.Engine())
//
// # Pinned and Ranked Layouts
//
// By default every node carries pos="x,y!" taken from package layout, and
// the neato engine keeps it there, so the SVG matches the PNG plot column
// for column. With [Options].Ranked the positions are left out and the dot
// engine ranks the graph left to right on its own, which untangles dense
// projects at the cost of ignoring naming-convention layers.
//
// # DOT Format
//
// The DOT text from [ToDOT] can also be written to disk and processed with
// external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly, so no system Graphviz install is needed.
package nodelink
