// Package plot renders a lineage layout as a static PNG.
//
// The image follows the classic networkx/matplotlib lineage plot: circles
// coloured by resource kind, names split on underscores, slightly curved grey
// arrows, a legend in the upper left and a wheat caption above every layer.
// Drawing uses github.com/fogleman/gg; sizes are given in points by the
// [layout.Profile] and scaled by the chosen DPI.
//
//	l := layout.Compute(g, layout.MustProfile(layout.Basic))
//	png, err := plot.RenderPNG(g, l, plot.WithDPI(150))
package plot
