package plot

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"

	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/fonts"
	"github.com/matzehuels/dbtlineage/pkg/layout"
	"github.com/matzehuels/dbtlineage/pkg/lineage"
)

// DefaultDPI is the resolution used when no option overrides it.
const DefaultDPI = 100

const (
	nodeAlpha   = 0.9
	edgeAlpha   = 0.6
	borderWidth = 2.0  // pt
	arcRad      = 0.1  // curvature of edges, as a fraction of their length
	labelAlpha  = 0.5  // layer caption box
	markerSize  = 10.0 // legend swatch diameter, pt
	titlePad    = 20.0 // pt
	edgeColor   = "#808080"
	wheat       = "#F5DEB3"
)

// Option configures PNG rendering.
type Option func(*renderer)

type renderer struct {
	dpi   float64
	title string
}

// WithDPI sets the output resolution. The canvas is the profile's figure
// size in inches times dpi.
func WithDPI(dpi int) Option {
	return func(r *renderer) { r.dpi = float64(dpi) }
}

// WithTitle overrides the profile title.
func WithTitle(title string) Option {
	return func(r *renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// RenderPNG draws g at the positions in l and encodes it as PNG.
func RenderPNG(g *lineage.Graph, l layout.Layout, opts ...Option) ([]byte, error) {
	r := renderer{dpi: DefaultDPI, title: l.Profile.Title}
	for _, opt := range opts {
		opt(&r)
	}
	if r.dpi <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %v", r.dpi)
	}

	c, err := newCanvas(l, r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "prepare canvas")
	}
	c.drawEdges(g)
	if err := c.drawNodes(g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "draw nodes")
	}
	c.drawLayerLabels()
	c.drawLegend()
	c.drawTitle(r.title)

	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// canvas maps layout units onto pixels. Layout y grows upward; pixel y grows
// downward.
type canvas struct {
	dc     *gg.Context
	l      layout.Layout
	p      layout.Profile
	dpi    float64
	radius float64 // node radius, px
	x0, y1 float64 // data coordinates of the plot area's top-left corner
	sx, sy float64 // px per data unit
	left   float64
	top    float64
	faces  map[string]font.Face
}

func (c *canvas) pt(v float64) float64 { return v * c.dpi / 72 }

func (c *canvas) toPixel(p layout.Point) (float64, float64) {
	return c.left + (p.X-c.x0)*c.sx, c.top + (c.y1-p.Y)*c.sy
}

func newCanvas(l layout.Layout, r renderer) (*canvas, error) {
	p := l.Profile
	w := int(math.Round(p.FigWidth * r.dpi))
	h := int(math.Round(p.FigHeight * r.dpi))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("profile %q has no figure size", p.Name)
	}

	c := &canvas{dc: gg.NewContext(w, h), l: l, p: p, dpi: r.dpi}
	c.radius = c.pt(math.Sqrt(p.NodeSize) / 2)

	c.faces = make(map[string]font.Face)
	for key, spec := range map[string]struct {
		w    fonts.Weight
		size float64
	}{
		"node":   {fonts.Bold, p.FontSize},
		"legend": {fonts.Regular, p.LegendFontSize},
		"layer":  {fonts.Bold, p.LayerFontSize},
		"title":  {fonts.Bold, p.TitleFontSize},
	} {
		face, err := fonts.Face(spec.w, spec.size, r.dpi)
		if err != nil {
			return nil, err
		}
		c.faces[key] = face
	}

	lo, hi := l.Bounds()
	for _, lbl := range l.Labels() {
		lo.X, hi.X = min(lo.X, lbl.At.X), max(hi.X, lbl.At.X)
		hi.Y = max(hi.Y, lbl.At.Y)
	}
	if hi.X-lo.X < 1 {
		lo.X, hi.X = lo.X-0.5, hi.X+0.5
	}
	if hi.Y-lo.Y < 1 {
		lo.Y, hi.Y = lo.Y-0.5, hi.Y+0.5
	}

	pad := c.radius + c.pt(10)
	titleSpace := c.pt(p.TitleFontSize + 2*titlePad)
	labelSpace := c.pt(p.LayerFontSize)
	c.left = pad
	c.top = titleSpace + labelSpace
	plotW := float64(w) - 2*pad
	plotH := float64(h) - c.top - pad
	c.x0, c.y1 = lo.X, hi.Y
	c.sx = plotW / (hi.X - lo.X)
	c.sy = plotH / (hi.Y - lo.Y)

	c.dc.SetRGB(1, 1, 1)
	c.dc.Clear()
	return c, nil
}

func (c *canvas) setHex(hex string, alpha float64) {
	col, err := colorful.Hex(hex)
	if err != nil {
		col, _ = colorful.Hex(layout.DefaultColor)
	}
	c.dc.SetRGBA(col.R, col.G, col.B, alpha)
}

func (c *canvas) drawEdges(g *lineage.Graph) {
	c.dc.SetLineWidth(c.pt(c.p.EdgeWidth))
	c.dc.SetLineCapRound()
	c.setHex(edgeColor, edgeAlpha)

	headLen := c.pt(0.4 * c.p.ArrowSize)
	headHalf := c.pt(0.2 * c.p.ArrowSize)

	for _, e := range g.Edges() {
		x1, y1 := c.toPixel(c.l.Positions[e.From])
		x2, y2 := c.toPixel(c.l.Positions[e.To])
		dx, dy := x2-x1, y2-y1
		if math.Hypot(dx, dy) <= 2*c.radius {
			continue
		}

		// arc3: control point offset perpendicular to the chord
		cx := (x1+x2)/2 - arcRad*dy
		cy := (y1+y2)/2 + arcRad*dx

		sx, sy := along(x1, y1, cx, cy, c.radius)
		ex, ey := along(x2, y2, cx, cy, c.radius)

		c.dc.NewSubPath()
		c.dc.MoveTo(sx, sy)
		c.dc.QuadraticTo(cx, cy, ex, ey)
		c.dc.Stroke()

		ux, uy := unit(ex-cx, ey-cy)
		bx, by := ex-ux*headLen, ey-uy*headLen
		c.dc.NewSubPath()
		c.dc.MoveTo(bx-uy*headHalf, by+ux*headHalf)
		c.dc.LineTo(ex, ey)
		c.dc.LineTo(bx+uy*headHalf, by-ux*headHalf)
		c.dc.Stroke()
	}
}

func (c *canvas) drawNodes(g *lineage.Graph) error {
	c.dc.SetFontFace(c.faces["node"])
	lineH := c.dc.FontHeight() * 1.2

	for _, id := range c.l.Order {
		e, ok := g.Entity(id)
		if !ok {
			return fmt.Errorf("layout references unknown entity %q", id)
		}
		x, y := c.toPixel(c.l.Positions[id])

		c.dc.DrawCircle(x, y, c.radius)
		c.setHex(c.p.Color(e.Kind), nodeAlpha)
		c.dc.FillPreserve()
		c.dc.SetRGB(0, 0, 0)
		c.dc.SetLineWidth(c.pt(borderWidth))
		c.dc.Stroke()

		lines := strings.Split(e.Name, "_")
		mid := float64(len(lines)-1) / 2
		for i, line := range lines {
			c.dc.DrawStringAnchored(line, x, y+(float64(i)-mid)*lineH, 0.5, 0.5)
		}
	}
	return nil
}

func (c *canvas) drawLayerLabels() {
	c.dc.SetFontFace(c.faces["layer"])
	pad := c.pt(0.3 * c.p.LayerFontSize)

	for _, lbl := range c.l.Labels() {
		x, y := c.toPixel(lbl.At)
		w, h := c.dc.MeasureString(lbl.Name)

		c.dc.DrawRoundedRectangle(x-w/2-pad, y-h/2-pad, w+2*pad, h+2*pad, pad)
		c.setHex(wheat, labelAlpha)
		c.dc.FillPreserve()
		c.dc.SetRGBA(0, 0, 0, labelAlpha)
		c.dc.SetLineWidth(1)
		c.dc.Stroke()

		c.dc.SetRGB(0, 0, 0)
		c.dc.DrawStringAnchored(lbl.Name, x, y, 0.5, 0.5)
	}
}

func (c *canvas) drawLegend() {
	entries := c.p.Legend
	if len(entries) == 0 {
		return
	}
	c.dc.SetFontFace(c.faces["legend"])

	r := c.pt(markerSize / 2)
	rowH := math.Max(2*r, c.dc.FontHeight()) * 1.4
	pad := c.pt(c.p.LegendFontSize * 0.6)

	var textW float64
	for _, e := range entries {
		w, _ := c.dc.MeasureString(e.Label)
		textW = math.Max(textW, w)
	}
	boxW := pad + 2*r + pad + textW + pad
	boxH := pad + rowH*float64(len(entries)) + pad
	x0, y0 := c.pt(10), c.top

	c.dc.DrawRoundedRectangle(x0, y0, boxW, boxH, pad/2)
	c.dc.SetRGBA(1, 1, 1, 0.8)
	c.dc.FillPreserve()
	c.dc.SetRGB(0.8, 0.8, 0.8)
	c.dc.SetLineWidth(1)
	c.dc.Stroke()

	for i, e := range entries {
		cy := y0 + pad + rowH*(float64(i)+0.5)
		cx := x0 + pad + r
		c.dc.DrawCircle(cx, cy, r)
		c.setHex(c.p.Color(e.Kind), 1)
		c.dc.FillPreserve()
		c.dc.SetRGB(0, 0, 0)
		c.dc.SetLineWidth(1)
		c.dc.Stroke()
		c.dc.DrawStringAnchored(e.Label, cx+r+pad, cy, 0, 0.5)
	}
}

func (c *canvas) drawTitle(title string) {
	if title == "" {
		return
	}
	c.dc.SetFontFace(c.faces["title"])
	c.dc.SetRGB(0, 0, 0)
	w := float64(c.dc.Width())
	c.dc.DrawStringAnchored(title, w/2, c.pt(titlePad+c.p.TitleFontSize/2), 0.5, 0.5)
}

// along moves d pixels from (x, y) toward (tx, ty).
func along(x, y, tx, ty, d float64) (float64, float64) {
	ux, uy := unit(tx-x, ty-y)
	return x + ux*d, y + uy*d
}

func unit(dx, dy float64) (float64, float64) {
	n := math.Hypot(dx, dy)
	if n == 0 {
		return 0, 0
	}
	return dx / n, dy / n
}
