// Package fonts provides the typefaces used by the raster renderer.
//
// The Go fonts ship inside golang.org/x/image, so PNG output looks the same
// on every machine without depending on system fonts.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a face from the family.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// FontFamily is the CSS font stack used by the HTML and DOT outputs.
const FontFamily = "Arial, Helvetica, sans-serif"

// Parsed fonts (computed once on first access).
var (
	parsed    map[Weight]*truetype.Font
	parseErr  error
	parseOnce sync.Once
)

func load() {
	parsed = make(map[Weight]*truetype.Font, 2)
	for w, ttf := range map[Weight][]byte{Regular: goregular.TTF, Bold: gobold.TTF} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			parseErr = fmt.Errorf("parse font: %w", err)
			return
		}
		parsed[w] = f
	}
}

// Face returns a face of the given weight sized in points for a canvas of
// the given DPI.
func Face(w Weight, points, dpi float64) (font.Face, error) {
	parseOnce.Do(load)
	if parseErr != nil {
		return nil, parseErr
	}
	f, ok := parsed[w]
	if !ok {
		return nil, fmt.Errorf("unknown font weight %d", w)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    points,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}), nil
}
