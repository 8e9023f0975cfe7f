/*
Package thumbnail implements a PNG thumbnail encoder.

Thumbnails can optionally be reduced to a fixed number of colors using a
median cut quantizer which, combined with PNG's palette support, keeps the
encoded size small.
*/
package thumbnail

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

// MaxColors is the largest palette a thumbnail can be reduced to.
const MaxColors = 256

var errTooManyColors = errors.New("thumbnail: too many colors")

// Options are the encoding parameters.
type Options struct {
	// Colors is the maximum number of colors in the thumbnail. Zero means
	// the image is encoded with its colors unchanged.
	Colors int
	// Dither applies Floyd-Steinberg error diffusion when reducing colors.
	Dither bool
}

// countColors counts up to limit unique colors in m, stopping early once the
// limit is exceeded.
func countColors(m image.Image, limit int) int {
	colors := make(map[color.Color]struct{})
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			colors[m.At(x, y)] = struct{}{}
			if len(colors) > limit {
				return len(colors)
			}
		}
	}
	return len(colors)
}

func reduce(m image.Image, o *Options) *image.Paletted {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm != nil && len(pm.Palette) <= o.Colors {
		return pm
	}

	var drawer draw.Drawer = draw.Src
	if o.Dither {
		drawer = draw.FloydSteinberg
	}

	// Images with few enough colors get an exact palette
	if countColors(m, o.Colors) <= o.Colors {
		p := make(color.Palette, 0, o.Colors)
		seen := make(map[color.Color]struct{})
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := m.At(x, y)
				if _, ok := seen[c]; !ok {
					seen[c] = struct{}{}
					p = append(p, c)
				}
			}
		}
		pm = image.NewPaletted(b, p)
		draw.Draw(pm, b, m, b.Min, draw.Src)
		return pm
	}

	q := quantize.MedianCutQuantizer{}
	pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, o.Colors), m))
	drawer.Draw(pm, b, m, b.Min)

	return pm
}

// Encode writes the Image m to w as a PNG thumbnail. If o is nil the image is
// encoded without color reduction.
func Encode(w io.Writer, m image.Image, o *Options) error {
	if o != nil && o.Colors > MaxColors {
		return errTooManyColors
	}

	if o != nil && o.Colors > 0 {
		pm := reduce(m, o)

		// Adjust image so that top-left corner is at (0, 0)
		if pm.Rect.Min != (image.Point{}) {
			dup := *pm
			dup.Rect = dup.Rect.Sub(dup.Rect.Min)
			pm = &dup
		}
		m = pm
	}

	e := png.Encoder{CompressionLevel: png.BestCompression}

	return e.Encode(w, m)
}
