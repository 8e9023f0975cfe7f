/*
Package bitmap decodes images at a reduced resolution.

Decoding happens in two passes: the first reads only the image header to
learn its natural size, the second decodes the pixels and scales them down by
the sample factor computed from that size. JPEG, PNG, GIF, BMP, TIFF and WebP
are supported.
*/
package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/xyzreader/sample"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errNoSource = errors.New("bitmap: no such image")

// Extensions lists the lower-case filename extensions of the formats that can
// be decoded.
var Extensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// IsImage reports whether file has a supported image extension.
func IsImage(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Source provides image resources by identifier.
type Source interface {
	Open(id string) (io.ReadCloser, error)
}

// Dir is a Source backed by the files in a directory.
type Dir string

// Open opens the named file within the directory. Names that would resolve
// outside of the directory are refused.
func (d Dir) Open(id string) (io.ReadCloser, error) {
	name := filepath.Clean(filepath.FromSlash(id))
	if id == "" || filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return nil, errNoSource
	}
	return os.Open(filepath.Join(string(d), name))
}

// Interpolator is the kernel used to scale decoded pixels.
type Interpolator = draw.Interpolator

var interpolators = map[string]Interpolator{
	"nearest":         draw.NearestNeighbor,
	"approx-bilinear": draw.ApproxBiLinear,
	"bilinear":        draw.BiLinear,
	"catmull-rom":     draw.CatmullRom,
}

// ParseInterpolator returns the interpolator with the given name, one of
// nearest, approx-bilinear, bilinear or catmull-rom.
func ParseInterpolator(name string) (Interpolator, error) {
	if i, ok := interpolators[strings.ToLower(name)]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("bitmap: unknown interpolator %q", name)
}

// DecodeConfig returns the natural dimensions and format name of the image in
// r without decoding the pixel data.
func DecodeConfig(r io.Reader) (sample.Dimensions, string, error) {
	c, format, err := image.DecodeConfig(r)
	if err != nil {
		return sample.Dimensions{}, "", err
	}
	return sample.Dimensions{Width: c.Width, Height: c.Height}, format, nil
}

func sampledSize(n, factor int) int {
	if n /= factor; n < 1 {
		return 1
	}
	return n
}

// Decode decodes the image in r and scales it down by factor in both
// dimensions using kernel. A factor below one is treated as one. If kernel is
// nil, draw.ApproxBiLinear is used.
func Decode(r io.Reader, factor int, kernel Interpolator) (image.Image, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	if factor <= 1 {
		return m, nil
	}
	if kernel == nil {
		kernel = draw.ApproxBiLinear
	}

	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sampledSize(b.Dx(), factor), sampledSize(b.Dy(), factor)))
	kernel.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)

	return dst, nil
}

// DecodeSampled probes the dimensions of the image in r, computes the sample
// factor for target and then decodes the image at that factor. It returns the
// decoded image along with the factor used.
func DecodeSampled(r io.ReadSeeker, target sample.Bounds, defaultFactor int, kernel Interpolator) (image.Image, int, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, err
	}

	dims, _, err := DecodeConfig(r)
	if err != nil {
		return nil, 0, err
	}

	factor, err := sample.Factor(dims, target, defaultFactor)
	if err != nil {
		return nil, 0, err
	}

	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, 0, err
	}

	m, err := Decode(r, factor, kernel)
	if err != nil {
		return nil, 0, err
	}

	return m, factor, nil
}

// DecodeSource opens id from s and decodes it sampled to target. Sources that
// do not return an io.ReadSeeker are buffered in memory.
func DecodeSource(s Source, id string, target sample.Bounds, defaultFactor int, kernel Interpolator) (image.Image, int, error) {
	rc, err := s.Open(id)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	rs, ok := rc.(io.ReadSeeker)
	if !ok {
		b, err := ioutil.ReadAll(rc)
		if err != nil {
			return nil, 0, err
		}
		rs = bytes.NewReader(b)
	}

	return DecodeSampled(rs, target, defaultFactor, kernel)
}
