/*
Package sample computes the subsampling factor used when decoding an image
for display in a smaller region.

Decoding at 1/factor resolution keeps memory use down while the result is
still no smaller than the requested bounds in either dimension.
*/
package sample

import (
	"errors"
	"fmt"
	"math"
)

// DefaultFactor is the factor returned when no downsampling can be computed.
// It deliberately always downsamples; pass 1 for a neutral default.
const DefaultFactor = 16

// ErrInvalidArgument is returned when any dimension is negative.
var ErrInvalidArgument = errors.New("sample: invalid argument")

// Dimensions is the natural size of an image in pixels.
type Dimensions struct {
	Width, Height int
}

// Bounds is the requested display size in pixels. A zero width or height
// means no constraint was requested.
type Bounds struct {
	Width, Height int
}

func (d Dimensions) fits(b Bounds) bool {
	return d.Height <= b.Height && d.Width <= b.Width
}

// Factor returns the sample factor for an image of size dims displayed within
// target. If either target dimension is zero, or the image already fits,
// defaultFactor is returned unchanged. Otherwise the ratio of each image
// dimension to its target is rounded half away from zero and the smaller of
// the two is returned.
func Factor(dims Dimensions, target Bounds, defaultFactor int) (int, error) {
	if dims.Width < 0 || dims.Height < 0 {
		return 0, fmt.Errorf("%w: negative image dimensions %dx%d", ErrInvalidArgument, dims.Width, dims.Height)
	}
	if target.Width < 0 || target.Height < 0 {
		return 0, fmt.Errorf("%w: negative target bounds %dx%d", ErrInvalidArgument, target.Width, target.Height)
	}

	if target.Width == 0 || target.Height == 0 {
		return defaultFactor, nil
	}

	if dims.fits(target) {
		return defaultFactor, nil
	}

	heightRatio := int(math.Round(float64(dims.Height) / float64(target.Height)))
	widthRatio := int(math.Round(float64(dims.Width) / float64(target.Width)))

	// The smaller ratio keeps both decoded dimensions at or above the target
	if heightRatio < widthRatio {
		return heightRatio, nil
	}
	return widthRatio, nil
}
