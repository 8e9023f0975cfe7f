package sample

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactor(t *testing.T) {
	tables := []struct {
		name   string
		dims   Dimensions
		target Bounds
		def    int
		want   int
	}{
		{"square", Dimensions{1000, 1000}, Bounds{100, 100}, DefaultFactor, 10},
		{"landscape", Dimensions{1000, 500}, Bounds{100, 100}, DefaultFactor, 5},
		{"fits", Dimensions{50, 50}, Bounds{100, 100}, DefaultFactor, DefaultFactor},
		{"exact fit", Dimensions{100, 100}, Bounds{100, 100}, DefaultFactor, DefaultFactor},
		{"half rounds up", Dimensions{150, 100}, Bounds{100, 100}, DefaultFactor, 1},
		{"both halves", Dimensions{250, 350}, Bounds{100, 100}, DefaultFactor, 3},
		{"below half", Dimensions{249, 349}, Bounds{100, 100}, DefaultFactor, 2},
		{"zero target width", Dimensions{1000, 1000}, Bounds{0, 100}, DefaultFactor, DefaultFactor},
		{"zero target height", Dimensions{1000, 1000}, Bounds{100, 0}, 4, 4},
		{"zero target", Dimensions{0, 0}, Bounds{0, 0}, 1, 1},
		{"custom default", Dimensions{10, 10}, Bounds{64, 40}, 1, 1},
		{"zero height image", Dimensions{300, 0}, Bounds{100, 100}, DefaultFactor, 0},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got, err := Factor(table.dims, table.target, table.def)
			require.NoError(t, err)
			assert.Equal(t, table.want, got)
		})
	}
}

func TestFactorHalfAwayFromZero(t *testing.T) {
	// 1.5 and 2.5 both round away from zero rather than to even
	f, err := Factor(Dimensions{150, 1000}, Bounds{100, 100}, DefaultFactor)
	require.NoError(t, err)
	assert.Equal(t, 2, f)

	f, err = Factor(Dimensions{250, 1000}, Bounds{100, 100}, DefaultFactor)
	require.NoError(t, err)
	assert.Equal(t, 3, f)
}

func TestFactorInvalid(t *testing.T) {
	tables := []struct {
		dims   Dimensions
		target Bounds
	}{
		{Dimensions{-1, 10}, Bounds{10, 10}},
		{Dimensions{10, -1}, Bounds{10, 10}},
		{Dimensions{10, 10}, Bounds{-1, 10}},
		{Dimensions{10, 10}, Bounds{10, -1}},
		{Dimensions{-5, -5}, Bounds{0, 0}},
	}

	for _, table := range tables {
		_, err := Factor(table.dims, table.target, DefaultFactor)
		if assert.Error(t, err) {
			assert.True(t, errors.Is(err, ErrInvalidArgument), err.Error())
		}
	}
}

func TestFactorMonotonic(t *testing.T) {
	target := Bounds{64, 40}
	for _, aspect := range []struct{ w, h int }{{1, 1}, {4, 3}, {3, 4}, {16, 9}} {
		last := 0
		// Sizes that fit are skipped, only oversized images are compared
		for n := 20; n < 2000; n++ {
			dims := Dimensions{aspect.w * n, aspect.h * n}
			if dims.fits(target) {
				continue
			}
			f, err := Factor(dims, target, DefaultFactor)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, f, last, "%v", dims)
			last = f
		}
	}
}
