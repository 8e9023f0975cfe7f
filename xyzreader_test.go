package xyzreader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "xyzreader")
	require.NoError(t, err)
	return dir
}

func writePNG(t *testing.T, file string, w, h int, c color.Color) {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, m))
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, ioutil.WriteFile(file, b.Bytes(), 0644))
}

func newReader(t *testing.T, dir string, opts Options) *Reader {
	r, err := New(filepath.Join(dir, "xyzreader.db"), log.New(ioutil.Discard, "", 0), opts)
	require.NoError(t, err)
	return r
}

func TestNewInvalidOptions(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	tables := []func(*Options){
		func(o *Options) { o.Bounds.Width = -1 },
		func(o *Options) { o.DefaultFactor = 0 },
		func(o *Options) { o.Colors = 257 },
		func(o *Options) { o.Workers = 0 },
	}

	for _, f := range tables {
		opts := DefaultOptions()
		f(&opts)
		_, err := New(filepath.Join(dir, "xyzreader.db"), log.New(ioutil.Discard, "", 0), opts)
		assert.Error(t, err)
	}
}
