/*
Package xyzreader is a library for maintaining a catalog of articles and the
thumbnails of their photos.

Thumbnails are produced by reading only the header of each photo to learn its
size, computing a sample factor from that and the target bounds, then
decoding the photo and scaling it down by that factor.
*/
package xyzreader

import (
	"errors"
	"log"

	"github.com/bodgit/xyzreader/bitmap"
	"github.com/bodgit/xyzreader/sample"
	"github.com/bodgit/xyzreader/thumbnail"
)

// Options control how thumbnails are produced.
type Options struct {
	// Bounds is the target thumbnail size. A zero width or height means
	// DefaultFactor is always used.
	Bounds sample.Bounds
	// DefaultFactor is the sample factor used when none can be computed.
	DefaultFactor int
	// Colors limits the thumbnail palette, zero disables color reduction.
	Colors int
	// Dither enables error diffusion when reducing colors.
	Dither bool
	// Interpolator scales the decoded pixels.
	Interpolator bitmap.Interpolator
	// Workers is the number of directories scanned concurrently.
	Workers int
	// MaxSize is the largest image file in bytes that will be scanned.
	MaxSize int64
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	i, _ := bitmap.ParseInterpolator("approx-bilinear")
	return Options{
		Bounds:        sample.Bounds{Width: 128, Height: 128},
		DefaultFactor: sample.DefaultFactor,
		Interpolator:  i,
		Workers:       10,
		MaxSize:       16 << (10 * 2),
	}
}

func (o Options) validate() error {
	switch {
	case o.Bounds.Width < 0 || o.Bounds.Height < 0:
		return errors.New("negative thumbnail bounds")
	case o.DefaultFactor < 1:
		return errors.New("default factor must be at least 1")
	case o.Colors < 0 || o.Colors > thumbnail.MaxColors:
		return errors.New("colors must be between 0 and 256")
	case o.Workers < 1:
		return errors.New("at least one worker is required")
	}
	return nil
}

func (o Options) thumbnailOptions() *thumbnail.Options {
	return &thumbnail.Options{
		Colors: o.Colors,
		Dither: o.Dither,
	}
}

// Reader ties together the article database and thumbnail options.
type Reader struct {
	db     *ArticleDB
	logger *log.Logger
	opts   Options
}

// New opens the article database in file and returns a Reader using it.
func New(file string, logger *log.Logger, opts Options) (*Reader, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db, err := NewArticleDB(file)
	if err != nil {
		return nil, err
	}

	return &Reader{
		db:     db,
		logger: logger,
		opts:   opts,
	}, nil
}

// DB returns the underlying article database.
func (r *Reader) DB() *ArticleDB {
	return r.db
}

// ImportXML replaces the article catalog with the contents of file.
func (r *Reader) ImportXML(file string) error {
	n, err := r.db.ImportXML(file)
	if err != nil {
		return err
	}
	r.logger.Printf("Imported %d articles from \"%s\"\n", n, file)
	return nil
}

// Close closes the article database.
func (r *Reader) Close() error {
	return r.db.Close()
}
