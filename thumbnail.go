package xyzreader

import (
	"io"

	"github.com/bodgit/xyzreader/bitmap"
	"github.com/bodgit/xyzreader/thumbnail"
)

func (r *Reader) encodeThumbnail(w io.Writer, s bitmap.Source, id string) (int, error) {
	m, factor, err := bitmap.DecodeSource(s, id, r.opts.Bounds, r.opts.DefaultFactor, r.opts.Interpolator)
	if err != nil {
		return 0, err
	}

	if err := thumbnail.Encode(w, m, r.opts.thumbnailOptions()); err != nil {
		return 0, err
	}

	return factor, nil
}

// Thumbnail writes a PNG thumbnail of the photo of the article with the given
// ID to w. It returns the sample factor the photo was decoded with.
func (r *Reader) Thumbnail(w io.Writer, id string) (int, error) {
	factor, err := r.encodeThumbnail(w, r.db, id)
	if err != nil {
		return 0, err
	}
	r.logger.Printf("Thumbnail for \"%s\" decoded with sample factor %d\n", id, factor)
	return factor, nil
}
