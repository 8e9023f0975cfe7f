package xyzreader

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/xyzreader/bitmap"
	"github.com/bodgit/xyzreader/index"
)

var errWalkCancelled = errors.New("walk cancelled")

func hidden(info os.FileInfo) bool {
	return info.Name()[0] == '.'
}

func (r *Reader) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if ctx.Err() != nil {
				return errWalkCancelled
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if hidden(info) && dir != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a directory
			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errWalkCancelled
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (r *Reader) indexDirectory(dir string) (*index.DB, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	db := index.New()
	for _, info := range infos {
		// Only regular, visible image files directly in this directory
		if hidden(info) || !info.Mode().IsRegular() || !bitmap.IsImage(info.Name()) {
			continue
		}

		if info.Size() > r.opts.MaxSize {
			r.logger.Printf("Skipping \"%s\", %d bytes is too large\n", filepath.Join(dir, info.Name()), info.Size())
			continue
		}

		b := new(bytes.Buffer)
		factor, err := r.encodeThumbnail(b, bitmap.Dir(dir), info.Name())
		if err != nil {
			r.logger.Printf("Unable to thumbnail \"%s\": %s\n", filepath.Join(dir, info.Name()), err)
			continue
		}
		r.logger.Printf("Thumbnailed \"%s\" with sample factor %d\n", filepath.Join(dir, info.Name()), factor)

		if err := db.Set(index.CRCFilename(info.Name()), b.Bytes()); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func writeIndex(dir string, db *index.DB) error {
	b, err := db.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, index.Filename))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(b); err != nil {
		return err
	}

	return f.Close()
}

func (r *Reader) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			// Keep draining so the walk can finish once cancelled
			if ctx.Err() != nil {
				continue
			}

			db, err := r.indexDirectory(dir)
			if err != nil {
				errc <- err
				return
			}

			if db.Length() > 0 {
				if err := writeIndex(dir, db); err != nil {
					errc <- err
					return
				}
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	var first error
	for err := range errc {
		if err != nil && first == nil {
			first = err
			// Stop the walk so the remaining workers drain and exit
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree rooted at path and writes a thumbnail index
// into every directory that contains at least one image that could be
// thumbnailed.
func (r *Reader) Scan(path string) error {
	return r.ScanContext(context.Background(), path)
}

// ScanContext is like Scan but stops walking the tree when ctx is done.
func (r *Reader) ScanContext(ctx context.Context, path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := r.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < r.opts.Workers; i++ {
		errc, err := r.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}
