package browser

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// ListResult is the outcome of one asynchronous listing.
type ListResult struct {
	Dir     string
	Entries []Entry
	Err     error
}

// Lister enumerates the immediate children of one directory.
type Lister struct {
	describer
	log *zap.Logger
}

// NewLister creates a lister. Each call to List assigns fresh entry ids.
func NewLister(fsys filesystem.FileSystem, opts ...Option) *Lister {
	o := buildOptions(opts)
	return newLister(fsys, o, func(string) string { return o.ids.NewEntryID().String() })
}

func newLister(fsys filesystem.FileSystem, o options, ids func(string) string) *Lister {
	return &Lister{
		describer: describer{fs: fsys, ids: ids, now: o.now},
		log:       o.logger.Named("lister"),
	}
}

// List returns the children of dir in the order the filesystem reports them.
// Failing to read dir fails the call; failing to describe a child does not.
func (l *Lister) List(ctx context.Context, dir string) ([]Entry, error) {
	names, err := l.fs.ReadDir(ctx, dir)
	if err != nil {
		return nil, cancelled(err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		entries = append(entries, l.describe(ctx, filepath.Join(dir, name)))
	}

	l.log.Debug("Listed directory", zap.String("dir", dir), zap.Int("entries", len(entries)))
	return entries, nil
}

// ListAsync runs List on a background goroutine. The returned channel
// receives exactly one result and is then closed.
func (l *Lister) ListAsync(ctx context.Context, dir string) <-chan ListResult {
	out := make(chan ListResult, 1)
	go func() {
		defer close(out)
		entries, err := l.List(ctx, dir)
		out <- ListResult{Dir: dir, Entries: entries, Err: err}
	}()
	return out
}
