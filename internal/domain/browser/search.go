package browser

import (
	"context"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// Searcher walks a subtree depth-first and streams every entry it finds.
// Symlinks are reported but never descended into.
type Searcher struct {
	describer
	excludes []string
	log      *zap.Logger
}

// NewSearcher creates a searcher. Invalid exclude patterns are dropped.
func NewSearcher(fsys filesystem.FileSystem, opts ...Option) *Searcher {
	o := buildOptions(opts)
	return newSearcher(fsys, o, func(string) string { return o.ids.NewEntryID().String() })
}

func newSearcher(fsys filesystem.FileSystem, o options, ids func(string) string) *Searcher {
	log := o.logger.Named("search")
	excludes := make([]string, 0, len(o.excludes))
	for _, pattern := range o.excludes {
		if !doublestar.ValidatePattern(pattern) {
			log.Warn("Ignoring invalid exclude pattern", zap.String("pattern", pattern))
			continue
		}
		excludes = append(excludes, pattern)
	}

	return &Searcher{
		describer: describer{fs: fsys, ids: ids, now: o.now},
		excludes:  excludes,
		log:       log,
	}
}

// Excluded reports whether the walk stops at directory path.
func (s *Searcher) Excluded(path string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}

// Search streams the entries below root (root itself is not reported). The
// channel is closed when the walk completes or ctx is cancelled; nothing is
// sent after cancellation is observed.
func (s *Searcher) Search(ctx context.Context, root string) <-chan Entry {
	out := make(chan Entry)
	go func() {
		defer close(out)
		s.walk(ctx, filepath.Clean(root), out)
	}()
	return out
}

// walk returns false once the search has been cancelled.
func (s *Searcher) walk(ctx context.Context, dir string, out chan<- Entry) bool {
	names, err := s.fs.ReadDir(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.log.Debug("Skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
		return true
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return false
		}

		entry := s.describe(ctx, filepath.Join(dir, name))
		select {
		case <-ctx.Done():
			return false
		default:
		}
		select {
		case out <- entry:
		case <-ctx.Done():
			return false
		}

		if entry.IsDirectory && !entry.IsSymlink && !s.Excluded(entry.Path) {
			if !s.walk(ctx, entry.Path, out) {
				return false
			}
		}
	}
	return true
}
