package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// Entry is an immutable snapshot of one filesystem node.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"is_directory"`
	IsSymlink   bool      `json:"is_symlink"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// SortOption selects the comparator used for listings and the projection.
type SortOption string

const (
	SortByName     SortOption = "name"
	SortByCreated  SortOption = "created"
	SortByModified SortOption = "modified"
)

// ParseSortOption validates s.
func ParseSortOption(s string) (SortOption, error) {
	switch opt := SortOption(s); opt {
	case SortByName, SortByCreated, SortByModified:
		return opt, nil
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// SearchScope selects which collection the projection is computed from.
type SearchScope string

const (
	ScopeCurrent SearchScope = "current"
	ScopeRoot    SearchScope = "root"
)

// ParseSearchScope validates s.
func ParseSearchScope(s string) (SearchScope, error) {
	switch scope := SearchScope(s); scope {
	case ScopeCurrent, ScopeRoot:
		return scope, nil
	}
	return "", fmt.Errorf("unknown search scope %q", s)
}

// describer turns paths into Entries. Metadata failures never fail the
// caller: the entry keeps its name and path and gets default values.
type describer struct {
	fs  filesystem.FileSystem
	ids func(path string) string
	now func() time.Time
}

func (d describer) describe(ctx context.Context, path string) Entry {
	entry := Entry{
		ID:   d.ids(path),
		Name: filepath.Base(path),
		Path: path,
	}

	info, err := d.fs.Lstat(ctx, path)
	if err != nil {
		now := d.now()
		entry.CreatedAt, entry.ModifiedAt = now, now
		return entry
	}

	entry.IsDirectory = info.IsDir()
	entry.IsSymlink = info.IsSymlink()
	if info.Mode.IsRegular() {
		entry.Size = info.Size
	}
	entry.ModifiedAt = info.ModTime
	entry.CreatedAt = info.BirthTime
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = info.ModTime
	}
	return entry
}
