package filesystem

import (
	"context"
	"io/fs"
	"os"
	"sort"
)

// Local is the FileSystem backed by the host operating system.
type Local struct{}

// NewLocal creates a local filesystem.
func NewLocal() *Local {
	return &Local{}
}

// ReadDir lists child names of path, sorted by name.
func (l *Local) ReadDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Classify("readdir", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, Classify("readdir", path, err)
	}
	sort.Strings(names)
	return names, nil
}

// Lstat describes path without following symlinks.
func (l *Local) Lstat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return FileInfo{}, Classify("lstat", path, err)
	}

	return FileInfo{
		Name:      info.Name(),
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
		BirthTime: birthTime(path, info),
	}, nil
}

// CreateFile creates path exclusively and writes data into it.
func (l *Local) CreateFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Classify("create", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return Classify("write", path, err)
	}
	return Classify("close", path, f.Close())
}

// Mkdir creates a single directory.
func (l *Local) Mkdir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify("mkdir", path, os.Mkdir(path, 0o755))
}

// Rename moves from to to without replacing an existing destination.
func (l *Local) Rename(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Lstat(from); err != nil {
		return Classify("rename", from, err)
	}
	return renameNoReplace(from, to)
}

// Remove deletes path recursively. A missing path is reported as ErrNotFound.
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Lstat(path); err != nil {
		return Classify("remove", path, err)
	}
	return Classify("remove", path, os.RemoveAll(path))
}

// Chmod replaces the mode bits of path.
func (l *Local) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify("chmod", path, os.Chmod(path, mode))
}
