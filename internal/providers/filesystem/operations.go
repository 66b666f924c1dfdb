package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Copy duplicates from into to. Directories are copied recursively, symlinks
// are recreated rather than followed. The destination must not exist; a
// failed copy removes whatever it had written.
func (l *Local) Copy(ctx context.Context, from, to string) error {
	info, err := os.Lstat(from)
	if err != nil {
		return Classify("copy", from, err)
	}
	if _, err := os.Lstat(to); err == nil {
		return NewPathError("copy", to, ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return Classify("copy", to, err)
	}
	if err := copyNode(ctx, from, to, info); err != nil {
		_ = os.RemoveAll(to)
		return err
	}
	return nil
}

func copyNode(ctx context.Context, from, to string, info os.FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(from)
		if err != nil {
			return Classify("readlink", from, err)
		}
		return Classify("symlink", to, os.Symlink(target, to))

	case info.IsDir():
		if err := os.Mkdir(to, info.Mode().Perm()); err != nil {
			return Classify("mkdir", to, err)
		}
		entries, err := os.ReadDir(from)
		if err != nil {
			return Classify("readdir", from, err)
		}
		for _, entry := range entries {
			child, err := entry.Info()
			if err != nil {
				return Classify("lstat", filepath.Join(from, entry.Name()), err)
			}
			if err := copyNode(ctx, filepath.Join(from, entry.Name()), filepath.Join(to, entry.Name()), child); err != nil {
				return err
			}
		}
		return nil

	default:
		return copyRegular(from, to, info.Mode().Perm())
	}
}

func copyRegular(from, to string, perm os.FileMode) error {
	src, err := os.Open(from)
	if err != nil {
		return Classify("open", from, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return Classify("create", to, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return Classify("copy", to, err)
	}
	return Classify("close", to, dst.Close())
}
