package browser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/domain/permissions"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
	"github.com/GriffinCanCode/filebrowser/internal/shared/utils"
)

// DeleteFailure records one selected entry that could not be deleted.
type DeleteFailure struct {
	ID   string
	Path string
	Err  error
}

// DeleteReport is the outcome of DeleteSelected.
type DeleteReport struct {
	Deleted []Entry
	Failed  []DeleteFailure
}

// Directory returns the directory the view is bound to once every earlier
// operation has been applied.
func (e *Engine) Directory(ctx context.Context) (string, error) {
	var dir string
	err := e.call(ctx, func() bool {
		dir = e.st.dir
		return false
	})
	return dir, err
}

// CreateFile creates an empty file (or the configured template) named name in
// the current directory and returns its path.
func (e *Engine) CreateFile(ctx context.Context, name string) (string, error) {
	return e.createChild(ctx, "create_file", name, func(path string) error {
		return e.fs.CreateFile(ctx, path, e.opts.newFileContent)
	})
}

// CreateFolder creates a directory named name in the current directory and
// returns its path.
func (e *Engine) CreateFolder(ctx context.Context, name string) (string, error) {
	return e.createChild(ctx, "create_folder", name, func(path string) error {
		return e.fs.Mkdir(ctx, path)
	})
}

func (e *Engine) createChild(ctx context.Context, op, name string, create func(string) error) (string, error) {
	if err := utils.ValidateName(name); err != nil {
		return "", e.failed(monitoring.NewTimer(e.metrics, op), name, err)
	}
	dir, err := e.Directory(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, e.mutate(op, path, func() error { return create(path) })
}

// RenameFile renames path to newName within the same parent and returns the
// new path.
func (e *Engine) RenameFile(ctx context.Context, path, newName string) (string, error) {
	if err := utils.ValidateName(newName); err != nil {
		return "", e.failed(monitoring.NewTimer(e.metrics, "rename"), path, err)
	}
	to := filepath.Join(filepath.Dir(path), newName)
	return to, e.mutate("rename", path, func() error { return e.fs.Rename(ctx, path, to) }, path)
}

// CopyFile duplicates path as newName within the same parent, recursively for
// directories, and returns the path of the copy.
func (e *Engine) CopyFile(ctx context.Context, path, newName string) (string, error) {
	if err := utils.ValidateName(newName); err != nil {
		return "", e.failed(monitoring.NewTimer(e.metrics, "copy"), path, err)
	}
	to := filepath.Join(filepath.Dir(path), newName)
	return to, e.mutate("copy", path, func() error { return e.fs.Copy(ctx, path, to) })
}

// DeleteFile removes path and everything below it.
func (e *Engine) DeleteFile(ctx context.Context, path string) error {
	return e.mutate("delete", path, func() error { return e.fs.Remove(ctx, path) }, path)
}

// DeleteSelected deletes every selected entry, continuing past failures. The
// selection is cleared and the directory reloaded exactly once. The returned
// error combines every failure.
func (e *Engine) DeleteSelected(ctx context.Context) (DeleteReport, error) {
	timer := monitoring.NewTimer(e.metrics, "delete_selected")

	var (
		targets []Entry
		unknown []string
	)
	err := e.call(ctx, func() bool {
		byID := make(map[string]Entry, len(e.st.selection))
		for _, entries := range [][]Entry{e.st.current, e.st.root} {
			for _, entry := range entries {
				if _, ok := e.st.selection[entry.ID]; ok {
					byID[entry.ID] = entry
				}
			}
		}
		for v := range e.st.selection {
			if entry, ok := byID[v]; ok {
				targets = append(targets, entry)
			} else {
				unknown = append(unknown, v)
			}
		}
		return false
	})
	if err != nil {
		return DeleteReport{}, err
	}

	// Parents sort before their children, so a child of a deleted directory
	// is already gone when we reach it.
	slices.SortFunc(targets, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	slices.Sort(unknown)

	var (
		report  DeleteReport
		errs    error
		removed []string
	)
	for _, v := range unknown {
		ferr := filesystem.NewPathError("delete", v, ErrNotFound)
		report.Failed = append(report.Failed, DeleteFailure{ID: v, Err: ferr})
		errs = multierr.Append(errs, ferr)
	}
	for _, entry := range targets {
		if underAny(entry.Path, removed) {
			report.Deleted = append(report.Deleted, entry)
			continue
		}
		var rerr error
		if cerr := ctx.Err(); cerr != nil {
			rerr = cancelled(cerr)
		} else {
			rerr = cancelled(e.fs.Remove(ctx, entry.Path))
		}
		if rerr != nil {
			report.Failed = append(report.Failed, DeleteFailure{ID: entry.ID, Path: entry.Path, Err: rerr})
			errs = multierr.Append(errs, rerr)
			e.log.Warn("Failed to delete selected entry", zap.String("path", entry.Path), zap.Error(rerr))
			continue
		}
		removed = append(removed, entry.Path)
		report.Deleted = append(report.Deleted, entry)
	}

	result := "ok"
	if errs != nil {
		result = "partial"
	}
	timer.Stop(result)
	e.log.Info("Deleted selection",
		zap.Int("deleted", len(report.Deleted)),
		zap.Int("failed", len(report.Failed)),
	)

	e.post(command{apply: func() bool {
		clear(e.st.selection)
		e.forget(removed...)
		e.startLoad(e.st.dir)
		return true
	}})
	return report, errs
}

// Permissions decodes the nine permission bits of path.
func (e *Engine) Permissions(ctx context.Context, path string) (permissions.Set, error) {
	info, err := e.fs.Lstat(ctx, path)
	if err != nil {
		return 0, cancelled(err)
	}
	return permissions.Decode(uint32(info.Mode.Perm())), nil
}

// TogglePermission flips capability c on path and returns the resulting set.
// Symlinks are refused because chmod would change their target.
func (e *Engine) TogglePermission(ctx context.Context, path string, c permissions.Capability) (permissions.Set, error) {
	if !c.Valid() {
		return 0, e.failed(monitoring.NewTimer(e.metrics, "chmod"), path, fmt.Errorf("unknown capability %#o", uint32(c)))
	}

	var set permissions.Set
	err := e.mutateNoReload("chmod", path, func() error {
		info, err := e.fs.Lstat(ctx, path)
		if err != nil {
			return err
		}
		if info.IsSymlink() {
			return &filesystem.PathError{Op: "chmod", Path: path, Kind: ErrIO, Err: errors.New("refusing to chmod a symlink")}
		}
		perm := permissions.Toggle(uint32(info.Mode.Perm()), c)
		mode := fs.FileMode(perm) | info.Mode&(fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky)
		if err := e.fs.Chmod(ctx, path, mode); err != nil {
			return err
		}
		set = permissions.Decode(perm)
		return nil
	})
	return set, err
}

// DirectorySize totals the regular files below path. It returns
// errors.ErrUnsupported when the filesystem cannot do so.
func (e *Engine) DirectorySize(ctx context.Context, path string) (filesystem.Usage, error) {
	du, ok := e.fs.(filesystem.DiskUsager)
	if !ok {
		return filesystem.Usage{}, fmt.Errorf("directory size: %w", errors.ErrUnsupported)
	}
	usage, err := du.DiskUsage(ctx, path)
	return usage, cancelled(err)
}

// mutate runs fn and, on success, drops the given paths from the search
// results and reloads the current directory.
func (e *Engine) mutate(op, path string, fn func() error, gone ...string) error {
	if err := e.mutateNoReload(op, path, fn); err != nil {
		return err
	}
	e.post(command{apply: func() bool {
		e.forget(gone...)
		e.startLoad(e.st.dir)
		return true
	}})
	return nil
}

func (e *Engine) mutateNoReload(op, path string, fn func() error) error {
	timer := monitoring.NewTimer(e.metrics, op)
	if err := fn(); err != nil {
		return e.failed(timer, path, err)
	}
	elapsed := timer.Stop("ok")
	e.log.Debug("Mutation applied", zap.String("op", op), zap.String("path", path), zap.Duration("elapsed", elapsed))
	return nil
}

func (e *Engine) failed(timer *monitoring.Timer, path string, err error) error {
	err = cancelled(err)
	timer.Stop(ErrorKind(err))
	e.log.Warn("Mutation failed", zap.String("op", timer.Op()), zap.String("path", path), zap.Error(err))
	return err
}
