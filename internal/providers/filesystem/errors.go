package filesystem

import (
	"context"
	"errors"
	"io/fs"
)

// Error taxonomy shared by every FileSystem implementation.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIO               = errors.New("i/o error")
)

// PathError records a failed operation together with its taxonomy kind.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path + ": " + e.Kind.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewPathError builds a PathError of the given kind without an underlying cause.
func NewPathError(op, path string, kind error) error {
	return &PathError{Op: op, Path: path, Kind: kind}
}

// Classify maps err onto the taxonomy. Already classified errors and context
// errors are returned unchanged.
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	kind := ErrIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	}
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}

// Kind returns the taxonomy sentinel carried by err, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrAlreadyExists, ErrPermissionDenied, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
