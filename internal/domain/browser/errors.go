package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
	"github.com/GriffinCanCode/filebrowser/internal/shared/utils"
)

// Errors in addition to the filesystem taxonomy.
var (
	ErrNotFound         = filesystem.ErrNotFound
	ErrAlreadyExists    = filesystem.ErrAlreadyExists
	ErrPermissionDenied = filesystem.ErrPermissionDenied
	ErrIO               = filesystem.ErrIO
	ErrCancelled        = errors.New("cancelled")
	ErrInvalidName      = utils.ErrInvalidName
	ErrNotDirectory     = errors.New("not a directory")
	ErrClosed           = errors.New("view closed")
)

// cancelled tags context errors with ErrCancelled and leaves others alone.
func cancelled(err error) error {
	if err == nil || errors.Is(err, ErrCancelled) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return err
}

// ErrorKind names the taxonomy class of err for logs, metrics and API
// responses. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrNotDirectory):
		return "not_directory"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, errors.ErrUnsupported):
		return "unsupported"
	default:
		return "io"
	}
}

// OpError is an asynchronous failure surfaced on the snapshot.
type OpError struct {
	Op      string    `json:"op"`
	Path    string    `json:"path"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func newOpError(op, path string, err error, at time.Time) *OpError {
	return &OpError{Op: op, Path: path, Kind: ErrorKind(err), Message: err.Error(), At: at}
}
