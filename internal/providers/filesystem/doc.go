// Package filesystem provides the filesystem operations the browser depends on.
//
// The package is organized into:
//   - types: FileSystem interface, FileInfo, optional DiskUsager and ContentDetector
//   - errors: the error taxonomy and Classify for raw OS errors
//   - local: the host implementation (exclusive create, no-replace rename)
//   - operations: recursive copy for the host implementation
//   - metadata: disk usage (fastwalk) and content sniffing (mimetype, chardet)
//   - memory: an in-memory implementation with call counting and fault injection
//
// All operations:
//   - Never follow a final symlink when describing a node
//   - Refuse to replace an existing destination
//   - Return errors matching ErrNotFound, ErrAlreadyExists, ErrPermissionDenied or ErrIO
//
// Example Usage:
//
//	fsys := filesystem.NewLocal()
//	names, err := fsys.ReadDir(ctx, "/var")
//	if errors.Is(err, filesystem.ErrPermissionDenied) {
//		// ...
//	}
package filesystem
