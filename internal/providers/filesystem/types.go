package filesystem

import (
	"context"
	"io/fs"
	"time"
)

// FileInfo represents the metadata of one node. Symlinks are not resolved.
type FileInfo struct {
	Name    string      `json:"name"`
	Size    int64       `json:"size"`
	Mode    fs.FileMode `json:"mode"`
	ModTime time.Time   `json:"modified"`
	// BirthTime is zero when the platform does not record creation time.
	BirthTime time.Time `json:"created,omitempty"`
}

// IsDir reports whether the node is a directory (never true for a symlink).
func (i FileInfo) IsDir() bool { return i.Mode.IsDir() }

// IsSymlink reports whether the node is a symbolic link.
func (i FileInfo) IsSymlink() bool { return i.Mode&fs.ModeSymlink != 0 }

// FileSystem is the set of operations the browser performs. Implementations
// return errors classified with Classify so callers can match the taxonomy
// sentinels with errors.Is.
type FileSystem interface {
	// ReadDir returns the names of the immediate children of path, sorted.
	ReadDir(ctx context.Context, path string) ([]string, error)
	// Lstat describes path without following a final symlink.
	Lstat(ctx context.Context, path string) (FileInfo, error)
	// CreateFile creates a new regular file and fails if path exists.
	CreateFile(ctx context.Context, path string, data []byte) error
	// Mkdir creates a single directory and fails if path exists.
	Mkdir(ctx context.Context, path string) error
	// Rename moves from to to and fails if to exists.
	Rename(ctx context.Context, from, to string) error
	// Copy duplicates from (recursively for directories) and fails if to exists.
	Copy(ctx context.Context, from, to string) error
	// Remove deletes path and everything below it.
	Remove(ctx context.Context, path string) error
	// Chmod replaces the mode bits of path.
	Chmod(ctx context.Context, path string, mode fs.FileMode) error
}

// Usage is the result of totalling a subtree.
type Usage struct {
	Bytes int64 `json:"bytes"`
	Files int   `json:"files"`
}

// DiskUsager is implemented by filesystems that can total a subtree.
type DiskUsager interface {
	DiskUsage(ctx context.Context, path string) (Usage, error)
}

// ContentInfo describes sniffed file content.
type ContentInfo struct {
	MIME      string `json:"mime_type"`
	Extension string `json:"extension,omitempty"`
	Charset   string `json:"charset,omitempty"`
	IsText    bool   `json:"is_text"`
}

// ContentDetector is implemented by filesystems that can sniff file content.
type ContentDetector interface {
	DetectContent(ctx context.Context, path string) (ContentInfo, error)
}
