package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// Navigator is a stack of views. Entering a directory opens a new engine on
// top; leaving it closes that engine and uncovers the one below, whose state
// is untouched.
type Navigator struct {
	mu      sync.Mutex
	fs      filesystem.FileSystem
	opts    []Option
	stack   []*Engine
	closed  bool
	changed chan struct{}
}

// NewNavigator opens a navigator rooted at dir.
func NewNavigator(ctx context.Context, fsys filesystem.FileSystem, dir string, opts ...Option) (*Navigator, error) {
	n := &Navigator{fs: fsys, opts: opts, changed: make(chan struct{})}
	if _, err := n.Push(ctx, dir); err != nil {
		return nil, err
	}
	return n, nil
}

// Push opens a view of path on top of the stack.
func (n *Navigator) Push(ctx context.Context, path string) (*Engine, error) {
	path = filepath.Clean(path)
	info, err := n.fs.Lstat(ctx, path)
	if err != nil {
		return nil, cancelled(err)
	}
	// A symlink may point at a directory; its listing reports otherwise.
	if !info.IsDir() && !info.IsSymlink() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}
	e := Open(n.fs, path, n.opts...)
	n.stack = append(n.stack, e)
	n.notify()
	return e, nil
}

// Pop closes the top view and returns the one below it. The root view is
// never popped; ok is false in that case.
func (n *Navigator) Pop() (*Engine, bool) {
	n.mu.Lock()
	if len(n.stack) <= 1 {
		n.mu.Unlock()
		return n.current(), false
	}
	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	below := n.stack[len(n.stack)-1]
	n.notify()
	n.mu.Unlock()

	top.Close()
	return below, true
}

// Changed returns a channel that is closed the next time the top view
// changes. Callers fetch a fresh channel after each change.
func (n *Navigator) Changed() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.changed
}

// notify wakes Changed waiters. Callers hold n.mu.
func (n *Navigator) notify() {
	close(n.changed)
	n.changed = make(chan struct{})
}

// Current returns the top view, or nil once closed.
func (n *Navigator) Current() *Engine {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current()
}

func (n *Navigator) current() *Engine {
	if len(n.stack) == 0 {
		return nil
	}
	return n.stack[len(n.stack)-1]
}

// Depth returns the number of open views.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}

// Path returns the directory of every view from the root up.
func (n *Navigator) Path() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	dirs := make([]string, len(n.stack))
	for i, e := range n.stack {
		dirs[i] = e.Snapshot().Directory
	}
	return dirs
}

// Close closes every view, top first.
func (n *Navigator) Close() {
	n.mu.Lock()
	stack := n.stack
	n.stack = nil
	if !n.closed {
		n.notify()
	}
	n.closed = true
	n.mu.Unlock()

	for i := len(stack) - 1; i >= 0; i-- {
		stack[i].Close()
	}
}
