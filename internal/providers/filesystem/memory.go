package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

type memNode struct {
	mode     fs.FileMode
	data     []byte
	target   string
	modTime  time.Time
	birth    time.Time
	children map[string]struct{}
}

// Memory is an in-memory FileSystem. Paths are slash separated and rooted at
// "/". Besides the FileSystem operations it counts calls, injects faults and
// can hold ReadDir on a path until released, which makes asynchronous
// behaviour reproducible.
type Memory struct {
	mu     sync.RWMutex
	nodes  map[string]*memNode
	now    func() time.Time
	calls  map[string]int
	faults map[string]error
	gates  map[string]chan struct{}
}

// NewMemory creates an empty in-memory filesystem containing only "/".
func NewMemory() *Memory {
	m := &Memory{
		nodes:  make(map[string]*memNode),
		now:    time.Now,
		calls:  make(map[string]int),
		faults: make(map[string]error),
		gates:  make(map[string]chan struct{}),
	}
	now := m.now()
	m.nodes["/"] = &memNode{mode: fs.ModeDir | 0o755, modTime: now, birth: now, children: map[string]struct{}{}}
	return m
}

// SetClock replaces the time source used for new nodes.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// ============================================================================
// Test setup helpers
// ============================================================================

// AddDir creates p and any missing parents.
func (m *Memory) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(clean(p))
}

// AddFile creates a file with data, creating missing parents.
func (m *Memory) AddFile(p string, data []byte) {
	m.AddFileTimes(p, data, time.Time{}, time.Time{})
}

// AddFileTimes creates a file with explicit creation and modification times.
// Zero times use the clock.
func (m *Memory) AddFileTimes(p string, data []byte, created, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	m.ensureDir(path.Dir(p))
	now := m.now()
	if created.IsZero() {
		created = now
	}
	if modified.IsZero() {
		modified = now
	}
	m.link(p, &memNode{mode: 0o644, data: append([]byte(nil), data...), birth: created, modTime: modified})
}

// AddSymlink creates a symbolic link at p pointing to target.
func (m *Memory) AddSymlink(p, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	m.ensureDir(path.Dir(p))
	now := m.now()
	m.link(p, &memNode{mode: fs.ModeSymlink | 0o777, target: target, birth: now, modTime: now})
}

// FailOn makes every op on p return err until cleared with a nil err.
func (m *Memory) FailOn(op, p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + " " + clean(p)
	if err == nil {
		delete(m.faults, key)
		return
	}
	m.faults[key] = err
}

// Gate holds ReadDir on p until the returned release func is called or the
// caller's context is cancelled.
func (m *Memory) Gate(p string) (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[clean(p)] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.gates, clean(p))
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many times op was invoked on p.
func (m *Memory) Calls(op, p string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op+" "+clean(p)]
}

// Exists reports whether p is present.
func (m *Memory) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[clean(p)]
	return ok
}

// ReadFile returns the content of a file, for assertions.
func (m *Memory) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[clean(p)]
	if !ok {
		return nil, NewPathError("read", p, ErrNotFound)
	}
	return append([]byte(nil), n.data...), nil
}

// ============================================================================
// FileSystem implementation
// ============================================================================

func (m *Memory) ReadDir(ctx context.Context, p string) ([]string, error) {
	p = clean(p)
	if err := m.enter(ctx, "readdir", p); err != nil {
		return nil, err
	}

	m.mu.RLock()
	gate := m.gates[p]
	m.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[p]
	if !ok {
		return nil, NewPathError("readdir", p, ErrNotFound)
	}
	if !n.mode.IsDir() {
		return nil, &PathError{Op: "readdir", Path: p, Kind: ErrIO, Err: fmt.Errorf("not a directory")}
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Lstat(ctx context.Context, p string) (FileInfo, error) {
	p = clean(p)
	if err := m.enter(ctx, "lstat", p); err != nil {
		return FileInfo{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[p]
	if !ok {
		return FileInfo{}, NewPathError("lstat", p, ErrNotFound)
	}
	return FileInfo{
		Name:      path.Base(p),
		Size:      int64(len(n.data)),
		Mode:      n.mode,
		ModTime:   n.modTime,
		BirthTime: n.birth,
	}, nil
}

func (m *Memory) CreateFile(ctx context.Context, p string, data []byte) error {
	p = clean(p)
	if err := m.enter(ctx, "create", p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkCreate("create", p); err != nil {
		return err
	}
	now := m.now()
	m.link(p, &memNode{mode: 0o644, data: append([]byte(nil), data...), birth: now, modTime: now})
	return nil
}

func (m *Memory) Mkdir(ctx context.Context, p string) error {
	p = clean(p)
	if err := m.enter(ctx, "mkdir", p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkCreate("mkdir", p); err != nil {
		return err
	}
	now := m.now()
	m.link(p, &memNode{mode: fs.ModeDir | 0o755, birth: now, modTime: now, children: map[string]struct{}{}})
	return nil
}

func (m *Memory) Rename(ctx context.Context, from, to string) error {
	from, to = clean(from), clean(to)
	if err := m.enter(ctx, "rename", from); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[from]; !ok {
		return NewPathError("rename", from, ErrNotFound)
	}
	if err := m.checkCreate("rename", to); err != nil {
		return err
	}

	for _, src := range m.subtree(from) {
		n := m.nodes[src]
		delete(m.nodes, src)
		m.nodes[to+strings.TrimPrefix(src, from)] = n
	}
	m.unlink(from)
	m.attach(to)
	return nil
}

func (m *Memory) Copy(ctx context.Context, from, to string) error {
	from, to = clean(from), clean(to)
	if err := m.enter(ctx, "copy", from); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[from]; !ok {
		return NewPathError("copy", from, ErrNotFound)
	}
	if err := m.checkCreate("copy", to); err != nil {
		return err
	}

	now := m.now()
	for _, src := range m.subtree(from) {
		n := *m.nodes[src]
		n.data = append([]byte(nil), n.data...)
		n.birth, n.modTime = now, now
		if n.children != nil {
			children := make(map[string]struct{}, len(n.children))
			for k := range n.children {
				children[k] = struct{}{}
			}
			n.children = children
		}
		m.nodes[to+strings.TrimPrefix(src, from)] = &n
	}
	m.attach(to)
	return nil
}

func (m *Memory) Remove(ctx context.Context, p string) error {
	p = clean(p)
	if err := m.enter(ctx, "remove", p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[p]; !ok {
		return NewPathError("remove", p, ErrNotFound)
	}
	if p == "/" {
		return NewPathError("remove", p, ErrPermissionDenied)
	}
	for _, sub := range m.subtree(p) {
		delete(m.nodes, sub)
	}
	m.unlink(p)
	return nil
}

func (m *Memory) Chmod(ctx context.Context, p string, mode fs.FileMode) error {
	p = clean(p)
	if err := m.enter(ctx, "chmod", p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[p]
	if !ok {
		return NewPathError("chmod", p, ErrNotFound)
	}
	n.mode = n.mode.Type() | (mode &^ fs.ModeType)
	return nil
}

// DiskUsage totals file sizes below p.
func (m *Memory) DiskUsage(ctx context.Context, p string) (Usage, error) {
	p = clean(p)
	if err := m.enter(ctx, "du", p); err != nil {
		return Usage{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.nodes[p]; !ok {
		return Usage{}, NewPathError("du", p, ErrNotFound)
	}
	var usage Usage
	for _, sub := range m.subtree(p) {
		if n := m.nodes[sub]; n.mode.IsRegular() {
			usage.Bytes += int64(len(n.data))
			usage.Files++
		}
	}
	return usage, nil
}

// ============================================================================
// Internals (callers hold mu unless noted)
// ============================================================================

// enter records the call and applies injected faults. It takes mu itself.
func (m *Memory) enter(ctx context.Context, op, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + " " + p
	m.calls[key]++
	if err, ok := m.faults[key]; ok {
		return Classify(op, p, err)
	}
	return nil
}

func (m *Memory) checkCreate(op, p string) error {
	if _, ok := m.nodes[p]; ok {
		return NewPathError(op, p, ErrAlreadyExists)
	}
	parent, ok := m.nodes[path.Dir(p)]
	if !ok {
		return NewPathError(op, path.Dir(p), ErrNotFound)
	}
	if !parent.mode.IsDir() {
		return &PathError{Op: op, Path: p, Kind: ErrIO, Err: fmt.Errorf("parent is not a directory")}
	}
	return nil
}

func (m *Memory) ensureDir(p string) {
	if _, ok := m.nodes[p]; ok {
		return
	}
	m.ensureDir(path.Dir(p))
	now := m.now()
	m.link(p, &memNode{mode: fs.ModeDir | 0o755, birth: now, modTime: now, children: map[string]struct{}{}})
}

func (m *Memory) link(p string, n *memNode) {
	m.nodes[p] = n
	m.attach(p)
}

func (m *Memory) attach(p string) {
	if parent, ok := m.nodes[path.Dir(p)]; ok && parent.children != nil {
		parent.children[path.Base(p)] = struct{}{}
	}
}

func (m *Memory) unlink(p string) {
	if parent, ok := m.nodes[path.Dir(p)]; ok && parent.children != nil {
		delete(parent.children, path.Base(p))
	}
}

// subtree returns p and every path below it, parents before children.
func (m *Memory) subtree(p string) []string {
	out := []string{p}
	n := m.nodes[p]
	if n == nil || n.children == nil {
		return out
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, m.subtree(path.Join(p, name))...)
	}
	return out
}

func clean(p string) string {
	return path.Clean("/" + p)
}
