package browser

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

const inboxSize = 64

// command is applied on the engine goroutine. apply reports whether the view
// state changed; applied, when set, is closed after the resulting snapshot
// has been published.
type command struct {
	apply   func() bool
	applied chan struct{}
}

// state is owned by the engine goroutine and never touched elsewhere.
type state struct {
	dir       string
	current   []Entry
	root      []Entry
	sort      SortOption
	scope     SearchScope
	query     string
	selection map[string]struct{}
	err       *OpError
	version   uint64

	loading      bool
	loadGen      uint64
	cancelLoad   context.CancelFunc
	searching    bool
	searchGen    uint64
	cancelSearch context.CancelFunc
	searchStart  time.Time
}

// Engine owns the view state of one directory view. All state transitions
// run on a single goroutine; listings and searches run in the background and
// hand their results back through the inbox. Public methods are safe for
// concurrent use.
type Engine struct {
	fs       filesystem.FileSystem
	opts     options
	log      *zap.Logger
	metrics  *monitoring.Metrics
	viewID   id.ViewID
	ids      *idRegistry
	lister   *Lister
	searcher *Searcher

	inbox  chan command
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	snap atomic.Pointer[Snapshot]
	subs *broadcaster

	st state
}

// Open creates an engine bound to dir and starts loading it.
func Open(fsys filesystem.FileSystem, dir string, opts ...Option) *Engine {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	viewID := id.NewViewID()

	e := &Engine{
		fs:      fsys,
		opts:    o,
		log:     o.logger.Named("view").With(zap.String("view_id", viewID.String())),
		metrics: o.metrics,
		viewID:  viewID,
		ids:     newIDRegistry(o.ids),
		inbox:   make(chan command, inboxSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		subs:    newBroadcaster(),
		st: state{
			dir:       filepath.Clean(dir),
			sort:      SortByName,
			scope:     ScopeCurrent,
			selection: make(map[string]struct{}),
		},
	}
	e.lister = newLister(fsys, o, e.ids.idFor)
	e.searcher = newSearcher(fsys, o, e.ids.searchID)

	e.startLoad(e.st.dir)
	e.publish()
	e.metrics.RecordViewOpened()

	go e.run()
	return e
}

// ViewID identifies this engine.
func (e *Engine) ViewID() id.ViewID { return e.viewID }

// Snapshot returns the latest published state.
func (e *Engine) Snapshot() *Snapshot { return e.snap.Load() }

// Subscribe returns a channel that receives the current snapshot followed by
// every later one a reader keeps up with. Call the returned func to stop.
func (e *Engine) Subscribe() (<-chan *Snapshot, func()) {
	ch := e.subs.subscribe(e.Snapshot())
	return ch, func() { e.subs.unsubscribe(ch) }
}

// Subscribers returns the number of active subscriptions.
func (e *Engine) Subscribers() int { return e.subs.count() }

// Done is closed once the engine has shut down.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Close cancels background work, waits for it to stop and closes every
// subscription. It is idempotent.
func (e *Engine) Close() {
	e.once.Do(func() {
		e.cancel()
		<-e.done
		e.wg.Wait()
		e.subs.close()
		e.metrics.RecordViewClosed()
		e.log.Debug("View closed")
	})
}

// ============================================================================
// Public operations
// ============================================================================

// SetDirectory replaces the current listing with the contents of path. Any
// listing still in flight is cancelled and its result discarded.
func (e *Engine) SetDirectory(path string) {
	path = filepath.Clean(path)
	e.post(command{apply: func() bool {
		e.startLoad(path)
		return true
	}})
}

// Reload lists the current directory again.
func (e *Engine) Reload() {
	e.post(command{apply: func() bool {
		e.startLoad(e.st.dir)
		return true
	}})
}

// SetSearchScope switches the projection source. Switching to ScopeRoot
// restarts the recursive search; switching to ScopeCurrent cancels it.
func (e *Engine) SetSearchScope(scope SearchScope) {
	e.post(command{apply: func() bool {
		if scope == ScopeRoot {
			e.startSearch()
		} else {
			e.stopSearch()
		}
		e.st.scope = scope
		return true
	}})
}

// SetSortOption re-sorts both collections.
func (e *Engine) SetSortOption(opt SortOption) {
	e.post(command{apply: func() bool {
		if e.st.sort == opt {
			return false
		}
		e.st.sort = opt
		e.st.current = Sorted(e.st.current, opt)
		e.st.root = Sorted(e.st.root, opt)
		return true
	}})
}

// SetSearchQuery filters the projection by case-insensitive name substring.
func (e *Engine) SetSearchQuery(query string) {
	e.post(command{apply: func() bool {
		if e.st.query == query {
			return false
		}
		e.st.query = query
		return true
	}})
}

// WaitIdle blocks until every operation issued before the call has been
// applied and no listing or search is running.
func (e *Engine) WaitIdle(ctx context.Context) error {
	updates, stop := e.Subscribe()
	defer stop()

	if err := e.call(ctx, func() bool { return false }); err != nil {
		return err
	}
	for {
		if !e.Snapshot().IsSearching {
			return nil
		}
		select {
		case _, ok := <-updates:
			if !ok {
				return ErrClosed
			}
		case <-ctx.Done():
			return cancelled(ctx.Err())
		}
	}
}

// ============================================================================
// Loop
// ============================================================================

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case cmd := <-e.inbox:
			if cmd.apply() {
				e.publish()
			}
			if cmd.applied != nil {
				close(cmd.applied)
			}
		case <-e.ctx.Done():
			e.shutdown()
			return
		}
	}
}

func (e *Engine) shutdown() {
	if e.st.cancelLoad != nil {
		e.st.cancelLoad()
	}
	if e.st.cancelSearch != nil {
		e.st.cancelSearch()
	}
}

// post queues cmd and reports whether the engine accepted it.
func (e *Engine) post(cmd command) bool {
	select {
	case <-e.ctx.Done():
		return false
	default:
	}
	select {
	case e.inbox <- cmd:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// call runs fn on the engine goroutine and waits until it has been applied.
func (e *Engine) call(ctx context.Context, fn func() bool) error {
	applied := make(chan struct{})
	if !e.post(command{apply: fn, applied: applied}) {
		return ErrClosed
	}
	select {
	case <-applied:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return cancelled(ctx.Err())
	}
}

func (e *Engine) publish() {
	st := &e.st
	st.version++

	selection := make([]string, 0, len(st.selection))
	for v := range st.selection {
		selection = append(selection, v)
	}
	slices.Sort(selection)

	s := &Snapshot{
		ViewID:      e.viewID.String(),
		Version:     st.version,
		Directory:   st.dir,
		SortOption:  st.sort,
		SearchScope: st.scope,
		SearchQuery: st.query,
		IsSearching: st.loading || st.searching,
		Current:     st.current,
		Root:        st.root,
		Selection:   selection,
		Err:         st.err,
	}
	e.snap.Store(s)
	e.subs.publish(s)
}

// ============================================================================
// Directory loading
// ============================================================================

func (e *Engine) startLoad(dir string) {
	st := &e.st
	if st.cancelLoad != nil {
		st.cancelLoad()
	}
	st.loadGen++
	gen := st.loadGen
	st.dir = dir
	st.current = nil
	st.loading = true
	st.err = nil

	ctx, cancel := context.WithCancel(e.ctx)
	st.cancelLoad = cancel
	start := time.Now()
	results := e.lister.ListAsync(ctx, dir)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		res := <-results
		e.post(command{apply: func() bool {
			return e.finishLoad(gen, res, time.Since(start))
		}})
	}()
}

func (e *Engine) finishLoad(gen uint64, res ListResult, elapsed time.Duration) bool {
	st := &e.st
	if gen != st.loadGen {
		return false
	}
	st.cancelLoad()
	st.cancelLoad = nil
	st.loading = false

	if res.Err != nil {
		st.current = nil
		e.ids.relist(nil)
		st.err = newOpError("list", res.Dir, res.Err, e.opts.now())
		e.metrics.RecordDirectoryLoad(ErrorKind(res.Err), elapsed)
		e.log.Warn("Failed to list directory", zap.String("dir", res.Dir), zap.Error(res.Err))
		return true
	}

	Sort(res.Entries, st.sort)
	st.current = res.Entries
	e.ids.relist(st.current)
	e.pruneSelection()
	e.metrics.RecordDirectoryLoad("ok", elapsed)
	e.log.Debug("Directory loaded",
		zap.String("dir", res.Dir),
		zap.Int("entries", len(res.Entries)),
		zap.Duration("elapsed", elapsed),
	)
	return true
}

// ============================================================================
// Root search
// ============================================================================

func (e *Engine) startSearch() {
	e.stopSearch()

	st := &e.st
	gen := st.searchGen
	if dropped := e.ids.sweep(e.selectedPaths()); dropped > 0 {
		e.log.Debug("Dropped ids of earlier search", zap.Int("ids", dropped))
	}
	st.root = nil
	st.searching = true
	st.searchStart = time.Now()

	ctx, cancel := context.WithCancel(e.ctx)
	st.cancelSearch = cancel
	found := e.searcher.Search(ctx, e.opts.searchRoot)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.pump(gen, found)
	}()

	e.log.Info("Root search started", zap.String("root", e.opts.searchRoot))
}

// stopSearch cancels the running search. Bumping the generation guarantees
// that batches already on their way are discarded.
func (e *Engine) stopSearch() {
	st := &e.st
	st.searchGen++
	if st.cancelSearch != nil {
		st.cancelSearch()
		st.cancelSearch = nil
	}
	if st.searching {
		st.searching = false
		e.metrics.RecordSearch("cancelled", time.Since(st.searchStart))
		e.log.Info("Root search cancelled", zap.Int("entries", len(st.root)))
	}
}

// pump batches discovered entries and hands them to the engine goroutine.
// It only returns once the searcher has closed found.
func (e *Engine) pump(gen uint64, found <-chan Entry) {
	defer func() {
		for range found {
		}
	}()

	ticker := time.NewTicker(e.opts.flushInterval)
	defer ticker.Stop()

	batch := make([]Entry, 0, e.opts.batchSize)
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		b := batch
		batch = make([]Entry, 0, e.opts.batchSize)
		return e.post(command{apply: func() bool { return e.appendBatch(gen, b) }})
	}

	for {
		select {
		case entry, ok := <-found:
			if !ok {
				if flush() {
					e.post(command{apply: func() bool { return e.finishSearch(gen) }})
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= e.opts.batchSize && !flush() {
				return
			}
		case <-ticker.C:
			if !flush() {
				return
			}
		}
	}
}

func (e *Engine) appendBatch(gen uint64, batch []Entry) bool {
	st := &e.st
	if gen != st.searchGen {
		return false
	}
	st.root = append(st.root, batch...)
	e.metrics.RecordSearchEntries(len(batch))
	return true
}

func (e *Engine) finishSearch(gen uint64) bool {
	st := &e.st
	if gen != st.searchGen {
		return false
	}
	st.cancelSearch()
	st.cancelSearch = nil
	st.searching = false
	e.metrics.RecordSearch("ok", time.Since(st.searchStart))
	e.log.Info("Root search finished",
		zap.Int("entries", len(st.root)),
		zap.Duration("elapsed", time.Since(st.searchStart)),
	)
	return true
}

// ============================================================================
// Helpers shared by mutations and selection
// ============================================================================

// pruneSelection drops ids no longer present in either collection.
func (e *Engine) pruneSelection() {
	if len(e.st.selection) == 0 {
		return
	}
	present := make(map[string]struct{}, len(e.st.current)+len(e.st.root))
	for _, entries := range [][]Entry{e.st.current, e.st.root} {
		for _, entry := range entries {
			present[entry.ID] = struct{}{}
		}
	}
	for v := range e.st.selection {
		if _, ok := present[v]; !ok {
			delete(e.st.selection, v)
		}
	}
}

// selectedPaths returns the paths of the selected entries.
func (e *Engine) selectedPaths() map[string]struct{} {
	paths := make(map[string]struct{}, len(e.st.selection))
	if len(e.st.selection) == 0 {
		return paths
	}
	for _, entries := range [][]Entry{e.st.current, e.st.root} {
		for _, entry := range entries {
			if _, ok := e.st.selection[entry.ID]; ok {
				paths[entry.Path] = struct{}{}
			}
		}
	}
	return paths
}

// forget removes paths, and everything below them, from the search results
// and the id registry.
func (e *Engine) forget(paths ...string) {
	if len(paths) == 0 {
		return
	}
	for _, p := range paths {
		e.ids.forget(p)
	}
	if len(e.st.root) == 0 {
		return
	}
	kept := make([]Entry, 0, len(e.st.root))
	for _, entry := range e.st.root {
		if !underAny(entry.Path, paths) {
			kept = append(kept, entry)
		}
	}
	e.st.root = kept
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, strings.TrimSuffix(root, "/")+"/") {
			return true
		}
	}
	return false
}
