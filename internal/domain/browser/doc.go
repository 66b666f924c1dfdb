// Package browser implements the directory and search state engine.
//
// An Engine owns the view state of one directory: the listing of the current
// directory, the results of a recursive search from the search root, the sort
// option, search scope, query and selection. All state transitions run on a
// single goroutine per engine; listings and searches run in the background and
// carry a generation number so superseded results are discarded.
//
// Every change publishes an immutable Snapshot. The visible projection,
// sort(filter(source)), is derived from the snapshot itself on first use:
//
//	e := browser.Open(filesystem.NewLocal(), "/var", browser.WithLogger(log))
//	defer e.Close()
//
//	updates, stop := e.Subscribe()
//	defer stop()
//	e.SetSearchQuery("log")
//	for snap := range updates {
//		render(snap.Projection())
//	}
//
// Mutations (create, rename, copy, delete, chmod) run on the caller's
// goroutine and reload the current directory when they succeed. A Navigator
// stacks engines for nested directory views.
package browser
