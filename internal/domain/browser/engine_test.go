package browser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

func open(t *testing.T, fsys filesystem.FileSystem, dir string, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	e := Open(fsys, dir, opts...)
	t.Cleanup(e.Close)
	return e
}

func idle(t *testing.T, e *Engine) *Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.WaitIdle(ctx))
	return e.Snapshot()
}

func TestEngineLoadsSortedProjection(t *testing.T) {
	e := open(t, fixture(), "/data")

	snap := idle(t, e)
	assert.Equal(t, "/data", snap.Directory)
	assert.False(t, snap.IsSearching)
	assert.Nil(t, snap.Err)
	assert.Equal(t, []string{"A", "a.txt", "b.txt"}, names(snap.Projection()))
}

func TestEngineQueryAndSort(t *testing.T) {
	e := open(t, fixture(), "/data")
	idle(t, e)

	e.SetSearchQuery("txt")
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(idle(t, e).Projection()))

	e.SetSortOption(SortByModified)
	snap := idle(t, e)
	assert.Equal(t, SortByModified, snap.SortOption)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(snap.Projection()))

	e.SetSearchQuery("")
	assert.Equal(t, []string{"a.txt", "A", "b.txt"}, names(idle(t, e).Projection()))
}

func TestEngineListFailureIsRecorded(t *testing.T) {
	m := fixture()
	m.FailOn("readdir", "/data/A", filesystem.ErrPermissionDenied)
	e := open(t, m, "/data")
	idle(t, e)

	e.SetDirectory("/data/A")
	snap := idle(t, e)
	assert.Equal(t, "/data/A", snap.Directory)
	assert.Empty(t, snap.Current)
	require.NotNil(t, snap.Err)
	assert.Equal(t, "permission_denied", snap.Err.Kind)
	assert.Equal(t, "list", snap.Err.Op)

	m.FailOn("readdir", "/data/A", nil)
	e.Reload()
	snap = idle(t, e)
	assert.Nil(t, snap.Err)
}

func TestEngineNewerDirectorySupersedesOlder(t *testing.T) {
	m := fixture()
	m.AddFile("/other/only.txt", nil)
	release := m.Gate("/data")
	defer release()

	e := open(t, m, "/data")
	e.SetDirectory("/other")
	snap := idle(t, e)
	release()

	assert.Equal(t, "/other", snap.Directory)
	assert.Equal(t, []string{"only.txt"}, names(snap.Projection()))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"only.txt"}, names(e.Snapshot().Projection()))
}

func TestEngineIDsAreStableAcrossReloads(t *testing.T) {
	e := open(t, fixture(), "/data")
	before := idle(t, e).Projection()

	e.Reload()
	after := idle(t, e).Projection()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
}

func TestEngineRootSearch(t *testing.T) {
	m := fixture()
	m.AddFile("/srv/logs/app.log", nil)

	e := open(t, m, "/data", WithSearchRoot("/"), WithSearchBatch(2, 5*time.Millisecond))
	idle(t, e)

	e.SetSearchScope(ScopeRoot)
	e.SetSearchQuery("a")
	snap := idle(t, e)
	assert.Equal(t, ScopeRoot, snap.SearchScope)
	assert.Len(t, snap.Root, 7)
	assert.Equal(t, []string{"A", "a.txt", "app.log", "data"}, names(snap.Projection()))

	e.SetSearchScope(ScopeCurrent)
	assert.Equal(t, []string{"A", "a.txt"}, names(idle(t, e).Projection()))
}

func TestEngineCancelledSearchStopsAppending(t *testing.T) {
	m := filesystem.NewMemory()
	for i := range 20 {
		m.AddFile(fmt.Sprintf("/big/%02d.txt", i), nil)
	}
	m.AddFile("/big/zz/hidden.txt", nil)
	release := m.Gate("/big/zz")
	defer release()

	e := open(t, m, "/big", WithSearchRoot("/big"), WithSearchBatch(1, time.Millisecond))
	idle(t, e)

	e.SetSearchScope(ScopeRoot)
	require.Eventually(t, func() bool { return len(e.Snapshot().Root) >= 5 }, 5*time.Second, time.Millisecond)

	e.SetSearchScope(ScopeCurrent)
	snap, err := e.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.IsSearching)
	partial := len(snap.Root)

	release()
	time.Sleep(50 * time.Millisecond)
	snap = idle(t, e)
	assert.Len(t, snap.Root, partial)
	assert.False(t, snap.IsSearching)
	assert.Equal(t, ScopeCurrent, snap.SearchScope)

	e.SetSearchScope(ScopeRoot)
	snap = idle(t, e)
	assert.Len(t, snap.Root, 22)
}

func TestEngineSubscribeReceivesLatest(t *testing.T) {
	e := open(t, fixture(), "/data")
	updates, stop := e.Subscribe()
	defer stop()
	assert.Equal(t, 1, e.Subscribers())

	e.SetSearchQuery("b")
	idle(t, e)

	var last *Snapshot
	require.Eventually(t, func() bool {
		select {
		case s := <-updates:
			last = s
		default:
		}
		return last != nil && last.SearchQuery == "b" && !last.IsSearching
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"b.txt"}, names(last.Projection()))

	stop()
	assert.Equal(t, 0, e.Subscribers())
}

func TestEngineClose(t *testing.T) {
	e := Open(fixture(), "/data")
	updates, _ := e.Subscribe()
	e.Close()
	e.Close()

	for range updates {
	}
	_, err := e.Sync(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, e.WaitIdle(context.Background()), ErrClosed)
	_, err = e.CreateFile(context.Background(), "new.txt")
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestWaitIdleHonoursContext(t *testing.T) {
	m := fixture()
	release := m.Gate("/data")
	defer release()
	e := open(t, m, "/data")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.WaitIdle(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.True(t, e.Snapshot().IsSearching)
}

func TestEngineDropsIDsOfEarlierSearches(t *testing.T) {
	m := fixture()
	m.AddFile("/srv/logs/app.log", nil)
	m.AddFile("/srv/extra.txt", nil)

	e := open(t, m, "/data", WithSearchRoot("/"), WithSearchBatch(4, time.Millisecond))
	listed := idle(t, e).Current

	e.SetSearchScope(ScopeRoot)
	snap := idle(t, e)
	require.Len(t, snap.Root, 8)
	app, ok := snap.LookupPath("/srv/logs/app.log")
	require.True(t, ok)
	e.Select(app.ID)
	idle(t, e)

	require.NoError(t, m.Remove(context.Background(), "/srv/extra.txt"))
	e.SetSearchScope(ScopeCurrent)
	e.SetSearchScope(ScopeRoot)
	snap = idle(t, e)
	require.Len(t, snap.Root, 7)

	again, ok := snap.LookupPath("/srv/logs/app.log")
	require.True(t, ok)
	assert.Equal(t, app.ID, again.ID)
	for i, entry := range snap.Current {
		assert.Equal(t, listed[i].ID, entry.ID)
	}

	paths := map[string]struct{}{}
	for _, entry := range append(snap.Current, snap.Root...) {
		paths[entry.Path] = struct{}{}
	}
	assert.Equal(t, len(paths), e.ids.size())
}

func TestIDRegistrySweep(t *testing.T) {
	r := newIDRegistry(id.Default())
	listed := r.idFor("/d/a")
	r.searchID("/d/a")
	found := r.searchID("/x/found")
	r.searchID("/x/gone")

	assert.Equal(t, 1, r.sweep(map[string]struct{}{"/x/found": {}}))
	assert.Equal(t, listed, r.idFor("/d/a"))
	assert.Equal(t, found, r.searchID("/x/found"))

	r.relist([]Entry{{Path: "/x/found"}})
	assert.Equal(t, 1, r.sweep(nil))
	assert.Equal(t, found, r.idFor("/x/found"))
	assert.Equal(t, 1, r.size())
}
