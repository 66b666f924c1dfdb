package browser

import (
	"slices"
	"sync"
)

// Snapshot is the published, immutable view state at one version. The
// projection is derived from the snapshot's own inputs on first use, so it is
// always consistent with them.
type Snapshot struct {
	ViewID      string      `json:"view_id"`
	Version     uint64      `json:"version"`
	Directory   string      `json:"directory"`
	SortOption  SortOption  `json:"sort_option"`
	SearchScope SearchScope `json:"search_scope"`
	SearchQuery string      `json:"search_query"`
	IsSearching bool        `json:"is_searching"`
	Current     []Entry     `json:"-"`
	Root        []Entry     `json:"-"`
	Selection   []string    `json:"selection"`
	Err         *OpError    `json:"error,omitempty"`

	projectOnce sync.Once
	projection  []Entry
}

// Source returns the collection selected by the search scope.
func (s *Snapshot) Source() []Entry {
	if s.SearchScope == ScopeRoot {
		return s.Root
	}
	return s.Current
}

// Projection returns sort(filter(source)) for this snapshot.
func (s *Snapshot) Projection() []Entry {
	s.projectOnce.Do(func() {
		s.projection = Project(s.Source(), s.SearchQuery, s.SortOption)
	})
	return s.projection
}

// Lookup finds an entry by id in either collection.
func (s *Snapshot) Lookup(id string) (Entry, bool) {
	for _, entries := range [][]Entry{s.Current, s.Root} {
		if i := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id }); i >= 0 {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// LookupPath finds an entry by path in either collection.
func (s *Snapshot) LookupPath(path string) (Entry, bool) {
	for _, entries := range [][]Entry{s.Current, s.Root} {
		if i := slices.IndexFunc(entries, func(e Entry) bool { return e.Path == path }); i >= 0 {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// IsSelected reports whether id is in the selection.
func (s *Snapshot) IsSelected(id string) bool {
	_, found := slices.BinarySearch(s.Selection, id)
	return found
}
