package browser

import (
	"strings"
	"sync"

	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

// idRegistry keeps entry ids stable per path, so a selection survives a
// reload. Paths only a root search has reported are dropped when the next
// search starts, unless selected.
type idRegistry struct {
	mu     sync.Mutex
	gen    *id.Generator
	byPath map[string]*pathID
}

type pathID struct {
	id     string
	listed bool // part of the current directory listing
}

func newIDRegistry(gen *id.Generator) *idRegistry {
	return &idRegistry{gen: gen, byPath: make(map[string]*pathID)}
}

// idFor returns the id of a path in the directory listing.
func (r *idRegistry) idFor(path string) string {
	return r.lookup(path, true)
}

// searchID returns the id of a path a root search reported.
func (r *idRegistry) searchID(path string) string {
	return r.lookup(path, false)
}

func (r *idRegistry) lookup(path string, listed bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byPath[path]; ok {
		p.listed = p.listed || listed
		return p.id
	}
	p := &pathID{id: r.gen.NewEntryID().String(), listed: listed}
	r.byPath[path] = p
	return p.id
}

// relist marks exactly the given entries as the directory listing.
func (r *idRegistry) relist(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byPath {
		p.listed = false
	}
	for _, e := range entries {
		if p, ok := r.byPath[e.Path]; ok {
			p.listed = true
		}
	}
}

// sweep drops every path outside the listing except those in keep and
// reports how many were dropped.
func (r *idRegistry) sweep(keep map[string]struct{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for path, p := range r.byPath {
		if p.listed {
			continue
		}
		if _, ok := keep[path]; ok {
			continue
		}
		delete(r.byPath, path)
		dropped++
	}
	return dropped
}

func (r *idRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPath)
}

// forget drops path and everything below it.
func (r *idRegistry) forget(path string) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPath, path)
	for p := range r.byPath {
		if strings.HasPrefix(p, prefix) {
			delete(r.byPath, p)
		}
	}
}
