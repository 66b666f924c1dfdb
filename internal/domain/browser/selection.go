package browser

import "context"

// Select adds ids to the selection. Ids not present in either collection are
// ignored.
func (e *Engine) Select(ids ...string) {
	e.updateSelection(func(known func(string) bool) bool {
		changed := false
		for _, v := range ids {
			if _, ok := e.st.selection[v]; !ok && known(v) {
				e.st.selection[v] = struct{}{}
				changed = true
			}
		}
		return changed
	})
}

// Deselect removes ids from the selection.
func (e *Engine) Deselect(ids ...string) {
	e.post(command{apply: func() bool {
		changed := false
		for _, v := range ids {
			if _, ok := e.st.selection[v]; ok {
				delete(e.st.selection, v)
				changed = true
			}
		}
		return changed
	}})
}

// ToggleSelected flips the selection state of each id.
func (e *Engine) ToggleSelected(ids ...string) {
	e.updateSelection(func(known func(string) bool) bool {
		changed := false
		for _, v := range ids {
			if _, ok := e.st.selection[v]; ok {
				delete(e.st.selection, v)
				changed = true
			} else if known(v) {
				e.st.selection[v] = struct{}{}
				changed = true
			}
		}
		return changed
	})
}

// SetSelection replaces the selection with ids.
func (e *Engine) SetSelection(ids ...string) {
	e.updateSelection(func(known func(string) bool) bool {
		clear(e.st.selection)
		for _, v := range ids {
			if known(v) {
				e.st.selection[v] = struct{}{}
			}
		}
		return true
	})
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.post(command{apply: func() bool {
		if len(e.st.selection) == 0 {
			return false
		}
		clear(e.st.selection)
		return true
	}})
}

// Sync waits until every operation issued before the call has been applied
// and returns the resulting snapshot. Unlike WaitIdle it does not wait for
// listings or searches to finish.
func (e *Engine) Sync(ctx context.Context) (*Snapshot, error) {
	if err := e.call(ctx, func() bool { return false }); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}

func (e *Engine) updateSelection(fn func(known func(string) bool) bool) {
	e.post(command{apply: func() bool {
		var present map[string]struct{}
		known := func(v string) bool {
			if present == nil {
				present = make(map[string]struct{}, len(e.st.current)+len(e.st.root))
				for _, entries := range [][]Entry{e.st.current, e.st.root} {
					for _, entry := range entries {
						present[entry.ID] = struct{}{}
					}
				}
			}
			_, ok := present[v]
			return ok
		}
		return fn(known)
	}})
}
