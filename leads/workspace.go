// Package leads implements the admin lead-management workspace: derived
// filter/sort views, row selection, optimistic status transitions with
// reload-on-failure, CSV export, and share-message composition.
package leads

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xpertai/sitekit/backend"
)

// Filter returns the leads matching a free-text query (case-insensitive
// substring over name, email, and phone) and a source filter ("all" or empty
// means no source restriction). It is a pure derived view; the input slice
// is never mutated, and filters compose in any order.
func Filter(items []backend.Lead, query, source string) []backend.Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []backend.Lead
	for _, l := range items {
		if source != "" && source != "all" && string(l.Source) != source {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) &&
			!strings.Contains(strings.ToLower(l.Phone), q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Sort returns a new slice ordered by the given column key. String values
// compare case-folded; a missing value sorts as the empty string. The id
// key compares numerically.
func Sort(items []backend.Lead, key string, desc bool) []backend.Lead {
	out := make([]backend.Lead, len(items))
	copy(out, items)
	less := func(a, b backend.Lead) bool {
		if key == "id" {
			return a.ID < b.ID
		}
		return strings.ToLower(sortValue(a, key)) < strings.ToLower(sortValue(b, key))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func sortValue(l backend.Lead, key string) string {
	switch key {
	case "name":
		return l.Name
	case "email":
		return l.Email
	case "phone":
		return l.Phone
	case "company":
		return l.Company
	case "service":
		return l.Service
	case "timeline":
		return l.Timeline
	case "source":
		return string(l.Source)
	case "status":
		return string(l.Status)
	case "created_at":
		return l.CreatedAt
	}
	return ""
}

// Selection is a set of selected lead ids. It is independent of the
// filtered view: narrowing the filter does not drop selections of rows that
// are no longer visible.
type Selection map[int]struct{}

func NewSelection() Selection { return make(Selection) }

func (s Selection) Has(id int) bool { return s != nil && contains(s, id) }

func contains(s Selection, id int) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips one id in or out of the selection.
func (s Selection) Toggle(id int) {
	if contains(s, id) {
		delete(s, id)
	} else {
		s[id] = struct{}{}
	}
}

// ToggleAllVisible toggles exactly the currently visible rows: if every
// visible row is selected they are deselected, otherwise all of them are
// selected. Selections of rows hidden by the active filter are untouched
// either way.
func (s Selection) ToggleAllVisible(visible []backend.Lead) {
	all := len(visible) > 0
	for _, l := range visible {
		if !contains(s, l.ID) {
			all = false
			break
		}
	}
	for _, l := range visible {
		if all {
			delete(s, l.ID)
		} else {
			s[l.ID] = struct{}{}
		}
	}
}

// Clear empties the selection.
func (s Selection) Clear() {
	for id := range s {
		delete(s, id)
	}
}

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Workspace is the per-admin-session lead list state: the collection, the
// active filters and sort, and the selection. All state is guarded by one
// mutex; concurrent requests on the same session (second tab, double-click)
// go through the exported methods only.
type Workspace struct {
	mu       sync.Mutex
	items    []backend.Lead
	selected Selection
	query    string
	source   string
	sortKey  string
	sortDesc bool
}

// NewWorkspace returns an empty workspace sorted by newest first.
func NewWorkspace() *Workspace {
	return &Workspace{
		selected: NewSelection(),
		source:   "all",
		sortKey:  "created_at",
		sortDesc: true,
	}
}

// SetFilters updates the active filter and sort. The query always replaces;
// an empty source or sort key keeps the previous setting, so redirects after
// actions land back in context.
func (w *Workspace) SetFilters(query, source, sortKey string, sortDesc bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query = query
	if source != "" {
		w.source = source
	}
	if sortKey != "" {
		w.sortKey = sortKey
		w.sortDesc = sortDesc
	}
}

// Filters returns a snapshot of the active filter and sort settings.
func (w *Workspace) Filters() (query, source, sortKey string, sortDesc bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query, w.source, w.sortKey, w.sortDesc
}

// SetItems replaces the collection, e.g. after a reload.
func (w *Workspace) SetItems(items []backend.Lead) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = items
}

// Items returns the full, unfiltered collection.
func (w *Workspace) Items() []backend.Lead {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.items
}

// Visible applies the active filter and sort and returns the derived view.
func (w *Workspace) Visible() []backend.Lead {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visibleLocked()
}

func (w *Workspace) visibleLocked() []backend.Lead {
	return Sort(Filter(w.items, w.query, w.source), w.sortKey, w.sortDesc)
}

// ToggleSelect flips one lead in or out of the selection.
func (w *Workspace) ToggleSelect(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected.Toggle(id)
}

// Deselect drops one lead from the selection if present.
func (w *Workspace) Deselect(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.selected, id)
}

// ToggleVisibleSelection toggles exactly the currently visible rows, with
// the visible set and the selection read under the same lock.
func (w *Workspace) ToggleVisibleSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected.ToggleAllVisible(w.visibleLocked())
}

// ClearSelection empties the selection.
func (w *Workspace) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected.Clear()
}

// Selected returns a copy of the selection, safe to read during rendering
// while other requests mutate the workspace.
func (w *Workspace) Selected() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(Selection, len(w.selected))
	for id := range w.selected {
		out[id] = struct{}{}
	}
	return out
}

// SelectedLeads returns the selected leads from the full collection, in
// collection order, regardless of visibility.
func (w *Workspace) SelectedLeads() []backend.Lead {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []backend.Lead
	for _, l := range w.items {
		if contains(w.selected, l.ID) {
			out = append(out, l)
		}
	}
	return out
}

// Find returns the lead with the given id from the collection.
func (w *Workspace) Find(id int) (backend.Lead, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range w.items {
		if l.ID == id {
			return l, true
		}
	}
	return backend.Lead{}, false
}

func (w *Workspace) replace(l backend.Lead) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == l.ID {
			w.items[i] = l
			return
		}
	}
}

// Transition sets a lead's status: the local copy is updated first
// (optimistic), then the entire record is re-sent as a full-representation
// PUT, because the backend has no partial patch on leads. On failure the
// affected record is re-fetched so the view never keeps a diverged
// optimistic value; if even that fetch fails, the whole collection is
// reloaded.
func (w *Workspace) Transition(ctx context.Context, client *backend.Client, id int, status backend.LeadStatus) error {
	lead, ok := w.Find(id)
	if !ok {
		return fmt.Errorf("leads: unknown lead %d", id)
	}

	updated := lead
	updated.Status = status
	w.replace(updated)

	if err := client.Update(ctx, "leads", id, backend.LeadForm(updated), nil); err != nil {
		var fresh backend.Lead
		if gerr := client.Get(ctx, "leads", id, &fresh); gerr == nil {
			w.replace(fresh)
		} else {
			var all []backend.Lead
			if lerr := client.List(ctx, "leads", &all); lerr == nil {
				w.SetItems(all)
			}
		}
		return err
	}
	return nil
}
