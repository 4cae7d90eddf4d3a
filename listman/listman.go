package listman

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"sync"

	"github.com/xpertai/sitekit/backend"
)

// ErrNotEditing is returned by Save when no add or edit is in progress.
var ErrNotEditing = errors.New("listman: no add or edit in progress")

// Mode is the workspace's editing state.
type Mode int

const (
	Viewing Mode = iota
	Adding
	Editing
)

// Upload is a file part captured from a submitted form.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Manager holds one list's collection and editing state. The state machine
// is Viewing -> Adding -> Viewing and Viewing -> Editing(item) -> Viewing;
// starting one kind of edit cancels the other, so at most one of
// {Adding, Editing} is ever active.
type Manager struct {
	mu      sync.Mutex
	def     Definition
	items   []backend.ContentItem
	mode    Mode
	editing backend.ContentItem
}

// New creates a Manager for the given definition.
func New(def Definition) *Manager {
	return &Manager{def: def}
}

// Definition returns the list's field descriptors.
func (m *Manager) Definition() Definition { return m.def }

// SetItems replaces the collection. A nil slice is treated as an empty
// list, never as an error state. Items the current edit referred to may be
// gone after a reload; the edit survives only if its item still exists.
func (m *Manager) SetItems(items []backend.ContentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	if m.mode == Editing {
		if _, ok := m.find(m.editing.ID); !ok {
			m.mode = Viewing
			m.editing = backend.ContentItem{}
		}
	}
}

// Items returns the collection, never nil.
func (m *Manager) Items() []backend.ContentItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		return []backend.ContentItem{}
	}
	return m.items
}

// Mode returns the current editing state.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Editing returns the item being edited, valid only in Editing mode.
func (m *Manager) Editing() (backend.ContentItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing, m.mode == Editing
}

// StartAdd opens an empty form. Any in-progress edit is discarded.
func (m *Manager) StartAdd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = Adding
	m.editing = backend.ContentItem{}
}

// StartEdit opens the form pre-filled from the item with the given id.
// An in-progress add is discarded. Returns false if the id is unknown.
func (m *Manager) StartEdit(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.find(id)
	if !ok {
		return false
	}
	m.mode = Editing
	m.editing = item
	return true
}

// Cancel returns to Viewing, discarding any in-progress form.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = Viewing
	m.editing = backend.ContentItem{}
}

func (m *Manager) find(id int) (backend.ContentItem, bool) {
	for _, it := range m.items {
		if it.ID == id {
			return it, true
		}
	}
	return backend.ContentItem{}, false
}

// FormValues returns the current prefill for the form: the editing item's
// values in Editing mode, blanks otherwise. Unset optional fields render
// blank rather than erroring.
func (m *Manager) FormValues() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	vals := make(map[string]string, len(m.def.Fields))
	for _, f := range m.def.Fields {
		if m.mode == Editing {
			vals[f.Name] = itemValue(m.editing, f.Name)
		} else {
			vals[f.Name] = ""
		}
	}
	return vals
}

func itemValue(it backend.ContentItem, field string) string {
	switch field {
	case "title":
		return it.Title
	case "name":
		return it.Name
	case "description":
		return it.Description
	case "quote":
		return it.Quote
	case "question":
		return it.Question
	case "answer":
		return it.Answer
	case "image":
		return it.Image
	case "icon":
		return it.Icon
	case "file":
		return it.File
	case "link":
		return it.Link
	case "order":
		if it.Order == 0 {
			return ""
		}
		return strconv.Itoa(it.Order)
	}
	return ""
}

// Save serializes the submitted form through the field descriptors and
// routes it: create when adding, update with the edited item's id otherwise.
// On success the local edit state is discarded; the caller must reload the
// collection from the backend (server-side computed fields drift otherwise)
// and hand it back via SetItems.
func (m *Manager) Save(ctx context.Context, client *backend.Client, posted url.Values, uploads map[string]Upload) error {
	m.mu.Lock()
	mode := m.mode
	editingID := m.editing.ID
	m.mu.Unlock()

	if mode == Viewing {
		return ErrNotEditing
	}

	form := backend.NewForm()
	for _, f := range m.def.Fields {
		switch f.Kind {
		case File:
			if up, ok := uploads[f.Name]; ok && up.Filename != "" {
				form.AddFile(f.Name, up.Filename, up.Reader)
			}
		case Checkbox:
			form.SetBool(f.Name, posted.Get(f.Name) != "")
		default:
			form.Set(f.Name, posted.Get(f.Name))
		}
	}

	var err error
	if mode == Adding {
		err = client.Create(ctx, m.def.Resource, form, nil)
	} else {
		err = client.Update(ctx, m.def.Resource, editingID, form, nil)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.mode = Viewing
	m.editing = backend.ContentItem{}
	m.mu.Unlock()
	return nil
}

// Delete removes the item with the given id. Callers must have taken the
// user through an explicit confirmation step first; the item leaves the
// rendered list only after the backend call succeeds, via the follow-up
// reload.
func (m *Manager) Delete(ctx context.Context, client *backend.Client, id int) error {
	return client.Remove(ctx, m.def.Resource, id)
}

// Missing returns the names of required non-file fields that are empty in
// the posted values. File fields are excluded: edits may legitimately keep
// the stored file.
func (m *Manager) Missing(posted url.Values) []string {
	var missing []string
	for _, f := range m.def.Fields {
		if f.Required && f.Kind != File && posted.Get(f.Name) == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}
