package notes

import (
	"errors"
	"slices"
)

// ErrNotConfirmed is returned when clearing the trash without a pending
// confirmation request.
var ErrNotConfirmed = errors.New("notes: clear trash was not requested")

// Selection tracks the open note and whether it is shown as preview.
// An empty CurrentID means nothing is explicitly selected.
type Selection struct {
	CurrentID string
	Markdown  bool
}

// Select opens id in edit mode.
func (sel *Selection) Select(id string) {
	sel.CurrentID = id
	sel.Markdown = false
}

// Clear drops the selection and returns to edit mode.
func (sel *Selection) Clear() {
	sel.CurrentID = ""
	sel.Markdown = false
}

// ToggleMarkdown flips between edit and preview.
func (sel *Selection) ToggleMarkdown() {
	sel.Markdown = !sel.Markdown
}

// Session is the intent surface the presentation layers drive: the store
// plus selection, the selected category and the search query.
type Session struct {
	store     *Store
	sel       Selection
	category  string
	query     string
	confirmCT bool
}

// NewSession wraps a loaded store. The initial view is All.
func NewSession(store *Store) *Session {
	return &Session{store: store, category: All}
}

// Store returns the underlying note store.
func (s *Session) Store() *Store { return s.store }

// SelectCategory switches the category view.
func (s *Session) SelectCategory(name string) {
	s.category = name
}

// SelectedCategory returns the active category selector.
func (s *Session) SelectedCategory() string { return s.category }

// Search sets the search query.
func (s *Session) Search(query string) {
	s.query = query
}

// Query returns the active search query.
func (s *Session) Query() string { return s.query }

// Selection returns a copy of the selection state.
func (s *Session) Selection() Selection { return s.sel }

// Markdown reports whether the current note is shown as preview.
func (s *Session) Markdown() bool { return s.sel.Markdown }

// AddNote creates a note in category, selects it in edit mode and switches
// the view to that category (All when category is empty).
func (s *Session) AddNote(category string) (string, error) {
	id, err := s.store.AddNote(category)
	if id == "" {
		return "", err
	}
	s.sel.Select(id)
	if category == "" {
		category = All
	}
	s.category = category
	return id, err
}

// SelectNote opens id in edit mode.
func (s *Session) SelectNote(id string) {
	s.sel.Select(id)
}

// UpdateContent replaces the content of note id.
func (s *Session) UpdateContent(id, text string) error {
	return s.store.UpdateContent(id, text)
}

// ToggleFavorite flips the favorite flag of note id.
func (s *Session) ToggleFavorite(id string) error {
	return s.store.ToggleFavorite(id)
}

// TrashOrDelete trashes an active note or permanently deletes a trashed one.
// Removing the current note clears the selection.
func (s *Session) TrashOrDelete(id string) (Outcome, error) {
	out, err := s.store.TrashOrDelete(id)
	if out != Unchanged && id == s.sel.CurrentID {
		s.sel.Clear()
	}
	return out, err
}

// ToggleMarkdownView flips between edit and preview for the current note.
func (s *Session) ToggleMarkdownView() {
	s.sel.ToggleMarkdown()
}

// AddCategory adds a custom category; see Store.AddCategory.
func (s *Session) AddCategory(name string) (bool, error) {
	return s.store.AddCategory(name)
}

// RequestClearTrash arms the clear-trash confirmation and returns how many
// notes would be removed.
func (s *Session) RequestClearTrash() int {
	s.confirmCT = true
	return len(Visible(s.store.Notes(), Trash, ""))
}

// CancelClearTrash disarms a pending confirmation.
func (s *Session) CancelClearTrash() {
	s.confirmCT = false
}

// PendingClearTrash reports whether a clear-trash confirmation is armed.
func (s *Session) PendingClearTrash() bool { return s.confirmCT }

// ConfirmClearTrash removes every trashed note. It requires a prior
// RequestClearTrash.
func (s *Session) ConfirmClearTrash() (int, error) {
	if !s.confirmCT {
		return 0, ErrNotConfirmed
	}
	s.confirmCT = false
	n, err := s.store.ClearTrash()
	if s.sel.CurrentID != "" {
		if _, ok := s.store.Note(s.sel.CurrentID); !ok {
			s.sel.Clear()
		}
	}
	return n, err
}

// Visible returns the notes for the active category and query.
func (s *Session) Visible() []Note {
	return Visible(s.store.Notes(), s.category, s.query)
}

// Current returns the explicitly selected note, falling back to the first
// visible note. The fallback does not change the selection.
func (s *Session) Current() (Note, bool) {
	if s.sel.CurrentID != "" {
		if n, ok := s.store.Note(s.sel.CurrentID); ok {
			return n, true
		}
	}
	if v := s.Visible(); len(v) > 0 {
		return v[0], true
	}
	return Note{}, false
}

// Title returns the title of the current note, or "" when there is none.
func (s *Session) Title() string {
	n, ok := s.Current()
	if !ok {
		return ""
	}
	return n.Title()
}

// Segments returns the segmented content of the current note in preview
// mode, and nil in edit mode.
func (s *Session) Segments() []Segment {
	if !s.sel.Markdown {
		return nil
	}
	n, ok := s.Current()
	if !ok {
		return nil
	}
	return Segments(n.Content)
}

// Categories returns the built-in pseudo-categories followed by the custom
// ones.
func (s *Session) Categories() []string {
	return slices.Concat(builtins, s.store.Categories())
}
