package notes

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/electr1fy0/bluenotes/logger"
)

var (
	// ErrNotLoaded is returned by mutations issued before Load succeeded.
	ErrNotLoaded = errors.New("notes: store not loaded")
	// ErrNotTrashed is returned when permanently deleting an active note.
	ErrNotTrashed = errors.New("notes: note is not in trash")
)

// KV is the string key-value store notes are persisted to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// EventKind names the mutation behind an Event.
type EventKind string

const (
	EventAdded       EventKind = "added"
	EventUpdated     EventKind = "updated"
	EventTrashed     EventKind = "trashed"
	EventDeleted     EventKind = "deleted"
	EventTrashClear  EventKind = "trash_cleared"
	EventCategoryNew EventKind = "category_added"
)

// Event describes a persisted mutation. NoteID is empty for collection-wide
// events; Category is set for EventCategoryNew.
type Event struct {
	Kind     EventKind
	NoteID   string
	Category string
}

// Outcome reports what TrashOrDelete did.
type Outcome int

const (
	Unchanged Outcome = iota
	Trashed
	Deleted
)

// Store owns the note collection and custom categories. Every effective
// mutation persists the changed key before returning.
type Store struct {
	kv  KV
	log *logger.Logger

	mu         sync.RWMutex
	loaded     bool
	notes      []Note
	categories categorySet

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewStore returns an unloaded store backed by kv.
func NewStore(kv KV, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		kv:   kv,
		log:  log.Child("store"),
		subs: make(map[int]func(Event)),
	}
}

// Load reads notes and categories from the KV store. When no notes are
// stored the collection is seeded with a welcome note. Malformed data is
// returned as a *DecodeError and the store stays unloaded.
func (s *Store) Load() error {
	rawNotes, ok, err := s.kv.Get(NotesKey)
	if err != nil {
		return fmt.Errorf("read %q: %w", NotesKey, err)
	}
	notes := []Note{}
	if ok {
		if notes, err = DecodeNotes(rawNotes); err != nil {
			return err
		}
	} else {
		welcome := newNote("")
		welcome.Content = welcomeContent
		notes = append(notes, welcome)
	}

	rawCats, ok, err := s.kv.Get(CategoriesKey)
	if err != nil {
		return fmt.Errorf("read %q: %w", CategoriesKey, err)
	}
	var cats []string
	if ok {
		if cats, err = DecodeCategories(rawCats); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.notes = notes
	s.categories = categorySet{names: cats}
	s.loaded = true
	s.mu.Unlock()

	s.log.Debug().Int("notes", len(notes)).Int("categories", len(cats)).Msg("store loaded")
	return nil
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Notes returns a copy of the collection in insertion order.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Note returns the note with id.
func (s *Store) Note(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.notes[i], true
	}
	return Note{}, false
}

// Categories returns the custom category names in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.list()
}

// AddNote appends an empty note tagged with category ("" for none) and
// returns its id.
func (s *Store) AddNote(category string) (string, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return "", ErrNotLoaded
	}
	n := newNote(category)
	s.notes = append(s.notes, n)
	err := s.persistNotes()
	s.mu.Unlock()

	s.emit(Event{Kind: EventAdded, NoteID: n.ID})
	return n.ID, err
}

// UpdateContent replaces the content of note id. Unknown ids are ignored.
func (s *Store) UpdateContent(id, text string) error {
	return s.mutate(id, EventUpdated, func(n *Note) bool {
		if n.Content == text {
			return false
		}
		n.Content = text
		return true
	})
}

// ToggleFavorite flips the favorite flag of note id.
func (s *Store) ToggleFavorite(id string) error {
	return s.mutate(id, EventUpdated, func(n *Note) bool {
		n.IsFavorite = !n.IsFavorite
		return true
	})
}

// Trash moves an active note to the trash and clears its category.
func (s *Store) Trash(id string) error {
	return s.mutate(id, EventTrashed, func(n *Note) bool {
		if n.IsDeleted {
			return false
		}
		n.IsDeleted = true
		n.Category = ""
		return true
	})
}

// PermanentlyDelete removes a trashed note from the collection. Active notes
// are left untouched and ErrNotTrashed is returned.
func (s *Store) PermanentlyDelete(id string) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	if !s.notes[i].IsDeleted {
		s.mu.Unlock()
		return ErrNotTrashed
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	err := s.persistNotes()
	s.mu.Unlock()

	s.emit(Event{Kind: EventDeleted, NoteID: id})
	return err
}

// TrashOrDelete trashes an active note or permanently deletes a trashed one.
func (s *Store) TrashOrDelete(id string) (Outcome, error) {
	if !s.Loaded() {
		return Unchanged, ErrNotLoaded
	}
	n, ok := s.Note(id)
	if !ok {
		return Unchanged, nil
	}
	if n.IsDeleted {
		return Deleted, s.PermanentlyDelete(id)
	}
	return Trashed, s.Trash(id)
}

// ClearTrash removes every trashed note and returns how many were removed.
func (s *Store) ClearTrash() (int, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return 0, ErrNotLoaded
	}
	before := len(s.notes)
	s.notes = slices.DeleteFunc(s.notes, func(n Note) bool { return n.IsDeleted })
	removed := before - len(s.notes)
	if removed == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	err := s.persistNotes()
	s.mu.Unlock()

	s.emit(Event{Kind: EventTrashClear})
	return removed, err
}

// AddCategory adds a custom category. Empty, duplicate and reserved names
// are rejected without error; the returned bool reports whether it was added.
func (s *Store) AddCategory(name string) (bool, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return false, ErrNotLoaded
	}
	if !s.categories.add(name) {
		s.mu.Unlock()
		return false, nil
	}
	added := s.categories.names[len(s.categories.names)-1]
	err := s.persistCategories()
	s.mu.Unlock()

	s.emit(Event{Kind: EventCategoryNew, Category: added})
	return true, err
}

// Subscribe registers fn for change events. Listeners run synchronously on
// the mutating goroutine after the change is persisted.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) emit(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// mutate applies fn to note id under the write lock. fn reports whether it
// changed anything; only changes are persisted and announced.
func (s *Store) mutate(id string, kind EventKind, fn func(*Note) bool) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	i := s.index(id)
	if i < 0 || !fn(&s.notes[i]) {
		s.mu.Unlock()
		return nil
	}
	err := s.persistNotes()
	s.mu.Unlock()

	s.emit(Event{Kind: kind, NoteID: id})
	return err
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
}

// persistNotes must be called with mu held.
func (s *Store) persistNotes() error {
	data, err := EncodeNotes(s.notes)
	if err != nil {
		return err
	}
	if err := s.kv.Set(NotesKey, data); err != nil {
		s.log.Err(err).Str("key", NotesKey).Msg("persist failed")
		return fmt.Errorf("write %q: %w", NotesKey, err)
	}
	return nil
}

// persistCategories must be called with mu held.
func (s *Store) persistCategories() error {
	data, err := EncodeCategories(s.categories.names)
	if err != nil {
		return err
	}
	if err := s.kv.Set(CategoriesKey, data); err != nil {
		s.log.Err(err).Str("key", CategoriesKey).Msg("persist failed")
		return fmt.Errorf("write %q: %w", CategoriesKey, err)
	}
	return nil
}
