package notes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electr1fy0/bluenotes/storage"
)

type failingKV struct {
	*storage.Memory
	getErr error
	setErr error
	sets   int
}

func (f *failingKV) Get(key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Memory.Get(key)
}

func (f *failingKV) Set(key, value string) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(key, value)
}

func newKV(seed map[string]string) *failingKV {
	return &failingKV{Memory: storage.NewMemory(seed)}
}

func loadedStore(t *testing.T, seed map[string]string) (*Store, *failingKV) {
	t.Helper()
	kv := newKV(seed)
	s := NewStore(kv, nil)
	require.NoError(t, s.Load())
	return s, kv
}

func TestLoad_SeedsWelcomeNote(t *testing.T) {
	s, kv := loadedStore(t, nil)

	notes := s.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "Welcome to your notes app!", notes[0].Content)
	assert.False(t, notes[0].IsFavorite)
	assert.False(t, notes[0].IsDeleted)
	assert.Empty(t, notes[0].Category)
	assert.Empty(t, s.Categories())
	assert.Zero(t, kv.sets, "loading does not write")
}

func TestLoad_EmptyArrayIsNotSeeded(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: "[]"})
	assert.Empty(t, s.Notes())
}

func TestLoad_Stored(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{
		NotesKey:      `[{"id":"1","content":"hi","isFavorite":true},{"id":"2","content":"gone","isFavorite":false,"isDeleted":true,"category":"Work"}]`,
		CategoriesKey: `["Work","trash","Work"," Home "]`,
	})

	notes := s.Notes()
	require.Len(t, notes, 2)
	assert.True(t, notes[0].IsFavorite)
	assert.Empty(t, notes[1].Category, "trashed notes never keep a category")
	assert.Equal(t, []string{"Work", "Home"}, s.Categories())
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
		key  string
	}{
		{"notes", map[string]string{NotesKey: "{oops"}, NotesKey},
		{"categories", map[string]string{CategoriesKey: `"Work"`}, CategoriesKey},
		{"duplicate ids", map[string]string{NotesKey: `[{"id":"1"},{"id":"1"}]`}, NotesKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(newKV(tc.seed), nil)
			err := s.Load()

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.key, de.Key)
			assert.False(t, s.Loaded())
		})
	}
}

func TestLoad_ReadError(t *testing.T) {
	kv := newKV(nil)
	kv.getErr = errors.New("boom")
	s := NewStore(kv, nil)
	assert.ErrorContains(t, s.Load(), "boom")
}

func TestMutationsBeforeLoad(t *testing.T) {
	s := NewStore(newKV(nil), nil)

	_, err := s.AddNote("")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, s.UpdateContent("x", "y"), ErrNotLoaded)
	assert.ErrorIs(t, s.ToggleFavorite("x"), ErrNotLoaded)
	assert.ErrorIs(t, s.Trash("x"), ErrNotLoaded)
	assert.ErrorIs(t, s.PermanentlyDelete("x"), ErrNotLoaded)
	_, err = s.TrashOrDelete("x")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.ClearTrash()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.AddCategory("Work")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestAddNote_UniqueIDs(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: "[]"})

	seen := map[string]bool{}
	for range 50 {
		id, err := s.AddNote("")
		require.NoError(t, err)
		require.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	assert.Len(t, s.Notes(), 50)
}

func TestAddNote_AppendsAndPersists(t *testing.T) {
	s, kv := loadedStore(t, nil)

	id, err := s.AddNote("Work")
	require.NoError(t, err)

	notes := s.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, id, notes[1].ID)
	assert.Equal(t, "Work", notes[1].Category)
	assert.Empty(t, notes[1].Content)

	raw, ok, _ := kv.Get(NotesKey)
	require.True(t, ok)
	stored, err := DecodeNotes(raw)
	require.NoError(t, err)
	assert.Equal(t, notes, stored)
}

func TestUpdateToggleAndUnknownIDs(t *testing.T) {
	s, kv := loadedStore(t, map[string]string{NotesKey: `[{"id":"1","content":"a","isFavorite":false}]`})

	require.NoError(t, s.UpdateContent("1", "# New"))
	require.NoError(t, s.ToggleFavorite("1"))
	n, ok := s.Note("1")
	require.True(t, ok)
	assert.Equal(t, "# New", n.Content)
	assert.True(t, n.IsFavorite)
	assert.Equal(t, 2, kv.sets)

	require.NoError(t, s.UpdateContent("nope", "x"))
	require.NoError(t, s.ToggleFavorite("nope"))
	require.NoError(t, s.Trash("nope"))
	require.NoError(t, s.PermanentlyDelete("nope"))
	assert.Equal(t, 2, kv.sets, "unknown ids do not persist")
}

func TestTrash_ClearsCategory(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: `[{"id":"1","content":"c","isFavorite":true,"category":"Work"}]`})

	require.NoError(t, s.Trash("1"))
	n, _ := s.Note("1")
	assert.True(t, n.IsDeleted)
	assert.Empty(t, n.Category)
	assert.Equal(t, "c", n.Content)
	assert.True(t, n.IsFavorite)

	assert.NotContains(t, ids(Visible(s.Notes(), All, "")), "1")
	assert.Contains(t, ids(Visible(s.Notes(), Trash, "")), "1")
}

func TestPermanentlyDelete(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: `[{"id":"1"},{"id":"2","isDeleted":true}]`})

	assert.ErrorIs(t, s.PermanentlyDelete("1"), ErrNotTrashed)
	_, ok := s.Note("1")
	assert.True(t, ok)

	require.NoError(t, s.PermanentlyDelete("2"))
	_, ok = s.Note("2")
	assert.False(t, ok)
}

func TestTrashOrDelete_TwoStage(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: `[{"id":"1"}]`})

	out, err := s.TrashOrDelete("1")
	require.NoError(t, err)
	assert.Equal(t, Trashed, out)

	out, err = s.TrashOrDelete("1")
	require.NoError(t, err)
	assert.Equal(t, Deleted, out)
	assert.Empty(t, s.Notes())

	out, err = s.TrashOrDelete("1")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)
}

func TestScenario_FavoritesCategoryClearTrash(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{
		NotesKey: `[{"id":"A","content":"a","isFavorite":true},{"id":"B","content":"b","isFavorite":false,"isDeleted":true},{"id":"C","content":"c","isFavorite":false,"category":"Work"}]`,
	})

	assert.Equal(t, []string{"A"}, ids(Visible(s.Notes(), Favorites, "")))
	assert.Equal(t, []string{"C"}, ids(Visible(s.Notes(), "Work", "")))

	n, err := s.ClearTrash()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, Visible(s.Notes(), Trash, ""))
	assert.Equal(t, []string{"A", "C"}, ids(s.Notes()))

	n, err = s.ClearTrash()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddCategory(t *testing.T) {
	s, kv := loadedStore(t, nil)

	for _, name := range []string{"trash", "all", "favorites", "", "   "} {
		added, err := s.AddCategory(name)
		require.NoError(t, err)
		assert.False(t, added, "%q must be rejected", name)
	}

	added, err := s.AddCategory("  Work ")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddCategory("Work")
	require.NoError(t, err)
	assert.False(t, added)
	added, err = s.AddCategory("work")
	require.NoError(t, err)
	assert.True(t, added, "names are case-sensitive")
	added, err = s.AddCategory("Trash")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []string{"Work", "work", "Trash"}, s.Categories())

	raw, ok, _ := kv.Get(CategoriesKey)
	require.True(t, ok)
	assert.JSONEq(t, `["Work","work","Trash"]`, raw)
}

func TestPersistFailureKeepsChange(t *testing.T) {
	s, kv := loadedStore(t, map[string]string{NotesKey: `[{"id":"1"}]`})
	kv.setErr = errors.New("quota exceeded")

	err := s.UpdateContent("1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	n, _ := s.Note("1")
	assert.Equal(t, "x", n.Content)
}

func TestSubscribe(t *testing.T) {
	s, _ := loadedStore(t, map[string]string{NotesKey: `[{"id":"1"}]`})

	var got []Event
	cancel := s.Subscribe(func(ev Event) { got = append(got, ev) })

	require.NoError(t, s.UpdateContent("1", "x"))
	require.NoError(t, s.UpdateContent("1", "x"))
	require.NoError(t, s.Trash("1"))
	_, err := s.AddCategory("Work")
	require.NoError(t, err)

	cancel()
	require.NoError(t, s.ToggleFavorite("1"))

	assert.Equal(t, []Event{
		{Kind: EventUpdated, NoteID: "1"},
		{Kind: EventTrashed, NoteID: "1"},
		{Kind: EventCategoryNew, Category: "Work"},
	}, got)
}

func TestRoundTrip(t *testing.T) {
	notes := []Note{
		{ID: "1", Content: "# Title\nbody", IsFavorite: true, Category: "Work"},
		{ID: "2", Content: "", IsDeleted: true},
		{ID: "3", Content: "unicode ✓ and \"quotes\""},
	}
	raw, err := EncodeNotes(notes)
	require.NoError(t, err)
	back, err := DecodeNotes(raw)
	require.NoError(t, err)
	assert.Equal(t, notes, back)

	cats := []string{"Work", "Home", "ideas"}
	rawCats, err := EncodeCategories(cats)
	require.NoError(t, err)
	backCats, err := DecodeCategories(rawCats)
	require.NoError(t, err)
	assert.Equal(t, cats, backCats)

	empty, err := EncodeNotes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestEncodeNotes_FieldNames(t *testing.T) {
	raw, err := EncodeNotes([]Note{{ID: "1", Content: "c"}, {ID: "2", IsDeleted: true, IsFavorite: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"1","content":"c","isFavorite":false},
		{"id":"2","content":"","isFavorite":true,"isDeleted":true}
	]`, raw)
}
