package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electr1fy0/bluenotes/notes"
)

func TestDocumentRoundTrip(t *testing.T) {
	n := notes.Note{ID: "abc", Content: "# Plans\n\n- one\n", IsFavorite: true, Category: "Work"}

	data, err := Document(n)
	require.NoError(t, err)

	fm, body, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, FrontMatter{ID: "abc", Title: "Plans", Favorite: true, Category: "Work"}, fm)
	assert.Equal(t, n.Content, body)
}

func TestParseDocument_NoFrontMatter(t *testing.T) {
	fm, body, err := ParseDocument([]byte("just text"))
	require.NoError(t, err)
	assert.Zero(t, fm)
	assert.Equal(t, "just text", body)

	_, _, err = ParseDocument([]byte("---\nid: x\nno end"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Plans_2024.md", FileName(notes.Note{ID: "1", Content: "# Plans/2024"}))
	assert.Equal(t, "Untitled Note.md", FileName(notes.Note{ID: "1"}))
	assert.Equal(t, "id-9.md", FileName(notes.Note{ID: "id-9", Content: "✓✓"}))
}

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	all := []notes.Note{
		{ID: "1", Content: "# Same"},
		{ID: "2", Content: "# Same", IsDeleted: true},
	}

	n, err := Dir(dir, all)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Same.md", "Same_2.md"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "Same_2.md"))
	require.NoError(t, err)
	fm, _, err := ParseDocument(data)
	require.NoError(t, err)
	assert.True(t, fm.Trashed)
}
