// Package notes holds the note collection, its derived views and the
// selection state the presentation layers drive.
package notes

import (
	"strings"

	"github.com/google/uuid"
)

const (
	untitled       = "Untitled Note"
	welcomeContent = "Welcome to your notes app!"
)

// Note is a single user-authored text/markdown record. Field names match the
// persisted JSON layout.
type Note struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsFavorite bool   `json:"isFavorite"`
	IsDeleted  bool   `json:"isDeleted,omitempty"`
	Category   string `json:"category,omitempty"`
}

func newNote(category string) Note {
	return Note{
		ID:       uuid.NewString(),
		Category: category,
	}
}

// Title returns the display title of the note.
func (n Note) Title() string {
	return Title(n.Content)
}

// Title derives a display title from content: the first non-blank line with
// leading '#' markers stripped.
func Title(content string) string {
	for line := range strings.SplitSeq(content, "\n") {
		trim := strings.TrimSpace(line)
		if trim == "" {
			continue
		}
		trim = strings.TrimSpace(strings.TrimLeft(trim, "#"))
		if trim == "" {
			// a bare "#" line still counts as the first line
			return untitled
		}
		return trim
	}
	return untitled
}
