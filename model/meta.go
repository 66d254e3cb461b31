package model

import (
	"fmt"
	"strings"

	"github.com/electr1fy0/bluenotes/notes"
)

type listItem struct {
	id       string
	title    string
	favorite bool
	trashed  bool
	category string
	snippets int
}

func itemFor(n notes.Note) listItem {
	it := listItem{
		id:       n.ID,
		title:    n.Title(),
		favorite: n.IsFavorite,
		trashed:  n.IsDeleted,
		category: n.Category,
	}
	for _, seg := range notes.Segments(n.Content) {
		if seg.Kind == notes.Snippet {
			it.snippets++
		}
	}
	return it
}

func (i listItem) FilterValue() string { return i.title }

func (i listItem) Title() string {
	if i.favorite {
		return "(FAV) " + i.title
	}
	return i.title
}

func (i listItem) Description() string {
	var parts []string
	switch {
	case i.trashed:
		parts = append(parts, "in trash")
	case i.category != "":
		parts = append(parts, "#"+i.category)
	default:
		parts = append(parts, "no category")
	}
	if i.snippets > 0 {
		parts = append(parts, fmt.Sprintf("%d snippet(s)", i.snippets))
	}
	return strings.Join(parts, " • ")
}
