package notes

import "strings"

// Visible returns the notes shown for a category selector and search query,
// in collection order.
//
// The selector is one of All, Favorites, Trash or a custom category name. The
// query is a case-insensitive substring match on content and applies to every
// selector, trash included.
func Visible(notes []Note, selector, query string) []Note {
	query = strings.ToLower(query)
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if !matchesSelector(n, selector) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func matchesSelector(n Note, selector string) bool {
	switch selector {
	case All:
		return !n.IsDeleted
	case Favorites:
		return n.IsFavorite && !n.IsDeleted
	case Trash:
		return n.IsDeleted
	default:
		return n.Category == selector && !n.IsDeleted
	}
}
