package notes

import (
	"slices"
	"strings"
)

// Built-in pseudo-categories. They are views, never stored as data.
const (
	All       = "all"
	Favorites = "favorites"
	Trash     = "trash"
)

var builtins = []string{All, Favorites, Trash}

// IsReserved reports whether name is one of the built-in pseudo-categories.
func IsReserved(name string) bool {
	return slices.Contains(builtins, name)
}

// Builtins returns the pseudo-category names in display order.
func Builtins() []string {
	return slices.Clone(builtins)
}

// categorySet is an insertion-ordered set of custom category names.
type categorySet struct {
	names []string
}

// add trims name and appends it. Empty, duplicate and reserved names are
// rejected.
func (c *categorySet) add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || IsReserved(name) || c.has(name) {
		return false
	}
	c.names = append(c.names, name)
	return true
}

func (c *categorySet) has(name string) bool {
	return slices.Contains(c.names, name)
}

func (c *categorySet) list() []string {
	return append([]string{}, c.names...)
}
