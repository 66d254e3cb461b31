package notes

import (
	"encoding/json"
	"fmt"
)

// Storage keys.
const (
	NotesKey      = "notes"
	CategoriesKey = "customCategories"
)

// DecodeError reports stored data under Key that could not be parsed.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeNotes serializes notes to the stored JSON array layout.
func EncodeNotes(notes []Note) (string, error) {
	if notes == nil {
		notes = []Note{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("encode notes: %w", err)
	}
	return string(b), nil
}

// DecodeNotes parses the stored notes array. Duplicate ids are rejected and a
// trashed note's category is dropped.
func DecodeNotes(data string) ([]Note, error) {
	var notes []Note
	if err := json.Unmarshal([]byte(data), &notes); err != nil {
		return nil, &DecodeError{Key: NotesKey, Err: err}
	}

	seen := make(map[string]struct{}, len(notes))
	for i := range notes {
		id := notes[i].ID
		if _, dup := seen[id]; dup {
			return nil, &DecodeError{Key: NotesKey, Err: fmt.Errorf("duplicate note id %q", id)}
		}
		seen[id] = struct{}{}
		if notes[i].IsDeleted {
			notes[i].Category = ""
		}
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// EncodeCategories serializes custom category names in insertion order.
func EncodeCategories(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(b), nil
}

// DecodeCategories parses the stored category array. Invalid, reserved and
// repeated names are skipped so the set invariants hold after loading.
func DecodeCategories(data string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, &DecodeError{Key: CategoriesKey, Err: err}
	}
	var set categorySet
	for _, n := range names {
		set.add(n)
	}
	return set.list(), nil
}
