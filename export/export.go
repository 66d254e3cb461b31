// Package export writes notes out as markdown files with YAML front matter.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/electr1fy0/bluenotes/notes"
)

// FrontMatter is the metadata block written at the top of each file.
type FrontMatter struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Favorite bool   `yaml:"favorite"`
	Trashed  bool   `yaml:"trashed,omitempty"`
	Category string `yaml:"category,omitempty"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

// Document renders a note as front matter followed by its content.
func Document(n notes.Note) ([]byte, error) {
	meta, err := yaml.Marshal(FrontMatter{
		ID:       n.ID,
		Title:    n.Title(),
		Favorite: n.IsFavorite,
		Trashed:  n.IsDeleted,
		Category: n.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(n.Content)
	return b.Bytes(), nil
}

// ParseDocument splits a document written by Document back into its front
// matter and content.
func ParseDocument(data []byte) (FrontMatter, string, error) {
	var fm FrontMatter
	s := string(data)
	if !strings.HasPrefix(s, "---\n") {
		return fm, s, nil
	}
	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return fm, s, fmt.Errorf("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, s, fmt.Errorf("decode front matter: %w", err)
	}
	body := strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")
	return fm, body, nil
}

// FileName derives a file name from the note title, falling back to the id
// when the title has nothing usable.
func FileName(n notes.Note) string {
	name := strings.TrimSpace(unsafeName.ReplaceAllString(n.Title(), "_"))
	if name == "" || name == "_" {
		name = n.ID
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return name + ".md"
}

// Dir writes every note to dir, creating it if needed, and returns the
// number of files written. Clashing names get the note id appended.
func Dir(dir string, all []notes.Note) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}

	used := make(map[string]bool, len(all))
	count := 0
	for _, n := range all {
		name := FileName(n)
		if used[name] {
			name = strings.TrimSuffix(name, ".md") + "_" + n.ID + ".md"
		}
		used[name] = true

		data, err := Document(n)
		if err != nil {
			return count, err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", name, err)
		}
		count++
	}
	return count, nil
}
