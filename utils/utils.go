// Package utils holds helpers for handing a note to an external editor.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor resolves the editor command: $VISUAL, then $EDITOR, then nvim or vi
// from PATH, then ed.
func Editor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			return ed
		}
	}
	for _, name := range []string{"nvim", "vi"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return "ed"
}

// EditSession is a note written to a temp file for an external editor.
type EditSession struct {
	path string
}

// NewEditSession writes initial to a fresh temp file.
func NewEditSession(initial string) (*EditSession, error) {
	tmp, err := os.CreateTemp("", "bluenotes-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := tmp.WriteString(initial); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return &EditSession{path: tmp.Name()}, nil
}

// Path returns the temp file path.
func (e *EditSession) Path() string { return e.path }

// Command builds the editor process for the temp file. Editors given with
// arguments, such as "code --wait", are split on spaces.
func (e *EditSession) Command(editor string) *exec.Cmd {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{Editor()}
	}
	args := append(fields[1:], e.path)
	return exec.Command(fields[0], args...)
}

// Result reads back the edited content and removes the temp file.
func (e *EditSession) Result() (string, error) {
	defer os.Remove(e.path)
	b, err := os.ReadFile(e.path)
	if err != nil {
		return "", fmt.Errorf("read edited note: %w", err)
	}
	return string(b), nil
}

// Discard removes the temp file without reading it.
func (e *EditSession) Discard() {
	_ = os.Remove(e.path)
}
