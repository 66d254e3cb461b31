// Package render turns note content into terminal and HTML output.
package render

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/glamour"

	"github.com/electr1fy0/bluenotes/notes"
)

const minWidth = 40

// Terminal renders markdown for the TUI preview pane. Glow is tried first
// when enabled, then glamour, then go-term-markdown.
type Terminal struct {
	// Style is a glamour style name; "auto" detects the terminal background.
	Style   string
	UseGlow bool
}

// Render renders md wrapped to width.
func (t Terminal) Render(md string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	if t.UseGlow {
		if out, err := renderWithGlow(md, t.Style); err == nil {
			return out
		}
	}
	if out, err := t.renderGlamour(md, width); err == nil {
		return out
	}
	return renderMarkdownToANSI(md, width)
}

// Preview renders segmented note content. Snippets are shown as fenced code
// so they stay readable; running them is the preview server's job.
func (t Terminal) Preview(segments []notes.Segment, width int) string {
	return t.Render(SegmentsMarkdown(segments), width)
}

// SegmentsMarkdown flattens segments back into plain markdown, replacing
// each snippet with labelled fenced blocks for its non-empty slots.
func SegmentsMarkdown(segments []notes.Segment) string {
	var b strings.Builder
	n := 0
	for _, seg := range segments {
		if seg.Kind == notes.Prose {
			b.WriteString(seg.Text)
			continue
		}
		n++
		fmt.Fprintf(&b, "\n\n> ▶ snippet %d\n\n", n)
		for _, slot := range []struct{ lang, code string }{
			{"html", seg.HTML},
			{"css", seg.CSS},
			{"js", seg.JS},
		} {
			if strings.TrimSpace(slot.code) == "" {
				continue
			}
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", slot.lang, strings.Trim(slot.code, "\n"))
		}
	}
	return b.String()
}

func (t Terminal) renderGlamour(md string, width int) (string, error) {
	style := glamour.WithAutoStyle()
	if t.Style != "" && t.Style != "auto" {
		style = glamour.WithStandardStyle(t.Style)
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func renderMarkdownToANSI(md string, width int) string {
	return string(markdown.Render(md, width-4, 4))
}

func renderWithGlow(md, style string) (string, error) {
	glowPath, err := exec.LookPath("glow")
	if err != nil {
		return "", fmt.Errorf("glow not found")
	}
	if style == "" || style == "auto" {
		style = "dark"
	}

	tmp, err := os.CreateTemp("", "note-*.md")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(md); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	cmd := exec.Command(glowPath, "-s", style, tmpName)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
