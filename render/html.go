package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	converter = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	policy = bluemonday.UGCPolicy()
)

// ProseHTML converts markdown to sanitized HTML.
func ProseHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// SnippetDocument assembles a standalone page running a snippet. It is
// served into a sandboxed iframe, never inlined into the note page.
func SnippetDocument(html, css, js string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<style>")
	b.WriteString(escapeTagClose(css, "style"))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(html)
	b.WriteString("\n<script>")
	b.WriteString(escapeTagClose(js, "script"))
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}

// escapeTagClose keeps user code from terminating its own element early.
func escapeTagClose(code, tag string) string {
	return strings.ReplaceAll(code, "</"+tag, `<\/`+tag)
}
