package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Segment
	}{
		{
			name:    "html only",
			content: "a[CODE][HTML]<b>x</b>[/HTML][/CODE]b",
			want: []Segment{
				{Kind: Prose, Text: "a"},
				{Kind: Snippet, HTML: "<b>x</b>"},
				{Kind: Prose, Text: "b"},
			},
		},
		{
			name:    "no code",
			content: "# Just prose",
			want:    []Segment{{Kind: Prose, Text: "# Just prose"}},
		},
		{
			name:    "empty",
			content: "",
			want:    []Segment{{Kind: Prose}},
		},
		{
			name:    "all slots across lines",
			content: "[CODE]\n[JS]\nrun()\n[/JS][CSS]p{}[/CSS]\n[HTML]<p>\nhi</p>[/HTML][/CODE]",
			want: []Segment{
				{Kind: Prose},
				{Kind: Snippet, HTML: "<p>\nhi</p>", CSS: "p{}", JS: "\nrun()\n"},
				{Kind: Prose},
			},
		},
		{
			name:    "two blocks",
			content: "x[CODE][CSS]a[/CSS][/CODE][CODE][/CODE]y",
			want: []Segment{
				{Kind: Prose, Text: "x"},
				{Kind: Snippet, CSS: "a"},
				{Kind: Prose},
				{Kind: Snippet},
				{Kind: Prose, Text: "y"},
			},
		},
		{
			name:    "unmatched opening marker stays literal",
			content: "before [CODE][HTML]x[/HTML] never closed",
			want:    []Segment{{Kind: Prose, Text: "before [CODE][HTML]x[/HTML] never closed"}},
		},
		{
			name:    "stray closing marker stays literal",
			content: "a[/CODE]b[CODE][JS]1[/JS][/CODE]c[/CODE]",
			want: []Segment{
				{Kind: Prose, Text: "a[/CODE]b"},
				{Kind: Snippet, JS: "1"},
				{Kind: Prose, Text: "c[/CODE]"},
			},
		},
		{
			name:    "unclosed sub-marker is empty",
			content: "[CODE][HTML]<i>[/CODE]",
			want: []Segment{
				{Kind: Prose},
				{Kind: Snippet},
				{Kind: Prose},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Segments(tc.content))
		})
	}
}

func TestSegmentKindString(t *testing.T) {
	assert.Equal(t, "prose", Prose.String())
	assert.Equal(t, "snippet", Snippet.String())
}
