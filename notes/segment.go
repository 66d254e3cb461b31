package notes

import "regexp"

// SegmentKind classifies a piece of note content in preview mode.
type SegmentKind int

const (
	Prose SegmentKind = iota
	Snippet
)

func (k SegmentKind) String() string {
	if k == Snippet {
		return "snippet"
	}
	return "prose"
}

// Segment is a contiguous unit of note content. Prose segments carry Text;
// snippet segments carry the HTML, CSS and JS slots.
type Segment struct {
	Kind SegmentKind
	Text string
	HTML string
	CSS  string
	JS   string
}

var (
	codeBlock = regexp.MustCompile(`(?s)\[CODE\](.*?)\[/CODE\]`)
	htmlBlock = regexp.MustCompile(`(?s)\[HTML\](.*?)\[/HTML\]`)
	cssBlock  = regexp.MustCompile(`(?s)\[CSS\](.*?)\[/CSS\]`)
	jsBlock   = regexp.MustCompile(`(?s)\[JS\](.*?)\[/JS\]`)
)

// Segments splits content on [CODE]...[/CODE] blocks. The result alternates
// prose, snippet, prose... and always begins and ends with a prose segment,
// which may be empty. Unpaired markers are left in the prose text.
func Segments(content string) []Segment {
	matches := codeBlock.FindAllStringSubmatchIndex(content, -1)
	out := make([]Segment, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		out = append(out, Segment{Kind: Prose, Text: content[last:m[0]]})
		out = append(out, parseSnippet(content[m[2]:m[3]]))
		last = m[1]
	}
	out = append(out, Segment{Kind: Prose, Text: content[last:]})
	return out
}

func parseSnippet(code string) Segment {
	return Segment{
		Kind: Snippet,
		HTML: firstGroup(htmlBlock, code),
		CSS:  firstGroup(cssBlock, code),
		JS:   firstGroup(jsBlock, code),
	}
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
