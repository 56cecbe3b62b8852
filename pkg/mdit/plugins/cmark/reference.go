// reference.go parses link reference definitions ("[label]: /url "title"").
package cmark

import (
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Reference is the target of a link reference definition.
type Reference struct {
	Href  string
	Title string
}

// ReferenceMap holds the definitions of one document, keyed by
// NormalizeReference(label). The first definition of a label wins.
type ReferenceMap struct {
	refs map[string]Reference
}

// Add records a definition unless the label is already defined.
func (m *ReferenceMap) Add(label string, ref Reference) bool {
	key := NormalizeReference(label)
	if key == "" {
		return false
	}
	if m.refs == nil {
		m.refs = make(map[string]Reference)
	}
	if _, exists := m.refs[key]; exists {
		return false
	}
	m.refs[key] = ref
	return true
}

// Lookup finds the definition for label.
func (m *ReferenceMap) Lookup(label string) (Reference, bool) {
	ref, ok := m.refs[NormalizeReference(label)]
	return ref, ok
}

// Len returns the number of definitions.
func (m *ReferenceMap) Len() int { return len(m.refs) }

// Definition is the node left where a reference definition was parsed.
type Definition struct {
	mdit.NoRender
	Label string
	Reference
}

type referenceRule struct{}

func (referenceRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return nil, 0
	}
	lo := s.LineOffsets[s.Line]
	if s.Src[lo.FirstNonspace] != '[' {
		return nil, 0
	}

	start := s.Line
	end := start + 1
	for ; end < s.LineMax && !s.IsEmpty(end); end++ {
		if s.LineIndent(end) >= s.Md.MaxIndent || s.LineOffsets[end].IndentNonspace < 0 {
			continue
		}
		if s.Interrupted(end) {
			break
		}
	}
	text := strings.TrimSpace(s.GetLines(start, end, s.BlkIndent, false))

	label, ref, n, ok := parseReference(text)
	if !ok {
		return nil, 0
	}
	refs := mdit.GetOrInsertDefault[ReferenceMap](s.RootExt)
	refs.Add(label, ref)

	lines := strings.Count(text[:n], "\n") + 1
	return mdit.NewNode(&Definition{Label: label, Reference: ref}), lines
}

// parseReference parses a definition at the start of text and returns how
// many bytes it spans, ending at a line break or the end of text.
func parseReference(text string) (string, Reference, int, bool) {
	max := len(text)
	labelEnd := -1
	for i := 1; i < max; i++ {
		c := text[i]
		if c == '[' {
			return "", Reference{}, 0, false
		}
		if c == ']' {
			labelEnd = i
			break
		}
		if c == '\\' {
			i++
		}
	}
	if labelEnd < 0 || labelEnd+1 >= max || text[labelEnd+1] != ':' {
		return "", Reference{}, 0, false
	}
	label := text[1:labelEnd]
	if strings.TrimSpace(label) == "" {
		return "", Reference{}, 0, false
	}

	pos := skipSpaces(text, labelEnd+2, max)
	dest, pos, ok := parseLinkDestination(text, pos, max)
	if !ok {
		return "", Reference{}, 0, false
	}
	href := NormalizeLink(dest)
	if !ValidateLink(href) {
		return "", Reference{}, 0, false
	}
	destEnd := pos

	// optional title, which must be separated by whitespace
	titleStart := skipSpaces(text, pos, max)
	title := ""
	if titleStart != pos {
		if t, after, ok := parseLinkTitle(text, titleStart, max); ok && lineRestBlank(text, after) {
			title = t
			pos = after
		}
	}
	if title == "" {
		pos = destEnd
	}
	if !lineRestBlank(text, pos) {
		return "", Reference{}, 0, false
	}
	for pos < max && text[pos] != '\n' {
		pos++
	}
	return label, Reference{Href: href, Title: title}, pos, true
}

func lineRestBlank(text string, pos int) bool {
	for ; pos < len(text); pos++ {
		switch text[pos] {
		case ' ', '\t':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}
