// inline.go holds the inline rules for breaks, escapes, code spans and entities.
package cmark

import (
	"html"
	"regexp"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Softbreak is a plain line break inside a paragraph.
type Softbreak struct{}

func (*Softbreak) Render(_ *mdit.Node, r mdit.Renderer) {
	r.CR()
}

// TextContent implements mdit.Textual.
func (*Softbreak) TextContent() string { return "\n" }

// Hardbreak is a forced line break (two trailing spaces or a backslash).
type Hardbreak struct{}

func (*Hardbreak) Render(n *mdit.Node, r mdit.Renderer) {
	r.SelfClose("br", n.Attrs)
	r.CR()
}

// TextContent implements mdit.Textual.
func (*Hardbreak) TextContent() string { return "\n" }

// CodeInline is a code span.
type CodeInline struct {
	Marker  string
	Content string
}

func (c *CodeInline) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("code", n.Attrs)
	r.Text(c.Content)
	r.Close("code")
}

// TextContent implements mdit.Textual.
func (c *CodeInline) TextContent() string { return c.Content }

// ==================== Line Breaks ====================

type newlineRule struct{}

func (newlineRule) Marker() rune { return '\n' }

func (newlineRule) Check(s *mdit.InlineState) (int, bool) {
	return newlineLength(s), true
}

func newlineLength(s *mdit.InlineState) int {
	pos := s.Pos + 1
	for pos < s.PosMax && (s.Src[pos] == ' ' || s.Src[pos] == '\t') {
		pos++
	}
	return pos - s.Pos
}

func (newlineRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	n := newlineLength(s)
	if s.TrimTrailingSpaces() >= 2 {
		return mdit.NewNode(&Hardbreak{}), n
	}
	return mdit.NewNode(&Softbreak{}), n
}

// ==================== Escapes ====================

type escapeRule struct{}

func (escapeRule) Marker() rune { return '\\' }

func (escapeRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	pos := s.Pos + 1
	if pos >= s.PosMax {
		return nil, 0
	}
	c := s.Src[pos]
	if c == '\n' {
		n := 2
		for pos+n-1 < s.PosMax && (s.Src[pos+n-1] == ' ' || s.Src[pos+n-1] == '\t') {
			n++
		}
		return mdit.NewNode(&Hardbreak{}), n
	}
	if !isASCIIPunct(c) {
		return nil, 0
	}
	return mdit.NewNode(&mdit.TextSpecial{
		Content: string(c),
		Markup:  s.Src[s.Pos : pos+1],
		Info:    "escape",
	}), 2
}

// ==================== Code Spans ====================

type backtickRule struct{}

func (backtickRule) Marker() rune { return '`' }

func (backtickRule) Check(s *mdit.InlineState) (int, bool) {
	_, n := scanCodeSpan(s)
	return n, true
}

// Run matches a code span. A backtick run without a matching closer is
// consumed as literal text so it cannot open a span later.
func (backtickRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	node, n := scanCodeSpan(s)
	return node, n
}

func scanCodeSpan(s *mdit.InlineState) (*mdit.Node, int) {
	start := s.Pos
	pos := start
	for pos < s.PosMax && s.Src[pos] == '`' {
		pos++
	}
	opener := pos - start
	marker := s.Src[start:pos]

	for search := pos; search < s.PosMax; {
		i := strings.IndexByte(s.Src[search:s.PosMax], '`')
		if i < 0 {
			break
		}
		closeStart := search + i
		closeEnd := closeStart
		for closeEnd < s.PosMax && s.Src[closeEnd] == '`' {
			closeEnd++
		}
		if closeEnd-closeStart == opener {
			content := strings.ReplaceAll(s.Src[pos:closeStart], "\n", " ")
			if len(content) > 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.Trim(content, " ") != "" {
				content = content[1 : len(content)-1]
			}
			return mdit.NewNode(&CodeInline{Marker: marker, Content: content}), closeEnd - start
		}
		search = closeEnd
	}
	return mdit.NewNode(&mdit.Text{Content: marker}), opener
}

// ==================== Entities ====================

var entityPattern = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]{1,31});`)

type entityRule struct{}

func (entityRule) Marker() rune { return '&' }

func (entityRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	m := entityPattern.FindString(s.Src[s.Pos:s.PosMax])
	if m == "" {
		return nil, 0
	}
	decoded := html.UnescapeString(m)
	if decoded == m {
		return nil, 0
	}
	return mdit.NewNode(&mdit.TextSpecial{Content: decoded, Markup: m, Info: "entity"}), len(m)
}
