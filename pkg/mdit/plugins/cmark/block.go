// block.go holds the leaf block rules: headings, thematic breaks and code.
package cmark

import (
	"strconv"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Heading is an ATX ("# title") or setext (underlined) heading.
type Heading struct {
	Level int
}

func (h *Heading) Render(n *mdit.Node, r mdit.Renderer) {
	tag := "h" + strconv.Itoa(h.Level)
	r.CR()
	r.Open(tag, n.Attrs)
	r.Contents(n.Children)
	r.Close(tag)
	r.CR()
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Marker byte
}

func (*ThematicBreak) Render(n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.SelfClose("hr", n.Attrs)
	r.CR()
}

// CodeBlock is an indented code block.
type CodeBlock struct {
	Content string
}

func (c *CodeBlock) Render(n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.Open("pre", n.Attrs)
	r.Open("code", nil)
	r.Text(c.Content)
	r.Close("code")
	r.Close("pre")
	r.CR()
}

// TextContent implements mdit.Textual.
func (c *CodeBlock) TextContent() string { return c.Content }

// CodeFence is a fenced code block.
type CodeFence struct {
	Info       string
	Marker     byte
	MarkerLen  int
	Content    string
	LangPrefix string
}

// Lang returns the first word of the info string.
func (c *CodeFence) Lang() string {
	info := unescapeAll(strings.TrimSpace(c.Info))
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		return info[:i]
	}
	return info
}

func (c *CodeFence) Render(n *mdit.Node, r mdit.Renderer) {
	var attrs []mdit.Attr
	if lang := c.Lang(); lang != "" {
		attrs = append(attrs, mdit.Attr{Name: "class", Value: c.LangPrefix + lang})
	}
	attrs = append(attrs, n.Attrs...)
	r.CR()
	r.Open("pre", nil)
	r.Open("code", attrs)
	r.Text(c.Content)
	r.Close("code")
	r.Close("pre")
	r.CR()
}

// TextContent implements mdit.Textual.
func (c *CodeFence) TextContent() string { return c.Content }

// FenceSettings is parser-level configuration for fenced code.
type FenceSettings struct {
	LangPrefix string
}

// DefaultLangPrefix prefixes the language name in the code element's class.
const DefaultLangPrefix = "language-"

// SetLangPrefix changes the class prefix of fenced code languages.
func SetLangPrefix(md *mdit.MarkdownIt, prefix string) {
	mdit.Insert(md.Ext, FenceSettings{LangPrefix: prefix})
}

func langPrefix(md *mdit.MarkdownIt) string {
	if fs, ok := mdit.Get[FenceSettings](md.Ext); ok {
		return fs.LangPrefix
	}
	return DefaultLangPrefix
}

// ==================== Headings ====================

type headingRule struct{}

func (headingRule) Check(s *mdit.BlockState) bool {
	_, _, ok := scanHeading(s)
	return ok
}

func (headingRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	level, content, ok := scanHeading(s)
	if !ok {
		return nil, 0
	}
	lo := s.LineOffsets[s.Line]
	node := mdit.NewNode(&Heading{Level: level})
	offset := strings.Index(s.Src[lo.FirstNonspace:lo.LineEnd], content)
	node.AppendChild(mdit.NewInlineRoot(content, []mdit.LineMapping{{SrcOffset: lo.FirstNonspace + max(offset, 0)}}))
	return node, 1
}

func scanHeading(s *mdit.BlockState) (int, string, bool) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return 0, "", false
	}
	line := s.GetLine(s.Line)
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	rest = strings.TrimRight(rest, " \t")
	// closing sequence: spaces then only '#'
	trimmed := strings.TrimRight(rest, "#")
	if trimmed == "" || strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t") {
		rest = trimmed
	}
	return level, strings.TrimSpace(rest), true
}

type lheadingRule struct{}

func (lheadingRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return nil, 0
	}
	start := s.Line
	level := 0
	next := start + 1
	for ; next < s.LineMax && !s.IsEmpty(next); next++ {
		if s.LineIndent(next) >= s.Md.MaxIndent {
			continue
		}
		if s.LineIndent(next) >= 0 {
			if l := setextLevel(s.GetLine(next)); l > 0 {
				level = l
				break
			}
		}
		if s.LineOffsets[next].IndentNonspace < 0 {
			continue
		}
		if s.Interrupted(next) {
			break
		}
	}
	if level == 0 {
		return nil, 0
	}
	content, mapping := s.GetLinesMapped(start, next, s.BlkIndent, false)
	node := mdit.NewNode(&Heading{Level: level})
	node.AppendChild(mdit.NewInlineRoot(content, mapping))
	return node, next + 1 - start
}

func setextLevel(line string) int {
	line = strings.TrimRight(line, " \t")
	if line == "" {
		return 0
	}
	c := line[0]
	if c != '=' && c != '-' {
		return 0
	}
	if strings.Trim(line, string(c)) != "" {
		return 0
	}
	if c == '=' {
		return 1
	}
	return 2
}

// ==================== Thematic Break ====================

type hrRule struct{}

func (hrRule) Check(s *mdit.BlockState) bool {
	return isThematicBreak(s, s.Line)
}

func (hrRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if !isThematicBreak(s, s.Line) {
		return nil, 0
	}
	return mdit.NewNode(&ThematicBreak{Marker: s.GetLine(s.Line)[0]}), 1
}

func isThematicBreak(s *mdit.BlockState, line int) bool {
	if s.LineIndent(line) >= s.Md.MaxIndent {
		return false
	}
	text := s.GetLine(line)
	if text == "" {
		return false
	}
	marker := text[0]
	if marker != '*' && marker != '-' && marker != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// ==================== Indented Code ====================

type codeRule struct{}

func (codeRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if s.LineIndent(s.Line) < s.Md.MaxIndent {
		return nil, 0
	}
	start := s.Line
	last := start + 1
	next := start + 1
	for next < s.LineMax {
		if s.IsEmpty(next) {
			next++
			continue
		}
		if s.LineIndent(next) >= s.Md.MaxIndent {
			next++
			last = next
			continue
		}
		break
	}
	content := s.GetLines(start, last, s.BlkIndent+s.Md.MaxIndent, false) + "\n"
	return mdit.NewNode(&CodeBlock{Content: content}), last - start
}

// ==================== Fenced Code ====================

type fenceRule struct{}

type fenceOpen struct {
	marker byte
	length int
	info   string
	indent int
}

func scanFence(s *mdit.BlockState) (fenceOpen, bool) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return fenceOpen{}, false
	}
	line := s.GetLine(s.Line)
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return fenceOpen{}, false
	}
	marker := line[0]
	n := 0
	for n < len(line) && line[n] == marker {
		n++
	}
	if n < 3 {
		return fenceOpen{}, false
	}
	info := line[n:]
	if marker == '`' && strings.IndexByte(info, '`') >= 0 {
		return fenceOpen{}, false
	}
	lo := s.LineOffsets[s.Line]
	return fenceOpen{
		marker: marker,
		length: n,
		info:   strings.TrimSpace(info),
		indent: lo.IndentNonspace - s.BlkIndent,
	}, true
}

func (fenceRule) Check(s *mdit.BlockState) bool {
	_, ok := scanFence(s)
	return ok
}

// Run consumes up to the closing fence. A fence left open runs to the end of
// the enclosing block.
func (fenceRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	open, ok := scanFence(s)
	if !ok {
		return nil, 0
	}
	start := s.Line
	next := start + 1
	closed := false
	for ; next < s.LineMax; next++ {
		lo := s.LineOffsets[next]
		if !s.IsEmpty(next) && lo.IndentNonspace < s.BlkIndent {
			break
		}
		if isFenceClose(s, next, open) {
			closed = true
			break
		}
	}
	content := s.GetLines(start+1, next, s.BlkIndent+open.indent, true)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	node := mdit.NewNode(&CodeFence{
		Info:       open.info,
		Marker:     open.marker,
		MarkerLen:  open.length,
		Content:    content,
		LangPrefix: langPrefix(s.Md),
	})
	consumed := next - start
	if closed {
		consumed++
	}
	return node, consumed
}

func isFenceClose(s *mdit.BlockState, line int, open fenceOpen) bool {
	if s.LineIndent(line) >= s.Md.MaxIndent {
		return false
	}
	text := strings.TrimRight(s.GetLine(line), " \t")
	if len(text) < open.length {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != open.marker {
			return false
		}
	}
	return true
}
