// container.go holds the container block rules: block quotes and lists.
package cmark

import (
	"strconv"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Blockquote is a "> " quoted block.
type Blockquote struct{}

func (*Blockquote) Render(n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.Open("blockquote", n.Attrs)
	r.CR()
	r.Contents(n.Children)
	r.CR()
	r.Close("blockquote")
	r.CR()
}

// BulletList is an unordered list.
type BulletList struct {
	Marker byte
	Tight  bool
}

func (*BulletList) Render(n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.Open("ul", n.Attrs)
	r.CR()
	r.Contents(n.Children)
	r.CR()
	r.Close("ul")
	r.CR()
}

// OrderedList is a numbered list.
type OrderedList struct {
	Start  int
	Marker byte
	Tight  bool
}

func (l *OrderedList) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := n.Attrs
	if l.Start != 1 {
		attrs = append([]mdit.Attr{{Name: "start", Value: strconv.Itoa(l.Start)}}, attrs...)
	}
	r.CR()
	r.Open("ol", attrs)
	r.CR()
	r.Contents(n.Children)
	r.CR()
	r.Close("ol")
	r.CR()
}

// ListItem is one entry of a list.
type ListItem struct{}

func (*ListItem) Render(n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.Open("li", n.Attrs)
	r.Contents(n.Children)
	r.Close("li")
	r.CR()
}

// ==================== Block Quotes ====================

type blockquoteRule struct{}

func (blockquoteRule) Check(s *mdit.BlockState) bool {
	return isQuoteLine(s, s.Line)
}

func isQuoteLine(s *mdit.BlockState, line int) bool {
	if s.IsEmpty(line) || s.LineIndent(line) >= s.Md.MaxIndent {
		return false
	}
	lo := s.LineOffsets[line]
	return lo.IndentNonspace >= s.BlkIndent && s.Src[lo.FirstNonspace] == '>'
}

func (blockquoteRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if !isQuoteLine(s, s.Line) {
		return nil, 0
	}
	start := s.Line
	saved := make([]mdit.LineOffset, 0, 4)
	next := start
	lastEmpty := false
	for ; next < s.LineMax; next++ {
		lo := s.LineOffsets[next]
		saved = append(saved, lo)
		if isQuoteLine(s, next) {
			pos := lo.FirstNonspace + 1
			if pos < lo.LineEnd && (s.Src[pos] == ' ' || s.Src[pos] == '\t') {
				pos++
			}
			inner := measureFrom(s.Src, pos, lo.LineEnd)
			s.LineOffsets[next] = inner
			lastEmpty = inner.FirstNonspace >= inner.LineEnd
			continue
		}
		if s.IsEmpty(next) || lastEmpty {
			saved = saved[:len(saved)-1]
			break
		}
		if s.Interrupted(next) {
			saved = saved[:len(saved)-1]
			break
		}
		// lazy continuation
		s.LineOffsets[next].IndentNonspace = -1
	}

	savedBlk, savedList := s.BlkIndent, s.ListIndent
	s.BlkIndent, s.ListIndent = 0, -1
	node := mdit.NewNode(&Blockquote{})
	s.TokenizeInto(node, start, next)
	consumed := s.Line - start
	s.BlkIndent, s.ListIndent = savedBlk, savedList
	copy(s.LineOffsets[start:], saved)

	if consumed < 1 {
		consumed = 1
	}
	return node, consumed
}

// measureFrom describes the part of a line starting at pos, with columns
// counted from pos.
func measureFrom(src string, pos, end int) mdit.LineOffset {
	lo := mdit.LineOffset{LineStart: pos, LineEnd: end, FirstNonspace: end}
	col := 0
	for i := pos; i < end; i++ {
		switch src[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			lo.FirstNonspace = i
			lo.IndentNonspace = col
			return lo
		}
	}
	lo.IndentNonspace = col
	return lo
}

// ==================== Lists ====================

type listRule struct{}

type listMarker struct {
	ordered bool
	char    byte
	start   int
	// pos is the byte offset just past the marker
	pos int
}

// scanListMarker parses a bullet ("-", "+", "*") or ordered ("1." / "1)")
// marker at the first non-space byte of line.
func scanListMarker(s *mdit.BlockState, line int) (listMarker, bool) {
	lo := s.LineOffsets[line]
	pos, end := lo.FirstNonspace, lo.LineEnd
	if pos >= end {
		return listMarker{}, false
	}
	src := s.Src
	var m listMarker
	switch c := src[pos]; {
	case c == '-' || c == '+' || c == '*':
		m = listMarker{char: c, pos: pos + 1}
	case c >= '0' && c <= '9':
		i := pos
		for i < end && src[i] >= '0' && src[i] <= '9' {
			i++
		}
		if i-pos > 9 || i >= end || (src[i] != '.' && src[i] != ')') {
			return listMarker{}, false
		}
		n, _ := strconv.Atoi(src[pos:i])
		m = listMarker{ordered: true, char: src[i], start: n, pos: i + 1}
	default:
		return listMarker{}, false
	}
	if m.pos < end && src[m.pos] != ' ' && src[m.pos] != '\t' {
		return listMarker{}, false
	}
	return m, true
}

// Check decides whether a list may interrupt a paragraph: ordered lists
// must start at 1 and the first item must not be empty.
func (listRule) Check(s *mdit.BlockState) bool {
	line := s.Line
	if s.LineIndent(line) >= s.Md.MaxIndent {
		return false
	}
	lo := s.LineOffsets[line]
	if s.ListIndent >= 0 && lo.IndentNonspace-s.ListIndent >= s.Md.MaxIndent && lo.IndentNonspace < s.BlkIndent {
		return false
	}
	m, ok := scanListMarker(s, line)
	if !ok {
		return false
	}
	if lo.IndentNonspace >= s.BlkIndent {
		if m.ordered && m.start != 1 {
			return false
		}
		if measureFrom(s.Src, m.pos, lo.LineEnd).FirstNonspace >= lo.LineEnd {
			return false
		}
	}
	return true
}

func (listRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	start := s.Line
	if s.LineIndent(start) >= s.Md.MaxIndent {
		return nil, 0
	}
	if s.ListIndent >= 0 && s.LineOffsets[start].IndentNonspace-s.ListIndent >= s.Md.MaxIndent &&
		s.LineOffsets[start].IndentNonspace < s.BlkIndent {
		return nil, 0
	}
	m, ok := scanListMarker(s, start)
	if !ok || isThematicBreak(s, start) {
		return nil, 0
	}

	var list *mdit.Node
	if m.ordered {
		list = mdit.NewNode(&OrderedList{Start: m.start, Marker: m.char})
	} else {
		list = mdit.NewNode(&BulletList{Marker: m.char})
	}

	tight := true
	prevEmptyEnd := false
	next := start
	for next < s.LineMax {
		lo := s.LineOffsets[next]
		initial := lo.IndentNonspace + (m.pos - lo.FirstNonspace)
		offset := initial
		pos := m.pos
		for pos < lo.LineEnd {
			if s.Src[pos] == ' ' {
				offset++
			} else if s.Src[pos] == '\t' {
				offset += 4 - offset%4
			} else {
				break
			}
			pos++
		}
		contentStart := pos
		indentAfterMarker := offset - initial
		if contentStart >= lo.LineEnd || indentAfterMarker > 4 {
			indentAfterMarker = 1
		}
		indent := initial + indentAfterMarker

		item := mdit.NewNode(&ListItem{})
		savedTight, savedBlk, savedList := s.Tight, s.BlkIndent, s.ListIndent
		s.ListIndent = s.BlkIndent
		s.BlkIndent = indent
		s.Tight = true
		s.LineOffsets[next].FirstNonspace = contentStart
		s.LineOffsets[next].IndentNonspace = offset

		if contentStart >= lo.LineEnd && s.IsEmpty(next+1) {
			s.Line = min(next+2, s.LineMax)
		} else {
			s.TokenizeInto(item, next, s.LineMax)
		}
		if s.Line <= next {
			s.Line = next + 1
		}
		if !s.Tight || prevEmptyEnd {
			tight = false
		}
		prevEmptyEnd = s.Line-next > 1 && s.IsEmpty(s.Line-1)

		s.Tight, s.BlkIndent, s.ListIndent = savedTight, savedBlk, savedList
		s.LineOffsets[next] = lo
		item.SrcMap = &mdit.SourcePos{Start: lo.FirstNonspace, End: s.LineOffsets[s.Line-1].LineEnd}
		list.AppendChild(item)

		next = s.Line
		if next >= s.LineMax {
			break
		}
		if s.LineOffsets[next].IndentNonspace < s.BlkIndent || s.LineIndent(next) >= s.Md.MaxIndent {
			break
		}
		if isThematicBreak(s, next) {
			break
		}
		nm, ok := scanListMarker(s, next)
		if !ok || nm.ordered != m.ordered || nm.char != m.char {
			break
		}
		m.pos = nm.pos
	}

	if tight {
		markTight(list)
	}
	switch v := list.Value.(type) {
	case *BulletList:
		v.Tight = tight
	case *OrderedList:
		v.Tight = tight
	}
	return list, next - start
}

// markTight unwraps the paragraphs of each item so tight lists render
// without <p> tags.
func markTight(list *mdit.Node) {
	for _, item := range list.Children {
		children := make([]*mdit.Node, 0, len(item.Children))
		for _, child := range item.Children {
			if mdit.Is[*mdit.Paragraph](child) {
				children = append(children, child.Children...)
				continue
			}
			children = append(children, child)
		}
		item.Children = children
	}
}
