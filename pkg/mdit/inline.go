// inline.go implements the marker-indexed inline rule engine.
package mdit

import (
	"strings"
	"unicode/utf8"
)

// InlineRule recognizes an inline construct that starts with Marker at
// s.Pos. On success it returns the node and the number of bytes consumed
// (greater than zero). A nil node means "no match".
type InlineRule interface {
	Marker() rune
	Run(s *InlineState) (*Node, int)
}

// InlineChecker is implemented by rules that can measure a match without
// building it. SkipToken prefers Check; rules whose Run has side effects on
// document state must implement it.
type InlineChecker interface {
	Check(s *InlineState) (int, bool)
}

// InlineState is the transient cursor of one inline parse.
type InlineState struct {
	Src     string
	Pos     int
	PosMax  int
	Level   int
	Md      *MarkdownIt
	RootExt *ExtSet
	// Node receives the nodes produced by inline rules.
	Node *Node
	// Mapping translates offsets in Src to offsets in the document.
	Mapping []LineMapping

	pending strings.Builder
	cache   map[int]int
}

// NewInlineState prepares a cursor over src that appends into node.
func NewInlineState(src string, md *MarkdownIt, rootExt *ExtSet, node *Node) *InlineState {
	return &InlineState{
		Src:     src,
		PosMax:  len(src),
		Md:      md,
		RootExt: rootExt,
		Node:    node,
		cache:   make(map[int]int),
	}
}

// Push appends node to s.Node after any pending text. A Text node is
// merged into a preceding Text node.
func (s *InlineState) Push(node *Node) {
	s.flushPending()
	if t, ok := Cast[*Text](node); ok && len(node.Children) == 0 {
		if last, ok := Cast[*Text](s.Node.LastChild()); ok {
			last.Content += t.Content
			return
		}
	}
	s.Node.AppendChild(node)
}

// PushText queues literal text; adjacent text merges into one Text node.
func (s *InlineState) PushText(text string) {
	s.pending.WriteString(text)
}

// TrimTrailingSpaces removes trailing spaces from the text emitted so far
// and returns how many were removed.
func (s *InlineState) TrimTrailingSpaces() int {
	if s.pending.Len() > 0 {
		text := s.pending.String()
		trimmed := strings.TrimRight(text, " ")
		s.pending.Reset()
		s.pending.WriteString(trimmed)
		return len(text) - len(trimmed)
	}
	if t, ok := Cast[*Text](s.Node.LastChild()); ok {
		trimmed := strings.TrimRight(t.Content, " ")
		n := len(t.Content) - len(trimmed)
		t.Content = trimmed
		return n
	}
	return 0
}

func (s *InlineState) flushPending() {
	if s.pending.Len() == 0 {
		return
	}
	text := s.pending.String()
	s.pending.Reset()
	if t, ok := Cast[*Text](s.Node.LastChild()); ok {
		t.Content += text
		return
	}
	s.Node.AppendChild(NewNode(&Text{Content: text}))
}

// SrcOffset translates an offset in s.Src to a document offset.
func (s *InlineState) SrcOffset(pos int) int {
	if len(s.Mapping) == 0 {
		return pos
	}
	m := s.Mapping[0]
	for _, next := range s.Mapping[1:] {
		if next.Offset > pos {
			break
		}
		m = next
	}
	return m.SrcOffset + pos - m.Offset
}

// SkipToken advances s.Pos past the construct at s.Pos without emitting
// anything: past a whole match if some rule recognizes one, otherwise past
// one character. Results are memoized per position.
func (s *InlineState) SkipToken() {
	pos := s.Pos
	if end, ok := s.cache[pos]; ok {
		s.Pos = end
		return
	}
	r, size := utf8.DecodeRuneInString(s.Src[pos:])
	if s.Level >= s.Md.MaxNesting {
		s.Pos = s.PosMax
		s.cache[pos] = s.Pos
		return
	}
	p := s.Md.Inline
	for _, i := range p.markers[r] {
		s.Level++
		n, ok := s.check(p.rules[i])
		s.Level--
		s.Pos = pos
		if ok && n > 0 {
			s.Pos = pos + n
			s.cache[pos] = s.Pos
			return
		}
	}
	s.Pos = pos + size
	s.cache[pos] = s.Pos
}

func (s *InlineState) check(rule InlineRule) (int, bool) {
	if c, ok := rule.(InlineChecker); ok {
		return c.Check(s)
	}
	saved := s.Node
	s.Node = NewNode(&Container{})
	node, n := rule.Run(s)
	s.Node = saved
	return n, node != nil
}

// ParseNested tokenizes Src[start:end] into the children of into, one
// nesting level deeper, then restores the cursor.
func (s *InlineState) ParseNested(start, end int, into *Node) {
	savedPos, savedMax, savedNode := s.Pos, s.PosMax, s.Node
	savedPending := s.pending.String()
	s.pending.Reset()

	s.Pos, s.PosMax, s.Node = start, end, into
	s.Level++
	s.Md.Inline.Tokenize(s)
	s.Level--

	s.Pos, s.PosMax, s.Node = savedPos, savedMax, savedNode
	s.pending.WriteString(savedPending)
}

// InlineParser owns the inline rules and the marker index over them.
type InlineParser struct {
	Ruler[InlineRule]
	markers map[rune][]int
}

func (p *InlineParser) rebuildMarkers() {
	markers := make(map[rune][]int)
	for i, rule := range p.rules {
		m := rule.Marker()
		markers[m] = append(markers[m], i)
	}
	p.markers = markers
}

// Markers returns the set of characters that trigger at least one rule.
func (p *InlineParser) Markers() []rune {
	out := make([]rune, 0, len(p.markers))
	for r := range p.markers {
		out = append(out, r)
	}
	return out
}

// Tokenize runs inline rules over s.Src[s.Pos:s.PosMax], appending to s.Node.
func (p *InlineParser) Tokenize(s *InlineState) {
	for s.Pos < s.PosMax {
		r, size := utf8.DecodeRuneInString(s.Src[s.Pos:])
		candidates := p.markers[r]
		if len(candidates) == 0 {
			end := s.Pos + size
			for end < s.PosMax {
				r2, size2 := utf8.DecodeRuneInString(s.Src[end:])
				if _, ok := p.markers[r2]; ok {
					break
				}
				end += size2
			}
			s.pending.WriteString(s.Src[s.Pos:end])
			s.Pos = end
			continue
		}

		if s.Level < s.Md.MaxNesting && p.runRules(s, candidates) {
			continue
		}
		s.pending.WriteString(s.Src[s.Pos : s.Pos+size])
		s.Pos += size
	}
	s.flushPending()
}

func (p *InlineParser) runRules(s *InlineState, candidates []int) bool {
	start := s.Pos
	for _, i := range candidates {
		node, n := p.rules[i].Run(s)
		s.Pos = start
		if node == nil {
			continue
		}
		if n <= 0 {
			Invariantf("inline rule %q matched but consumed %d bytes", p.names[i], n)
		}
		if node.SrcMap == nil && s.Mapping != nil {
			node.SrcMap = &SourcePos{Start: s.SrcOffset(start), End: s.SrcOffset(start + n)}
		}
		s.Push(node)
		s.Pos = start + n
		return true
	}
	return false
}
