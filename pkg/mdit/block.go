// block.go implements the line-oriented block rule engine.
package mdit

import "strings"

// BlockRule recognizes a block construct starting at s.Line. On success it
// returns the constructed node and the number of lines consumed (at least 1).
// A nil node means "no match"; the rule must then leave s unchanged.
type BlockRule interface {
	Run(s *BlockState) (*Node, int)
}

// BlockChecker is implemented by block rules that may start in the middle of
// a paragraph. Check reports whether the rule would match at s.Line without
// building anything.
type BlockChecker interface {
	Check(s *BlockState) bool
}

// BlockRuleFunc adapts a plain function to BlockRule.
type BlockRuleFunc func(s *BlockState) (*Node, int)

// Run implements BlockRule.
func (f BlockRuleFunc) Run(s *BlockState) (*Node, int) { return f(s) }

// LineOffset describes one source line. Nested rules (block quotes, list
// items, footnote definitions) move FirstNonspace and IndentNonspace past
// their own markers before parsing their contents.
type LineOffset struct {
	// LineStart is the byte offset where the line begins.
	LineStart int
	// LineEnd is the byte offset of the line terminator (or end of input).
	LineEnd int
	// FirstNonspace is the byte offset of the first non-whitespace byte.
	FirstNonspace int
	// IndentNonspace is the column of FirstNonspace, tabs expanded to 4.
	IndentNonspace int
}

// LineMapping maps an offset in extracted content back to the source.
type LineMapping struct {
	Offset    int
	SrcOffset int
}

// BlockState is the transient cursor of one block parse.
type BlockState struct {
	Src     string
	Md      *MarkdownIt
	RootExt *ExtSet
	// Node receives the nodes produced by block rules.
	Node *Node

	LineOffsets []LineOffset
	Line        int
	LineMax     int
	// BlkIndent is the indent of the block currently being parsed.
	BlkIndent int
	// ListIndent is the indent of the enclosing list item, or -1.
	ListIndent int
	// Tight is false once a blank line was seen between siblings.
	Tight bool
	Level int
}

// NewBlockState splits src into lines and prepares a cursor that appends into node.
func NewBlockState(src string, md *MarkdownIt, rootExt *ExtSet, node *Node) *BlockState {
	s := &BlockState{
		Src:        src,
		Md:         md,
		RootExt:    rootExt,
		Node:       node,
		ListIndent: -1,
		Tight:      true,
	}
	start := 0
	for start < len(src) {
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += start
		}
		s.LineOffsets = append(s.LineOffsets, measureLine(src, start, end))
		start = end + 1
	}
	s.LineMax = len(s.LineOffsets)
	return s
}

func measureLine(src string, start, end int) LineOffset {
	lo := LineOffset{LineStart: start, LineEnd: end, FirstNonspace: end}
	col := 0
	for i := start; i < end; i++ {
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

// IsEmpty reports whether line holds only whitespace.
func (s *BlockState) IsEmpty(line int) bool {
	if line < 0 || line >= len(s.LineOffsets) {
		return true
	}
	lo := s.LineOffsets[line]
	return lo.FirstNonspace >= lo.LineEnd
}

// SkipEmptyLines returns the first non-empty line at or after from.
func (s *BlockState) SkipEmptyLines(from int) int {
	for from < s.LineMax && s.IsEmpty(from) {
		from++
	}
	return from
}

// LineIndent returns the indent of line relative to the current block, or
// -1 past the end of the current block.
func (s *BlockState) LineIndent(line int) int {
	if line >= s.LineMax {
		return -1
	}
	return s.LineOffsets[line].IndentNonspace - s.BlkIndent
}

// GetLine returns line from its first non-whitespace byte to its end.
func (s *BlockState) GetLine(line int) string {
	if line >= len(s.LineOffsets) {
		return ""
	}
	lo := s.LineOffsets[line]
	return s.Src[lo.FirstNonspace:lo.LineEnd]
}

// LineRest returns line from byte offset pos to its end.
func (s *BlockState) LineRest(line, pos int) string {
	lo := s.LineOffsets[line]
	if pos > lo.LineEnd {
		return ""
	}
	return s.Src[pos:lo.LineEnd]
}

// GetLines joins lines [begin, end), removing up to indent columns of
// leading whitespace from each.
func (s *BlockState) GetLines(begin, end, indent int, keepLastLF bool) string {
	text, _ := s.GetLinesMapped(begin, end, indent, keepLastLF)
	return text
}

// GetLinesMapped is GetLines that also reports where each line came from.
func (s *BlockState) GetLinesMapped(begin, end, indent int, keepLastLF bool) (string, []LineMapping) {
	if begin >= end {
		return "", nil
	}
	var sb strings.Builder
	mapping := make([]LineMapping, 0, end-begin)
	for line := begin; line < end; line++ {
		lo := s.LineOffsets[line]
		first := lo.LineStart
		last := lo.LineEnd
		if (line+1 < end || keepLastLF) && last < len(s.Src) {
			last++
		}
		col := 0
	scan:
		for first < last && col < indent {
			switch {
			case s.Src[first] == ' ':
				col++
			case s.Src[first] == '\t':
				col += 4 - col%4
			case first < lo.FirstNonspace:
				// marker bytes already claimed by an enclosing block
				col++
			default:
				break scan
			}
			first++
		}
		if col > indent {
			sb.WriteString(strings.Repeat(" ", col-indent))
		}
		mapping = append(mapping, LineMapping{Offset: sb.Len(), SrcOffset: first})
		sb.WriteString(s.Src[first:last])
	}
	return sb.String(), mapping
}

// Interrupted reports whether some rule that may interrupt a paragraph
// matches at line.
func (s *BlockState) Interrupted(line int) bool {
	saved := s.Line
	defer func() { s.Line = saved }()
	s.Line = line
	for _, rule := range s.Md.Block.Rules() {
		if c, ok := rule.(BlockChecker); ok && c.Check(s) {
			return true
		}
	}
	return false
}

// TokenizeInto parses lines [start, end) as children of node, one nesting
// level deeper. On return s.Line is the first line not consumed.
func (s *BlockState) TokenizeInto(node *Node, start, end int) {
	savedNode, savedMax := s.Node, s.LineMax
	s.Node, s.LineMax = node, end
	s.Level++
	s.Md.Block.Tokenize(s, start, end)
	s.Level--
	s.Node, s.LineMax = savedNode, savedMax
}

// BlockParser owns the ordered block rules.
type BlockParser struct {
	Ruler[BlockRule]
}

// Tokenize runs block rules over lines [start, end), appending to s.Node.
func (b *BlockParser) Tokenize(s *BlockState, start, end int) {
	line := start
	hasEmptyLines := false
	for line < end {
		line = s.SkipEmptyLines(line)
		s.Line = line
		if line >= end {
			break
		}
		// dedented below the enclosing block: the parent rule decides what's next
		if s.LineOffsets[line].IndentNonspace < s.BlkIndent {
			break
		}
		if s.Level >= s.Md.MaxNesting {
			s.Md.Logger.Debug().Int("level", s.Level).Int("line", line).Msg("block nesting limit reached")
			s.Line = end
			break
		}

		node, n := b.runRules(s, line)
		if node.SrcMap == nil {
			node.SrcMap = &SourcePos{
				Start: s.LineOffsets[line].FirstNonspace,
				End:   s.LineOffsets[line+n-1].LineEnd,
			}
		}
		s.Node.AppendChild(node)
		s.Line = line + n

		s.Tight = !hasEmptyLines
		if s.IsEmpty(s.Line - 1) {
			hasEmptyLines = true
		}
		line = s.Line
		if line < end && s.IsEmpty(line) {
			hasEmptyLines = true
			line++
			s.Line = line
		}
	}
}

func (b *BlockParser) runRules(s *BlockState, line int) (*Node, int) {
	for i, rule := range b.rules {
		s.Line = line
		node, n := rule.Run(s)
		if node == nil {
			continue
		}
		if n < 1 {
			Invariantf("block rule %q matched but consumed %d lines", b.names[i], n)
		}
		s.Line = line
		return node, n
	}
	s.Line = line
	return paragraph(s)
}

// paragraph accumulates lines until a blank line or a line that another
// rule claims. Over-indented lines are lazy continuations.
func paragraph(s *BlockState) (*Node, int) {
	start := s.Line
	next := start + 1
	for ; next < s.LineMax && !s.IsEmpty(next); next++ {
		if s.LineIndent(next) >= s.Md.MaxIndent {
			continue
		}
		// negative indent marks a lazy continuation line inside a container
		if s.LineOffsets[next].IndentNonspace < 0 {
			continue
		}
		if s.Interrupted(next) {
			break
		}
	}
	content, mapping := s.GetLinesMapped(start, next, s.BlkIndent, false)
	node := NewNode(&Paragraph{})
	node.AppendChild(NewInlineRoot(content, mapping))
	return node, next - start
}

// NewInlineRoot wraps raw inline content, trimming surrounding whitespace,
// for the inline pass to expand later.
func NewInlineRoot(content string, mapping []LineMapping) *Node {
	lead := len(content) - len(strings.TrimLeft(content, " \t\n"))
	content = strings.TrimSpace(content)
	if lead > 0 && len(mapping) > 0 {
		shifted := make([]LineMapping, 0, len(mapping))
		for i, m := range mapping {
			if i == 0 {
				m.SrcOffset += lead
				m.Offset = 0
			} else {
				m.Offset -= lead
			}
			shifted = append(shifted, m)
		}
		mapping = shifted
	}
	return NewNode(&InlineRoot{Content: content, Mapping: mapping})
}
