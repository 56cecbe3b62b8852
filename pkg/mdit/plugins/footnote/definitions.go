package footnote

import (
	"strconv"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddDefinitions installs the "[^label]: body" block rule. It runs before
// link reference definitions, which would otherwise claim the same syntax.
func AddDefinitions(md *mdit.MarkdownIt) {
	md.Block.Add("footnote_definition", definitionRule{}).Before("reference")
}

// Definition holds the body of a footnote. Label is empty and Inline is set
// for definitions synthesized from "^[...]".
type Definition struct {
	Label  string
	DefID  int
	Inline bool
}

func (d *Definition) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := append([]mdit.Attr(nil), n.Attrs...)
	if d.DefID > 0 {
		attrs = append(attrs, mdit.Attr{Name: "id", Value: "fn" + strconv.Itoa(d.DefID)})
	}
	attrs = append(attrs, mdit.Attr{Name: "class", Value: "footnote-item"})
	r.CR()
	r.Open("li", attrs)
	r.Contents(n.Children)
	r.Close("li")
	r.CR()
}

type definitionRule struct{}

type definitionStart struct {
	label        string
	contentStart int
	offset       int
}

// scanDefinition matches "[^label]:" at the current line. The label may not
// contain whitespace.
func scanDefinition(s *mdit.BlockState) (definitionStart, bool) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return definitionStart{}, false
	}
	lo := s.LineOffsets[s.Line]
	line := s.Src[lo.FirstNonspace:lo.LineEnd]
	if !strings.HasPrefix(line, "[^") {
		return definitionStart{}, false
	}
	end := strings.IndexByte(line, ']')
	if end < 3 || end+1 >= len(line) || line[end+1] != ':' {
		return definitionStart{}, false
	}
	label := line[2:end]
	if strings.ContainsAny(label, " \t") {
		return definitionStart{}, false
	}

	pos := lo.FirstNonspace + end + 2
	offset := 0
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
	return definitionStart{label: label, contentStart: pos, offset: offset}, true
}

// Check lets a definition interrupt a paragraph only inside another
// definition, so a run of definitions does not merge into the first body.
func (definitionRule) Check(s *mdit.BlockState) bool {
	if !mdit.Is[*Definition](s.Node) {
		return false
	}
	_, ok := scanDefinition(s)
	return ok
}

// Run parses the definition body as nested blocks indented by four columns.
// A label that is already defined does not match, so the line falls through
// to the remaining rules.
func (definitionRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	start, ok := scanDefinition(s)
	if !ok {
		return nil, 0
	}
	footnotes := mdit.GetOrInsertDefault[FootnoteMap](s.RootExt)
	defID, ok := footnotes.AddDef(start.label)
	if !ok {
		return nil, 0
	}

	node := mdit.NewNode(&Definition{Label: start.label, DefID: defID})
	first := s.Line
	firstOffsets := s.LineOffsets[first]
	savedTight, savedBlk := s.Tight, s.BlkIndent

	s.BlkIndent += 4
	indent := start.offset
	if indent < s.BlkIndent {
		indent += s.BlkIndent
	}
	s.LineOffsets[first] = mdit.LineOffset{
		LineStart:      start.contentStart,
		LineEnd:        firstOffsets.LineEnd,
		FirstNonspace:  start.contentStart,
		IndentNonspace: indent,
	}
	s.TokenizeInto(node, first, s.LineMax)
	if s.Line <= first {
		s.Line = first + 1
	}
	consumed := s.Line - first

	s.LineOffsets[first] = firstOffsets
	s.Tight, s.BlkIndent = savedTight, savedBlk
	s.Line = first
	return node, consumed
}
