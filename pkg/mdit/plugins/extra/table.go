package extra

import (
	"regexp"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddTable installs GFM pipe tables:
//
//	| Name | Size |
//	|:-----|-----:|
//	| a    |    1 |
//
// A table may interrupt a paragraph.
func AddTable(md *mdit.MarkdownIt) {
	md.Block.Add("table", tableRule{}).Before("code")
}

// Align is the alignment of a table column.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) style() string {
	switch a {
	case AlignLeft:
		return "text-align:left"
	case AlignCenter:
		return "text-align:center"
	case AlignRight:
		return "text-align:right"
	}
	return ""
}

// Table holds a TableHead and, when there are body rows, a TableBody.
type Table struct {
	Aligns []Align
}

func (*Table) Render(n *mdit.Node, r mdit.Renderer) {
	renderTableBlock("table", n, r)
}

// TableHead holds the header row.
type TableHead struct{}

func (*TableHead) Render(n *mdit.Node, r mdit.Renderer) {
	renderTableBlock("thead", n, r)
}

// TableBody holds the body rows.
type TableBody struct{}

func (*TableBody) Render(n *mdit.Node, r mdit.Renderer) {
	renderTableBlock("tbody", n, r)
}

// TableRow is one row of cells.
type TableRow struct{}

func (*TableRow) Render(n *mdit.Node, r mdit.Renderer) {
	renderTableBlock("tr", n, r)
}

// TableCell is a th (Header) or td element.
type TableCell struct {
	Header bool
	Align  Align
}

func (c *TableCell) Render(n *mdit.Node, r mdit.Renderer) {
	tag := "td"
	if c.Header {
		tag = "th"
	}
	attrs := append([]mdit.Attr(nil), n.Attrs...)
	if style := c.Align.style(); style != "" {
		attrs = append(attrs, mdit.Attr{Name: "style", Value: style})
	}
	r.Open(tag, attrs)
	r.Contents(n.Children)
	r.Close(tag)
	r.CR()
}

func renderTableBlock(tag string, n *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.Open(tag, n.Attrs)
	r.CR()
	r.Contents(n.Children)
	r.CR()
	r.Close(tag)
	r.CR()
}

// ==================== Parsing ====================

var delimCell = regexp.MustCompile(`^:?-+:?$`)

// rowCell is one cell of a row; off is the byte offset of text in Src.
type rowCell struct {
	text string
	off  int
}

// splitRow splits a row at unescaped pipes. One leading and one trailing
// pipe are optional and do not open an empty cell.
func splitRow(line string, off int) []rowCell {
	trimmed := strings.TrimRight(line, " \t")
	start := 0
	if strings.HasPrefix(trimmed, "|") {
		start = 1
	}
	var cells []rowCell
	cellStart := start
	for i := start; i < len(trimmed); i++ {
		if trimmed[i] != '|' || escapedAt(trimmed, i) {
			continue
		}
		cells = append(cells, rowCell{text: trimmed[cellStart:i], off: off + cellStart})
		cellStart = i + 1
	}
	if cellStart < len(trimmed) {
		cells = append(cells, rowCell{text: trimmed[cellStart:], off: off + cellStart})
	}
	return cells
}

// escapedAt reports whether line[i] is preceded by an odd run of backslashes.
func escapedAt(line string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// parseDelimRow returns the column alignments of a "|---|:-:|" row.
func parseDelimRow(line string) ([]Align, bool) {
	if !strings.Contains(line, "|") {
		return nil, false
	}
	switch line[0] {
	case '|', '-', ':':
	default:
		return nil, false
	}
	cells := splitRow(line, 0)
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]Align, len(cells))
	for i, c := range cells {
		text := strings.TrimSpace(c.text)
		if !delimCell.MatchString(text) {
			return nil, false
		}
		left, right := strings.HasPrefix(text, ":"), strings.HasSuffix(text, ":")
		switch {
		case left && right:
			aligns[i] = AlignCenter
		case left:
			aligns[i] = AlignLeft
		case right:
			aligns[i] = AlignRight
		}
	}
	return aligns, true
}

type tableRule struct{}

// scan matches a header row at s.Line followed by a delimiter row with the
// same number of cells.
func (tableRule) scan(s *mdit.BlockState) ([]rowCell, []Align, bool) {
	head, delim := s.Line, s.Line+1
	if delim >= s.LineMax || s.IsEmpty(delim) {
		return nil, nil, false
	}
	for _, line := range []int{head, delim} {
		if indent := s.LineIndent(line); indent < 0 || indent >= s.Md.MaxIndent {
			return nil, nil, false
		}
	}
	aligns, ok := parseDelimRow(s.GetLine(delim))
	if !ok {
		return nil, nil, false
	}
	headLine := s.GetLine(head)
	if !strings.Contains(headLine, "|") {
		return nil, nil, false
	}
	cells := splitRow(headLine, s.LineOffsets[head].FirstNonspace)
	if len(cells) != len(aligns) {
		return nil, nil, false
	}
	return cells, aligns, true
}

func (r tableRule) Check(s *mdit.BlockState) bool {
	_, _, ok := r.scan(s)
	return ok
}

// Run builds the table. Body rows run to the first blank line or the first
// line another block claims; short rows are padded and extra cells dropped.
func (r tableRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	headCells, aligns, ok := r.scan(s)
	if !ok {
		return nil, 0
	}
	start := s.Line

	table := mdit.NewNode(&Table{Aligns: aligns})
	head := mdit.NewNode(&TableHead{})
	head.AppendChild(tableRow(s, start, headCells, aligns, true))
	table.AppendChild(head)

	var body *mdit.Node
	next := start + 2
	for ; next < s.LineMax && !s.IsEmpty(next); next++ {
		if indent := s.LineIndent(next); indent < 0 || indent >= s.Md.MaxIndent {
			break
		}
		if s.Interrupted(next) {
			break
		}
		if body == nil {
			body = mdit.NewNode(&TableBody{})
		}
		cells := splitRow(s.GetLine(next), s.LineOffsets[next].FirstNonspace)
		body.AppendChild(tableRow(s, next, cells, aligns, false))
	}
	if body != nil {
		table.AppendChild(body)
	}
	return table, next - start
}

func tableRow(s *mdit.BlockState, line int, cells []rowCell, aligns []Align, header bool) *mdit.Node {
	lo := s.LineOffsets[line]
	row := mdit.NewNode(&TableRow{})
	row.SrcMap = &mdit.SourcePos{Start: lo.FirstNonspace, End: lo.LineEnd}
	for i, align := range aligns {
		cell := mdit.NewNode(&TableCell{Header: header, Align: align})
		if i < len(cells) {
			c := cells[i]
			cell.AppendChild(mdit.NewInlineRoot(c.text, []mdit.LineMapping{{Offset: 0, SrcOffset: c.off}}))
		}
		row.AppendChild(cell)
	}
	return row
}
