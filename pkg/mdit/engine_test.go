package mdit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Test Rules ====================

type hrValue struct{}

func (*hrValue) Render(n *Node, r Renderer) {
	r.CR()
	r.SelfClose("hr", n.Attrs)
	r.CR()
}

// ruleLine matches a line of exactly "***".
type ruleLine struct{}

func (ruleLine) Check(s *BlockState) bool {
	return s.LineIndent(s.Line) < s.Md.MaxIndent && s.GetLine(s.Line) == "***"
}

func (r ruleLine) Run(s *BlockState) (*Node, int) {
	if !r.Check(s) {
		return nil, 0
	}
	return NewNode(&hrValue{}), 1
}

type bangValue struct{ NoRender }

// bang turns "!" into <b>!</b>.
type bang struct{}

func (bang) Marker() rune { return '!' }

func (bang) Run(*InlineState) (*Node, int) {
	return NewNode(&bangHTML{}), 1
}

type bangHTML struct{}

func (*bangHTML) Render(_ *Node, r Renderer) {
	r.TextRaw("<b>!</b>")
}

type spanValue struct{}

func (*spanValue) Render(n *Node, r Renderer) {
	r.Open("span", n.Attrs)
	r.Contents(n.Children)
	r.Close("span")
}

// span parses "[...]" with nested markup, locating "]" through SkipToken.
type span struct{}

func (span) Marker() rune { return '[' }

func (span) Run(s *InlineState) (*Node, int) {
	start := s.Pos
	s.Pos = start + 1
	for s.Pos < s.PosMax {
		if s.Src[s.Pos] == ']' {
			end := s.Pos
			node := NewNode(&spanValue{})
			s.ParseNested(start+1, end, node)
			s.Pos = start
			return node, end + 1 - start
		}
		s.SkipToken()
	}
	s.Pos = start
	return nil, 0
}

type named struct {
	marker rune
	label  string
}

func (n named) Marker() rune { return n.marker }

func (n named) Run(*InlineState) (*Node, int) {
	return NewNode(&Text{Content: n.label}), 1
}

type brokenBlock struct{}

func (brokenBlock) Run(*BlockState) (*Node, int) {
	return NewNode(&Paragraph{}), 0
}

type brokenInline struct{}

func (brokenInline) Marker() rune { return '!' }

func (brokenInline) Run(*InlineState) (*Node, int) {
	return NewNode(&bangValue{}), 0
}

// ==================== Block Engine Tests ====================

func TestParse_Paragraphs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", ""},
		{"single", "hello", "<p>hello</p>\n"},
		{"two", "a\n\nb", "<p>a</p>\n<p>b</p>\n"},
		{"continuation", "a\nb", "<p>a\nb</p>\n"},
		{"trailing blank lines", "a\n\n\n", "<p>a</p>\n"},
		{"crlf", "a\r\n\r\nb", "<p>a</p>\n<p>b</p>\n"},
		{"escaped text", "a < b", "<p>a &lt; b</p>\n"},
		{"leading spaces trimmed", "   a", "<p>a</p>\n"},
	}
	md := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, md.Parse(tt.src).Render())
		})
	}
}

func TestParse_BlockRuleInterruptsParagraph(t *testing.T) {
	md := New()
	md.Block.Add("rule", ruleLine{})
	root := md.Parse("a\n***\n***")
	require.Len(t, root.Children, 3)
	assert.True(t, Is[*Paragraph](root.Children[0]))
	assert.True(t, Is[*hrValue](root.Children[1]))
	assert.True(t, Is[*hrValue](root.Children[2]))
}

func TestParse_OverIndentedLineIsLazyContinuation(t *testing.T) {
	md := New()
	md.Block.Add("rule", ruleLine{})
	root := md.Parse("a\n    ***")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "<p>a\n    ***</p>\n", root.Render())
}

func TestParse_BlockSourceMap(t *testing.T) {
	md := New()
	root := md.Parse("one\n\n  two")
	require.Len(t, root.Children, 2)
	assert.Equal(t, &SourcePos{Start: 0, End: 3}, root.Children[0].SrcMap)
	assert.Equal(t, &SourcePos{Start: 7, End: 10}, root.Children[1].SrcMap)
}

func TestParse_BlockRuleConsumingNothingIsInvariant(t *testing.T) {
	md := New()
	md.Block.Add("broken", brokenBlock{})

	err := Guard(func() { md.Parse("text") })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), `block rule "broken"`)
	TakeFailure()

	md.Block.Remove("broken")
	assert.Equal(t, "<p>text</p>\n", md.Parse("text").Render(), "parser stays usable")
}

func TestBlockState_GetLines(t *testing.T) {
	s := NewBlockState("  a\n\tb\n    c", New(), NewExtSet(), NewNode(&Container{}))
	require.Equal(t, 3, s.LineMax)
	assert.Equal(t, "a\nb\nc", s.GetLines(0, 3, 4, false))
	assert.Equal(t, "  a\n\tb\n    c", s.GetLines(0, 3, 0, false))
	assert.Equal(t, "c", s.GetLines(2, 3, 4, true))
	assert.Equal(t, "a\n", s.GetLines(0, 1, 2, true))
	assert.Equal(t, 4, s.LineIndent(1))
	assert.Equal(t, -1, s.LineIndent(3))
	assert.Equal(t, "b", s.GetLine(1))
}

func TestBlockState_EmptyLines(t *testing.T) {
	s := NewBlockState("a\n  \n\nb", New(), NewExtSet(), NewNode(&Container{}))
	assert.False(t, s.IsEmpty(0))
	assert.True(t, s.IsEmpty(1))
	assert.True(t, s.IsEmpty(2))
	assert.Equal(t, 3, s.SkipEmptyLines(1))
	assert.Equal(t, 0, s.SkipEmptyLines(0))
}

// ==================== Inline Engine Tests ====================

func TestParse_InlineRule(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})
	assert.Equal(t, "<p>hi<b>!</b>there</p>\n", md.Parse("hi!there").Render())
}

func TestParse_InlineNoMatchIsIdempotent(t *testing.T) {
	inputs := []string{"plain text", "a < b & c", "line one\nline two\n\npara"}
	plain := New()
	withRules := New()
	withRules.Inline.Add("bang", bang{})
	withRules.Inline.Add("span", span{})

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, plain.Parse(in).Render(), withRules.Parse(in).Render())
		})
	}
}

func TestParse_AdjacentTextMerges(t *testing.T) {
	md := New()
	md.Inline.Add("span", span{})
	root := md.Parse("a [ b")
	p := root.Children[0]
	require.Len(t, p.Children, 1, "unmatched marker becomes part of the surrounding text")
	assert.Equal(t, "a [ b", MustCast[*Text](p.Children[0]).Content)
}

func TestParse_NestedInline(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})
	md.Inline.Add("span", span{})

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple", "x[a]y", "<p>x<span>a</span>y</p>\n"},
		{"markup inside", "x[a!b]y", "<p>x<span>a<b>!</b>b</span>y</p>\n"},
		{"nested brackets", "[[a]]", "<p><span><span>a</span></span></p>\n"},
		{"unclosed", "[a", "<p>[a</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, md.Parse(tt.src).Render())
		})
	}
}

func TestParse_DeepNestingIsBounded(t *testing.T) {
	md := New()
	md.Inline.Add("span", span{})
	src := strings.Repeat("[", 300) + "core" + strings.Repeat("]", 300)

	var out string
	err := Guard(func() { out = md.Parse(src).Render() })
	require.NoError(t, err)
	assert.Contains(t, out, "core")
}

func TestParse_InlineRuleOrder(t *testing.T) {
	t.Run("registration order", func(t *testing.T) {
		md := New()
		md.Inline.Add("a", named{'!', "A"})
		md.Inline.Add("b", named{'!', "B"})
		assert.Equal(t, "<p>A</p>\n", md.Parse("!").Render())
	})
	t.Run("directive overrides registration order", func(t *testing.T) {
		md := New()
		md.Inline.Add("a", named{'!', "A"})
		md.Inline.Add("b", named{'!', "B"}).Before("a")
		assert.Equal(t, "<p>B</p>\n", md.Parse("!").Render())
	})
}

func TestParse_InlineRuleConsumingNothingIsInvariant(t *testing.T) {
	md := New()
	md.Inline.Add("broken", brokenInline{})
	err := Guard(func() { md.Parse("a!b") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `inline rule "broken"`)
	TakeFailure()
}

func TestInlineState_SourceOffsets(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})
	root := md.Parse("ab\n  c!")
	p := root.Children[0]
	require.Len(t, p.Children, 2)
	assert.Equal(t, &SourcePos{Start: 6, End: 7}, p.Children[1].SrcMap)
}

func TestInlineState_TrimTrailingSpaces(t *testing.T) {
	holder := NewNode(&Container{})
	s := NewInlineState("", New(), NewExtSet(), holder)
	s.PushText("a  ")
	assert.Equal(t, 2, s.TrimTrailingSpaces())
	s.Push(NewNode(&bangHTML{}))
	require.Len(t, holder.Children, 2)
	assert.Equal(t, "a", MustCast[*Text](holder.Children[0]).Content)
}

func TestMarkers(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})
	md.Inline.Add("span", span{})
	assert.ElementsMatch(t, []rune{'!', '['}, md.Inline.Markers())
}

func TestParseInline(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})
	assert.Equal(t, "x<b>!</b>", md.ParseInline("x!", nil).Render())
}
