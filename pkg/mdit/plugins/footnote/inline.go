package footnote

import (
	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// AddInline installs the "^[body]" inline footnote rule.
func AddInline(md *mdit.MarkdownIt) {
	md.Inline.Add("footnote_inline", inlineRule{})
}

// InlineFootnote wraps the definition and reference synthesized from one
// inline footnote until the collect pass moves the definition away.
type InlineFootnote struct{}

func (*InlineFootnote) Render(n *mdit.Node, r mdit.Renderer) {
	r.Contents(n.Children)
}

type inlineRule struct{}

func (inlineRule) Marker() rune { return '^' }

// bodyEnd returns the position of the "]" closing "^[" at the cursor.
func bodyEnd(s *mdit.InlineState) (int, bool) {
	start := s.Pos
	if start+1 >= s.PosMax || s.Src[start+1] != '[' {
		return 0, false
	}
	end := cmark.ParseLinkLabel(s, start+1, false)
	if end < 0 {
		return 0, false
	}
	return end, true
}

func (inlineRule) Check(s *mdit.InlineState) (int, bool) {
	end, ok := bodyEnd(s)
	if !ok {
		return 0, false
	}
	return end + 1 - s.Pos, true
}

// Run allocates both ids and parses the body into the new definition.
func (inlineRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	end, ok := bodyEnd(s)
	if !ok {
		return nil, 0
	}
	footnotes := mdit.GetOrInsertDefault[FootnoteMap](s.RootExt)
	defID, refID := footnotes.AddInlineDef()

	def := mdit.NewNode(&Definition{DefID: defID, Inline: true})
	s.ParseNested(s.Pos+2, end, def)

	outer := mdit.NewNode(&InlineFootnote{})
	outer.AppendChild(def)
	outer.AppendChild(mdit.NewNode(&Reference{DefID: defID, RefID: refID}))
	return outer, end + 1 - s.Pos
}
