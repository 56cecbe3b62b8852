package extra

import (
	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// AddStrikethrough installs "~~text~~".
func AddStrikethrough(md *mdit.MarkdownIt) {
	md.Inline.Add("strikethrough", strikethroughRule{})
}

// Strikethrough is deleted text.
type Strikethrough struct{}

func (*Strikethrough) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("s", n.Attrs)
	r.Contents(n.Children)
	r.Close("s")
}

type strikethroughRule struct{}

func (strikethroughRule) Marker() rune { return '~' }

// match requires runs of exactly two tildes on both sides.
func (strikethroughRule) match(s *mdit.InlineState) (int, bool) {
	open := cmark.ScanDelims(s, s.Pos)
	if open.Length != 2 || !open.CanOpen {
		return 0, false
	}
	closer, closing, ok := cmark.FindCloser(s, '~', s.Pos+2)
	if !ok || closing.Length != 2 || closer == s.Pos+2 {
		return 0, false
	}
	return closer, true
}

func (r strikethroughRule) Check(s *mdit.InlineState) (int, bool) {
	closer, ok := r.match(s)
	if !ok {
		return 0, false
	}
	return closer + 2 - s.Pos, true
}

func (r strikethroughRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	closer, ok := r.match(s)
	if !ok {
		return nil, 0
	}
	node := mdit.NewNode(&Strikethrough{})
	s.ParseNested(s.Pos+2, closer, node)
	return node, closer + 2 - s.Pos
}
