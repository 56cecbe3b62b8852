package extra

import "github.com/open-cli-collective/mdit/pkg/mdit"

// AddNL2BR turns every newline inside a paragraph into a hard break. It
// takes precedence over the CommonMark newline rule when both are installed.
func AddNL2BR(md *mdit.MarkdownIt) {
	md.Inline.Add("nl2br", nl2brRule{}).Before("newline")
}

// LineBreak is a <br> produced from a plain newline.
type LineBreak struct{}

func (*LineBreak) Render(n *mdit.Node, r mdit.Renderer) {
	r.SelfClose("br", n.Attrs)
	r.CR()
}

// TextContent implements mdit.Textual.
func (*LineBreak) TextContent() string { return "\n" }

type nl2brRule struct{}

func (nl2brRule) Marker() rune { return '\n' }

func (nl2brRule) Check(*mdit.InlineState) (int, bool) { return 1, true }

func (nl2brRule) Run(*mdit.InlineState) (*mdit.Node, int) {
	return mdit.NewNode(&LineBreak{}), 1
}
