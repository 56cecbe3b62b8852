package footnote

import (
	"strconv"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddBackRefs installs the pass that links definitions back to their
// references.
func AddBackRefs(md *mdit.MarkdownIt) {
	md.Core.Add("footnote_back_refs", mdit.CoreRuleFunc(backRefs)).After("footnote_collect")
}

// RefAnchor renders one "↩︎" link per reference to the enclosing definition.
type RefAnchor struct {
	RefIDs []int
}

func (a *RefAnchor) Render(n *mdit.Node, r mdit.Renderer) {
	for _, id := range a.RefIDs {
		r.TextRaw("&nbsp;")
		attrs := append([]mdit.Attr{
			{Name: "href", Value: "#fnref" + strconv.Itoa(id)},
			{Name: "class", Value: "footnote-backref"},
		}, n.Attrs...)
		r.Open("a", attrs)
		r.TextRaw("\u21a9\ufe0e")
		r.Close("a")
	}
}

// backRefs appends a RefAnchor to the last paragraph of each referenced
// definition, or to the definition itself when it does not end in one.
func backRefs(root *mdit.Node, _ *mdit.MarkdownIt) {
	ext := mdit.RootExt(root)
	if ext == nil {
		return
	}
	footnotes, ok := mdit.Get[FootnoteMap](ext)
	if !ok {
		return
	}
	root.Walk(func(node *mdit.Node, _ int) {
		def, ok := mdit.Cast[*Definition](node)
		if !ok {
			return
		}
		ids := footnotes.ReferencedBy(def.DefID)
		if len(ids) == 0 {
			return
		}
		anchor := mdit.NewNode(&RefAnchor{RefIDs: ids})
		if last := node.LastChild(); last != nil && mdit.Is[*mdit.Paragraph](last) {
			last.AppendChild(anchor)
			return
		}
		node.AppendChild(anchor)
	})
}
