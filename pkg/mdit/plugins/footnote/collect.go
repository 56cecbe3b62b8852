package footnote

import "github.com/open-cli-collective/mdit/pkg/mdit"

// AddCollect installs the pass that gathers definitions at the end of the
// document.
func AddCollect(md *mdit.MarkdownIt) {
	md.Core.Add("footnote_collect", mdit.CoreRuleFunc(collect)).After("inline")
}

// Footnotes is the list of collected definitions, the last child of the root.
type Footnotes struct{}

func (*Footnotes) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := append(append([]mdit.Attr(nil), n.Attrs...), mdit.Attr{Name: "class", Value: "footnotes"})
	r.CR()
	r.SelfClose("hr", []mdit.Attr{{Name: "class", Value: "footnotes-sep"}})
	r.CR()
	r.Open("section", attrs)
	r.CR()
	r.Open("ol", []mdit.Attr{{Name: "class", Value: "footnotes-list"}})
	r.CR()
	r.Contents(n.Children)
	r.CR()
	r.Close("ol")
	r.CR()
	r.Close("section")
	r.CR()
}

// collect detaches every definition from where it was parsed. Referenced
// definitions are appended, in document order, to a Footnotes node at the
// end of the root; unreferenced ones are dropped.
func collect(root *mdit.Node, _ *mdit.MarkdownIt) {
	ext := mdit.RootExt(root)
	if ext == nil {
		return
	}
	footnotes, ok := mdit.Get[FootnoteMap](ext)
	if !ok {
		return
	}

	pruneDeadRefs(root, footnotes)

	var defs []*mdit.Node
	var gather func(n *mdit.Node)
	gather = func(n *mdit.Node) {
		n.WalkMut(func(node *mdit.Node, _ int) {
			detached := false
			for i, child := range node.Children {
				def, ok := mdit.Cast[*Definition](child)
				if !ok {
					continue
				}
				mdit.Detach(node, i)
				detached = true
				if len(footnotes.ReferencedBy(def.DefID)) == 0 {
					continue
				}
				if def.Inline {
					para := mdit.NewNode(&mdit.Paragraph{})
					para.Children = child.Children
					para.SrcMap = child.SrcMap
					child.Children = []*mdit.Node{para}
				}
				defs = append(defs, child)
				// definitions can nest through inline footnotes in their bodies
				gather(child)
			}
			if detached {
				mdit.Prune(node)
			}
		})
	}
	gather(root)

	if len(defs) == 0 {
		return
	}
	list := mdit.NewNode(&Footnotes{})
	list.Children = defs
	root.AppendChild(list)
}

// pruneDeadRefs forgets references that sit inside definitions nothing live
// points to, so their ids never reach a back-ref. A definition is live when
// a reference in the body text or in another live definition targets it;
// the loop runs until no more definitions come alive.
func pruneDeadRefs(root *mdit.Node, footnotes *FootnoteMap) {
	type ref struct {
		owner int
		*Reference
	}
	var refs []ref
	var visit func(n *mdit.Node, owner int)
	visit = func(n *mdit.Node, owner int) {
		for _, child := range n.Children {
			switch v := child.Value.(type) {
			case *Definition:
				visit(child, v.DefID)
				continue
			case *Reference:
				refs = append(refs, ref{owner: owner, Reference: v})
			}
			visit(child, owner)
		}
	}
	visit(root, 0)

	live := map[int]bool{0: true}
	for changed := true; changed; {
		changed = false
		for _, r := range refs {
			if live[r.owner] && !live[r.DefID] {
				live[r.DefID] = true
				changed = true
			}
		}
	}

	keep := make(map[int]bool, len(refs))
	for _, r := range refs {
		if live[r.owner] {
			keep[r.RefID] = true
		}
	}
	footnotes.retainRefs(func(refID int) bool { return keep[refID] })
}
