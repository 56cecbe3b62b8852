package extra

import (
	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// AnchorConfig controls heading ids. Headings outside [MinLevel, MaxLevel]
// are left alone.
type AnchorConfig struct {
	Prefix   string
	MinLevel int
	MaxLevel int
}

// AddHeadingAnchors gives every heading an id derived from its text. A
// heading that already has an id keeps it.
func AddHeadingAnchors(md *mdit.MarkdownIt) {
	AddHeadingAnchorsWith(md, AnchorConfig{MinLevel: 1, MaxLevel: 6})
}

// AddHeadingAnchorsWith is AddHeadingAnchors with explicit settings.
func AddHeadingAnchorsWith(md *mdit.MarkdownIt, cfg AnchorConfig) {
	mdit.Insert(md.Ext, cfg)
	md.Core.Add("heading_anchors", mdit.CoreRuleFunc(headingAnchors)).After("inline")
}

func headingAnchors(root *mdit.Node, md *mdit.MarkdownIt) {
	cfg, ok := mdit.Get[AnchorConfig](md.Ext)
	if !ok {
		return
	}
	var slugger Slugger
	root.Walk(func(node *mdit.Node, _ int) {
		h, ok := mdit.Cast[*cmark.Heading](node)
		if !ok || h.Level < cfg.MinLevel || h.Level > cfg.MaxLevel {
			return
		}
		if _, has := node.AttrValue("id"); has {
			return
		}
		node.SetAttr("id", cfg.Prefix+slugger.Slug(node.CollectText()))
	})
}
