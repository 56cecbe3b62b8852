package extra

import (
	"regexp"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddTagFilter installs the GFM "disallowed raw HTML" pass, which escapes
// the opening bracket of tags that change how following HTML is parsed.
func AddTagFilter(md *mdit.MarkdownIt) {
	md.Core.Add("tag_filter", mdit.CoreRuleFunc(tagFilter)).After("inline")
}

var disallowedTag = regexp.MustCompile(`(?i)<(/?(?:iframe|noembed|noframes|plaintext|script|style|title|textarea|xmp))`)

func tagFilter(root *mdit.Node, _ *mdit.MarkdownIt) {
	root.Walk(func(node *mdit.Node, _ int) {
		switch v := node.Value.(type) {
		case *HTMLBlock:
			v.Content = disallowedTag.ReplaceAllString(v.Content, "&lt;$1")
		case *HTMLInline:
			v.Content = disallowedTag.ReplaceAllString(v.Content, "&lt;$1")
		}
	})
}
