// Package cmark provides the CommonMark grammar: headings, thematic breaks,
// code, block quotes, lists, link reference definitions, emphasis, code
// spans, links, images, autolinks, entities, escapes and line breaks.
package cmark

import "github.com/open-cli-collective/mdit/pkg/mdit"

// blockRules are in CommonMark precedence order.
var blockRules = []struct {
	name string
	rule mdit.BlockRule
}{
	{"code", codeRule{}},
	{"fence", fenceRule{}},
	{"blockquote", blockquoteRule{}},
	{"hr", hrRule{}},
	{"list", listRule{}},
	{"reference", referenceRule{}},
	{"heading", headingRule{}},
	{"lheading", lheadingRule{}},
}

var inlineRules = []struct {
	name string
	rule mdit.InlineRule
}{
	{"newline", newlineRule{}},
	{"escape", escapeRule{}},
	{"backticks", backtickRule{}},
	{"emphasis_star", emphasisRule{marker: '*'}},
	{"emphasis_underscore", emphasisRule{marker: '_'}},
	{"link", linkRule{}},
	{"image", imageRule{}},
	{"autolink", autolinkRule{}},
	{"entity", entityRule{}},
}

// Add installs every CommonMark rule.
func Add(md *mdit.MarkdownIt) {
	AddBlock(md)
	AddInline(md)
}

// AddBlock installs the block rules in CommonMark precedence order.
func AddBlock(md *mdit.MarkdownIt) {
	for _, r := range blockRules {
		md.Block.Add(r.name, r.rule)
	}
}

// AddInline installs the inline rules.
func AddInline(md *mdit.MarkdownIt) {
	for _, r := range inlineRules {
		md.Inline.Add(r.name, r.rule)
	}
}

// AddRule installs the single rule called name and reports whether such a
// rule exists. The rule goes after the rules already registered.
func AddRule(md *mdit.MarkdownIt, name string) bool {
	for _, r := range blockRules {
		if r.name == name {
			md.Block.Add(r.name, r.rule)
			return true
		}
	}
	for _, r := range inlineRules {
		if r.name == name {
			md.Inline.Add(r.name, r.rule)
			return true
		}
	}
	return false
}

// RuleNames lists the block rules and then the inline rules.
func RuleNames() []string {
	names := make([]string, 0, len(blockRules)+len(inlineRules))
	for _, r := range blockRules {
		names = append(names, r.name)
	}
	for _, r := range inlineRules {
		names = append(names, r.name)
	}
	return names
}
