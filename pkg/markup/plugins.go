package markup

import (
	"sort"

	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/extra"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/footnote"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/highlight"
	"github.com/open-cli-collective/mdit/pkg/preprocess"
)

// Preset names.
const (
	PresetChat       = "chat"
	PresetCommonMark = "commonmark"
	PresetGFM        = "gfm"
	PresetZero       = "zero"
)

var presets = map[string][]string{
	PresetZero:       nil,
	PresetCommonMark: {"cmark", "html"},
	PresetGFM:        {"cmark", "html", "tag_filter", "table", "strikethrough", "linkify", "tasklist"},
	PresetChat: {
		"nl2br", "cmark", "html", "table", preprocess.ContactInfo, preprocess.Citation, "highlight",
	},
}

type installer func(p *Parser)

// plugins are the named plugins beyond the individual CommonMark rules.
var plugins = map[string]installer{
	"cmark":           func(p *Parser) { cmark.Add(p.md) },
	"footnote":        func(p *Parser) { footnote.Add(p.md) },
	"front_matter":    func(p *Parser) { extra.AddFrontMatter(p.md) },
	"strikethrough":   func(p *Parser) { extra.AddStrikethrough(p.md) },
	"table":           func(p *Parser) { extra.AddTable(p.md) },
	"tasklist":        func(p *Parser) { extra.AddTaskList(p.md) },
	"linkify":         func(p *Parser) { extra.AddLinkify(p.md) },
	"html":            func(p *Parser) { extra.AddHTML(p.md) },
	"tag_filter":      func(p *Parser) { extra.AddTagFilter(p.md) },
	"heading_anchors": func(p *Parser) { extra.AddHeadingAnchorsWith(p.md, p.anchors) },
	"nl2br":           func(p *Parser) { extra.AddNL2BR(p.md) },
	"sourcepos":       func(p *Parser) { extra.AddSourcePos(p.md) },
	"highlight":       func(p *Parser) { highlight.AddWith(p.md, p.highlight) },

	preprocess.Citation:    func(p *Parser) { extra.AddCitations(p.md, p.citations) },
	preprocess.ContactInfo: func(p *Parser) { extra.AddContactInfo(p.md) },
}

func lookupPlugin(name string) (installer, bool) {
	if install, ok := plugins[name]; ok {
		return install, true
	}
	for _, rule := range cmark.RuleNames() {
		if rule == name {
			return func(p *Parser) { cmark.AddRule(p.md, name) }, true
		}
	}
	return nil, false
}

// ListPlugins returns every name Enable accepts: the CommonMark rules in
// precedence order, then the other plugins sorted by name.
func ListPlugins() []string {
	names := cmark.RuleNames()
	others := make([]string, 0, len(plugins))
	for name := range plugins {
		others = append(others, name)
	}
	sort.Strings(others)
	return append(names, others...)
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetPlugins returns the plugins a preset enables.
func PresetPlugins(preset string) ([]string, bool) {
	names, ok := presets[preset]
	if !ok {
		return nil, false
	}
	return append([]string(nil), names...), true
}
