// Package extra holds optional syntax beyond CommonMark: front matter,
// strikethrough, bare-URL autolinks, raw HTML with the GFM tag filter,
// heading anchors, hard line breaks on every newline, chat citations,
// contact links and source positions.
package extra

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddFrontMatter installs the front matter rule ahead of every other block
// rule.
func AddFrontMatter(md *mdit.MarkdownIt) {
	md.Block.Add("front_matter", frontMatterRule{}).BeforeAll()
}

// FrontMatter is a "---" fenced metadata block at the very top of a
// document. It renders nothing. Data holds the YAML mapping when Content
// decodes to one; Err holds the decode error otherwise.
type FrontMatter struct {
	mdit.NoRender
	Content string
	Data    map[string]any
	Err     error
}

type frontMatterRule struct{}

// Run matches only on the first line of the document. The closing fence
// starts with the same run of dashes as the opening one.
func (frontMatterRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if s.Line != 0 || !mdit.Is[*mdit.Root](s.Node) {
		return nil, 0
	}
	if s.LineOffsets[0].IndentNonspace != 0 {
		return nil, 0
	}
	line := s.GetLine(0)
	opening := line[:len(line)-len(strings.TrimLeft(line, "-"))]
	if len(opening) < 3 {
		return nil, 0
	}

	next := 1
	for ; next < s.LineMax; next++ {
		if strings.HasPrefix(s.GetLine(next), opening) {
			break
		}
	}
	if next >= s.LineMax {
		return nil, 0
	}

	fm := &FrontMatter{Content: s.GetLines(1, next, 0, true)}
	if strings.TrimSpace(fm.Content) != "" {
		if err := yaml.Unmarshal([]byte(fm.Content), &fm.Data); err != nil {
			fm.Err = err
			fm.Data = nil
		}
	}
	return mdit.NewNode(fm), next + 1
}
