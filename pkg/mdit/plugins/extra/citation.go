package extra

import (
	"strconv"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

const (
	citationOpen  = '【'
	citationClose = '】'
)

// Citation is one numbered source a chat answer refers to as 【n】.
type Citation struct {
	Index   int
	Title   string
	Source  string
	Passage string
	Offset  int
}

// CitationConfig is the parser-level list of known citations.
type CitationConfig struct {
	Citations    []Citation
	OpenInNewTab bool
}

// AddCitations installs the citation rule. A marker whose number is not an
// index into cfg.Citations stays literal text.
func AddCitations(md *mdit.MarkdownIt, cfg CitationConfig) {
	mdit.Insert(md.Ext, cfg)
	md.Inline.Add("citation", citationRule{})
}

// CitationRef renders a citation marker as a superscript link to its source.
type CitationRef struct {
	Citation     Citation
	OpenInNewTab bool
}

func (c *CitationRef) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("sup", n.Attrs)
	r.TextRaw(c.anchorHTML())
	r.Close("sup")
}

// TextContent implements mdit.Textual.
func (c *CitationRef) TextContent() string {
	return strconv.Itoa(c.Citation.Index)
}

func (c *CitationRef) anchorHTML() string {
	index := strconv.Itoa(c.Citation.Index)
	if !strings.HasPrefix(c.Citation.Source, "http") {
		return "<a>" + index + "</a>"
	}
	target := ""
	if c.OpenInNewTab {
		target = ` target="_blank"`
	}
	return `<a href="` + mdit.EscapeHTML(c.Citation.Source) + `"` + target + ">" + index + "</a>"
}

type citationRule struct{}

func (citationRule) Marker() rune { return citationOpen }

func (citationRule) match(s *mdit.InlineState) (*CitationRef, int) {
	cfg, ok := mdit.Get[CitationConfig](s.Md.Ext)
	if !ok {
		return nil, 0
	}
	input := s.Src[s.Pos:s.PosMax]
	open := len(string(citationOpen))
	end := strings.IndexRune(input, citationClose)
	if end < 0 {
		return nil, 0
	}
	digits := input[open:end]
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || idx >= len(cfg.Citations) || strings.ContainsAny(digits, "+-") {
		return nil, 0
	}
	return &CitationRef{Citation: cfg.Citations[idx], OpenInNewTab: cfg.OpenInNewTab},
		end + len(string(citationClose))
}

func (c citationRule) Check(s *mdit.InlineState) (int, bool) {
	ref, n := c.match(s)
	return n, ref != nil
}

func (c citationRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	ref, n := c.match(s)
	if ref == nil {
		return nil, 0
	}
	return mdit.NewNode(ref), n
}
