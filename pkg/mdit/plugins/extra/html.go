package extra

import (
	"regexp"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddHTML installs raw HTML blocks and inline tags. Their content is emitted
// unescaped.
func AddHTML(md *mdit.MarkdownIt) {
	md.Block.Add("html_block", htmlBlockRule{}).Before("heading")
	md.Inline.Add("html_inline", htmlInlineRule{}).After("autolink")
}

// HTMLBlock is a run of raw HTML lines.
type HTMLBlock struct {
	Content string
}

func (h *HTMLBlock) Render(_ *mdit.Node, r mdit.Renderer) {
	r.CR()
	r.TextRaw(h.Content)
	r.CR()
}

// HTMLInline is a single raw HTML tag, comment or declaration.
type HTMLInline struct {
	Content string
}

func (h *HTMLInline) Render(_ *mdit.Node, r mdit.Renderer) {
	r.TextRaw(h.Content)
}

const (
	attrName     = `[a-zA-Z_:][a-zA-Z0-9:._-]*`
	unquoted     = "[^\"'=<>`\\x00-\\x20]+"
	singleQuoted = `'[^']*'`
	doubleQuoted = `"[^"]*"`
	attrValue    = `(?:` + unquoted + `|` + singleQuoted + `|` + doubleQuoted + `)`
	attribute    = `(?:\s+` + attrName + `(?:\s*=\s*` + attrValue + `)?)`
	openTag      = `<[A-Za-z][A-Za-z0-9\-]*` + attribute + `*\s*/?>`
	closeTag     = `</[A-Za-z][A-Za-z0-9\-]*\s*>`
	comment      = `<!---?>|<!--(?:[^-]|-[^-]|--[^>])*-->`
	processing   = `<[?][\s\S]*?[?]>`
	declaration  = `<![A-Za-z][^>]*>`
	cdata        = `<!\[CDATA\[[\s\S]*?\]\]>`
)

var (
	htmlTagPattern     = regexp.MustCompile(`^(?:` + openTag + `|` + closeTag + `|` + comment + `|` + processing + `|` + declaration + `|` + cdata + `)`)
	htmlOpenClosePat   = regexp.MustCompile(`^(?:` + openTag + `|` + closeTag + `)\s*$`)
	htmlBlockNamePat   = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9\-]*)(?:\s|/?>|$)`)
	htmlRawOpenPattern = regexp.MustCompile(`(?i)^<(script|pre|style|textarea)(?:\s|>|$)`)
	htmlRawClosePat    = regexp.MustCompile(`(?i)</(?:script|pre|style|textarea)>`)
)

// blockNames are the tags that start an HTML block running to the next
// blank line.
var blockNames = map[string]bool{}

func init() {
	for _, name := range strings.Fields(`address article aside base basefont blockquote body caption
		center col colgroup dd details dialog dir div dl dt fieldset figcaption figure footer form
		frame frameset h1 h2 h3 h4 h5 h6 head header hr html iframe legend li link main menu
		menuitem nav noframes ol optgroup option p param search section summary table tbody td
		tfoot th thead title tr track ul`) {
		blockNames[name] = true
	}
}

// htmlBlockKind identifies how an HTML block ends.
type htmlBlockKind int

const (
	htmlBlockNone htmlBlockKind = iota
	htmlBlockRaw                // until a closing script/pre/style/textarea tag
	htmlBlockComment            // until "-->"
	htmlBlockProcessing         // until "?>"
	htmlBlockCDATA              // until "]]>"
	htmlBlockDeclaration        // until ">"
	htmlBlockTag                // known block tag, until a blank line
	htmlBlockOther              // any complete tag alone on its line, until a blank line
)

func scanHTMLBlock(line string) htmlBlockKind {
	switch {
	case !strings.HasPrefix(line, "<"):
		return htmlBlockNone
	case htmlRawOpenPattern.MatchString(line):
		return htmlBlockRaw
	case strings.HasPrefix(line, "<!--"):
		return htmlBlockComment
	case strings.HasPrefix(line, "<?"):
		return htmlBlockProcessing
	case strings.HasPrefix(line, "<![CDATA["):
		return htmlBlockCDATA
	case len(line) > 2 && line[1] == '!' && isASCIIAlpha(line[2]):
		return htmlBlockDeclaration
	}
	if m := htmlBlockNamePat.FindStringSubmatch(line); m != nil && blockNames[strings.ToLower(m[1])] {
		return htmlBlockTag
	}
	if htmlOpenClosePat.MatchString(line) {
		return htmlBlockOther
	}
	return htmlBlockNone
}

func isASCIIAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func htmlBlockEnds(kind htmlBlockKind, line string) bool {
	switch kind {
	case htmlBlockRaw:
		return htmlRawClosePat.MatchString(line)
	case htmlBlockComment:
		return strings.Contains(line, "-->")
	case htmlBlockProcessing:
		return strings.Contains(line, "?>")
	case htmlBlockCDATA:
		return strings.Contains(line, "]]>")
	case htmlBlockDeclaration:
		return strings.Contains(line, ">")
	}
	return false
}

type htmlBlockRule struct{}

// Check reports whether an HTML block may interrupt a paragraph here. A bare
// tag of an unknown element may not.
func (htmlBlockRule) Check(s *mdit.BlockState) bool {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return false
	}
	kind := scanHTMLBlock(s.GetLine(s.Line))
	return kind != htmlBlockNone && kind != htmlBlockOther
}

func (htmlBlockRule) Run(s *mdit.BlockState) (*mdit.Node, int) {
	if s.LineIndent(s.Line) >= s.Md.MaxIndent {
		return nil, 0
	}
	start := s.Line
	kind := scanHTMLBlock(s.GetLine(start))
	if kind == htmlBlockNone {
		return nil, 0
	}

	next := start
	if !htmlBlockEnds(kind, s.GetLine(start)) {
		for next = start + 1; next < s.LineMax; next++ {
			if !s.IsEmpty(next) && s.LineOffsets[next].IndentNonspace < s.BlkIndent {
				break
			}
			if kind >= htmlBlockTag {
				if s.IsEmpty(next) {
					break
				}
				continue
			}
			if htmlBlockEnds(kind, s.GetLine(next)) {
				next++
				break
			}
		}
	} else {
		next = start + 1
	}
	content := s.GetLines(start, next, s.BlkIndent, true)
	return mdit.NewNode(&HTMLBlock{Content: content}), next - start
}

type htmlInlineRule struct{}

func (htmlInlineRule) Marker() rune { return '<' }

func (htmlInlineRule) Check(s *mdit.InlineState) (int, bool) {
	m := htmlTagPattern.FindString(s.Src[s.Pos:s.PosMax])
	return len(m), m != ""
}

func (htmlInlineRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	m := htmlTagPattern.FindString(s.Src[s.Pos:s.PosMax])
	if m == "" {
		return nil, 0
	}
	return mdit.NewNode(&HTMLInline{Content: m}), len(m)
}
