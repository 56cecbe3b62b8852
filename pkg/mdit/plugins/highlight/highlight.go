// Package highlight replaces fenced code blocks with syntax-highlighted HTML.
//
// Highlighting runs as a core pass after inline parsing, so it sees every
// fence the grammar produced, including fences nested in lists and
// footnotes. Results are memoized in an LRU cache shared by every document
// the parser handles.
package highlight

import (
	"bytes"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// DefaultCacheSize is the number of highlighted blocks kept per parser.
const DefaultCacheSize = 256

// Config controls the highlighter.
type Config struct {
	// Style names a chroma style for inline colors. It is ignored when
	// Classes is set.
	Style string
	// Classes emits Pygments-compatible class names instead of inline styles.
	Classes bool
	// CacheSize bounds the memo cache; zero means DefaultCacheSize.
	CacheSize int
}

// DefaultConfig emits class names.
func DefaultConfig() Config {
	return Config{Style: "github", Classes: true, CacheSize: DefaultCacheSize}
}

// Add installs the highlight pass with DefaultConfig.
func Add(md *mdit.MarkdownIt) {
	AddWith(md, DefaultConfig())
}

// AddWith installs the highlight pass with cfg.
func AddWith(md *mdit.MarkdownIt, cfg Config) {
	h := NewHighlighter(cfg)
	mdit.Insert(md.Ext, h)
	md.Core.Add("highlight", mdit.CoreRuleFunc(highlightPass)).After("inline")
}

// Highlighter turns code into HTML. It is safe for concurrent use.
type Highlighter struct {
	cfg   Config
	style *chroma.Style
	cache *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	lang string
	code string
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// NewHighlighter builds a Highlighter. An unknown style falls back to
// chroma's default.
func NewHighlighter(cfg Config) *Highlighter {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	style := styles.Get(cfg.Style)
	if style == nil {
		style = styles.Fallback
	}
	cache, err := lru.New[cacheKey, string](cfg.CacheSize)
	if err != nil {
		mdit.Invariantf("highlight cache: %v", err)
	}
	return &Highlighter{cfg: cfg, style: style, cache: cache}
}

// CacheLen reports how many highlighted blocks are memoized.
func (h *Highlighter) CacheLen() int {
	return h.cache.Len()
}

// Highlight returns the highlighted body of code and the display name of the
// language used. Unknown languages are treated as plain text.
func (h *Highlighter) Highlight(lang, code string) (string, string) {
	lexer := lookupLexer(lang)
	name := lexer.Config().Name
	key := cacheKey{lang: name, code: code}
	if html, ok := h.cache.Get(key); ok {
		return html, name
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		buf.WriteString(mdit.EscapeHTML(code))
	} else {
		for _, token := range iterator.Tokens() {
			h.writeToken(buf, token)
		}
	}
	html := buf.String()
	h.cache.Add(key, html)
	return html, name
}

func lookupLexer(lang string) chroma.Lexer {
	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	if l := lexers.Get("plaintext"); l != nil {
		return l
	}
	return lexers.Fallback
}

func (h *Highlighter) writeToken(buf *bytes.Buffer, token chroma.Token) {
	text := mdit.EscapeHTML(token.Value)
	if h.cfg.Classes {
		class := tokenClass(token.Type)
		if class == "" {
			buf.WriteString(text)
			return
		}
		buf.WriteString(`<span class="` + class + `">` + text + "</span>")
		return
	}
	css := inlineStyle(h.style.Get(token.Type))
	if css == "" {
		buf.WriteString(text)
		return
	}
	buf.WriteString(`<span style="` + css + `">` + text + "</span>")
}

// tokenClass walks up the token category until it finds a short class name.
func tokenClass(t chroma.TokenType) string {
	for ; t != chroma.Background; t = t.Parent() {
		if class, ok := chroma.StandardTypes[t]; ok && class != "" {
			return class
		}
		if t.Parent() == t {
			break
		}
	}
	return ""
}

func inlineStyle(entry chroma.StyleEntry) string {
	var parts []string
	if entry.Colour.IsSet() {
		parts = append(parts, "color:"+entry.Colour.String())
	}
	if entry.Bold == chroma.Yes {
		parts = append(parts, "font-weight:bold")
	}
	if entry.Italic == chroma.Yes {
		parts = append(parts, "font-style:italic")
	}
	if entry.Underline == chroma.Yes {
		parts = append(parts, "text-decoration:underline")
	}
	return strings.Join(parts, ";")
}

// Code is a fenced code block after highlighting. HTML is the highlighted
// body; Source keeps the original fence.
type Code struct {
	Source *cmark.CodeFence
	Lang   string
	HTML   string
}

func (c *Code) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := append([]mdit.Attr{{Name: "class", Value: "codehilite"}}, n.Attrs...)
	r.CR()
	r.Open("div", attrs)
	r.Open("span", []mdit.Attr{{Name: "class", Value: "filename"}})
	r.Text(c.Lang)
	r.Close("span")
	r.Open("pre", nil)
	r.Open("span", nil)
	r.Close("span")
	var codeAttrs []mdit.Attr
	if lang := c.Source.Lang(); lang != "" {
		codeAttrs = []mdit.Attr{{Name: "class", Value: c.Source.LangPrefix + lang}}
	}
	r.Open("code", codeAttrs)
	r.TextRaw(c.HTML)
	r.Close("code")
	r.Close("pre")
	r.Close("div")
	r.CR()
}

// TextContent implements mdit.Textual.
func (c *Code) TextContent() string { return c.Source.Content }

func highlightPass(root *mdit.Node, md *mdit.MarkdownIt) {
	h, ok := mdit.Get[*Highlighter](md.Ext)
	if !ok {
		return
	}
	root.Walk(func(node *mdit.Node, _ int) {
		fence, ok := mdit.Cast[*cmark.CodeFence](node)
		if !ok {
			return
		}
		html, name := (*h).Highlight(fence.Lang(), fence.Content)
		node.Value = &Code{Source: fence, Lang: name, HTML: html}
	})
}
