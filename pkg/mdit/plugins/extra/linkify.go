package extra

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// AddLinkify installs GFM extended autolinks: bare "http://", "https://"
// and "www." links in running text.
func AddLinkify(md *mdit.MarkdownIt) {
	md.Inline.Add("autolink_ext_http", linkifyRule{marker: 'h'})
	md.Inline.Add("autolink_ext_www", linkifyRule{marker: 'w'})
}

var (
	linkifyHTTP = regexp.MustCompile(`^https?://[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9](?:[^\s<]*)?`)
	linkifyWWW  = regexp.MustCompile(`^www\.[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9](?:[^\s<]*)?`)
)

type linkifyRule struct {
	marker rune
}

func (l linkifyRule) Marker() rune { return l.marker }

func (l linkifyRule) match(s *mdit.InlineState) string {
	if s.Pos > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s.Src[:s.Pos])
		if !unicode.IsSpace(prev) && !strings.ContainsRune("*_~(", prev) {
			return ""
		}
	}
	rest := s.Src[s.Pos:s.PosMax]
	pattern := linkifyHTTP
	if l.marker == 'w' {
		pattern = linkifyWWW
	}
	return trimLinkTail(pattern.FindString(rest))
}

// trimLinkTail drops trailing punctuation and unbalanced closing parens, as
// GFM does.
func trimLinkTail(link string) string {
	for link != "" {
		last := link[len(link)-1]
		switch {
		case strings.IndexByte("?!.,:*_~'\"", last) >= 0:
			link = link[:len(link)-1]
		case last == ')' && strings.Count(link, ")") > strings.Count(link, "("):
			link = link[:len(link)-1]
		case last == ';':
			if i := strings.LastIndexByte(link, '&'); i >= 0 && isEntityName(link[i+1:len(link)-1]) {
				link = link[:i]
			} else {
				return link
			}
		default:
			return link
		}
	}
	return link
}

func isEntityName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func (l linkifyRule) Check(s *mdit.InlineState) (int, bool) {
	link := l.match(s)
	return len(link), link != ""
}

func (l linkifyRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	link := l.match(s)
	if link == "" {
		return nil, 0
	}
	href := link
	if l.marker == 'w' {
		href = "http://" + link
	}
	href = cmark.NormalizeLink(href)
	if !cmark.ValidateLink(href) {
		return nil, 0
	}
	node := mdit.NewNode(&cmark.Autolink{URL: href})
	node.AppendChild(mdit.NewNode(&mdit.Text{Content: link}))
	return node, len(link)
}
