// link.go matches inline links, reference links, images and autolinks.
package cmark

import (
	"regexp"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Link is a hyperlink; its children are the link text.
type Link struct {
	URL   string
	Title string
}

func (l *Link) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := []mdit.Attr{{Name: "href", Value: l.URL}}
	if l.Title != "" {
		attrs = append(attrs, mdit.Attr{Name: "title", Value: l.Title})
	}
	r.Open("a", append(attrs, n.Attrs...))
	r.Contents(n.Children)
	r.Close("a")
}

// Image is an image; its children are the alt text.
type Image struct {
	URL   string
	Title string
}

func (img *Image) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := []mdit.Attr{
		{Name: "src", Value: img.URL},
		{Name: "alt", Value: n.CollectText()},
	}
	if img.Title != "" {
		attrs = append(attrs, mdit.Attr{Name: "title", Value: img.Title})
	}
	r.SelfClose("img", append(attrs, n.Attrs...))
}

// Autolink is a "<scheme:...>" or "<user@host>" link.
type Autolink struct {
	URL string
}

func (a *Autolink) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("a", append([]mdit.Attr{{Name: "href", Value: a.URL}}, n.Attrs...))
	r.Contents(n.Children)
	r.Close("a")
}

// linkTarget is the resolved destination of "[text](...)" or "[text][ref]".
type linkTarget struct {
	href     string
	title    string
	labelBeg int
	labelEnd int
	consumed int
}

// parseLinkAt parses a link whose label opens with "[" at labelOpen; start
// is where the construct begins ("[" or "![").
func parseLinkAt(s *mdit.InlineState, start, labelOpen int) (linkTarget, bool) {
	labelEnd := ParseLinkLabel(s, labelOpen, false)
	if labelEnd < 0 {
		return linkTarget{}, false
	}
	src, max := s.Src, s.PosMax
	pos := labelEnd + 1

	if pos < max && src[pos] == '(' {
		if t, ok := parseInlineTarget(src, pos, max); ok {
			t.labelBeg, t.labelEnd, t.consumed = labelOpen+1, labelEnd, t.consumed-start
			return t, true
		}
	}

	// reference link: full, collapsed or shortcut
	refs, ok := mdit.Get[ReferenceMap](s.RootExt)
	if !ok {
		return linkTarget{}, false
	}
	label := ""
	end := pos
	if pos < max && src[pos] == '[' {
		if closeAt := ParseLinkLabel(s, pos, false); closeAt >= 0 {
			label = src[pos+1 : closeAt]
			end = closeAt + 1
		}
	}
	if label == "" {
		label = src[labelOpen+1 : labelEnd]
	}
	ref, ok := refs.Lookup(label)
	if !ok {
		return linkTarget{}, false
	}
	return linkTarget{
		href:     ref.Href,
		title:    ref.Title,
		labelBeg: labelOpen + 1,
		labelEnd: labelEnd,
		consumed: end - start,
	}, true
}

// parseInlineTarget parses "(dest "title")" at pos. consumed holds the
// absolute end offset.
func parseInlineTarget(src string, pos, max int) (linkTarget, bool) {
	pos = skipSpaces(src, pos+1, max)
	var t linkTarget
	if pos < max && src[pos] != ')' {
		dest, after, ok := parseLinkDestination(src, pos, max)
		if !ok {
			return linkTarget{}, false
		}
		t.href = NormalizeLink(dest)
		if !ValidateLink(t.href) {
			return linkTarget{}, false
		}
		pos = after
		ws := skipSpaces(src, pos, max)
		if ws != pos {
			if title, afterTitle, ok := parseLinkTitle(src, ws, max); ok {
				t.title = title
				ws = skipSpaces(src, afterTitle, max)
			}
		}
		pos = ws
	}
	if pos >= max || src[pos] != ')' {
		return linkTarget{}, false
	}
	t.consumed = pos + 1
	return t, true
}

// ==================== Links ====================

type linkRule struct{}

func (linkRule) Marker() rune { return '[' }

// match resolves the link at s.Pos. A link whose text contains another
// link is refused, leaving the inner one to win.
func (linkRule) match(s *mdit.InlineState) (linkTarget, bool) {
	t, ok := parseLinkAt(s, s.Pos, s.Pos)
	if !ok || labelHasLink(s, t.labelBeg, t.labelEnd) {
		return linkTarget{}, false
	}
	return t, true
}

// Check reports the link length without parsing its text, so skipping over
// a link never runs rules with side effects.
func (r linkRule) Check(s *mdit.InlineState) (int, bool) {
	t, ok := r.match(s)
	return t.consumed, ok
}

func (r linkRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	t, ok := r.match(s)
	if !ok {
		return nil, 0
	}
	node := mdit.NewNode(&Link{URL: t.href, Title: t.title})
	s.ParseNested(t.labelBeg, t.labelEnd, node)
	return node, t.consumed
}

// labelHasLink reports whether a link starts anywhere in src[beg:end].
// Images are skipped whole; a link inside an image's alt text does not
// count.
func labelHasLink(s *mdit.InlineState, beg, end int) bool {
	saved := s.Pos
	defer func() { s.Pos = saved }()

	s.Pos = beg
	for s.Pos < end {
		if s.Src[s.Pos] == '[' {
			if _, ok := (linkRule{}).Check(s); ok {
				return true
			}
		}
		s.SkipToken()
	}
	return false
}

// ==================== Images ====================

type imageRule struct{}

func (imageRule) Marker() rune { return '!' }

func (imageRule) match(s *mdit.InlineState) (linkTarget, bool) {
	start := s.Pos
	if start+1 >= s.PosMax || s.Src[start+1] != '[' {
		return linkTarget{}, false
	}
	return parseLinkAt(s, start, start+1)
}

func (r imageRule) Check(s *mdit.InlineState) (int, bool) {
	t, ok := r.match(s)
	return t.consumed, ok
}

func (r imageRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	t, ok := r.match(s)
	if !ok {
		return nil, 0
	}
	node := mdit.NewNode(&Image{URL: t.href, Title: t.title})
	s.ParseNested(t.labelBeg, t.labelEnd, node)
	return node, t.consumed
}

// ==================== Autolinks ====================

var (
	autolinkURL   = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.\-]{1,31}:[^<>\x00-\x20]*)>`)
	autolinkEmail = regexp.MustCompile(`^<([a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~\-]+@[a-zA-Z0-9](?:[a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*)>`)
)

type autolinkRule struct{}

func (autolinkRule) Marker() rune { return '<' }

func (autolinkRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	rest := s.Src[s.Pos:s.PosMax]
	if !strings.ContainsRune(rest, '>') {
		return nil, 0
	}
	if m := autolinkURL.FindStringSubmatch(rest); m != nil {
		href := NormalizeLink(m[1])
		if !ValidateLink(href) {
			return nil, 0
		}
		return autolinkNode(href, m[1]), len(m[0])
	}
	if m := autolinkEmail.FindStringSubmatch(rest); m != nil {
		return autolinkNode(NormalizeLink("mailto:"+m[1]), m[1]), len(m[0])
	}
	return nil, 0
}

func autolinkNode(href, text string) *mdit.Node {
	node := mdit.NewNode(&Autolink{URL: href})
	node.AppendChild(mdit.NewNode(&mdit.Text{Content: text}))
	return node
}
