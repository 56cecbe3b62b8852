package extra

import (
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// ContactKind tells an email link from a phone link.
type ContactKind int

const (
	ContactEmail ContactKind = iota
	ContactPhone
)

const (
	mailPrefix  = "mailto:"
	phonePrefix = "tel:"
)

// AddContactInfo installs the <mailto:...> and <tel:...> link rule. It runs
// ahead of the CommonMark autolink rule.
func AddContactInfo(md *mdit.MarkdownIt) {
	md.Inline.Add("contact_info", contactInfoRule{}).Before("autolink")
}

// ContactInfo is an email address or phone number link.
type ContactInfo struct {
	Content string
	Prefix  string
	Kind    ContactKind
}

// Href keeps only digits and '+' of a phone number.
func (c *ContactInfo) Href() string {
	if c.Kind == ContactEmail {
		return c.Prefix + c.Content
	}
	var sb strings.Builder
	sb.WriteString(c.Prefix)
	for i := 0; i < len(c.Content); i++ {
		if ch := c.Content[i]; ch >= '0' && ch <= '9' || ch == '+' {
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

func (c *ContactInfo) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := append(append([]mdit.Attr(nil), n.Attrs...), mdit.Attr{Name: "href", Value: c.Href()})
	r.Open("a", attrs)
	r.Text(c.Content)
	r.Close("a")
}

// TextContent implements mdit.Textual.
func (c *ContactInfo) TextContent() string { return c.Content }

type contactInfoRule struct{}

func (contactInfoRule) Marker() rune { return '<' }

func (contactInfoRule) match(s *mdit.InlineState) (*ContactInfo, int) {
	input := s.Src[s.Pos:s.PosMax]
	var info ContactInfo
	switch {
	case strings.HasPrefix(input, "<"+mailPrefix):
		info.Prefix, info.Kind = mailPrefix, ContactEmail
	case strings.HasPrefix(input, "<"+phonePrefix):
		info.Prefix, info.Kind = phonePrefix, ContactPhone
	default:
		return nil, 0
	}
	end := strings.IndexByte(input, '>')
	if end < 0 {
		return nil, 0
	}
	info.Content = input[1+len(info.Prefix) : end]
	if info.Content == "" || strings.ContainsAny(info.Content, "<\n") {
		return nil, 0
	}
	return &info, end + 1
}

func (c contactInfoRule) Check(s *mdit.InlineState) (int, bool) {
	info, n := c.match(s)
	return n, info != nil
}

func (c contactInfoRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	info, n := c.match(s)
	if info == nil {
		return nil, 0
	}
	return mdit.NewNode(info), n
}
