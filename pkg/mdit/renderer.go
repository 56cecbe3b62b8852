// renderer.go defines the rendering contract shared by every payload.
package mdit

import "strings"

// Renderer is the sink every NodeValue renders into.
type Renderer interface {
	// Open emits an opening tag.
	Open(tag string, attrs []Attr)
	// Close emits a closing tag.
	Close(tag string)
	// SelfClose emits a void element, with a trailing slash in XHTML mode.
	SelfClose(tag string, attrs []Attr)
	// Text emits escaped text.
	Text(s string)
	// TextRaw emits s unchanged; use it for output that is already markup.
	TextRaw(s string)
	// Contents renders a sequence of nodes through this same sink.
	Contents(children []*Node)
	// CR emits a newline unless the output already ends with one.
	CR()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes the characters that are significant in HTML text and attributes.
func EscapeHTML(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return htmlEscaper.Replace(s)
}

// HTMLRenderer writes HTML into an in-memory buffer.
type HTMLRenderer struct {
	sb    strings.Builder
	xhtml bool
}

// NewHTMLRenderer returns a renderer; xhtml selects "<br />" over "<br>".
func NewHTMLRenderer(xhtml bool) *HTMLRenderer {
	return &HTMLRenderer{xhtml: xhtml}
}

func renderHTML(n *Node, xhtml bool) string {
	r := NewHTMLRenderer(xhtml)
	r.Render(n)
	return r.String()
}

// Render renders a single node.
func (r *HTMLRenderer) Render(n *Node) {
	if n == nil || n.Value == nil {
		return
	}
	n.Value.Render(n, r)
}

// String returns everything rendered so far.
func (r *HTMLRenderer) String() string {
	return r.sb.String()
}

func (r *HTMLRenderer) Open(tag string, attrs []Attr) {
	r.sb.WriteByte('<')
	r.sb.WriteString(tag)
	r.writeAttrs(attrs)
	r.sb.WriteByte('>')
}

func (r *HTMLRenderer) Close(tag string) {
	r.sb.WriteString("</")
	r.sb.WriteString(tag)
	r.sb.WriteByte('>')
}

func (r *HTMLRenderer) SelfClose(tag string, attrs []Attr) {
	r.sb.WriteByte('<')
	r.sb.WriteString(tag)
	r.writeAttrs(attrs)
	if r.xhtml {
		r.sb.WriteString(" /")
	}
	r.sb.WriteByte('>')
}

func (r *HTMLRenderer) Text(s string) {
	r.sb.WriteString(EscapeHTML(s))
}

func (r *HTMLRenderer) TextRaw(s string) {
	r.sb.WriteString(s)
}

func (r *HTMLRenderer) Contents(children []*Node) {
	for _, child := range children {
		r.Render(child)
	}
}

func (r *HTMLRenderer) CR() {
	if r.sb.Len() == 0 {
		return
	}
	s := r.sb.String()
	if s[len(s)-1] != '\n' {
		r.sb.WriteByte('\n')
	}
}

// writeAttrs joins repeated "class" values with spaces and "style" values
// with semicolons; other repeated names are written once per value.
func (r *HTMLRenderer) writeAttrs(attrs []Attr) {
	if len(attrs) == 0 {
		return
	}
	grouped := make(map[string][]string, len(attrs))
	order := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if _, seen := grouped[a.Name]; !seen {
			order = append(order, a.Name)
		}
		grouped[a.Name] = append(grouped[a.Name], a.Value)
	}
	for _, name := range order {
		values := grouped[name]
		switch name {
		case "class":
			r.writeAttr(name, strings.Join(values, " "))
		case "style":
			r.writeAttr(name, strings.Join(values, ";"))
		default:
			for _, v := range values {
				r.writeAttr(name, v)
			}
		}
	}
}

func (r *HTMLRenderer) writeAttr(name, value string) {
	r.sb.WriteByte(' ')
	r.sb.WriteString(EscapeHTML(name))
	r.sb.WriteString(`="`)
	r.sb.WriteString(EscapeHTML(value))
	r.sb.WriteByte('"')
}
