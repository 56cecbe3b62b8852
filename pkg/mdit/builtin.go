// builtin.go holds the payloads every parser knows about.
package mdit

// Root is the document node. Ext holds document-scoped plugin state.
type Root struct {
	Content string
	Ext     *ExtSet
}

func (*Root) Render(n *Node, r Renderer) {
	r.Contents(n.Children)
}

// InlineRoot is raw inline content of a leaf block. The inline pass
// replaces it with the parsed inline nodes.
type InlineRoot struct {
	Content string
	Mapping []LineMapping
}

func (*InlineRoot) Render(n *Node, r Renderer) {
	r.Contents(n.Children)
}

// Paragraph is the fallback block.
type Paragraph struct{}

func (*Paragraph) Render(n *Node, r Renderer) {
	r.CR()
	r.Open("p", n.Attrs)
	r.Contents(n.Children)
	r.Close("p")
	r.CR()
}

// Text is literal text.
type Text struct {
	Content string
}

func (*Text) Render(n *Node, r Renderer) {
	r.Text(n.Value.(*Text).Content)
}

// TextContent implements Textual.
func (t *Text) TextContent() string { return t.Content }

// TextSpecial is text produced from markup, such as an escape or an entity.
// Markup keeps the original source; Info names the producing construct.
type TextSpecial struct {
	Content string
	Markup  string
	Info    string
}

func (*TextSpecial) Render(n *Node, r Renderer) {
	r.Text(n.Value.(*TextSpecial).Content)
}

// TextContent implements Textual.
func (t *TextSpecial) TextContent() string { return t.Content }

// Container renders its children and nothing else.
type Container struct{}

func (*Container) Render(n *Node, r Renderer) {
	r.Contents(n.Children)
}

// RootExt returns the document state of a tree returned by Parse, or nil.
func RootExt(root *Node) *ExtSet {
	if rt, ok := Cast[*Root](root); ok {
		return rt.Ext
	}
	return nil
}
