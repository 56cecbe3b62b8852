// node.go defines the syntax tree: a Node wrapper around a polymorphic payload.
package mdit

import (
	"reflect"
	"strings"
)

// NodeValue is the behavior-bearing payload of a Node. Each variant decides
// how it is rendered; the Node wrapper itself is payload-agnostic.
//
// Render does not emit children automatically. A payload that wants its
// children in the output calls r.Contents(n.Children).
type NodeValue interface {
	Render(n *Node, r Renderer)
}

// NoRender can be embedded in a payload struct to get the default no-op Render.
type NoRender struct{}

// Render implements NodeValue.
func (NoRender) Render(*Node, Renderer) {}

// Attr is a single output attribute. Order is significant and duplicates are allowed.
type Attr struct {
	Name  string
	Value string
}

// SourcePos is a byte span in the original source, end exclusive.
type SourcePos struct {
	Start int
	End   int
}

// Node is a single element of the syntax tree. A Node exclusively owns its
// children: no sharing, no cycles.
type Node struct {
	Children []*Node
	Attrs    []Attr
	SrcMap   *SourcePos
	Ext      *ExtSet
	Value    NodeValue
}

// NewNode creates a leaf node holding the given payload.
func NewNode(v NodeValue) *Node {
	return &Node{Value: v, Ext: NewExtSet()}
}

// Is reports whether the payload of n is of type T.
func Is[T NodeValue](n *Node) bool {
	if n == nil {
		return false
	}
	_, ok := n.Value.(T)
	return ok
}

// Cast returns the payload of n as T. It has no side effect on mismatch.
// Payloads stored as pointers can be mutated through the returned value.
func Cast[T NodeValue](n *Node) (T, bool) {
	var zero T
	if n == nil {
		return zero, false
	}
	v, ok := n.Value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MustCast is Cast for callers that already checked Is. A mismatch is an
// invariant violation and aborts the current call.
func MustCast[T NodeValue](n *Node) T {
	v, ok := Cast[T](n)
	if !ok {
		Invariantf("node %s is not a %s", n.Name(), reflect.TypeFor[T]())
	}
	return v
}

// Name returns the payload type name, e.g. "footnote.Reference".
func (n *Node) Name() string {
	if n == nil || n.Value == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(n.Value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	if pkg == "" {
		return t.Name()
	}
	return pkg + "." + t.Name()
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// AttrValue returns the first attribute named name.
func (n *Node) AttrValue(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr appends an attribute. Existing attributes with the same name are kept.
func (n *Node) SetAttr(name, value string) {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Walk visits n and all of its descendants in pre-order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	fn(n, depth)
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// WalkMut visits n and its descendants in pre-order. The visitor may replace
// or remove entries of node.Children; traversal continues over whatever
// children the node holds after the visitor returns.
func (n *Node) WalkMut(fn func(node *Node, depth int)) {
	walkMut(n, 0, fn)
}

func walkMut(n *Node, depth int, fn func(*Node, int)) {
	fn(n, depth)
	for i := 0; i < len(n.Children); i++ {
		walkMut(n.Children[i], depth+1, fn)
	}
}

// WalkPost visits the descendants of n before n itself.
func (n *Node) WalkPost(fn func(node *Node, depth int)) {
	walkPost(n, 0, fn)
}

func walkPost(n *Node, depth int, fn func(*Node, int)) {
	for _, child := range n.Children {
		walkPost(child, depth+1, fn)
	}
	fn(n, depth)
}

// Textual is implemented by payloads that carry literal text.
type Textual interface {
	TextContent() string
}

// CollectText concatenates the literal text of all descendants.
func (n *Node) CollectText() string {
	var sb strings.Builder
	n.Walk(func(node *Node, _ int) {
		if t, ok := node.Value.(Textual); ok {
			sb.WriteString(t.TextContent())
		}
	})
	return sb.String()
}

// Render renders the tree to HTML. Self-closing tags have no trailing slash.
func (n *Node) Render() string {
	return renderHTML(n, false)
}

// XRender renders the tree to XHTML-style HTML: self-closing tags end in " />".
func (n *Node) XRender() string {
	return renderHTML(n, true)
}

// placeholder marks a detached child until the owner prunes it.
type placeholder struct{ NoRender }

// Detach swaps parent.Children[i] with an inert placeholder and returns the
// original child. Call Prune on parent once iteration is finished.
func Detach(parent *Node, i int) *Node {
	child := parent.Children[i]
	parent.Children[i] = &Node{Value: placeholder{}}
	return child
}

// Prune removes the placeholders left behind by Detach.
func Prune(parent *Node) {
	kept := parent.Children[:0]
	for _, child := range parent.Children {
		if _, ok := child.Value.(placeholder); ok {
			continue
		}
		kept = append(kept, child)
	}
	for i := len(kept); i < len(parent.Children); i++ {
		parent.Children[i] = nil
	}
	parent.Children = kept
}
