package convert

import (
	"strconv"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// TreeNode is the exported form of a syntax tree node.
type TreeNode struct {
	Type     string            `json:"type"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Span     []int             `json:"span,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*TreeNode       `json:"children,omitempty"`
}

// Tree converts a parsed document into TreeNodes. Only leaf payloads that
// carry literal text report Text.
func Tree(n *mdit.Node) *TreeNode {
	out := &TreeNode{Type: n.Name()}
	if len(n.Attrs) > 0 {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			out.Attrs[a.Name] = a.Value
		}
	}
	if n.SrcMap != nil {
		out.Span = []int{n.SrcMap.Start, n.SrcMap.End}
	}
	if t, ok := n.Value.(mdit.Textual); ok && len(n.Children) == 0 {
		out.Text = t.TextContent()
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, Tree(child))
	}
	return out
}

// TreeRow is one line of a flattened tree listing.
type TreeRow struct {
	Depth int
	Type  string
	Span  string
	Text  string
}

// Flatten lists the nodes of n in document order.
func Flatten(n *mdit.Node) []TreeRow {
	var rows []TreeRow
	n.Walk(func(node *mdit.Node, depth int) {
		row := TreeRow{Depth: depth, Type: node.Name()}
		if node.SrcMap != nil {
			row.Span = strconv.Itoa(node.SrcMap.Start) + ".." + strconv.Itoa(node.SrcMap.End)
		}
		if t, ok := node.Value.(mdit.Textual); ok && len(node.Children) == 0 {
			row.Text = t.TextContent()
		}
		rows = append(rows, row)
	})
	return rows
}
