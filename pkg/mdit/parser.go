// Package mdit is an extensible markup parser. Grammar comes from plugins
// that register block, inline and core rules on a MarkdownIt value; the
// result of a parse is a tree of Nodes that render themselves to HTML.
package mdit

import (
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxNesting bounds the depth of nested blocks and inline constructs.
	DefaultMaxNesting = 100
	// DefaultMaxIndent is the indent at which a line stops starting new blocks.
	DefaultMaxIndent = 4
)

// CoreRule is a whole-tree pass run after parsing.
type CoreRule interface {
	Run(root *Node, md *MarkdownIt)
}

// CoreRuleFunc adapts a plain function to CoreRule.
type CoreRuleFunc func(root *Node, md *MarkdownIt)

// Run implements CoreRule.
func (f CoreRuleFunc) Run(root *Node, md *MarkdownIt) { f(root, md) }

// MarkdownIt is a configured parser. Configure it once (plugins, settings)
// and then call Parse from any number of goroutines.
type MarkdownIt struct {
	Block  *BlockParser
	Inline *InlineParser
	Core   *Ruler[CoreRule]
	// Ext holds parser-level plugin configuration.
	Ext *ExtSet

	MaxNesting int
	MaxIndent  int
	Logger     zerolog.Logger
}

// New returns a parser with the block and inline passes and no grammar.
func New() *MarkdownIt {
	md := &MarkdownIt{
		Block:      &BlockParser{},
		Inline:     &InlineParser{},
		Core:       &Ruler[CoreRule]{},
		Ext:        NewExtSet(),
		MaxNesting: DefaultMaxNesting,
		MaxIndent:  DefaultMaxIndent,
		Logger:     zerolog.Nop(),
	}
	md.Inline.onChange = md.Inline.rebuildMarkers
	md.Inline.rebuildMarkers()
	md.Block.onChange = func() {
		md.Logger.Debug().Strs("rules", md.Block.names).Msg("block rules ordered")
	}
	md.Core.Add("block", CoreRuleFunc(blockPass))
	md.Core.Add("inline", CoreRuleFunc(inlinePass))
	return md
}

var normalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "�")

// Parse builds the syntax tree of src. The returned node is a Root.
func (md *MarkdownIt) Parse(src string) *Node {
	src = normalizer.Replace(src)
	root := NewNode(&Root{Content: src, Ext: NewExtSet()})
	for _, rule := range md.Core.Rules() {
		rule.Run(root, md)
	}
	return root
}

func blockPass(root *Node, md *MarkdownIt) {
	rt := MustCast[*Root](root)
	s := NewBlockState(rt.Content, md, rt.Ext, root)
	md.Block.Tokenize(s, 0, s.LineMax)
}

func inlinePass(root *Node, md *MarkdownIt) {
	rootExt := RootExt(root)
	root.WalkMut(func(node *Node, _ int) {
		for i := 0; i < len(node.Children); i++ {
			ir, ok := Cast[*InlineRoot](node.Children[i])
			if !ok {
				continue
			}
			holder := NewNode(&Container{})
			s := NewInlineState(ir.Content, md, rootExt, holder)
			s.Mapping = ir.Mapping
			md.Inline.Tokenize(s)

			expanded := make([]*Node, 0, len(node.Children)-1+len(holder.Children))
			expanded = append(expanded, node.Children[:i]...)
			expanded = append(expanded, holder.Children...)
			expanded = append(expanded, node.Children[i+1:]...)
			node.Children = expanded
			i += len(holder.Children) - 1
		}
	})
}

// ParseInline parses src as inline content only, returning a Container.
func (md *MarkdownIt) ParseInline(src string, rootExt *ExtSet) *Node {
	holder := NewNode(&Container{})
	s := NewInlineState(src, md, rootExt, holder)
	md.Inline.Tokenize(s)
	return holder
}
