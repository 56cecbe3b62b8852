package extra

import (
	"fmt"
	"sort"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddSourcePos annotates nodes with data-sourcepos="line:col-line:col",
// 1-based and end-inclusive, from their source spans. It runs last so that
// nodes created by other passes are covered.
func AddSourcePos(md *mdit.MarkdownIt) {
	md.Core.Add("sourcepos", mdit.CoreRuleFunc(sourcePos)).AfterAll()
}

func sourcePos(root *mdit.Node, _ *mdit.MarkdownIt) {
	rt, ok := mdit.Cast[*mdit.Root](root)
	if !ok {
		return
	}
	starts := lineStarts(rt.Content)
	root.Walk(func(node *mdit.Node, _ int) {
		if node.SrcMap == nil || node == root {
			return
		}
		start, end := node.SrcMap.Start, node.SrcMap.End
		if end > start {
			end--
		}
		sl, sc := lineColumn(starts, start)
		el, ec := lineColumn(starts, end)
		node.SetAttr("data-sourcepos", fmt.Sprintf("%d:%d-%d:%d", sl, sc, el, ec))
	})
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineColumn(starts []int, offset int) (int, int) {
	line := sort.SearchInts(starts, offset+1) - 1
	return line + 1, offset - starts[line] + 1
}
