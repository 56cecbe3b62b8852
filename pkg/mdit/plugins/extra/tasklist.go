package extra

import (
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

// AddTaskList turns list items that start with "[ ] " or "[x] " into
// disabled checkboxes.
func AddTaskList(md *mdit.MarkdownIt) {
	md.Core.Add("tasklist", mdit.CoreRuleFunc(taskList)).After("inline")
}

// TaskCheckbox is the checkbox that replaces a task marker.
type TaskCheckbox struct {
	Checked bool
}

func (c *TaskCheckbox) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := []mdit.Attr{{Name: "class", Value: "task-list-item-checkbox"}}
	if c.Checked {
		attrs = append(attrs, mdit.Attr{Name: "checked", Value: ""})
	}
	attrs = append(attrs,
		mdit.Attr{Name: "disabled", Value: ""},
		mdit.Attr{Name: "type", Value: "checkbox"},
	)
	r.SelfClose("input", append(attrs, n.Attrs...))
}

func taskList(root *mdit.Node, _ *mdit.MarkdownIt) {
	root.Walk(func(node *mdit.Node, _ int) {
		if !mdit.Is[*cmark.BulletList](node) && !mdit.Is[*cmark.OrderedList](node) {
			return
		}
		found := false
		for _, item := range node.Children {
			if mdit.Is[*cmark.ListItem](item) && markTask(item) {
				item.SetAttr("class", "task-list-item")
				found = true
			}
		}
		if found {
			node.SetAttr("class", "contains-task-list")
		}
	})
}

// markTask replaces the marker at the start of item's first text. Loose
// items keep their text inside a paragraph; tight ones hold it directly.
func markTask(item *mdit.Node) bool {
	holder := item
	if len(item.Children) > 0 && mdit.Is[*mdit.Paragraph](item.Children[0]) {
		holder = item.Children[0]
	}
	if len(holder.Children) == 0 {
		return false
	}
	text, ok := mdit.Cast[*mdit.Text](holder.Children[0])
	if !ok {
		return false
	}
	checked, ok := taskMarker(text.Content)
	if !ok {
		return false
	}

	text.Content = text.Content[3:]
	if src := holder.Children[0].SrcMap; src != nil {
		src.Start += 3
	}
	box := mdit.NewNode(&TaskCheckbox{Checked: checked})
	holder.Children = append([]*mdit.Node{box}, holder.Children...)
	return true
}

// taskMarker matches "[ ]", "[x]" or "[X]" followed by whitespace.
func taskMarker(s string) (checked, ok bool) {
	if len(s) < 4 || s[0] != '[' || s[2] != ']' || !strings.ContainsRune(" \t", rune(s[3])) {
		return false, false
	}
	switch s[1] {
	case ' ':
		return false, true
	case 'x', 'X':
		return true, true
	}
	return false, false
}
