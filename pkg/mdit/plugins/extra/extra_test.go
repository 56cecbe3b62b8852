package extra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

func newParser(plugins ...func(*mdit.MarkdownIt)) *mdit.MarkdownIt {
	md := mdit.New()
	cmark.Add(md)
	for _, add := range plugins {
		add(md)
	}
	return md
}

type renderCase struct {
	name     string
	input    string
	expected string
}

func runRenderCases(t *testing.T, md *mdit.MarkdownIt, tests []renderCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, md.Parse(tt.input).Render())
		})
	}
}

// ==================== Front Matter Tests ====================

func TestFrontMatter(t *testing.T) {
	md := newParser(AddFrontMatter)

	root := md.Parse("---\ntitle: Notes\ntags: [a, b]\n---\n# Hi\n")
	require.NotEmpty(t, root.Children)

	fm, ok := mdit.Cast[*FrontMatter](root.Children[0])
	require.True(t, ok)
	assert.Equal(t, "title: Notes\ntags: [a, b]\n", fm.Content)
	assert.NoError(t, fm.Err)
	assert.Equal(t, "Notes", fm.Data["title"])
	assert.Equal(t, []any{"a", "b"}, fm.Data["tags"])
	assert.Equal(t, "<h1>Hi</h1>\n", root.Render())
}

func TestFrontMatter_NotMatched(t *testing.T) {
	md := newParser(AddFrontMatter)

	runRenderCases(t, md, []renderCase{
		{"unclosed is a thematic break", "---\nfoo", "<hr>\n<p>foo</p>\n"},
		{"not on first line", "a\n\n---\nb: 1\n---", "<p>a</p>\n<hr>\n<h2>b: 1</h2>\n"},
	})
}

func TestFrontMatter_InvalidYAML(t *testing.T) {
	md := newParser(AddFrontMatter)

	root := md.Parse("---\n[unclosed\n---\ntext")
	fm, ok := mdit.Cast[*FrontMatter](root.Children[0])
	require.True(t, ok)
	assert.Error(t, fm.Err)
	assert.Nil(t, fm.Data)
	assert.Equal(t, "<p>text</p>\n", root.Render())
}

// ==================== Strikethrough Tests ====================

func TestStrikethrough(t *testing.T) {
	runRenderCases(t, newParser(AddStrikethrough), []renderCase{
		{"double tilde", "~~gone~~", "<p><s>gone</s></p>\n"},
		{"single tilde is text", "~one~", "<p>~one~</p>\n"},
		{"nested emphasis", "~~a *b*~~", "<p><s>a <em>b</em></s></p>\n"},
		{"unclosed", "~~open", "<p>~~open</p>\n"},
	})
}

// ==================== Table Tests ====================

func TestTable(t *testing.T) {
	runRenderCases(t, newParser(AddTable), []renderCase{
		{
			"aligned columns",
			"| a | b | c |\n|:--|--:|:-:|\n| 1 | 2 | 3 |",
			"<table>\n<thead>\n<tr>\n<th style=\"text-align:left\">a</th>\n<th style=\"text-align:right\">b</th>\n<th style=\"text-align:center\">c</th>\n</tr>\n</thead>\n" +
				"<tbody>\n<tr>\n<td style=\"text-align:left\">1</td>\n<td style=\"text-align:right\">2</td>\n<td style=\"text-align:center\">3</td>\n</tr>\n</tbody>\n</table>\n",
		},
		{
			"header only",
			"| a |\n| - |",
			"<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n</table>\n",
		},
		{
			"outer pipes optional and short rows padded",
			"a | b\n--|--\nx \\| y",
			"<table>\n<thead>\n<tr>\n<th>a</th>\n<th>b</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>x | y</td>\n<td></td>\n</tr>\n</tbody>\n</table>\n",
		},
		{
			"extra cells dropped",
			"| a |\n|---|\n| 1 | 2 |",
			"<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n</tr>\n</tbody>\n</table>\n",
		},
		{
			"inline markup in cells",
			"| *a* |\n|---|\n| `b|` |",
			"<table>\n<thead>\n<tr>\n<th><em>a</em></th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>`b</td>\n</tr>\n</tbody>\n</table>\n",
		},
		{
			"interrupts a paragraph",
			"text\n| a |\n|---|",
			"<p>text</p>\n<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n</table>\n",
		},
		{
			"ends at blank line",
			"| a |\n|---|\n| 1 |\n\npara",
			"<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n</tr>\n</tbody>\n</table>\n<p>para</p>\n",
		},
		{
			"ends at another block",
			"| a |\n|---|\n> q",
			"<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n</table>\n<blockquote>\n<p>q</p>\n</blockquote>\n",
		},
		{
			"column count mismatch is a paragraph",
			"| a | b |\n|---|",
			"<p>| a | b |\n|---|</p>\n",
		},
		{
			"bad delimiter is a paragraph",
			"| a |\n| x |",
			"<p>| a |\n| x |</p>\n",
		},
	})
}

func TestTable_Tree(t *testing.T) {
	root := newParser(AddTable).Parse("| a | b |\n|:-|-|\n| 1 |")
	require.Len(t, root.Children, 1)

	table, ok := mdit.Cast[*Table](root.Children[0])
	require.True(t, ok)
	assert.Equal(t, []Align{AlignLeft, AlignNone}, table.Aligns)

	body := root.Children[0].Children[1]
	require.True(t, mdit.Is[*TableBody](body))
	row := body.Children[0]
	require.Len(t, row.Children, 2)
	assert.Equal(t, "1", row.Children[0].CollectText())
	assert.Empty(t, row.Children[1].Children)
	require.NotNil(t, row.SrcMap)
	assert.Equal(t, "| 1 |", "| a | b |\n|:-|-|\n| 1 |"[row.SrcMap.Start:row.SrcMap.End])
}

func TestTable_NotInstalled(t *testing.T) {
	assert.Equal(t, "<p>| a |\n|---|</p>\n", newParser().Parse("| a |\n|---|").Render())
}

// ==================== Task List Tests ====================

func TestTaskList(t *testing.T) {
	const (
		open = `<input class="task-list-item-checkbox" disabled="" type="checkbox">`
		done = `<input class="task-list-item-checkbox" checked="" disabled="" type="checkbox">`
	)
	runRenderCases(t, newParser(AddTaskList), []renderCase{
		{
			"tight",
			"- [ ] todo\n- [x] done\n- plain",
			"<ul class=\"contains-task-list\">\n<li class=\"task-list-item\">" + open + " todo</li>\n" +
				"<li class=\"task-list-item\">" + done + " done</li>\n<li>plain</li>\n</ul>\n",
		},
		{
			"loose ordered",
			"1. [X] a\n\n2. b",
			"<ol class=\"contains-task-list\">\n<li class=\"task-list-item\">\n<p>" + done + " a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n</ol>\n",
		},
		{
			"not a marker",
			"- [y] no\n- [ ]",
			"<ul>\n<li>[y] no</li>\n<li>[ ]</li>\n</ul>\n",
		},
		{
			"outside a list",
			"[ ] not a task",
			"<p>[ ] not a task</p>\n",
		},
	})
}

func TestTaskList_Tree(t *testing.T) {
	root := newParser(AddTaskList).Parse("- [x] done")
	item := root.Children[0].Children[0]
	require.NotEmpty(t, item.Children)

	box, ok := mdit.Cast[*TaskCheckbox](item.Children[0])
	require.True(t, ok)
	assert.True(t, box.Checked)
	assert.Equal(t, " done", item.CollectText())
}

// ==================== NL2BR Tests ====================

func TestNL2BR(t *testing.T) {
	runRenderCases(t, newParser(AddNL2BR), []renderCase{
		{"newline becomes break", "a\nb", "<p>a<br>\nb</p>\n"},
		{"paragraphs unaffected", "a\n\nb", "<p>a</p>\n<p>b</p>\n"},
	})

	root := newParser(AddNL2BR).Parse("a\nb")
	assert.Equal(t, "a\nb", root.CollectText())
}

func TestNL2BR_XRender(t *testing.T) {
	assert.Equal(t, "<p>a<br />\nb</p>\n", newParser(AddNL2BR).Parse("a\nb").XRender())
}

// ==================== Linkify Tests ====================

func TestLinkify(t *testing.T) {
	runRenderCases(t, newParser(AddLinkify), []renderCase{
		{"https", "see https://example.com now", "<p>see <a href=\"https://example.com\">https://example.com</a> now</p>\n"},
		{"trailing period dropped", "go to https://example.com.", "<p>go to <a href=\"https://example.com\">https://example.com</a>.</p>\n"},
		{"www gets scheme", "www.example.com", "<p><a href=\"http://www.example.com\">www.example.com</a></p>\n"},
		{"balanced parens kept", "(https://x.org/a_(b))", "<p>(<a href=\"https://x.org/a_(b)\">https://x.org/a_(b)</a>)</p>\n"},
		{"mid-word not linked", "foohttps://example.com", "<p>foohttps://example.com</p>\n"},
		{"plain word starting with h", "hello world", "<p>hello world</p>\n"},
	})
}

func TestTrimLinkTail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://a.com?", "https://a.com"},
		{"https://a.com/x)", "https://a.com/x"},
		{"https://a.com/(x)", "https://a.com/(x)"},
		{"https://a.com/&amp;", "https://a.com/"},
		{"https://a.com/;", "https://a.com/;"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, trimLinkTail(tt.in))
		})
	}
}

// ==================== HTML Tests ====================

func TestHTML(t *testing.T) {
	runRenderCases(t, newParser(AddHTML), []renderCase{
		{"block tag", "<div>\nhi\n</div>", "<div>\nhi\n</div>\n"},
		{"block ends at blank line", "<div>\nhi\n\n*x*", "<div>\nhi\n<p><em>x</em></p>\n"},
		{"comment block", "<!-- a\nb -->\ntext", "<!-- a\nb -->\n<p>text</p>\n"},
		{"inline tag", "a <b>x</b>", "<p>a <b>x</b></p>\n"},
		{"not a tag", "a < b", "<p>a &lt; b</p>\n"},
		{"unknown tag does not interrupt", "para\n<custom>", "<p>para\n<custom></p>\n"},
	})
}

func TestTagFilter(t *testing.T) {
	md := newParser(AddHTML, AddTagFilter)

	runRenderCases(t, md, []renderCase{
		{"script block", "<script>alert(1)</script>", "&lt;script>alert(1)&lt;/script>\n"},
		{"inline style", "x <style>", "<p>x &lt;style></p>\n"},
		{"allowed tag", "x <em>", "<p>x <em></p>\n"},
	})
}

// ==================== Slug Tests ====================

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"foo_bar", "foo_bar"},
		{"C++ & Go", "c--go"},
		{"Ünïcödé Test", "ünïcödé-test"},
		{"already-slugged", "already-slugged"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestSlugger_Unique(t *testing.T) {
	var s Slugger
	assert.Equal(t, "a", s.Slug("A"))
	assert.Equal(t, "a-1", s.Slug("A"))
	assert.Equal(t, "a-2", s.Slug("a"))

	s.Reset()
	assert.Equal(t, "a", s.Slug("A"))
}

// ==================== Heading Anchor Tests ====================

func TestHeadingAnchors(t *testing.T) {
	runRenderCases(t, newParser(AddHeadingAnchors), []renderCase{
		{"repeated titles", "# Hello World\n## Hello World",
			"<h1 id=\"hello-world\">Hello World</h1>\n<h2 id=\"hello-world-1\">Hello World</h2>\n"},
		{"inline markup flattened", "# A *b* `c`", "<h1 id=\"a-b-c\">A <em>b</em> <code>c</code></h1>\n"},
	})
}

func TestHeadingAnchors_PerDocument(t *testing.T) {
	md := newParser(AddHeadingAnchors)
	first := md.Parse("# Same").Render()
	second := md.Parse("# Same").Render()
	assert.Equal(t, first, second)
}

func TestHeadingAnchorsWith(t *testing.T) {
	md := newParser(func(md *mdit.MarkdownIt) {
		AddHeadingAnchorsWith(md, AnchorConfig{Prefix: "user-content-", MinLevel: 1, MaxLevel: 1})
	})
	assert.Equal(t, "<h1 id=\"user-content-top\">Top</h1>\n<h2>Sub</h2>\n", md.Parse("# Top\n## Sub").Render())
}

// ==================== Citation Tests ====================

func TestCitations(t *testing.T) {
	cfg := CitationConfig{
		Citations: []Citation{
			{Index: 1, Title: "A", Source: "https://a.com/?q=1&r=2"},
			{Index: 2, Title: "Doc", Source: "doc.pdf"},
		},
		OpenInNewTab: true,
	}
	md := newParser(func(md *mdit.MarkdownIt) { AddCitations(md, cfg) })

	runRenderCases(t, md, []renderCase{
		{"url source", "x【0】", "<p>x<sup><a href=\"https://a.com/?q=1&amp;r=2\" target=\"_blank\">1</a></sup></p>\n"},
		{"non-url source", "y【1】", "<p>y<sup><a>2</a></sup></p>\n"},
		{"out of range", "z【5】", "<p>z【5】</p>\n"},
		{"not a number", "z【a】", "<p>z【a】</p>\n"},
		{"unclosed", "z【0", "<p>z【0</p>\n"},
	})
}

func TestCitations_SameTab(t *testing.T) {
	md := newParser(func(md *mdit.MarkdownIt) {
		AddCitations(md, CitationConfig{Citations: []Citation{{Index: 7, Source: "http://x"}}})
	})
	assert.Equal(t, "<p><sup><a href=\"http://x\">7</a></sup></p>\n", md.Parse("【0】").Render())
}

// ==================== Contact Info Tests ====================

func TestContactInfo(t *testing.T) {
	runRenderCases(t, newParser(AddContactInfo), []renderCase{
		{"email", "<mailto:a@b.co>", "<p><a href=\"mailto:a@b.co\">a@b.co</a></p>\n"},
		{"phone", "<tel:+1 (555) 123-4567>", "<p><a href=\"tel:+15551234567\">+1 (555) 123-4567</a></p>\n"},
		{"regular autolink untouched", "<https://a.com>", "<p><a href=\"https://a.com\">https://a.com</a></p>\n"},
		{"unclosed", "<tel:123", "<p>&lt;tel:123</p>\n"},
	})
}

func TestContactInfo_Href(t *testing.T) {
	c := &ContactInfo{Content: "555.123.4567", Prefix: phonePrefix, Kind: ContactPhone}
	assert.Equal(t, "tel:5551234567", c.Href())

	e := &ContactInfo{Content: "x@y.z", Prefix: mailPrefix, Kind: ContactEmail}
	assert.Equal(t, "mailto:x@y.z", e.Href())
}

// ==================== Source Position Tests ====================

func TestSourcePos(t *testing.T) {
	md := newParser(AddSourcePos)

	assert.Equal(t,
		"<h1 data-sourcepos=\"1:1-1:4\">Hi</h1>\n<p data-sourcepos=\"3:1-3:4\">para</p>\n",
		md.Parse("# Hi\n\npara").Render())
}

func TestSourcePos_Nested(t *testing.T) {
	md := newParser(AddSourcePos)

	root := md.Parse("> a\n> b")
	bq := root.Children[0]
	pos, ok := bq.AttrValue("data-sourcepos")
	require.True(t, ok)
	assert.Equal(t, "1:1-2:3", pos)
}

func TestLineColumn(t *testing.T) {
	starts := lineStarts("ab\ncd\n\nef")
	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{6, 3, 1},
		{7, 4, 1},
	}
	for _, tt := range tests {
		line, col := lineColumn(starts, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}
