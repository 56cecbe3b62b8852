package footnote

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

func newParser() *mdit.MarkdownIt {
	md := mdit.New()
	cmark.Add(md)
	Add(md)
	return md
}

// ==================== FootnoteMap Tests ====================

func TestFootnoteMap_AddDef(t *testing.T) {
	var m FootnoteMap

	id, ok := m.AddDef("a")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = m.AddDef("b")
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = m.AddDef("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, m.Duplicates())
	assert.Equal(t, 2, m.Len())
}

func TestFootnoteMap_AddRef(t *testing.T) {
	var m FootnoteMap

	_, _, ok := m.AddRef("missing")
	assert.False(t, ok)

	m.AddDef("a")
	defID, refID, ok := m.AddRef("a")
	require.True(t, ok)
	assert.Equal(t, 1, defID)
	assert.Equal(t, 1, refID)

	_, refID, _ = m.AddRef("a")
	assert.Equal(t, 2, refID)
	assert.Equal(t, []int{1, 2}, m.ReferencedBy(1))
}

func TestFootnoteMap_AddInlineDef(t *testing.T) {
	var m FootnoteMap
	m.AddDef("a")
	m.AddRef("a")

	defID, refID := m.AddInlineDef()
	assert.Equal(t, 2, defID)
	assert.Equal(t, 2, refID)
	assert.Equal(t, []int{2}, m.ReferencedBy(2))
}

func TestFootnoteMap_ReferencedBy(t *testing.T) {
	var m FootnoteMap
	m.AddDef("a")
	assert.Empty(t, m.ReferencedBy(1))
	assert.Empty(t, m.ReferencedBy(42))

	m.AddRef("a")
	refs := m.ReferencedBy(1)
	refs[0] = 99
	assert.Equal(t, []int{1}, m.ReferencedBy(1), "callers get a copy")
}

func TestFootnoteMap_Unreferenced(t *testing.T) {
	var m FootnoteMap
	m.AddDef("used")
	m.AddDef("z")
	m.AddDef("b")
	m.AddRef("used")
	assert.Equal(t, []string{"b", "z"}, m.Unreferenced())
}

// ==================== Golden Tests ====================

func TestRender_Golden(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"basic", "[^a]\n\n[^a]: note"},
		{"inline", "Example^[inline note]"},
		{"multiple", "First[^1] and second[^note].\n\nAgain[^1].\n\n[^1]: One.\n[^note]: Two\n    continued."},
		{"unreferenced", "Text.\n\n[^unused]: Never referenced."},
		{"undefined", "[^a]"},
		{"duplicate", "[^a]\n\n[^a]: first\n\n[^a]: second"},
		{"blocks", "Body[^long]\n\n[^long]: Para one.\n\n    Para two.\n\n    > quote"},
	}

	md := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, []byte(md.Parse(tt.input).Render()))
		})
	}
}

func TestRender_PluginOrderIndependent(t *testing.T) {
	md := mdit.New()
	Add(md)
	cmark.Add(md)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "basic", []byte(md.Parse("[^a]\n\n[^a]: note").Render()))
}

// ==================== Tree Tests ====================

func names(root *mdit.Node) []string {
	var out []string
	root.Walk(func(node *mdit.Node, _ int) {
		out = append(out, node.Name())
	})
	return out
}

func TestTree_Collect(t *testing.T) {
	md := mdit.New()
	cmark.Add(md)
	AddDefinitions(md)
	AddReferences(md)
	AddCollect(md)

	root := md.Parse("[^label]\n\n[^label]: This is a footnote\n\n> quote")
	assert.Equal(t, []string{
		"mdit.Root",
		"mdit.Paragraph",
		"footnote.Reference",
		"cmark.Blockquote",
		"mdit.Paragraph",
		"mdit.Text",
		"footnote.Footnotes",
		"footnote.Definition",
		"mdit.Paragraph",
		"mdit.Text",
	}, names(root))
}

func TestTree_ReferenceAndBackRefs(t *testing.T) {
	root := newParser().Parse("[^a]\n\n[^a]: note")

	ref, ok := mdit.Cast[*Reference](root.Children[0].Children[0])
	require.True(t, ok)
	assert.Equal(t, "a", ref.Label)
	assert.Equal(t, 1, ref.DefID)
	assert.Equal(t, 1, ref.RefID)

	list := root.LastChild()
	require.True(t, mdit.Is[*Footnotes](list))
	require.Len(t, list.Children, 1)

	def, ok := mdit.Cast[*Definition](list.Children[0])
	require.True(t, ok)
	assert.Equal(t, 1, def.DefID)
	assert.False(t, def.Inline)

	footnotes, ok := mdit.Get[FootnoteMap](mdit.RootExt(root))
	require.True(t, ok)
	assert.Equal(t, []int{1}, footnotes.ReferencedBy(def.DefID))

	para := list.Children[0].LastChild()
	anchor, ok := mdit.Cast[*RefAnchor](para.LastChild())
	require.True(t, ok)
	assert.Equal(t, []int{1}, anchor.RefIDs)
}

func TestTree_InlineFootnote(t *testing.T) {
	md := mdit.New()
	cmark.Add(md)
	AddInline(md)

	root := md.Parse("Example^[This is a footnote]")
	assert.Equal(t, []string{
		"mdit.Root",
		"mdit.Paragraph",
		"mdit.Text",
		"footnote.InlineFootnote",
		"footnote.Definition",
		"mdit.Text",
		"footnote.Reference",
	}, names(root))

	def, ok := mdit.Cast[*Definition](root.Children[0].Children[1].Children[0])
	require.True(t, ok)
	assert.True(t, def.Inline)
	assert.Empty(t, def.Label)
}

func TestTree_InlineDefinitionWrapped(t *testing.T) {
	root := newParser().Parse("Example^[inline note]")

	list := root.LastChild()
	require.True(t, mdit.Is[*Footnotes](list))
	require.Len(t, list.Children, 1)

	def := list.Children[0]
	require.True(t, mdit.MustCast[*Definition](def).Inline)
	require.Len(t, def.Children, 1)
	assert.True(t, mdit.Is[*mdit.Paragraph](def.Children[0]))

	inline := root.Children[0].Children[1]
	require.True(t, mdit.Is[*InlineFootnote](inline))
	require.Len(t, inline.Children, 1, "definition moved to the footnote list")
	assert.True(t, mdit.Is[*Reference](inline.Children[0]))
}

func TestTree_NoFootnoteSyntax(t *testing.T) {
	root := newParser().Parse("plain *text*")
	assert.False(t, mdit.Has[FootnoteMap](mdit.RootExt(root)))
	assert.False(t, mdit.Is[*Footnotes](root.LastChild()))
}

func TestTree_DefinitionOrder(t *testing.T) {
	root := newParser().Parse("[^b] [^a]\n\n[^a]: A\n\n[^b]: B")

	list := root.LastChild()
	require.Len(t, list.Children, 2)
	assert.Equal(t, "a", mdit.MustCast[*Definition](list.Children[0]).Label)
	assert.Equal(t, "b", mdit.MustCast[*Definition](list.Children[1]).Label)
}

func TestTree_DuplicateLabelResolvesToFirst(t *testing.T) {
	root := newParser().Parse("[^a]\n\n[^a]: first\n\n[^a]: second")

	footnotes, ok := mdit.Get[FootnoteMap](mdit.RootExt(root))
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, footnotes.Duplicates())
	assert.Equal(t, 1, footnotes.Len())

	list := root.LastChild()
	require.Len(t, list.Children, 1)
	assert.Equal(t, "first", list.Children[0].CollectText())
}

// ==================== Integrity Tests ====================

func TestRender_ReferentialIntegrity(t *testing.T) {
	inputs := []string{
		"[^a]\n\n[^a]: note",
		"One[^x] two[^y] three[^x]\n\n[^y]: Y\n[^x]: X\n[^z]: never used",
		"Inline^[a *b*] and ref[^r]\n\n[^r]: R^[nested]",
		"- item[^l]\n\n> quote[^q]\n\n[^l]: in list\n\n[^q]: in quote",
		"[^missing] and [^]\n\n[^ bad]: no",
		"[outer [inner [^a]](u) more](v)\n\n[^a]: note",
		"[x [y ^[n]](u) z](v)",
		"[^a]: see [^b]\n\n[^b]: bee\n\ntext",
		"[^a]: see [^b]\n\n[^b]: bee [^a]\n\ntext",
	}

	md := newParser()
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(md.Parse(input).Render()))
			require.NoError(t, err)

			targets := map[string]int{}
			doc.Find("section.footnotes li.footnote-item").Each(func(_ int, li *goquery.Selection) {
				id, _ := li.Attr("id")
				targets[id]++
				assert.NotZero(t, li.Find("a.footnote-backref").Length(), "definition %s has no back reference", id)
			})

			refs := doc.Find("sup.footnote-ref a")
			refs.Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				assert.Equal(t, 1, targets[strings.TrimPrefix(href, "#")], "reference %s", href)
			})

			doc.Find("a.footnote-backref").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				assert.Equal(t, 1, doc.Find(href).Length(), "back reference %s", href)
			})

			assert.LessOrEqual(t, doc.Find("section.footnotes").Length(), 1)
		})
	}
}

func TestRender_FootnoteInsideNestedLinkText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "labelled",
			input: "[outer [inner [^a]](u) more](v)\n\n[^a]: note",
			want: []string{
				`<a href="u">inner <sup class="footnote-ref"><a href="#fn1" id="fnref1">[1]</a></sup></a>`,
				`<li id="fn1" class="footnote-item">`,
				`<p>note&nbsp;<a href="#fnref1" class="footnote-backref">`,
			},
		},
		{
			name:  "inline",
			input: "[x [y ^[n]](u) z](v)",
			want: []string{
				`<a href="#fn1" id="fnref1">[1]</a>`,
				`<li id="fn1" class="footnote-item">`,
			},
		},
	}

	md := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := md.Parse(tt.input).Render()
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, `href="v"`, "a link cannot contain another link")
			assert.NotContains(t, out, "fnref2")
		})
	}
}

func TestRender_DroppedDefinitionReleasesReferences(t *testing.T) {
	md := newParser()

	t.Run("chain", func(t *testing.T) {
		out := md.Parse("[^a]: see [^b]\n\n[^b]: bee\n\ntext").Render()
		assert.Equal(t, "<p>text</p>\n", out)
	})

	t.Run("cycle", func(t *testing.T) {
		out := md.Parse("[^a]: see [^b]\n\n[^b]: bee [^a]\n\ntext").Render()
		assert.Equal(t, "<p>text</p>\n", out)
	})

	t.Run("live sibling kept", func(t *testing.T) {
		root := md.Parse("text[^c]\n\n[^a]: see [^b]\n\n[^b]: bee\n\n[^c]: sea")
		footnotes, ok := mdit.Get[FootnoteMap](mdit.RootExt(root))
		require.True(t, ok)
		assert.Empty(t, footnotes.ReferencedBy(2))
		assert.Equal(t, []int{1}, footnotes.ReferencedBy(3))

		out := root.Render()
		assert.Contains(t, out, `<li id="fn3" class="footnote-item">`)
		assert.NotContains(t, out, `id="fn2"`)
		assert.NotContains(t, out, "#fnref2")
	})

	t.Run("reference from live definition", func(t *testing.T) {
		out := md.Parse("text[^a]\n\n[^a]: see [^b]\n\n[^b]: bee").Render()
		assert.Contains(t, out, `<li id="fn1" class="footnote-item">`)
		assert.Contains(t, out, `<li id="fn2" class="footnote-item">`)
		assert.Contains(t, out, `href="#fnref2"`)
	})
}

func TestRender_NoMarkersIsIdempotent(t *testing.T) {
	plain := mdit.New()
	cmark.Add(plain)
	md := newParser()

	for _, input := range []string{
		"# Heading\n\nSome *text* with `code`.",
		"- a\n- b\n\n> quote",
		"```\ncode\n```",
	} {
		assert.Equal(t, plain.Parse(input).Render(), md.Parse(input).Render())
	}
}
