package footnote

import (
	"strconv"
	"strings"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// AddReferences installs the "[^label]" inline rule ahead of links.
func AddReferences(md *mdit.MarkdownIt) {
	md.Inline.Add("footnote_reference", referenceRule{}).Before("link")
}

// Reference points at a footnote definition. Label is empty for the
// reference half of an inline footnote.
type Reference struct {
	Label string
	DefID int
	RefID int
}

func (ref *Reference) Render(n *mdit.Node, r mdit.Renderer) {
	attrs := append(append([]mdit.Attr(nil), n.Attrs...), mdit.Attr{Name: "class", Value: "footnote-ref"})
	r.Open("sup", attrs)
	r.Open("a", []mdit.Attr{
		{Name: "href", Value: "#fn" + strconv.Itoa(ref.DefID)},
		{Name: "id", Value: "fnref" + strconv.Itoa(ref.RefID)},
	})
	r.Text("[" + strconv.Itoa(ref.DefID) + "]")
	r.Close("a")
	r.Close("sup")
}

type referenceRule struct{}

func (referenceRule) Marker() rune { return '[' }

// scanReference returns the label of "[^label]" at the cursor. Labels may not
// contain whitespace; backslashes are part of the label.
func scanReference(s *mdit.InlineState) (string, bool) {
	rest := s.Src[s.Pos:s.PosMax]
	if !strings.HasPrefix(rest, "[^") {
		return "", false
	}
	end := strings.IndexAny(rest[2:], "] \t\n")
	if end <= 0 || rest[2+end] != ']' {
		return "", false
	}
	return rest[2 : 2+end], true
}

// Check measures a reference without recording it.
func (referenceRule) Check(s *mdit.InlineState) (int, bool) {
	label, ok := scanReference(s)
	if !ok {
		return 0, false
	}
	footnotes, ok := mdit.Get[FootnoteMap](s.RootExt)
	if !ok {
		return 0, false
	}
	if _, ok := footnotes.Lookup(label); !ok {
		return 0, false
	}
	return len(label) + 3, true
}

// Run matches only labels with a definition somewhere in the document;
// anything else stays literal text.
func (referenceRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	label, ok := scanReference(s)
	if !ok {
		return nil, 0
	}
	footnotes, ok := mdit.Get[FootnoteMap](s.RootExt)
	if !ok {
		return nil, 0
	}
	defID, refID, ok := footnotes.AddRef(label)
	if !ok {
		return nil, 0
	}
	return mdit.NewNode(&Reference{Label: label, DefID: defID, RefID: refID}), len(label) + 3
}
