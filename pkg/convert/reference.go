// Package convert moves documents between mdit and neighbouring formats:
// reference HTML from goldmark, markdown recovered from HTML, and a JSON
// form of the syntax tree.
package convert

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Flavor selects the goldmark extensions matching an mdit preset.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

var references = map[Flavor]goldmark.Markdown{
	FlavorCommonMark: goldmark.New(
		goldmark.WithRendererOptions(html.WithUnsafe()),
	),
	FlavorGFM: goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, extension.Footnote),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	),
}

// ReferenceHTML renders src with goldmark, the reference implementation
// mdit output is compared against.
func ReferenceHTML(src []byte, flavor Flavor) (string, error) {
	md, ok := references[flavor]
	if !ok {
		return "", fmt.Errorf("no reference renderer for flavor %q", flavor)
	}
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render reference HTML: %w", err)
	}
	return buf.String(), nil
}

// Diff returns a unified diff between two renderings, or "" when they match.
func Diff(got, want, gotName, wantName string) (string, error) {
	if got == want {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(got),
		B:        difflib.SplitLines(want),
		FromFile: gotName,
		ToFile:   wantName,
		Context:  2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff output: %w", err)
	}
	return diff, nil
}
