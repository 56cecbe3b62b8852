package convert

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// HTMLOptions configures FromHTML.
type HTMLOptions struct {
	// Domain resolves relative link and image URLs.
	Domain string
}

// FromHTML converts rendered HTML back into markdown.
func FromHTML(html string) (string, error) {
	return FromHTMLWithOptions(html, HTMLOptions{})
}

// FromHTMLWithOptions is FromHTML with explicit options.
func FromHTMLWithOptions(html string, opts HTMLOptions) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	var convOpts []converter.ConvertOptionFunc
	if opts.Domain != "" {
		convOpts = append(convOpts, converter.WithDomain(opts.Domain))
	}
	markdown, err := htmltomarkdown.ConvertString(html, convOpts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}
