// Package preprocess rewrites markup source before parsing. Each rewrite
// belongs to a plugin and runs only when that plugin is enabled.
package preprocess

import (
	"regexp"
	"slices"
	"strconv"
)

// Plugin names that own a rewrite.
const (
	ContactInfo = "contact_info"
	Citation    = "citation"
)

var (
	// whitespace or start before, a non-word character or end after
	emailPattern = regexp.MustCompile(`(\s|^)([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})(\W|$)`)
	// North American numbers: optional country code, 3-3-4 digits with separators
	phonePattern    = regexp.MustCompile(`(\s|^|\()((\+?\d{1,3}[\s.-])?(?:\(\d{3}\)|\d{3})[\s.-]\d{3}[\s.-]\d{4})`)
	citationPattern = regexp.MustCompile(`【\d+】`)
)

// Processor is one named source rewrite.
type Processor struct {
	Plugin string
	Apply  func(src string) string
}

// Processors lists every rewrite in the order they run.
var Processors = []Processor{
	{Plugin: ContactInfo, Apply: LinkContactInfo},
	{Plugin: Citation, Apply: RenumberCitations},
}

// Run applies the rewrites of the enabled plugins to src.
func Run(src string, enabled []string) string {
	for _, p := range Processors {
		if slices.Contains(enabled, p.Plugin) {
			src = p.Apply(src)
		}
	}
	return src
}

// LinkContactInfo wraps bare email addresses and phone numbers in
// <mailto:...> and <tel:...> links.
func LinkContactInfo(src string) string {
	src = emailPattern.ReplaceAllString(src, "${1}<mailto:${2}>${3}")
	return phonePattern.ReplaceAllString(src, "${1}<tel:${2}>")
}

// RenumberCitations rewrites every 【n】 marker so that markers count up
// from 0 in document order.
func RenumberCitations(src string) string {
	counter := 0
	return citationPattern.ReplaceAllStringFunc(src, func(string) string {
		marker := "【" + strconv.Itoa(counter) + "】"
		counter++
		return marker
	})
}
