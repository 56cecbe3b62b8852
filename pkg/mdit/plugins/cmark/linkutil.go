// linkutil.go parses link labels, destinations and titles, and normalizes URLs.
package cmark

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// NormalizeReference folds a link label for case-insensitive matching:
// whitespace runs collapse to one space and Unicode case is folded.
func NormalizeReference(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

// ParseLinkLabel finds the "]" closing the label that opens at start
// ("[" at s.Src[start]). Nested constructs are skipped with SkipToken so a
// "]" inside a code span does not count. It returns -1 if there is none.
func ParseLinkLabel(s *mdit.InlineState, start int, disableNested bool) int {
	saved := s.Pos
	defer func() { s.Pos = saved }()

	level := 1
	s.Pos = start + 1
	for s.Pos < s.PosMax {
		marker := s.Src[s.Pos]
		if marker == ']' {
			level--
			if level == 0 {
				return s.Pos
			}
		}
		prev := s.Pos
		s.SkipToken()
		if marker == '[' {
			if prev == s.Pos-1 {
				level++
			} else if disableNested {
				return -1
			}
		}
	}
	return -1
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

var backslashEscape = regexp.MustCompile("\\\\[!\"#$%&'()*+,\\-./:;<=>?@\\[\\\\\\]^_`{|}~]")

// unescapeAll removes backslash escapes and decodes entities.
func unescapeAll(s string) string {
	if !strings.ContainsAny(s, "\\&") {
		return s
	}
	s = backslashEscape.ReplaceAllStringFunc(s, func(m string) string { return m[1:] })
	return html.UnescapeString(s)
}

// parseLinkDestination reads a destination starting at pos: either
// "<...>" or a run without spaces and with balanced parentheses.
func parseLinkDestination(src string, pos, max int) (string, int, bool) {
	if pos >= max {
		return "", pos, false
	}
	if src[pos] == '<' {
		for i := pos + 1; i < max; i++ {
			switch src[i] {
			case '\n', '<':
				return "", pos, false
			case '>':
				return unescapeAll(src[pos+1 : i]), i + 1, true
			case '\\':
				if i+1 < max {
					i++
				}
			}
		}
		return "", pos, false
	}

	level := 0
	i := pos
	for i < max {
		c := src[i]
		if c == ' ' || c < 0x20 || c == 0x7f {
			break
		}
		if c == '\\' && i+1 < max && isASCIIPunct(src[i+1]) {
			i += 2
			continue
		}
		if c == '(' {
			level++
			if level > 32 {
				return "", pos, false
			}
		}
		if c == ')' {
			if level == 0 {
				break
			}
			level--
		}
		i++
	}
	if i == pos || level != 0 {
		return "", pos, false
	}
	return unescapeAll(src[pos:i]), i, true
}

// parseLinkTitle reads a quoted or parenthesized title starting at pos.
func parseLinkTitle(src string, pos, max int) (string, int, bool) {
	if pos >= max {
		return "", pos, false
	}
	closer := src[pos]
	switch closer {
	case '"', '\'':
	case '(':
		closer = ')'
	default:
		return "", pos, false
	}
	for i := pos + 1; i < max; i++ {
		switch c := src[i]; {
		case c == closer:
			return unescapeAll(src[pos+1 : i]), i + 1, true
		case c == '(' && closer == ')':
			return "", pos, false
		case c == '\\' && i+1 < max:
			i++
		}
	}
	return "", pos, false
}

func skipSpaces(src string, pos, max int) int {
	for pos < max && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\n') {
		pos++
	}
	return pos
}

var unsafeScheme = regexp.MustCompile(`(?i)^(vbscript|javascript|file|data):`)
var safeData = regexp.MustCompile(`(?i)^data:image/(gif|png|jpeg|webp);`)

// ValidateLink rejects script-capable URL schemes; data URLs are allowed
// only for common image types.
func ValidateLink(url string) bool {
	u := strings.TrimSpace(url)
	if unsafeScheme.MatchString(u) {
		return safeData.MatchString(u)
	}
	return true
}

const unreservedURL = ";/?:@&=+$,-_.!~*'()#"

// NormalizeLink percent-encodes characters that may not appear in a URL,
// keeping existing escapes.
func NormalizeLink(url string) string {
	var sb strings.Builder
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c == '%' && i+2 < len(url) && isHex(url[i+1]) && isHex(url[i+2]):
			sb.WriteString(url[i : i+3])
			i += 2
		case c < 0x80 && (isAlnum(c) || strings.IndexByte(unreservedURL, c) >= 0):
			sb.WriteByte(c)
		default:
			const hex = "0123456789ABCDEF"
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0xf])
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
