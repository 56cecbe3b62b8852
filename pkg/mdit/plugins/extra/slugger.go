package extra

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Slugger generates GitHub-compatible heading ids. Repeated slugs get a
// numeric suffix: "foo", "foo-1", "foo-2".
//
// A Slugger is not safe for concurrent use.
type Slugger struct {
	seen map[string]bool
}

// Slug returns a slug for s that this Slugger has not returned before.
func (sl *Slugger) Slug(s string) string {
	if sl.seen == nil {
		sl.seen = make(map[string]bool)
	}
	base := Slug(s)
	result := base
	for i := 1; sl.seen[result]; i++ {
		result = base + "-" + strconv.Itoa(i)
	}
	sl.seen[result] = true
	return result
}

// Reset forgets every slug seen so far.
func (sl *Slugger) Reset() {
	sl.seen = nil
}

// removed are the categories GitHub strips from slugs, except that spaces
// and hyphens become "-" and letters survive.
var removed = []*unicode.RangeTable{
	unicode.No, unicode.Pe, unicode.Pf, unicode.Pi, unicode.Ps, unicode.Po, unicode.Pd,
	unicode.S, unicode.Cc, unicode.Co, unicode.Cf, unicode.Z,
}

var assigned = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C,
}

// Slug converts plain heading text into a slug without tracking repeats.
func Slug(s string) string {
	// a Caser is stateful, so each call gets its own
	s = cases.Lower(language.Und).String(norm.NFC.String(s))
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			sb.WriteByte('-')
		case !unicode.In(r, assigned...):
		case unicode.In(r, removed...):
			if unicode.IsLetter(r) || unicode.Is(unicode.Other_Alphabetic, r) {
				sb.WriteRune(r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
