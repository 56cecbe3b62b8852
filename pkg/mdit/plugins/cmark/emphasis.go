// emphasis.go matches "*" and "_" delimiter runs into <em> and <strong>.
package cmark

import (
	"unicode"
	"unicode/utf8"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Em is emphasis.
type Em struct {
	Marker byte
}

func (*Em) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("em", n.Attrs)
	r.Contents(n.Children)
	r.Close("em")
}

// Strong is strong emphasis.
type Strong struct {
	Marker byte
}

func (*Strong) Render(n *mdit.Node, r mdit.Renderer) {
	r.Open("strong", n.Attrs)
	r.Contents(n.Children)
	r.Close("strong")
}

// Delims describes a run of delimiter characters.
type Delims struct {
	Length   int
	CanOpen  bool
	CanClose bool
}

// ScanDelims measures the run of s.Src[pos] starting at pos and applies the
// flanking rules. Underscores may not open or close inside a word.
func ScanDelims(s *mdit.InlineState, pos int) Delims {
	marker := s.Src[pos]
	end := pos
	for end < s.PosMax && s.Src[end] == marker {
		end++
	}

	last := ' '
	if pos > 0 {
		last, _ = utf8.DecodeLastRuneInString(s.Src[:pos])
	}
	next := ' '
	if end < s.PosMax {
		next, _ = utf8.DecodeRuneInString(s.Src[end:s.PosMax])
	}

	lastWS, nextWS := unicode.IsSpace(last), unicode.IsSpace(next)
	lastPunct, nextPunct := isPunct(last), isPunct(next)

	left := !nextWS && (!nextPunct || lastWS || lastPunct)
	right := !lastWS && (!lastPunct || nextWS || nextPunct)

	d := Delims{Length: end - pos, CanOpen: left, CanClose: right}
	if marker == '_' {
		d.CanOpen = left && (!right || lastPunct)
		d.CanClose = right && (!left || nextPunct)
	}
	return d
}

func isPunct(r rune) bool {
	if r < utf8.RuneSelf {
		return isASCIIPunct(byte(r))
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// FindCloser scans forward from pos for a delimiter run of marker that can
// close. Runs that can only open are skipped as nested constructs, and
// other markup is skipped with SkipToken.
func FindCloser(s *mdit.InlineState, marker byte, pos int) (int, Delims, bool) {
	saved := s.Pos
	defer func() { s.Pos = saved }()

	for pos < s.PosMax {
		if s.Src[pos] != marker {
			s.Pos = pos
			s.SkipToken()
			pos = s.Pos
			continue
		}
		d := ScanDelims(s, pos)
		if d.CanClose {
			return pos, d, true
		}
		if d.CanOpen {
			s.Pos = pos
			s.SkipToken()
			if s.Pos > pos+1 {
				pos = s.Pos
				continue
			}
		}
		pos += d.Length
	}
	return 0, Delims{}, false
}

type emphasisRule struct {
	marker byte
}

func (e emphasisRule) Marker() rune { return rune(e.marker) }

type emphasisMatch struct {
	prefix     int
	count      int
	closer     int
	contentBeg int
}

func (e emphasisRule) match(s *mdit.InlineState) (emphasisMatch, bool) {
	start := s.Pos
	open := ScanDelims(s, start)
	if !open.CanOpen {
		return emphasisMatch{}, false
	}
	closer, closing, ok := FindCloser(s, e.marker, start+open.Length)
	if !ok {
		return emphasisMatch{}, false
	}
	count := min(open.Length, closing.Length, 3)
	return emphasisMatch{
		prefix:     open.Length - count,
		count:      count,
		closer:     closer,
		contentBeg: start + open.Length,
	}, true
}

func (e emphasisRule) Check(s *mdit.InlineState) (int, bool) {
	m, ok := e.match(s)
	if !ok {
		return 0, false
	}
	return m.closer + m.count - s.Pos, true
}

// Run matches the shortest emphasis span. When the opening run is longer
// than the closing one, the surplus opening characters stay literal text.
func (e emphasisRule) Run(s *mdit.InlineState) (*mdit.Node, int) {
	m, ok := e.match(s)
	if !ok {
		return nil, 0
	}
	start := s.Pos

	var outer, inner *mdit.Node
	switch m.count {
	case 1:
		outer = mdit.NewNode(&Em{Marker: e.marker})
		inner = outer
	case 2:
		outer = mdit.NewNode(&Strong{Marker: e.marker})
		inner = outer
	default:
		outer = mdit.NewNode(&Em{Marker: e.marker})
		inner = mdit.NewNode(&Strong{Marker: e.marker})
		outer.AppendChild(inner)
	}
	s.ParseNested(m.contentBeg, m.closer, inner)

	consumed := m.closer + m.count - start
	if m.prefix == 0 {
		return outer, consumed
	}
	wrapper := mdit.NewNode(&mdit.Container{})
	wrapper.AppendChild(mdit.NewNode(&mdit.Text{Content: s.Src[start : start+m.prefix]}))
	wrapper.AppendChild(outer)
	return wrapper, consumed
}
