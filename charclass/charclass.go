// Package charclass implements rune-set matchers for the `class` and
// `any` expression tags, mirroring the shape of the byteset package's
// Matcher interface one level up from bytes to Unicode code points.
package charclass

import (
	"bytes"
	"fmt"
	"sort"
)

// Matcher is a predicate over runes. Implementations must not change
// state on a call to Match.
type Matcher interface {
	// Match returns true iff r is in the set.
	Match(r rune) bool

	// ForEach calls f once for each rune in the set, in ascending
	// order. Only meaningful for small, explicitly-enumerated classes
	// (grammar source classes, test fixtures) — callers must not invoke
	// it on a property class built from a large unicode.RangeTable.
	ForEach(f func(r rune))

	// Optimize returns a Matcher for the same set, possibly more
	// efficient. Returns the receiver if no better form is found.
	Optimize() Matcher

	// String returns a debugging representation of the set; range and
	// union matchers list every member rune, each %q-quoted, inside
	// brackets (e.g. `['a''b']`).
	String() string
}

// Range represents an inclusive, possibly single-rune, range. Lo > Hi
// denotes the empty set.
type Range struct {
	Lo, Hi rune
}

func genericString(m Matcher) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	m.ForEach(func(r rune) { fmt.Fprintf(&buf, "%q", r) })
	buf.WriteByte(']')
	return buf.String()
}

type rangeSlice []Range

func (s rangeSlice) Len() int           { return len(s) }
func (s rangeSlice) Less(i, j int) bool { return s[i].Lo < s[j].Lo }
func (s rangeSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// coalesceRanges sorts and merges a,  dropping empty ranges, exactly as
// byteset.coalesceRanges does for bytes.
func coalesceRanges(a []Range) []Range {
	b := make([]Range, 0, len(a))
	for _, r := range a {
		if r.Hi >= r.Lo {
			b = append(b, r)
		}
	}
	sort.Sort(rangeSlice(b))
	if len(b) < 2 {
		return b
	}
	c := make([]Range, 0, len(b))
	var lastHi rune
	var have bool
	for _, r := range b {
		switch {
		case have && lastHi >= r.Hi:
			// fully contained, discard
		case have && lastHi+1 >= r.Lo:
			c[len(c)-1].Hi = r.Hi
			lastHi = r.Hi
		default:
			c = append(c, r)
			lastHi = r.Hi
			have = true
		}
	}
	return c
}

// Ranges returns a Matcher for the union of rs, exactly the
// representation a `class` expression's parts compile to.
func Ranges(rs ...Range) Matcher {
	return &mRange{Ranges: coalesceRanges(rs)}
}

// Exactly returns a Matcher for the single rune r.
func Exactly(r rune) Matcher {
	return &mRange{Ranges: []Range{{Lo: r, Hi: r}}}
}

// All matches every rune.
func All() Matcher { return &mRange{Ranges: []Range{{Lo: 0, Hi: 0x10ffff}}} }

// None matches no rune.
func None() Matcher { return &mRange{Ranges: nil} }

type mRange struct {
	Ranges []Range
}

var _ Matcher = (*mRange)(nil)

func (m *mRange) Match(r rune) bool {
	i := sort.Search(len(m.Ranges), func(i int) bool { return m.Ranges[i].Hi >= r })
	if i >= len(m.Ranges) {
		return false
	}
	rg := m.Ranges[i]
	return rg.Lo <= r && r <= rg.Hi
}

func (m *mRange) ForEach(f func(r rune)) {
	for _, rg := range m.Ranges {
		for x := rg.Lo; x <= rg.Hi; x++ {
			f(x)
		}
	}
}

func (m *mRange) Optimize() Matcher {
	if len(m.Ranges) == 0 {
		return None()
	}
	return m
}

func (m *mRange) String() string { return genericString(m) }
