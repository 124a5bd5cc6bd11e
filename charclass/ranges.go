package charclass

import "unicode"

// ExpandRanges flattens any Matcher into a sorted, coalesced list of
// Range values describing exactly the runes it matches. Unlike ForEach,
// this walks the known Matcher shapes structurally instead of visiting
// every member rune one at a time, so it stays cheap even for a
// property class built from a large unicode.RangeTable.
//
// Only mCaseFold falls back to ForEach, since a case-folded class is
// always built from a small, explicitly-enumerated base set in practice
// (grammar source classes use `i` on literal character lists, never on
// \p{...} properties).
func ExpandRanges(m Matcher) []Range {
	switch t := m.(type) {
	case *mRange:
		out := make([]Range, len(t.Ranges))
		copy(out, t.Ranges)
		return out
	case *mNot:
		return complementRanges(ExpandRanges(t.Inner))
	case *mUnion:
		var all []Range
		for _, sub := range t.List {
			all = append(all, ExpandRanges(sub)...)
		}
		return coalesceRanges(all)
	case *mTable:
		return tableRanges(t.Table)
	default:
		var all []Range
		m.ForEach(func(r rune) { all = append(all, Range{Lo: r, Hi: r}) })
		return coalesceRanges(all)
	}
}

func complementRanges(rs []Range) []Range {
	var out []Range
	var next rune
	for _, r := range rs {
		if r.Lo > next {
			out = append(out, Range{Lo: next, Hi: r.Lo - 1})
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if next <= 0x10ffff {
		out = append(out, Range{Lo: next, Hi: 0x10ffff})
	}
	return out
}

func tableRanges(rt *unicode.RangeTable) []Range {
	var all []Range
	for _, r16 := range rt.R16 {
		all = append(all, stepRanges(rune(r16.Lo), rune(r16.Hi), rune(r16.Stride))...)
	}
	for _, r32 := range rt.R32 {
		all = append(all, stepRanges(rune(r32.Lo), rune(r32.Hi), rune(r32.Stride))...)
	}
	return coalesceRanges(all)
}

func stepRanges(lo, hi, stride rune) []Range {
	if stride <= 1 {
		return []Range{{Lo: lo, Hi: hi}}
	}
	var out []Range
	for x := lo; x <= hi; x += stride {
		out = append(out, Range{Lo: x, Hi: x})
	}
	return out
}
