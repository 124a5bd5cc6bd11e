package charclass

import "unicode"

// Property looks up a Unicode property/script/category by its `\p{Name}`
// spelling and returns a Matcher for it. Uses unicode.RangeTable: no
// pack library ships Unicode property tables, so this one corner of the
// package is stdlib-only (see DESIGN.md).
func Property(name string) (Matcher, bool) {
	if rt, ok := unicode.Categories[name]; ok {
		return FromRangeTable(rt), true
	}
	if rt, ok := unicode.Scripts[name]; ok {
		return FromRangeTable(rt), true
	}
	if rt, ok := unicode.Properties[name]; ok {
		return FromRangeTable(rt), true
	}
	return nil, false
}

// FromRangeTable wraps a *unicode.RangeTable as a Matcher. ForEach is
// correct but expensive for large tables (e.g. \p{L}) — callers doing
// full enumeration should prefer Match-based code generation instead.
func FromRangeTable(rt *unicode.RangeTable) Matcher {
	return &mTable{Table: rt}
}

type mTable struct {
	Table *unicode.RangeTable
}

var _ Matcher = (*mTable)(nil)

func (m *mTable) Match(r rune) bool { return unicode.Is(m.Table, r) }

func (m *mTable) ForEach(f func(r rune)) {
	for _, r16 := range m.Table.R16 {
		for x := rune(r16.Lo); x <= rune(r16.Hi); x += rune(r16.Stride) {
			f(x)
			if r16.Stride == 0 {
				break
			}
		}
	}
	for _, r32 := range m.Table.R32 {
		for x := rune(r32.Lo); x <= rune(r32.Hi); x += rune(r32.Stride) {
			f(x)
			if r32.Stride == 0 {
				break
			}
		}
	}
}

func (m *mTable) Optimize() Matcher { return m }
func (m *mTable) String() string    { return "\\p{...}" }
