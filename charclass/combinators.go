package charclass

import "unicode"

// Not returns a Matcher for the complement of m within [0, 0x10ffff],
// the `inverted` flag on a `class` expression.
func Not(m Matcher) Matcher {
	return &mNot{Inner: m}
}

type mNot struct {
	Inner Matcher
}

var _ Matcher = (*mNot)(nil)

func (m *mNot) Match(r rune) bool { return !m.Inner.Match(r) }

func (m *mNot) ForEach(f func(r rune)) {
	All().ForEach(func(r rune) {
		if !m.Inner.Match(r) {
			f(r)
		}
	})
}

func (m *mNot) Optimize() Matcher { return m }
func (m *mNot) String() string    { return "[^" + m.Inner.String()[1:len(m.Inner.String())-1] + "]" }

// Or returns a Matcher that matches iff any of ms matches.
func Or(ms ...Matcher) Matcher {
	l := make([]Matcher, len(ms))
	copy(l, ms)
	return &mUnion{List: l}
}

type mUnion struct {
	List []Matcher
}

var _ Matcher = (*mUnion)(nil)

func (m *mUnion) Match(r rune) bool {
	for _, sub := range m.List {
		if sub.Match(r) {
			return true
		}
	}
	return false
}

func (m *mUnion) ForEach(f func(r rune)) {
	seen := make(map[rune]bool)
	for _, sub := range m.List {
		sub.ForEach(func(r rune) {
			if !seen[r] {
				seen[r] = true
				f(r)
			}
		})
	}
}

func (m *mUnion) Optimize() Matcher {
	switch len(m.List) {
	case 0:
		return None()
	case 1:
		return m.List[0].Optimize()
	default:
		return m
	}
}

func (m *mUnion) String() string { return genericString(m) }

// CaseFold wraps m so that Match also accepts the opposite case of any
// ASCII or simple-mapped letter m matches, the `i` flag on a `class` or
// `literal` expression.
func CaseFold(m Matcher) Matcher {
	return &mCaseFold{Inner: m}
}

type mCaseFold struct {
	Inner Matcher
}

var _ Matcher = (*mCaseFold)(nil)

func (m *mCaseFold) Match(r rune) bool {
	if m.Inner.Match(r) {
		return true
	}
	if lo := unicode.ToLower(r); lo != r && m.Inner.Match(lo) {
		return true
	}
	if up := unicode.ToUpper(r); up != r && m.Inner.Match(up) {
		return true
	}
	return false
}

func (m *mCaseFold) ForEach(f func(r rune)) {
	seen := make(map[rune]bool)
	m.Inner.ForEach(func(r rune) {
		for _, v := range [3]rune{r, unicode.ToLower(r), unicode.ToUpper(r)} {
			if !seen[v] {
				seen[v] = true
				f(v)
			}
		}
	})
}

func (m *mCaseFold) Optimize() Matcher { return m }
func (m *mCaseFold) String() string    { return genericString(m) }
