package charclass

import "testing"

func TestRangesMatch(t *testing.T) {
	m := Ranges(Range{Lo: 'a', Hi: 'z'}, Range{Lo: '0', Hi: '9'})
	for _, r := range []rune{'a', 'm', 'z', '0', '9'} {
		if !m.Match(r) {
			t.Errorf("Match(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'A', ' ', '!', '{'} {
		if m.Match(r) {
			t.Errorf("Match(%q) = true, want false", r)
		}
	}
}

func TestCoalesceAdjacentRanges(t *testing.T) {
	m := Ranges(Range{Lo: 'a', Hi: 'c'}, Range{Lo: 'd', Hi: 'f'}).(*mRange)
	if len(m.Ranges) != 1 || m.Ranges[0] != (Range{Lo: 'a', Hi: 'f'}) {
		t.Errorf("coalesce = %v, want single [a-f]", m.Ranges)
	}
}

func TestNot(t *testing.T) {
	m := Not(Exactly('x'))
	if m.Match('x') {
		t.Error("Not(x).Match(x) = true, want false")
	}
	if !m.Match('y') {
		t.Error("Not(x).Match(y) = false, want true")
	}
}

func TestCaseFold(t *testing.T) {
	m := CaseFold(Exactly('a'))
	if !m.Match('A') {
		t.Error("CaseFold(a).Match(A) = false, want true")
	}
}
