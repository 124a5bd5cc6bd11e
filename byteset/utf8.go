package byteset

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Run is one code point's UTF-8 encoding, the unit a `literal` expression's
// generated matcher compares against the input a rune at a time when the
// literal isn't pure ASCII.
type Run []byte

// EncodeRune returns r's UTF-8 encoding as a Run.
func EncodeRune(r rune) Run {
	buf := make([]byte, utf8.RuneLen(r))
	utf8.EncodeRune(buf, r)
	return Run(buf)
}

func runLess(a, b Run) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func runEqual(a, b Run) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CaseVariants returns the distinct Runs that a case-insensitive match
// against r must accept: r's own encoding plus its upper-, lower-, and
// title-case mappings, sorted and deduplicated. For a rune with no case
// (digits, punctuation, most CJK) this is the single-element slice
// []Run{EncodeRune(r)}.
//
// This is what a `literal i` expression's matcher needs once the literal
// contains a non-ASCII rune: case folding isn't a single-bit flip on one
// byte the way it is for ASCII, since the upper- and lower-case forms can
// have entirely different UTF-8 byte lengths (e.g. 'İ' is two bytes,
// 'i̇' after naive lowering is three). Each rune's case variants have to
// be enumerated and compared as whole byte runs, not byte-by-byte.
func CaseVariants(r rune) []Run {
	seen := make([]rune, 0, 4)
	add := func(x rune) {
		for _, s := range seen {
			if s == x {
				return
			}
		}
		seen = append(seen, x)
	}
	add(r)
	add(unicode.ToUpper(r))
	add(unicode.ToLower(r))
	add(unicode.ToTitle(r))

	runs := make([]Run, 0, len(seen))
	for _, x := range seen {
		runs = append(runs, EncodeRune(x))
	}
	sort.Slice(runs, func(i, j int) bool { return runLess(runs[i], runs[j]) })
	out := runs[:0:0]
	for i, run := range runs {
		if i == 0 || !runEqual(run, runs[i-1]) {
			out = append(out, run)
		}
	}
	return out
}

// IsASCII reports whether every byte of s is below 0x80, the fast-path
// test a `literal` lowering uses to decide between a plain byte-for-byte
// LITB match (or, if case-insensitive, a per-byte ASCIIFold MATCHB chain)
// and the slower per-rune CaseVariants decomposition multi-byte literals
// require.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// ASCIIFold returns a Matcher for byte b that also accepts its opposite
// ASCII case, or Exactly(b) if b isn't an ASCII letter. Generated code
// for a case-insensitive literal made entirely of ASCII bytes chains one
// ASCIIFold MATCHB per byte instead of expanding into CaseVariants'
// multi-byte-run alternatives, since ASCII case folding never changes a
// byte's encoded length.
func ASCIIFold(b byte) Matcher {
	switch {
	case b >= 'A' && b <= 'Z':
		return DenseSet(b, b+32)
	case b >= 'a' && b <= 'z':
		return DenseSet(b, b-32)
	default:
		return Exactly(b)
	}
}

// LiteralRuns decomposes s into one alternative-set per rune: a single
// Run if s isn't case-insensitive or that rune has no case variants,
// otherwise CaseVariants(r). A codegen literal lowering walks this
// position by position, emitting a chain of TLITB attempts (each jumping
// to the next on a mismatch, with no CHOICE) at any position with more
// than one Run and a plain TLITB everywhere else.
func LiteralRuns(s string, caseInsensitive bool) [][]Run {
	var out [][]Run
	for _, r := range s {
		if !caseInsensitive {
			out = append(out, []Run{EncodeRune(r)})
			continue
		}
		out = append(out, CaseVariants(r))
	}
	return out
}
