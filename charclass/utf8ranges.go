package charclass

import (
	"bytes"
	"unicode/utf8"

	"github.com/hildjj/peggy/byteset"
)

// UTF8Sequences decomposes the union of Unicode rune ranges rs into byte
// range sequences: alternatives that, matched byte-by-byte in order and
// ORed across sequences, accept exactly the same set of UTF-8 encodings
// as rs. codegen lowers a Unicode-mode class or any to a chain of
// attempts over these sequences, each step a TMATCHB against a
// byteset.Ranges matcher that jumps to the next sequence on a mismatch
// (after RWNDB undoes the bytes already taken), because pegvm has no
// rune-decoding opcode and OpPRED is always
// zero-width, so nothing in the bytecode can conditionally consume a
// multi-byte rune except byte-range matching.
func UTF8Sequences(rs []Range) [][]byteset.Range {
	var out [][]byteset.Range
	for _, r := range rs {
		out = append(out, utf8RuneRange(r.Lo, r.Hi)...)
	}
	return out
}

// utf8Bounds are the highest rune encodable in 1, 2, 3, and 4 UTF-8
// bytes respectively.
var utf8Bounds = [4]rune{0x7f, 0x7ff, 0xffff, utf8.MaxRune}

func utf8RuneRange(lo, hi rune) [][]byteset.Range {
	if lo > hi {
		return nil
	}
	var out [][]byteset.Range
	start := lo
	for _, bound := range utf8Bounds {
		if start > hi {
			break
		}
		if bound < start {
			continue
		}
		end := hi
		if end > bound {
			end = bound
		}
		out = append(out, utf8SameLengthRange(start, end)...)
		start = bound + 1
	}
	return out
}

// utf8SameLengthRange splits [lo, hi] (already known to encode to the
// same number of UTF-8 bytes) around the surrogate gap, which is never
// validly encoded, then hands off to the byte-level splitter.
func utf8SameLengthRange(lo, hi rune) [][]byteset.Range {
	const surrLo, surrHi = 0xd800, 0xdfff
	if lo > surrHi || hi < surrLo {
		return splitBytesAlts(encodeRune(lo), encodeRune(hi))
	}
	var out [][]byteset.Range
	if lo < surrLo {
		out = append(out, splitBytesAlts(encodeRune(lo), encodeRune(surrLo-1))...)
	}
	if hi > surrHi {
		out = append(out, splitBytesAlts(encodeRune(surrHi+1), encodeRune(hi))...)
	}
	return out
}

func encodeRune(r rune) []byte {
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return buf[:n]
}

// splitBytesAlts recursively decomposes a range [lo, hi] of equal-length
// UTF-8 encodings into the classic three-way split used by regexp
// engines: the low prefix paired with maximal continuation bytes, a
// full-range middle byte paired with the full continuation range, and
// the high prefix paired with minimal continuation bytes. Each returned
// sequence is a conjunction (byte 0 in range[0], byte 1 in range[1],
// ...); the outer slice holds the alternatives for this [lo, hi].
func splitBytesAlts(lo, hi []byte) [][]byteset.Range {
	if len(lo) != len(hi) {
		panic("charclass: mismatched UTF-8 encoding lengths")
	}
	if len(lo) == 1 {
		return [][]byteset.Range{{{Lo: lo[0], Hi: hi[0]}}}
	}
	if lo[0] == hi[0] {
		var out [][]byteset.Range
		for _, rest := range splitBytesAlts(lo[1:], hi[1:]) {
			out = append(out, prepend(lo[0], lo[0], rest))
		}
		return out
	}

	n := len(lo) - 1
	minCont := make([]byte, n)
	maxCont := make([]byte, n)
	for i := 0; i < n; i++ {
		minCont[i] = 0x80
		maxCont[i] = 0xbf
	}

	var out [][]byteset.Range

	if bytes.Equal(lo[1:], minCont) {
		out = append(out, prepend(lo[0], lo[0], fullCont(n)))
	} else {
		for _, rest := range splitBytesAlts(lo[1:], maxCont) {
			out = append(out, prepend(lo[0], lo[0], rest))
		}
	}

	if hi[0]-lo[0] > 1 {
		out = append(out, prepend(lo[0]+1, hi[0]-1, fullCont(n)))
	}

	if bytes.Equal(hi[1:], maxCont) {
		out = append(out, prepend(hi[0], hi[0], fullCont(n)))
	} else {
		for _, rest := range splitBytesAlts(minCont, hi[1:]) {
			out = append(out, prepend(hi[0], hi[0], rest))
		}
	}

	return out
}

func prepend(lo, hi byte, rest []byteset.Range) []byteset.Range {
	out := make([]byteset.Range, 0, len(rest)+1)
	out = append(out, byteset.Range{Lo: lo, Hi: hi})
	out = append(out, rest...)
	return out
}

func fullCont(n int) []byteset.Range {
	out := make([]byteset.Range, n)
	for i := range out {
		out[i] = byteset.Range{Lo: 0x80, Hi: 0xbf}
	}
	return out
}
