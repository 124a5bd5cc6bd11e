package codegen

import (
	"fmt"
	"strconv"

	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/byteset"
	"github.com/hildjj/peggy/charclass"
	"github.com/hildjj/peggy/pegvm"
)

// lowerLiteral matches a literal string position by position, following
// byteset.LiteralRuns: any position with more than one candidate run
// gets a small chain of attempts, every other position gets a single
// direct match. The whole thing is CHOICE-free — every attempt is a
// T-variant opcode that jumps on its own mismatch, and a failed
// multi-byte run is unwound with RWNDB rather than caught by a CHOICE.
func (c *ctx) lowerLiteral(n ast.Literal) {
	mismatch := c.newLabel("lit_mismatch")
	okLbl := c.newLabel("lit_ok")

	c.emitOp(pegvm.OpPMARK, nil, nil, nil)

	switch {
	case !n.CaseInsensitive:
		idx := c.asm.DeclareLiteral([]byte(n.Value))
		c.emitOp(pegvm.OpTLITB, c.jumpTarget(mismatch), idx, nil)

	case byteset.IsASCII(n.Value):
		for i := 0; i < len(n.Value); i++ {
			b := n.Value[i]
			idx := c.asm.DeclareByteSet(byteset.ASCIIFold(b))
			c.emitOp(pegvm.OpTMATCHB, c.jumpTarget(mismatch), idx, uint64(1))
		}

	default:
		runsPerPos := byteset.LiteralRuns(n.Value, true)
		for _, runs := range runsPerPos {
			if len(runs) == 1 {
				idx := c.asm.DeclareLiteral(runs[0])
				c.emitOp(pegvm.OpTLITB, c.jumpTarget(mismatch), idx, nil)
				continue
			}
			c.lowerRunAlternatives(runs, mismatch)
		}
	}

	c.jmp(okLbl)
	c.label(mismatch)
	c.emitOp(pegvm.OpDROPMARK, nil, nil, nil)
	idx := c.asm.DeclareExpected(literalExpectedDesc(n))
	c.emitOp(pegvm.OpEXPECT, idx, nil, nil)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpPUSHTEXT, nil, nil, nil)
}

// lowerRunAlternatives tries each candidate run (one code point's case
// variants) in turn at the current position. A run that matches jumps
// straight to okLbl, skipping the remaining alternatives; the last
// alternative falls through to overallMismatch on failure.
func (c *ctx) lowerRunAlternatives(runs []byteset.Run, overallMismatch string) {
	okLbl := c.newLabel("lit_run_ok")
	for i, run := range runs {
		nextLbl := overallMismatch
		if i < len(runs)-1 {
			nextLbl = c.newLabel("lit_run_next")
		}
		idx := c.asm.DeclareLiteral(run)
		c.emitOp(pegvm.OpTLITB, c.jumpTarget(nextLbl), idx, nil)
		if i < len(runs)-1 {
			c.jmp(okLbl)
			c.label(nextLbl)
		}
	}
	c.label(okLbl)
}

func literalExpectedDesc(n ast.Literal) string {
	return strconv.Quote(n.Value)
}

// lowerCharClass matches a single character-class node. Byte-mode
// classes (Unicode == false) become one DeclareByteSet + OpTMATCHB;
// Unicode-mode classes are expanded to code-point ranges and then to
// their UTF-8 byte-range sequences, one alternative per sequence (an
// encoded length can need several).
func (c *ctx) lowerCharClass(n ast.CharClass) {
	mismatch := c.newLabel("class_mismatch")
	okLbl := c.newLabel("class_ok")

	c.emitOp(pegvm.OpPMARK, nil, nil, nil)

	if !n.Unicode {
		m := buildByteClassMatcher(n)
		idx := c.asm.DeclareByteSet(m)
		c.emitOp(pegvm.OpTMATCHB, c.jumpTarget(mismatch), idx, uint64(1))
		c.jmp(okLbl)
		c.label(mismatch)
		c.emitOp(pegvm.OpDROPMARK, nil, nil, nil)
		eidx := c.asm.DeclareExpected(classExpectedDesc(n))
		c.emitOp(pegvm.OpEXPECT, eidx, nil, nil)
		c.fail()
		c.label(okLbl)
		c.emitOp(pegvm.OpPUSHTEXT, nil, nil, nil)
		return
	}

	m := buildCharClassMatcher(n)
	ranges := charclass.ExpandRanges(m)
	alts := charclass.UTF8Sequences(ranges)
	c.lowerUnicodeMatcher(alts, mismatch)
	c.jmp(okLbl)
	c.label(mismatch)
	c.emitOp(pegvm.OpDROPMARK, nil, nil, nil)
	eidx := c.asm.DeclareExpected(classExpectedDesc(n))
	c.emitOp(pegvm.OpEXPECT, eidx, nil, nil)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpPUSHTEXT, nil, nil, nil)
}

// lowerAny matches any single code unit, or any single code point when
// Unicode is set.
func (c *ctx) lowerAny(n ast.Any) {
	mismatch := c.newLabel("any_mismatch")
	okLbl := c.newLabel("any_ok")

	c.emitOp(pegvm.OpPMARK, nil, nil, nil)

	if !n.Unicode {
		c.emitOp(pegvm.OpTANYB, c.jumpTarget(mismatch), uint64(1), nil)
		c.jmp(okLbl)
		c.label(mismatch)
		c.emitOp(pegvm.OpDROPMARK, nil, nil, nil)
		eidx := c.asm.DeclareExpected("any character")
		c.emitOp(pegvm.OpEXPECT, eidx, nil, nil)
		c.fail()
		c.label(okLbl)
		c.emitOp(pegvm.OpPUSHTEXT, nil, nil, nil)
		return
	}

	ranges := charclass.ExpandRanges(charclass.All())
	alts := charclass.UTF8Sequences(ranges)
	c.lowerUnicodeMatcher(alts, mismatch)
	c.jmp(okLbl)
	c.label(mismatch)
	c.emitOp(pegvm.OpDROPMARK, nil, nil, nil)
	eidx := c.asm.DeclareExpected("any character")
	c.emitOp(pegvm.OpEXPECT, eidx, nil, nil)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpPUSHTEXT, nil, nil, nil)
}

// lowerUnicodeMatcher tries each byte-sequence alternative in turn. Every
// alternative that fails partway through must undo the bytes it already
// matched (RWNDB) before falling through to the next candidate, since
// TMATCHB advances the data pointer on a hit.
func (c *ctx) lowerUnicodeMatcher(alts [][]byteset.Range, overallMismatch string) {
	if len(alts) == 0 {
		c.jmp(overallMismatch)
		return
	}
	matchedLbl := c.newLabel("uni_matched")
	for i, alt := range alts {
		last := i == len(alts)-1
		nextLbl := overallMismatch
		if !last {
			nextLbl = c.newLabel("uni_next")
		}
		c.lowerByteSequenceAlt(alt, nextLbl)
		if !last {
			c.jmp(matchedLbl)
			c.label(nextLbl)
		}
	}
	c.label(matchedLbl)
}

// lowerByteSequenceAlt matches one UTF-8 byte-sequence alternative: a
// sequence of byte ranges, one per position. A mismatch at position i>0
// must first rewind the i bytes already consumed by this alternative.
func (c *ctx) lowerByteSequenceAlt(alt []byteset.Range, miss string) {
	for i, r := range alt {
		m := byteset.Ranges(r)
		idx := c.asm.DeclareByteSet(m)
		localMiss := miss
		if i > 0 {
			localMiss = c.newLabel("uni_miss")
		}
		c.emitOp(pegvm.OpTMATCHB, c.jumpTarget(localMiss), idx, uint64(1))
		if i > 0 {
			okLbl := c.newLabel("uni_byteok")
			c.jmp(okLbl)
			c.label(localMiss)
			c.emitOp(pegvm.OpRWNDB, uint64(i), nil, nil)
			c.jmp(miss)
			c.label(okLbl)
		}
	}
}

func classExpectedDesc(n ast.CharClass) string {
	prefix := "["
	if n.Inverted {
		prefix = "[^"
	}
	return prefix + "...]"
}

// buildByteClassMatcher constructs a byte-oriented matcher from a
// non-Unicode character class's ranges and properties.
func buildByteClassMatcher(n ast.CharClass) byteset.Matcher {
	var parts []byteset.Matcher
	for _, p := range n.Parts {
		parts = append(parts, byteset.Ranges(byteset.Range{Lo: byte(p.Lo), Hi: byte(p.Hi)}))
	}
	for _, p := range n.Properties {
		m, ok := charclass.Property(p.Name)
		if !ok {
			continue
		}
		bm := charclassToByteMatcher(m)
		if p.Negated {
			bm = byteset.Not(bm)
		}
		parts = append(parts, bm)
	}

	var m byteset.Matcher
	if len(parts) == 0 {
		m = byteset.None()
	} else {
		m = byteset.Or(parts...)
	}
	if n.CaseInsensitive {
		m = foldByteMatcher(m)
	}
	if n.Inverted {
		m = byteset.Not(m)
	}
	return m
}

// charclassToByteMatcher projects a rune matcher's members in 0x00-0xff
// onto a byteset.Matcher; used only for byte-mode classes that also
// reference a \p{...} property, which is unusual but not disallowed.
func charclassToByteMatcher(m charclass.Matcher) byteset.Matcher {
	var bytes []byte
	m.ForEach(func(r rune) {
		if r >= 0 && r <= 0xff {
			bytes = append(bytes, byte(r))
		}
	})
	return byteset.SparseSet(bytes...)
}

// foldByteMatcher adds the ASCII case-swapped counterpart of every
// letter byte already in m.
func foldByteMatcher(m byteset.Matcher) byteset.Matcher {
	var extra []byte
	m.ForEach(func(b byte) {
		switch {
		case b >= 'a' && b <= 'z':
			extra = append(extra, b-32)
		case b >= 'A' && b <= 'Z':
			extra = append(extra, b+32)
		}
	})
	if len(extra) == 0 {
		return m
	}
	return byteset.Or(m, byteset.SparseSet(extra...))
}

// buildCharClassMatcher constructs a rune-oriented matcher from a
// Unicode character class's ranges and properties.
func buildCharClassMatcher(n ast.CharClass) charclass.Matcher {
	var parts []charclass.Matcher
	for _, p := range n.Parts {
		parts = append(parts, charclass.Ranges(charclass.Range{Lo: p.Lo, Hi: p.Hi}))
	}
	for _, p := range n.Properties {
		m, ok := charclass.Property(p.Name)
		if !ok {
			panic(fmt.Sprintf("codegen: unknown unicode property %q", p.Name))
		}
		if p.Negated {
			m = charclass.Not(m)
		}
		parts = append(parts, m)
	}

	var m charclass.Matcher
	if len(parts) == 0 {
		m = charclass.None()
	} else {
		m = charclass.Or(parts...)
	}
	if n.CaseInsensitive {
		m = charclass.CaseFold(m)
	}
	if n.Inverted {
		m = charclass.Not(m)
	}
	return m
}
