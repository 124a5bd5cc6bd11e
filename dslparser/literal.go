package dslparser

import (
	"strconv"
	"strings"

	"github.com/hildjj/peggy/ast"
)

// scanQuoted reads a single- or double-quoted string literal with
// standard escape sequences, returning its decoded value. The quote
// rune itself must be next (after skipping space); ok is false if it
// isn't.
func (p *Parser) scanQuoted() (string, bool) {
	p.skipSpace()
	quote, w := p.peek()
	if w == 0 || (quote != '"' && quote != '\'') {
		return "", false
	}
	p.advance()
	var sb strings.Builder
	for {
		r, w := p.peek()
		if w == 0 {
			p.fail("closing quote")
			return sb.String(), false
		}
		if r == quote {
			p.advance()
			return sb.String(), true
		}
		if r == '\n' {
			p.fail("closing quote")
			return sb.String(), false
		}
		if r == '\\' {
			esc, ok := p.scanEscape()
			if ok {
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
		p.advance()
	}
}

// scanEscape consumes a backslash escape sequence. ok is false for a
// line continuation (backslash-newline), which contributes nothing.
func (p *Parser) scanEscape() (rune, bool) {
	p.advance() // consume '\'
	r, w := p.peek()
	if w == 0 {
		p.fail("escape sequence")
		return 0, false
	}
	switch r {
	case 'n':
		p.advance()
		return '\n', true
	case 'r':
		p.advance()
		return '\r', true
	case 't':
		p.advance()
		return '\t', true
	case 'b':
		p.advance()
		return '\b', true
	case 'f':
		p.advance()
		return '\f', true
	case 'v':
		p.advance()
		return '\v', true
	case '0':
		p.advance()
		return 0, true
	case '\\', '"', '\'':
		p.advance()
		return r, true
	case '\n':
		p.advance()
		return 0, false
	case 'x':
		p.advance()
		return p.scanHexEscape(2)
	case 'u':
		v, ok := p.scanUnicodeEscape()
		if !ok {
			return 0, false
		}
		return v, true
	default:
		p.advance()
		return r, true
	}
}

func (p *Parser) scanHexEscape(n int) (rune, bool) {
	var hex strings.Builder
	for i := 0; i < n; i++ {
		r, w := p.peek()
		if w == 0 || !isHexDigit(r) {
			p.fail("hex digit")
			return 0, false
		}
		hex.WriteRune(r)
		p.advance()
	}
	v, err := strconv.ParseInt(hex.String(), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// scanCodeBlock reads a `{ ... }` block, tracking nested braces and
// skipping over single- or double-quoted strings (ended by their quote
// or a newline, honoring backslash escapes) so braces inside them are
// not counted; braces inside comments are counted like any other, and
// the code body is otherwise opaque text per spec.md's Non-goal.
// Returns the code, its location, and the overall location including
// the braces.
func (p *Parser) scanCodeBlock() (code string, codeLoc ast.Location, full ast.Location, ok bool) {
	p.skipSpace()
	outerStart := p.here()
	if !p.consumeIf('{') {
		return "", ast.Location{}, ast.Location{}, false
	}
	innerStart := p.here()
	depth := 1
	var sb strings.Builder
	for {
		r, w := p.peek()
		if w == 0 {
			p.fail("closing '}'")
			return "", ast.Location{}, ast.Location{}, false
		}
		switch r {
		case '{':
			depth++
			sb.WriteRune(r)
			p.advance()
		case '}':
			depth--
			if depth == 0 {
				codeLoc = p.loc(innerStart)
				p.advance()
				full = p.loc(outerStart)
				return sb.String(), codeLoc, full, true
			}
			sb.WriteRune(r)
			p.advance()
		case '"', '\'':
			sb.WriteRune(r)
			p.advance()
			for {
				rr, ww := p.peek()
				if ww == 0 || rr == '\n' {
					break
				}
				sb.WriteRune(rr)
				p.advance()
				if rr == '\\' {
					if r2, w2 := p.peek(); w2 > 0 {
						sb.WriteRune(r2)
						p.advance()
					}
					continue
				}
				if rr == r {
					break
				}
			}
		default:
			sb.WriteRune(r)
			p.advance()
		}
	}
}

// scanInteger reads an unsigned decimal integer, used for constant
// repetition boundaries.
func (p *Parser) scanInteger() (int, bool) {
	p.skipSpace()
	start := p.pos
	for {
		r, w := p.peek()
		if w == 0 || r < '0' || r > '9' {
			break
		}
		p.advance()
	}
	if p.pos == start {
		return 0, false
	}
	v, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, false
	}
	return v, true
}
