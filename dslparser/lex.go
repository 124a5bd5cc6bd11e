package dslparser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hildjj/peggy/ast"
)

// reservedWords mirrors the fixed list spec.md §4.1 says a rule/label
// name must not collide with unless escaped. Rather than invent a
// bespoke list, this borrows the set a host-language emitter (§4.5)
// would also need to avoid in generated code: the 25 Go keywords, and
// nothing else.
var reservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true,
	"select": true, "case": true, "defer": true, "go": true, "map": true,
	"struct": true, "chan": true, "else": true, "goto": true, "package": true,
	"switch": true, "const": true, "fallthrough": true, "if": true,
	"range": true, "type": true, "continue": true, "for": true,
	"import": true, "return": true, "var": true,
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// peek returns the rune at offset p.pos without consuming it, and its
// encoded width in bytes (0 at end of input).
func (p *Parser) peek() (rune, int) {
	if p.pos >= len(p.src) {
		return 0, 0
	}
	r, w := utf8.DecodeRuneInString(p.src[p.pos:])
	return r, w
}

func (p *Parser) peekAt(offset int) (rune, int) {
	if p.pos+offset >= len(p.src) {
		return 0, 0
	}
	r, w := utf8.DecodeRuneInString(p.src[p.pos+offset:])
	return r, w
}

func (p *Parser) atEOF() bool { return p.pos >= len(p.src) }

// advance consumes and returns the current rune, updating line/column.
func (p *Parser) advance() rune {
	r, w := p.peek()
	if w == 0 {
		return 0
	}
	p.pos += w
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *Parser) here() ast.Position {
	return ast.Position{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *Parser) loc(start ast.Position) ast.Location {
	return ast.Location{Source: p.source, Start: start, End: p.here()}
}

// skipSpace consumes whitespace, line comments (`//`) and block
// comments (`/* */`, non-nesting per spec.md §4.1).
func (p *Parser) skipSpace() {
	for {
		r, w := p.peek()
		switch {
		case w == 0:
			return
		case r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f' || r == '\v':
			p.advance()
		case r == '/' && p.peekRuneAt(1) == '/':
			for !p.atEOF() {
				if r, _ := p.peek(); r == '\n' {
					break
				}
				p.advance()
			}
		case r == '/' && p.peekRuneAt(1) == '*':
			p.advance()
			p.advance()
			for {
				if p.atEOF() {
					return
				}
				if r, _ := p.peek(); r == '*' && p.peekRuneAt(1) == '/' {
					p.advance()
					p.advance()
					break
				}
				p.advance()
			}
		default:
			return
		}
	}
}

func (p *Parser) peekRuneAt(offset int) rune {
	r, _ := p.peekAt(offset)
	return r
}

// consumeIf consumes r if it is next (after skipping space), reporting
// whether it did.
func (p *Parser) consumeIf(r rune) bool {
	p.skipSpace()
	if cur, w := p.peek(); w > 0 && cur == r {
		p.advance()
		return true
	}
	return false
}

// expect consumes r, recording a failure if it isn't next.
func (p *Parser) expect(r rune, desc string) bool {
	if p.consumeIf(r) {
		return true
	}
	p.fail(desc)
	return false
}

func (p *Parser) fail(expected string) {
	found := "end of input"
	if r, w := p.peek(); w > 0 {
		found = strconv.QuoteRune(r)
	}
	p.failures.record(p.here(), expected, found)
}

// scanIdentifier reads an ECMAScript-style identifier, including
// `\uXXXX` and `\u{...}` escapes in either the start or continuation
// position (spec.md §4.1). Returns "" if the cursor isn't on one.
func (p *Parser) scanIdentifier() string {
	p.lastIdentEscaped = false
	p.skipSpace()
	start := p.pos
	var sb strings.Builder
	first := true
	for {
		r, w := p.peek()
		if w == 0 {
			break
		}
		if r == '\\' && p.peekRuneAt(1) == 'u' {
			save := p.pos
			esc, ok := p.scanUnicodeEscape()
			if !ok || (first && !isIdentStart(esc)) || (!first && !isIdentPart(esc)) {
				p.pos = save
				break
			}
			sb.WriteRune(esc)
			p.lastIdentEscaped = true
			first = false
			continue
		}
		if first && !isIdentStart(r) {
			break
		}
		if !first && !isIdentPart(r) {
			break
		}
		sb.WriteRune(r)
		p.advance()
		first = false
	}
	if sb.Len() == 0 {
		p.pos = start
		return ""
	}
	return sb.String()
}

// scanUnicodeEscape consumes a leading `\u` and then either `XXXX` (4
// hex digits) or `{H+}` (braced hex), returning the decoded rune.
func (p *Parser) scanUnicodeEscape() (rune, bool) {
	if r, _ := p.peek(); r != '\\' {
		return 0, false
	}
	p.advance()
	if r, _ := p.peek(); r != 'u' {
		return 0, false
	}
	p.advance()
	if r, _ := p.peek(); r == '{' {
		p.advance()
		var hex strings.Builder
		for {
			r, w := p.peek()
			if w == 0 || r == '}' {
				break
			}
			hex.WriteRune(r)
			p.advance()
		}
		if !p.consumeIf('}') {
			return 0, false
		}
		v, err := strconv.ParseInt(hex.String(), 16, 32)
		if err != nil {
			return 0, false
		}
		return rune(v), true
	}
	var hex strings.Builder
	for i := 0; i < 4; i++ {
		r, w := p.peek()
		if w == 0 || !isHexDigit(r) {
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

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// peekIdentifier peeks an identifier without consuming it, used for
// reserved-word checks before committing to a rule/label name.
func (p *Parser) peekIdentifier() string {
	save, saveLine, saveCol := p.pos, p.line, p.col
	name := p.scanIdentifier()
	p.pos, p.line, p.col = save, saveLine, saveCol
	return name
}

// isReservedHere reports whether name must be rejected as a rule or
// label name: it's on the reserved list and the identifier that
// produced it used no `\u` escape. Per spec.md §4.1, an escaped
// spelling of a reserved word is exempt.
func (p *Parser) isReservedHere(name string) bool {
	return reservedWords[name] && !p.lastIdentEscaped
}
