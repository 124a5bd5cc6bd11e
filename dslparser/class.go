package dslparser

import "github.com/hildjj/peggy/ast"

// scanClass parses a `[...]` character class body (the brackets
// themselves), including `^` inversion, `\p{Name}`/`\P{Name}`
// property escapes, ranges, and the trailing `i`/`u` suffixes.
func (p *Parser) scanClass() (*ast.CharClass, bool) {
	p.skipSpace()
	start := p.here()
	if !p.consumeIf('[') {
		return nil, false
	}
	cc := &ast.CharClass{}
	if p.consumeIf('^') {
		cc.Inverted = true
	}
	for {
		r, w := p.peek()
		if w == 0 {
			p.fail("closing ']'")
			return nil, false
		}
		if r == ']' {
			p.advance()
			break
		}
		if r == '\\' && (p.peekRuneAt(1) == 'p' || p.peekRuneAt(1) == 'P') {
			negated := p.peekRuneAt(1) == 'P'
			p.advance()
			p.advance()
			if !p.consumeIf('{') {
				p.fail("'{' after \\p")
				return nil, false
			}
			name := p.scanPropertyName()
			if !p.consumeIf('}') {
				p.fail("closing '}'")
				return nil, false
			}
			cc.Properties = append(cc.Properties, ast.ClassProperty{Name: name, Negated: negated})
			continue
		}
		lo, ok := p.scanClassChar()
		if !ok {
			return nil, false
		}
		hi := lo
		if r2, w2 := p.peek(); w2 > 0 && r2 == '-' && p.peekRuneAt(1) != ']' {
			p.advance()
			var ok2 bool
			hi, ok2 = p.scanClassChar()
			if !ok2 {
				return nil, false
			}
			if hi < lo {
				p.fail("valid character range (low <= high)")
				return nil, false
			}
		}
		cc.Parts = append(cc.Parts, ast.ClassPart{Lo: lo, Hi: hi})
	}
	if p.consumeIf('i') {
		cc.CaseInsensitive = true
	}
	if p.consumeIf('u') {
		cc.Unicode = true
	}
	cc.Location = p.loc(start)
	return cc, true
}

func (p *Parser) scanPropertyName() string {
	start := p.pos
	for {
		r, w := p.peek()
		if w == 0 || r == '}' {
			break
		}
		p.advance()
	}
	return p.src[start:p.pos]
}

func (p *Parser) scanClassChar() (rune, bool) {
	r, w := p.peek()
	if w == 0 {
		p.fail("character")
		return 0, false
	}
	if r == '\\' {
		esc, ok := p.scanEscape()
		if !ok {
			p.fail("character")
			return 0, false
		}
		return esc, true
	}
	p.advance()
	return r, true
}
