package dslparser

import (
	"github.com/hildjj/peggy/ast"
)

// atSequenceEnd reports whether the cursor is at a rune that cannot
// begin another sequence element, so parseSequence knows to stop.
func (p *Parser) atSequenceEnd() bool {
	p.skipSpace()
	if p.atEOF() {
		return true
	}
	r, _ := p.peek()
	switch r {
	case '/', ')', ';', '|':
		return true
	case '{':
		// An action's `{code}` suffix also starts with '{', but actions
		// only attach after a full sequence via parseActionExpr, which
		// calls parseSequence first; by the time parseSequence sees a
		// bare '{' at top level it is this suffix, not another element.
		return true
	}
	return false
}

// parseExpression is the loosest precedence level: choice.
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseChoice()
}

func (p *Parser) parseChoice() (ast.Expression, error) {
	start := p.here()
	first, err := p.parseActionExpr()
	if err != nil {
		return nil, err
	}
	alts := []ast.Expression{first}
	for p.consumeIf('/') {
		next, err := p.parseActionExpr()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return ast.Choice{Alternatives: alts, Location: p.loc(start)}, nil
}

// parseActionExpr parses a sequence optionally followed by a `{code}`
// action suffix, precedence level 2.
func (p *Parser) parseActionExpr() (ast.Expression, error) {
	start := p.here()
	seq, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if r, w := p.peek(); w > 0 && r == '{' {
		code, codeLoc, _, ok := p.scanCodeBlock()
		if !ok {
			return nil, p.failures.asError(p.source)
		}
		return ast.Action{Expr: seq, Code: code, CodeLocation: codeLoc, Location: p.loc(start)}, nil
	}
	return seq, nil
}

// parseSequence parses whitespace-separated labeled elements.
func (p *Parser) parseSequence() (ast.Expression, error) {
	start := p.here()
	var elems []ast.Expression
	for !p.atSequenceEnd() {
		el, err := p.parseLabeled()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	if len(elems) == 0 {
		p.fail("expression")
		return nil, p.failures.asError(p.source)
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return ast.Sequence{Elements: elems, Location: p.loc(start)}, nil
}

// parseLabeled recognizes `@`, `name:`, and `@name:` prefixes, and the
// trailing `"description"` that wraps an element as `named`.
func (p *Parser) parseLabeled() (ast.Expression, error) {
	start := p.here()
	pick := p.consumeIf('@')

	var label string
	var labelLoc ast.Location
	save, saveLine, saveCol := p.pos, p.line, p.col
	labelStart := p.here()
	if name := p.scanIdentifier(); name != "" {
		if p.isReservedHere(name) {
			p.pos, p.line, p.col = save, saveLine, saveCol
		} else {
			p.skipSpace()
			if r, w := p.peek(); w > 0 && r == ':' && p.peekRuneAt(1) != '=' {
				p.advance()
				label = name
				labelLoc = p.loc(labelStart)
			} else {
				p.pos, p.line, p.col = save, saveLine, saveCol
			}
		}
	}

	inner, err := p.parsePrefixed()
	if err != nil {
		return nil, err
	}
	inner = p.wrapNamed(inner)

	if label == "" && !pick {
		return inner, nil
	}
	return ast.Labeled{
		Label:         label,
		LabelLocation: labelLoc,
		Pick:          pick,
		Expr:          inner,
		Location:      p.loc(start),
	}, nil
}

// wrapNamed consumes a trailing `"description"` and wraps expr as a
// `named` node, spec.md §3's expression-level override of the
// expected-set contribution (distinct from a rule's own display name).
func (p *Parser) wrapNamed(expr ast.Expression) ast.Expression {
	save, saveLine, saveCol := p.pos, p.line, p.col
	p.skipSpace()
	if r, w := p.peek(); w > 0 && (r == '"' || r == '\'') {
		name, ok := p.scanQuoted()
		if ok {
			return ast.Named{Name: name, Expr: expr, Location: expr.Loc()}
		}
	}
	p.pos, p.line, p.col = save, saveLine, saveCol
	return expr
}

func (p *Parser) parsePrefixed() (ast.Expression, error) {
	start := p.here()
	p.skipSpace()
	r, w := p.peek()
	if w == 0 {
		return p.parseSuffixed()
	}
	switch r {
	case '&':
		p.advance()
		p.skipSpace()
		if r2, w2 := p.peek(); w2 > 0 && r2 == '{' {
			code, codeLoc, _, ok := p.scanCodeBlock()
			if !ok {
				return nil, p.failures.asError(p.source)
			}
			return ast.SemanticAnd{Code: code, CodeLocation: codeLoc, Location: p.loc(start)}, nil
		}
		inner, err := p.parseSuffixed()
		if err != nil {
			return nil, err
		}
		return ast.SimpleAnd{Expr: inner, Location: p.loc(start)}, nil
	case '!':
		p.advance()
		p.skipSpace()
		if r2, w2 := p.peek(); w2 > 0 && r2 == '{' {
			code, codeLoc, _, ok := p.scanCodeBlock()
			if !ok {
				return nil, p.failures.asError(p.source)
			}
			return ast.SemanticNot{Code: code, CodeLocation: codeLoc, Location: p.loc(start)}, nil
		}
		inner, err := p.parseSuffixed()
		if err != nil {
			return nil, err
		}
		return ast.SimpleNot{Expr: inner, Location: p.loc(start)}, nil
	case '$':
		p.advance()
		inner, err := p.parseSuffixed()
		if err != nil {
			return nil, err
		}
		return ast.Text{Expr: inner, Location: p.loc(start)}, nil
	default:
		return p.parseSuffixed()
	}
}

func (p *Parser) parseSuffixed() (ast.Expression, error) {
	start := p.here()
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	r, w := p.peek()
	if w == 0 {
		return prim, nil
	}
	switch r {
	case '?':
		p.advance()
		return ast.Optional{Expr: prim, Location: p.loc(start)}, nil
	case '*':
		p.advance()
		return ast.ZeroOrMore{Expr: prim, Location: p.loc(start)}, nil
	case '+':
		p.advance()
		return ast.OneOrMore{Expr: prim, Location: p.loc(start)}, nil
	case '|':
		return p.parseRepeated(prim, start)
	default:
		return prim, nil
	}
}

// parseRepeated parses the `|boundary[,delim]|` suffix: boundary is
// `min..max`, `min..`, `..max`, or a bare `count` (min==max), where
// each bound is a literal integer, an identifier (a label evaluated at
// parse time), or a `{code}` block.
func (p *Parser) parseRepeated(inner ast.Expression, start ast.Position) (ast.Expression, error) {
	p.advance() // consume '|'
	rep := ast.Repeated{Expr: inner}

	first, firstOK := p.parseBoundaryTerm()
	if p.consumeIf('.') {
		p.consumeIf('.')
		rep.Min = first
		if r, w := p.peek(); w == 0 || r == ',' || r == '|' {
			rep.Max = nil
		} else {
			max, ok := p.parseBoundaryTerm()
			if !ok {
				p.fail("repetition upper bound")
				return nil, p.failures.asError(p.source)
			}
			rep.Max = max
		}
	} else if firstOK {
		rep.Min = first
		rep.Max = first
	}

	if p.consumeIf(',') {
		delim, err := p.parseSuffixed()
		if err != nil {
			return nil, err
		}
		rep.Delim = delim
	}
	if !p.expect('|', "closing '|'") {
		return nil, p.failures.asError(p.source)
	}
	rep.Location = p.loc(start)
	return rep, nil
}

func (p *Parser) parseBoundaryTerm() (ast.Boundary, bool) {
	p.skipSpace()
	start := p.here()
	if r, w := p.peek(); w > 0 && r == '{' {
		code, _, _, ok := p.scanCodeBlock()
		if !ok {
			return nil, false
		}
		return ast.CodeBoundary{Code: code, Location: p.loc(start)}, true
	}
	if v, ok := p.scanInteger(); ok {
		return ast.ConstantBoundary{Value: v, Location: p.loc(start)}, true
	}
	if name := p.scanIdentifier(); name != "" {
		return ast.VariableBoundary{Name: name, Location: p.loc(start)}, true
	}
	return nil, false
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	start := p.here()
	p.skipSpace()
	r, w := p.peek()
	if w == 0 {
		p.fail("expression")
		return nil, p.failures.asError(p.source)
	}
	switch {
	case r == '"' || r == '\'':
		return p.parseLiteral(start)
	case r == '[':
		cc, ok := p.scanClass()
		if !ok {
			return nil, p.failures.asError(p.source)
		}
		return *cc, nil
	case r == '.':
		p.advance()
		unicode := p.consumeIf('u')
		return ast.Any{Unicode: unicode, Location: p.loc(start)}, nil
	case r == '(':
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.expect(')', "closing ')'") {
			return nil, p.failures.asError(p.source)
		}
		return ast.Group{Expr: inner, Location: p.loc(start)}, nil
	default:
		return p.parseRefOrIdentifierExpr(start)
	}
}

func (p *Parser) parseLiteral(start ast.Position) (ast.Expression, error) {
	s, ok := p.scanQuoted()
	if !ok {
		return nil, p.failures.asError(p.source)
	}
	ci := p.consumeIf('i')
	return ast.Literal{Value: s, CaseInsensitive: ci, Location: p.loc(start)}, nil
}

func (p *Parser) parseRefOrIdentifierExpr(start ast.Position) (ast.Expression, error) {
	nameStart := p.here()
	name := p.scanIdentifier()
	if name == "" {
		p.fail("expression")
		return nil, p.failures.asError(p.source)
	}
	if p.isReservedHere(name) {
		p.fail("non-reserved identifier")
		return nil, p.failures.asError(p.source)
	}
	nameLoc := p.loc(nameStart)
	if r, w := p.peek(); w > 0 && r == '.' && p.identStartsAt(1) {
		p.advance()
		ruleStart := p.here()
		ruleName := p.scanIdentifier()
		if ruleName == "" {
			p.fail("rule name after '.'")
			return nil, p.failures.asError(p.source)
		}
		return ast.LibraryRef{
			Binding:      name,
			Name:         ruleName,
			NameLocation: p.loc(ruleStart),
			Location:     p.loc(start),
		}, nil
	}
	return ast.RuleRef{Name: name, NameLocation: nameLoc, Location: p.loc(start)}, nil
}

func (p *Parser) identStartsAt(offset int) bool {
	r, _ := p.peekAt(offset)
	return isIdentStart(r)
}
