package dslparser

import "github.com/hildjj/peggy/ast"

// Fragment is one named source text handed to ParseFragments. Source
// names become the Source field of every Location produced from that
// fragment's text.
type Fragment struct {
	Source string
	Text   string
}

// Parser scans one fragment's text into an *ast.Grammar. There is no
// separate token stream: productions call directly into the
// character-level helpers in lex.go/literal.go/class.go, the
// hand-rolled-scanner-struct idiom the retrieval pack uses for small
// recognizers (grounded loosely on the scanner shape in
// pat42smith-glean/scan.go — see DESIGN.md).
type Parser struct {
	source string
	src    string
	pos    int
	line   int
	col    int

	lastIdentEscaped bool
	failures         failureTracker
}

func newParser(source, text string) *Parser {
	return &Parser{source: source, src: text, line: 1, col: 1}
}

// Parse parses a single named source fragment.
func Parse(source, text string) (*ast.Grammar, error) {
	return ParseFragments([]Fragment{{Source: source, Text: text}})
}

// ParseFragments parses each fragment independently and concatenates
// their rule and import lists into one grammar, in fragment order. Only
// the first fragment's initializers are kept; later fragments'
// initializers are dropped.
func ParseFragments(fragments []Fragment) (*ast.Grammar, error) {
	if len(fragments) == 0 {
		return &ast.Grammar{}, nil
	}
	g := &ast.Grammar{}
	for i, frag := range fragments {
		p := newParser(frag.Source, frag.Text)
		fg, err := p.parseGrammar()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			g.TopLevelInitializer = fg.TopLevelInitializer
			g.PerParseInitializer = fg.PerParseInitializer
			g.Location = fg.Location
		}
		g.Imports = append(g.Imports, fg.Imports...)
		g.Rules = append(g.Rules, fg.Rules...)
	}
	return g, nil
}

// parseGrammar parses one fragment: optional top-level initializer
// `{{ code }}`, optional per-parse initializer `{ code }`, imports,
// then rules.
func (p *Parser) parseGrammar() (*ast.Grammar, error) {
	start := p.here()
	g := &ast.Grammar{}

	if init, ok := p.tryTopLevelInitializer(); ok {
		g.TopLevelInitializer = init
	}
	if init, ok := p.tryPerParseInitializer(); ok {
		g.PerParseInitializer = init
	}
	for {
		imp, ok := p.tryImport()
		if !ok {
			break
		}
		g.Imports = append(g.Imports, imp)
	}
	for {
		p.skipSpace()
		if p.atEOF() {
			break
		}
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, rule)
	}
	p.skipSpace()
	if !p.atEOF() {
		p.fail("rule definition")
		return nil, p.failures.asError(p.source)
	}
	if len(g.Rules) == 0 {
		p.fail("at least one rule")
		return nil, p.failures.asError(p.source)
	}
	g.Location = p.loc(start)
	return g, nil
}

// tryTopLevelInitializer recognizes a leading `{{ code }}` block, run
// once at module load (distinguished from the per-parse initializer by
// the doubled brace, an Open Question resolution recorded in
// DESIGN.md).
func (p *Parser) tryTopLevelInitializer() (*ast.Initializer, bool) {
	p.skipSpace()
	save, saveLine, saveCol := p.pos, p.line, p.col
	start := p.here()
	if !(p.consumeIf('{') && p.peekImmediate('{')) {
		p.pos, p.line, p.col = save, saveLine, saveCol
		return nil, false
	}
	p.advance() // second '{'
	codeStart := p.here()
	var code []rune
	for {
		r, w := p.peek()
		if w == 0 {
			p.fail("closing '}}'")
			return nil, false
		}
		if r == '}' && p.peekRuneAt(1) == '}' {
			codeLoc := p.loc(codeStart)
			p.advance()
			p.advance()
			return &ast.Initializer{Code: string(code), CodeLocation: codeLoc, Location: p.loc(start)}, true
		}
		code = append(code, r)
		p.advance()
	}
}

func (p *Parser) peekImmediate(r rune) bool {
	cur, w := p.peek()
	return w > 0 && cur == r
}

func (p *Parser) tryPerParseInitializer() (*ast.Initializer, bool) {
	p.skipSpace()
	save, saveLine, saveCol := p.pos, p.line, p.col
	code, codeLoc, full, ok := p.scanCodeBlock()
	if !ok {
		p.pos, p.line, p.col = save, saveLine, saveCol
		return nil, false
	}
	return &ast.Initializer{Code: code, CodeLocation: codeLoc, Location: full}, true
}
