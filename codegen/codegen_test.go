package codegen

import (
	"testing"

	"github.com/hildjj/peggy/ast"
)

func lit(s string) ast.Literal { return ast.Literal{Value: s} }

func TestCompileSimpleLiteralRule(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{Name: "start", Expr: lit("hi")},
		},
	}

	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Program == nil {
		t.Fatal("Compile returned a nil Program")
	}
	if len(res.Program.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(res.Program.Rules))
	}
	if res.Program.Rules[0].Name != "start" {
		t.Fatalf("got rule name %q, want %q", res.Program.Rules[0].Name, "start")
	}
	if len(res.Actions) != 1 {
		t.Fatalf("got %d actions, want 1 (just the builtin text action)", len(res.Actions))
	}
	if res.Actions[0].Builtin != "text" {
		t.Fatalf("expected action 0 to be the builtin text action, got %+v", res.Actions[0])
	}
	if _, ok := res.Program.LabelsByName["start.start"]; !ok {
		t.Fatal("expected a public start.start entry trampoline label")
	}
}

func TestCompiledProgramRuns(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{Name: "start", Expr: lit("hi")},
		},
	}
	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	r := res.Program.Match([]byte("hi"))
	if !r.Success {
		t.Fatalf("expected a successful match, got %+v", r)
	}
}

func TestCompileRejectsEmptyGrammar(t *testing.T) {
	_, err := Compile(&ast.Grammar{}, Options{})
	if err == nil {
		t.Fatal("expected an error compiling a grammar with no rules")
	}
}

func TestCompileSequenceWithLabelsAndAction(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "pair",
				Expr: ast.Action{
					Expr: ast.Sequence{
						Elements: []ast.Expression{
							ast.Labeled{Label: "a", Expr: lit("a")},
							lit(","),
							ast.Labeled{Label: "b", Expr: lit("b")},
						},
					},
					Code: "return []interface{}{a, b}, nil",
				},
			},
		},
	}

	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Actions) != 2 {
		t.Fatalf("got %d actions, want 2 (builtin text + the pair action)", len(res.Actions))
	}
	got := res.Actions[1]
	if len(got.Labels) != 2 || got.Labels[0] != "a" || got.Labels[1] != "b" {
		t.Fatalf("unexpected action labels: %+v", got.Labels)
	}
}

func TestCompilePickSequence(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "quoted",
				Expr: ast.Sequence{
					Elements: []ast.Expression{
						lit(`"`),
						ast.Labeled{Pick: true, Expr: ast.Text{Expr: ast.ZeroOrMore{Expr: ast.CharClass{
							Parts: []ast.ClassPart{{Lo: 'a', Hi: 'z'}},
						}}}},
						lit(`"`),
					},
				},
			},
		},
	}

	if _, err := Compile(g, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileChoiceOptionalRepetitionAndLookahead(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "digits",
				Expr: ast.OneOrMore{Expr: ast.CharClass{
					Parts: []ast.ClassPart{{Lo: '0', Hi: '9'}},
				}},
			},
			{
				Name: "start",
				Expr: ast.Sequence{
					Elements: []ast.Expression{
						ast.SimpleAnd{Expr: ast.RuleRef{Name: "digits"}},
						ast.Choice{Alternatives: []ast.Expression{
							lit("x"),
							lit("y"),
						}},
						ast.Optional{Expr: lit("z")},
						ast.ZeroOrMore{Expr: ast.Any{}},
						ast.SimpleNot{Expr: lit("w")},
						ast.Repeated{
							Expr: lit("a"),
							Min:  ast.ConstantBoundary{Value: 1},
							Max:  ast.ConstantBoundary{Value: 3},
						},
					},
				},
			},
		},
	}

	res, err := Compile(g, Options{Cache: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.Program.Rules[0].Cacheable && !res.Program.Rules[1].Cacheable {
		t.Fatalf("expected at least one rule to remain cacheable: %+v", res.Program.Rules)
	}
}

func TestCompileUnicodeClassAndNamedRule(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "start",
				Expr: ast.Named{
					Name: "identifier",
					Expr: ast.Text{Expr: ast.OneOrMore{Expr: ast.CharClass{
						Unicode: true,
						Properties: []ast.ClassProperty{{Name: "L"}},
					}}},
				},
			},
		},
	}

	if _, err := Compile(g, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileCaseInsensitiveNonASCIILiteral(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{Name: "start", Expr: ast.Literal{Value: "café", CaseInsensitive: true}},
		},
	}

	if _, err := Compile(g, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileLibraryRefWithoutResolverPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unresolved library_ref")
		}
	}()

	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{Name: "start", Expr: ast.LibraryRef{Binding: "json", Name: "value"}},
		},
	}
	_, _ = Compile(g, Options{})
}

func TestCompileRepeatedWithVariableBoundary(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "start",
				Expr: ast.Sequence{
					Elements: []ast.Expression{
						ast.Labeled{Label: "n", Expr: ast.Action{
							Expr: ast.Labeled{Label: "d", Expr: ast.Text{Expr: ast.OneOrMore{Expr: ast.CharClass{
								Parts: []ast.ClassPart{{Lo: '0', Hi: '9'}},
							}}}},
							Code: "return len(d.(string)), nil",
						}},
						lit(":"),
						ast.Repeated{
							Expr: lit("a"),
							Min:  ast.VariableBoundary{Name: "n"},
						},
					},
				},
			},
		},
	}

	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Program == nil {
		t.Fatal("Compile returned a nil Program")
	}
	r := res.Program.Match([]byte("3:aaa"))
	if !r.Success {
		t.Fatalf("expected a successful match, got %+v", r)
	}
}

func TestCompileRepeatedWithCodeBoundary(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "start",
				Expr: ast.Repeated{
					Expr: lit("a"),
					Max:  ast.CodeBoundary{Code: "return 2, nil"},
				},
			},
		},
	}

	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var found *ActionSite
	for i := range res.Actions {
		if res.Actions[i].Code == "return 2, nil" {
			found = &res.Actions[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected an action site for the code boundary among %+v", res.Actions)
	}
	if len(found.Labels) != 0 {
		t.Fatalf("expected a code boundary action to bind no labels, got %+v", found.Labels)
	}

	// A rule match must consume the whole input, so feeding more 'a's
	// than the code boundary's max allows leaves a remainder behind and
	// the overall match fails — which is exactly how a constant max
	// would behave, and confirms the dynamic max was actually honored
	// rather than ignored.
	if r := res.Program.Match([]byte("aaaaa")); r.Success {
		t.Fatalf("expected failure from unconsumed input past the max, got %+v", r)
	}
	if r := res.Program.Match([]byte("aa")); !r.Success {
		t.Fatalf("expected success matching exactly the max, got %+v", r)
	}
}

func TestCompileRepeatedWithVariableAndConstantBoundary(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "start",
				Expr: ast.Sequence{
					Elements: []ast.Expression{
						ast.Labeled{Label: "n", Expr: ast.Text{Expr: ast.OneOrMore{Expr: ast.CharClass{
							Parts: []ast.ClassPart{{Lo: '0', Hi: '9'}},
						}}}},
						lit(":"),
						ast.Repeated{
							Expr: lit("a"),
							Min:  ast.VariableBoundary{Name: "n"},
							Max:  ast.ConstantBoundary{Value: 5},
						},
					},
				},
			},
		},
	}

	if _, err := Compile(g, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestCompileSemanticPredicates(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "guarded",
				Expr: ast.Sequence{
					Elements: []ast.Expression{
						ast.Labeled{Label: "n", Expr: ast.Text{Expr: ast.OneOrMore{Expr: ast.CharClass{
							Parts: []ast.ClassPart{{Lo: '0', Hi: '9'}},
						}}}},
						ast.SemanticAnd{Code: "return len(n.(string)) < 10, nil"},
						ast.SemanticNot{Code: "return n.(string) == \"0\", nil"},
					},
				},
			},
		},
	}

	res, err := Compile(g, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Predicates) != 2 {
		t.Fatalf("got %d predicates, want 2", len(res.Predicates))
	}
}
