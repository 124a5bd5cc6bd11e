package dslparser

import (
	"testing"

	"github.com/hildjj/peggy/ast"
)

func mustParse(t *testing.T, src string) *ast.Grammar {
	t.Helper()
	g, err := Parse("test.peggy", src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return g
}

func TestParseSimpleRule(t *testing.T) {
	g := mustParse(t, `start = "hello";`)
	if len(g.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(g.Rules))
	}
	lit, ok := g.Rules[0].Expr.(ast.Literal)
	if !ok {
		t.Fatalf("expr = %T, want ast.Literal", g.Rules[0].Expr)
	}
	if lit.Value != "hello" {
		t.Errorf("Value = %q, want %q", lit.Value, "hello")
	}
}

func TestParseChoiceAndSequence(t *testing.T) {
	g := mustParse(t, `start = "a" "b" / "c";`)
	choice, ok := g.Rules[0].Expr.(ast.Choice)
	if !ok {
		t.Fatalf("expr = %T, want ast.Choice", g.Rules[0].Expr)
	}
	if len(choice.Alternatives) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(choice.Alternatives))
	}
	seq, ok := choice.Alternatives[0].(ast.Sequence)
	if !ok || len(seq.Elements) != 2 {
		t.Fatalf("alt0 = %#v, want 2-element sequence", choice.Alternatives[0])
	}
}

func TestParseLabeledAndPick(t *testing.T) {
	g := mustParse(t, `pair = a:"x" @b:"y";`)
	seq, ok := g.Rules[0].Expr.(ast.Sequence)
	if !ok || len(seq.Elements) != 2 {
		t.Fatalf("expr = %#v, want 2-element sequence", g.Rules[0].Expr)
	}
	first, ok := seq.Elements[0].(ast.Labeled)
	if !ok || first.Label != "a" || first.Pick {
		t.Errorf("elem0 = %#v, want label a, pick=false", seq.Elements[0])
	}
	second, ok := seq.Elements[1].(ast.Labeled)
	if !ok || second.Label != "b" || !second.Pick {
		t.Errorf("elem1 = %#v, want label b, pick=true", seq.Elements[1])
	}
}

func TestParsePrefixSuffix(t *testing.T) {
	g := mustParse(t, `start = &"x" !"y" $("z")*;`)
	seq, ok := g.Rules[0].Expr.(ast.Sequence)
	if !ok || len(seq.Elements) != 3 {
		t.Fatalf("expr = %#v, want 3-element sequence", g.Rules[0].Expr)
	}
	if _, ok := seq.Elements[0].(ast.SimpleAnd); !ok {
		t.Errorf("elem0 = %T, want ast.SimpleAnd", seq.Elements[0])
	}
	if _, ok := seq.Elements[1].(ast.SimpleNot); !ok {
		t.Errorf("elem1 = %T, want ast.SimpleNot", seq.Elements[1])
	}
	text, ok := seq.Elements[2].(ast.Text)
	if !ok {
		t.Fatalf("elem2 = %T, want ast.Text", seq.Elements[2])
	}
	if _, ok := text.Expr.(ast.ZeroOrMore); !ok {
		t.Errorf("text.Expr = %T, want ast.ZeroOrMore", text.Expr)
	}
}

func TestParseRepeatedBounds(t *testing.T) {
	cases := []struct {
		src     string
		wantMin bool
		wantMax bool
	}{
		{`start = "a"|3|;`, true, true},
		{`start = "a"|2..5|;`, true, true},
		{`start = "a"|2..|;`, true, false},
		{`start = "a"|..5|;`, false, true},
	}
	for _, c := range cases {
		g := mustParse(t, c.src)
		rep, ok := g.Rules[0].Expr.(ast.Repeated)
		if !ok {
			t.Fatalf("%s: expr = %T, want ast.Repeated", c.src, g.Rules[0].Expr)
		}
		if (rep.Min != nil) != c.wantMin {
			t.Errorf("%s: Min = %v, wantMin = %v", c.src, rep.Min, c.wantMin)
		}
		if (rep.Max != nil) != c.wantMax {
			t.Errorf("%s: Max = %v, wantMax = %v", c.src, rep.Max, c.wantMax)
		}
	}
}

func TestParseClassAndProperty(t *testing.T) {
	g := mustParse(t, `start = [a-z\p{L}]u;`)
	cc, ok := g.Rules[0].Expr.(ast.CharClass)
	if !ok {
		t.Fatalf("expr = %T, want ast.CharClass", g.Rules[0].Expr)
	}
	if !cc.Unicode {
		t.Error("Unicode = false, want true")
	}
	if cc.Inverted {
		t.Error("Inverted = true, want false")
	}
	if len(cc.Parts) != 1 || cc.Parts[0] != (ast.ClassPart{Lo: 'a', Hi: 'z'}) {
		t.Errorf("Parts = %v, want [a-z]", cc.Parts)
	}
	if len(cc.Properties) != 1 || cc.Properties[0].Name != "L" {
		t.Errorf("Properties = %v, want [L]", cc.Properties)
	}
}

func TestParseActionAndSemanticPredicate(t *testing.T) {
	g := mustParse(t, `start = n:"1" &{ return n == "1" } { return n };`)
	action, ok := g.Rules[0].Expr.(ast.Action)
	if !ok {
		t.Fatalf("expr = %T, want ast.Action", g.Rules[0].Expr)
	}
	if action.Code != " return n " {
		t.Errorf("Code = %q", action.Code)
	}
	seq, ok := action.Expr.(ast.Sequence)
	if !ok || len(seq.Elements) != 2 {
		t.Fatalf("action.Expr = %#v, want 2-element sequence", action.Expr)
	}
	if _, ok := seq.Elements[1].(ast.SemanticAnd); !ok {
		t.Errorf("elem1 = %T, want ast.SemanticAnd", seq.Elements[1])
	}
}

func TestParseRuleRefAndLibraryRef(t *testing.T) {
	g := mustParse(t, `
import base from "base.peggy";
start = base.Digit;
`)
	if len(g.Imports) != 1 || g.Imports[0].Module != "base.peggy" {
		t.Fatalf("Imports = %#v", g.Imports)
	}
	ref, ok := g.Rules[0].Expr.(ast.LibraryRef)
	if !ok || ref.Binding != "base" || ref.Name != "Digit" {
		t.Fatalf("expr = %#v, want library_ref base.Digit", g.Rules[0].Expr)
	}
}

func TestParseInitializers(t *testing.T) {
	g := mustParse(t, `
{{ var total = 0; }}
{ total = 0; }
start = "a";
`)
	if g.TopLevelInitializer == nil || g.TopLevelInitializer.Code != " var total = 0; " {
		t.Fatalf("TopLevelInitializer = %#v", g.TopLevelInitializer)
	}
	if g.PerParseInitializer == nil || g.PerParseInitializer.Code != " total = 0; " {
		t.Fatalf("PerParseInitializer = %#v", g.PerParseInitializer)
	}
}

func TestParseNamedExpression(t *testing.T) {
	g := mustParse(t, `start = "x" "letter x";`)
	named, ok := g.Rules[0].Expr.(ast.Named)
	if !ok || named.Name != "letter x" {
		t.Fatalf("expr = %#v, want named 'letter x'", g.Rules[0].Expr)
	}
}

func TestParseErrorFurthestFailure(t *testing.T) {
	_, err := Parse("test.peggy", `start = "a" / ;`)
	if err == nil {
		t.Fatal("want error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if len(pe.Expected) == 0 {
		t.Error("Expected is empty")
	}
}

func TestParseFragmentsConcatenation(t *testing.T) {
	g, err := ParseFragments([]Fragment{
		{Source: "a.peggy", Text: `{{ var x = 1; }} ruleA = "a";`},
		{Source: "b.peggy", Text: `ruleB = "b";`},
	})
	if err != nil {
		t.Fatalf("ParseFragments error: %v", err)
	}
	if len(g.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(g.Rules))
	}
	if g.TopLevelInitializer == nil {
		t.Fatal("TopLevelInitializer lost from first fragment")
	}
}

func TestReservedWordRejectedUnlessEscaped(t *testing.T) {
	if _, err := Parse("test.peggy", `var = "x";`); err == nil {
		t.Error("want error for reserved rule name 'var'")
	}
	// v decodes to 'v': same spelling as "var", but escaped, so
	// the reserved-word rejection doesn't apply (spec.md §4.1).
	g := mustParse(t, "\\u0076ar = \"x\";")
	if g.Rules[0].Name != "var" {
		t.Errorf("Name = %q, want %q", g.Rules[0].Name, "var")
	}
}
