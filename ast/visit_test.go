package ast

import (
	"sort"
	"testing"
)

func sampleGrammar() *Grammar {
	return &Grammar{
		Rules: []*Rule{
			{
				Name: "start",
				Expr: Sequence{
					Elements: []Expression{
						Labeled{Label: "h", Expr: RuleRef{Name: "Term"}},
						ZeroOrMore{Expr: Choice{Alternatives: []Expression{
							RuleRef{Name: "Term"},
							RuleRef{Name: "Factor"},
						}}},
					},
				},
			},
			{Name: "Term", Expr: RuleRef{Name: "Factor"}},
			{Name: "Factor", Expr: Literal{Value: "x"}},
		},
	}
}

func TestWalkRuleRefs(t *testing.T) {
	g := sampleGrammar()
	var got []string
	WalkRuleRefs(g, func(name string, isLibrary bool) {
		if isLibrary {
			t.Fatalf("unexpected library ref %q", name)
		}
		got = append(got, name)
	})
	sort.Strings(got)
	want := []string{"Factor", "Factor", "Term", "Term"}
	if len(got) != len(want) {
		t.Fatalf("got %d refs %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ref[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkRules(t *testing.T) {
	g := sampleGrammar()
	var names []string
	WalkRules(g, func(r *Rule) { names = append(names, r.Name) })
	want := []string{"start", "Term", "Factor"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestTransformRewritesLeaves(t *testing.T) {
	g := sampleGrammar()
	Transform(g, func(x Expression) (Expression, bool) {
		if lit, ok := x.(Literal); ok {
			lit.Value = lit.Value + "!"
			return lit, false
		}
		return x, true
	})
	factor := g.Rules[2].Expr.(Literal)
	if factor.Value != "x!" {
		t.Errorf("Factor.Expr.Value = %q, want %q", factor.Value, "x!")
	}
}
