package analysis

import "github.com/hildjj/peggy/ast"

// emptiness maps rule name to whether that rule can match the empty
// string, the fixed point spec.md §4.3 passes 3 and 4 are both built on:
// an infinite loop happens when a repetition's body can match empty,
// and left recursion happens when a chain of empty-matching prefixes
// lets a rule call itself before consuming anything.
type emptiness map[string]bool

// computeEmptiness iterates exprEmpty to a fixed point over every rule
// in g. Unknown rules (library refs, or a rule_ref caught by the
// undefined-rule pass) are conservatively treated as non-empty so a
// missing fact never manufactures a false "infinite loop".
func computeEmptiness(g *ast.Grammar, rules ruleIndex) emptiness {
	e := make(emptiness, len(g.Rules))
	for {
		changed := false
		for _, r := range g.Rules {
			v := exprEmpty(r.Expr, e)
			if e[r.Name] != v {
				e[r.Name] = v
				changed = true
			}
		}
		if !changed {
			return e
		}
	}
}

// exprEmpty reports whether x can match without consuming any input,
// given the current (possibly partial) fixed-point state e.
func exprEmpty(x ast.Expression, e emptiness) bool {
	switch n := x.(type) {
	case ast.Literal:
		return n.Value == ""
	case ast.CharClass, ast.Any:
		return false
	case ast.RuleRef:
		return e[n.Name]
	case ast.LibraryRef:
		return false
	case ast.Sequence:
		for _, el := range n.Elements {
			if !exprEmpty(el, e) {
				return false
			}
		}
		return true
	case ast.Choice:
		for _, alt := range n.Alternatives {
			if exprEmpty(alt, e) {
				return true
			}
		}
		return false
	case ast.Optional:
		return true
	case ast.ZeroOrMore:
		return true
	case ast.OneOrMore:
		return exprEmpty(n.Expr, e)
	case ast.Repeated:
		if min, ok := n.Min.(ast.ConstantBoundary); ok && min.Value == 0 {
			return true
		}
		if n.Min == nil {
			return true
		}
		return exprEmpty(n.Expr, e)
	case ast.Group:
		return exprEmpty(n.Expr, e)
	case ast.Labeled:
		return exprEmpty(n.Expr, e)
	case ast.Text:
		return exprEmpty(n.Expr, e)
	case ast.SimpleAnd, ast.SimpleNot, ast.SemanticAnd, ast.SemanticNot:
		return true
	case ast.Action:
		return exprEmpty(n.Expr, e)
	case ast.Named:
		return exprEmpty(n.Expr, e)
	default:
		return false
	}
}
