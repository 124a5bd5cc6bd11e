package analysis

import (
	"fmt"
	"strings"

	"github.com/hildjj/peggy/ast"
)

// checkLeftRecursion is spec.md §4.3 pass 4. A grammar is left-recursive
// when some rule can call itself again before consuming any input: build
// a graph with an edge rule -> ref for every rule_ref that can be
// reached at position zero of rule's body (firstRuleRefs, which chains
// through a sequence's leading empty-matching elements per the emptiness
// fixed point from pass 3), then report any cycle in that graph.
func checkLeftRecursion(ctx *context, report func(Problem)) {
	edges := make(map[string][]string, len(ctx.Grammar.Rules))
	for _, r := range ctx.Grammar.Rules {
		edges[r.Name] = firstRuleRefs(r.Expr, ctx.Empty)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(edges))
	var stack []string

	var visit func(name string)
	reported := make(map[string]bool)
	visit = func(name string) {
		switch state[name] {
		case done:
			return
		case visiting:
			cycleAt := indexOf(stack, name)
			cycle := append(append([]string{}, stack[cycleAt:]...), name)
			key := strings.Join(cycle, ">")
			if !reported[key] {
				reported[key] = true
				report(Problem{
					Severity: SeverityError,
					Message:  fmt.Sprintf("left recursion: %s", strings.Join(cycle, " -> ")),
					Location: ctx.Rules[name].Location,
				})
			}
			return
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, next := range edges[name] {
			if _, ok := edges[next]; ok {
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, r := range ctx.Grammar.Rules {
		visit(r.Name)
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}

// firstRuleRefs returns the rule_ref names reachable at position zero
// of x, chaining through a sequence's leading elements as long as each
// one is empty-matching and stopping at the first non-empty element.
// Zero-width nodes (predicates, optional wrappers, group/labeled/text/
// named/action) delegate straight to their inner expression since they
// don't themselves consume anything.
func firstRuleRefs(x ast.Expression, e emptiness) []string {
	switch n := x.(type) {
	case ast.RuleRef:
		return []string{n.Name}
	case ast.LibraryRef:
		return nil
	case ast.Sequence:
		var out []string
		for _, el := range n.Elements {
			out = append(out, firstRuleRefs(el, e)...)
			if !exprEmpty(el, e) {
				break
			}
		}
		return out
	case ast.Choice:
		var out []string
		for _, alt := range n.Alternatives {
			out = append(out, firstRuleRefs(alt, e)...)
		}
		return out
	case ast.Optional:
		return firstRuleRefs(n.Expr, e)
	case ast.ZeroOrMore:
		return firstRuleRefs(n.Expr, e)
	case ast.OneOrMore:
		return firstRuleRefs(n.Expr, e)
	case ast.Repeated:
		return firstRuleRefs(n.Expr, e)
	case ast.Group:
		return firstRuleRefs(n.Expr, e)
	case ast.Labeled:
		return firstRuleRefs(n.Expr, e)
	case ast.Text:
		return firstRuleRefs(n.Expr, e)
	case ast.SimpleAnd:
		return firstRuleRefs(n.Expr, e)
	case ast.SimpleNot:
		return firstRuleRefs(n.Expr, e)
	case ast.Action:
		return firstRuleRefs(n.Expr, e)
	case ast.Named:
		return firstRuleRefs(n.Expr, e)
	default:
		return nil
	}
}
