package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkDuplicateLabels is spec.md §4.3 pass 6: two elements of the same
// sequence can't bind the same label name, since the second would
// silently shadow the first in the scope an attached action or
// predicate sees. The scope is the nearest enclosing sequence; a label
// inside a nested sequence (including one a nested action/group/
// repetition wraps) belongs to that sequence's own scope, not this
// one, so gatherDirectLabels stops descending the moment it reaches
// another ast.Sequence.
func checkDuplicateLabels(ctx *context, report func(Problem)) {
	visitor := &ast.GenericVisitor{F: func(x interface{}) bool {
		if seq, ok := x.(ast.Sequence); ok {
			checkScopeLabels(seq.Elements, report)
		}
		return false
	}}
	for _, r := range ctx.Grammar.Rules {
		ast.Walk(visitor, r)
	}
}

func checkScopeLabels(elements []ast.Expression, report func(Problem)) {
	seen := make(map[string]ast.Location)
	for _, el := range elements {
		gatherDirectLabels(el, func(label string, loc ast.Location) {
			if prev, ok := seen[label]; ok {
				report(Problem{
					Severity: SeverityError,
					Message:  fmt.Sprintf("label %q is already bound in this sequence at %s", label, prev),
					Location: loc,
				})
				return
			}
			seen[label] = loc
		})
	}
}

// DirectLabels returns, in encounter order, the names of every label
// bound directly in x's scope — the same scope checkDuplicateLabels
// enforces uniqueness over. codegen uses this to size a scope's LEPUSH
// frame and to assign each label a stable BIND/slot index.
//
// A Sequence's own elements are its scope, so its direct labels come
// from walking each element in turn; any other expression is scanned
// on its own, matching gatherDirectLabels' stop-at-nested-scope rule.
func DirectLabels(x ast.Expression) []string {
	var names []string
	collect := func(label string, _ ast.Location) {
		names = append(names, label)
	}
	if seq, ok := x.(ast.Sequence); ok {
		for _, el := range seq.Elements {
			gatherDirectLabels(el, collect)
		}
		return names
	}
	gatherDirectLabels(x, collect)
	return names
}

// gatherDirectLabels calls f for every named label bound directly in
// this scope: it descends through wrappers that don't start a new
// scope (group, optional, repetition, predicates, text, named, pick-only
// labels) but stops at a nested ast.Sequence or ast.Action, which each
// own their own label scope and are checked independently when the
// outer Walk in checkDuplicateLabels reaches them.
func gatherDirectLabels(x ast.Expression, f func(label string, loc ast.Location)) {
	switch n := x.(type) {
	case ast.Labeled:
		if n.Label != "" {
			f(n.Label, n.LabelLocation)
		}
		gatherDirectLabels(n.Expr, f)
	case ast.Optional:
		gatherDirectLabels(n.Expr, f)
	case ast.ZeroOrMore:
		gatherDirectLabels(n.Expr, f)
	case ast.OneOrMore:
		gatherDirectLabels(n.Expr, f)
	case ast.Repeated:
		gatherDirectLabels(n.Expr, f)
	case ast.Group:
		gatherDirectLabels(n.Expr, f)
	case ast.Text:
		gatherDirectLabels(n.Expr, f)
	case ast.SimpleAnd:
		gatherDirectLabels(n.Expr, f)
	case ast.SimpleNot:
		gatherDirectLabels(n.Expr, f)
	case ast.Named:
		gatherDirectLabels(n.Expr, f)
	case ast.Choice:
		// Each alternative is its own mutually-exclusive scope at
		// runtime, but statically two alternatives binding the same
		// label is fine — only one of them ever actually runs — so
		// choice doesn't propagate into a shared seen-set here.
	}
}
