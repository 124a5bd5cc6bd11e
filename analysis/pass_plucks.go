package analysis

import "github.com/hildjj/peggy/ast"

// checkPlucks is spec.md §4.3 pass 5: `@` only has meaning as a direct
// element of a sequence, where it marks that element's value as (one
// of) the sequence's result. dslparser unwraps a single-element
// sequence to that element directly (see parseSequence), so `start =
// @"x";` produces a bare pick Labeled with no enclosing Sequence at
// all — that's the shape this pass rejects. An action's return value
// always overrides whatever a sequence's plucks would have produced, so
// mixing a pick with an action is an error per spec.md §4.3 pass 5
// ("mixing picked and action-returning sequences is an error if an
// action is present").
func checkPlucks(ctx *context, report func(Problem)) {
	visitor := &ast.GenericVisitor{F: func(x interface{}) bool {
		switch n := x.(type) {
		case ast.Labeled:
			if n.Pick && !pluckHasSequence(ctx.Grammar, n) {
				report(Problem{
					Severity: SeverityError,
					Message:  "@ (pluck) has no effect outside of a sequence",
					Location: n.Location,
				})
			}
		case ast.Action:
			if seq, ok := n.Expr.(ast.Sequence); ok && sequenceHasPick(seq) {
				report(Problem{
					Severity: SeverityError,
					Message:  "sequence's @ (pluck) result is discarded; the action's return value is used instead",
					Location: n.Location,
				})
			}
		}
		return false
	}}
	for _, r := range ctx.Grammar.Rules {
		ast.Walk(visitor, r)
	}
}

func sequenceHasPick(seq ast.Sequence) bool {
	for _, el := range seq.Elements {
		if l, ok := el.(ast.Labeled); ok && l.Pick {
			return true
		}
	}
	return false
}

// pluckHasSequence reports whether target is a direct element of some
// ast.Sequence reachable from g. Comparing by Location is safe since
// every node in a parsed grammar has a distinct span.
func pluckHasSequence(g *ast.Grammar, target ast.Labeled) bool {
	found := false
	visitor := &ast.GenericVisitor{F: func(x interface{}) bool {
		if seq, ok := x.(ast.Sequence); ok {
			for _, el := range seq.Elements {
				if l, ok := el.(ast.Labeled); ok && l.Location == target.Location {
					found = true
				}
			}
		}
		return false
	}}
	ast.Walk(visitor, g)
	return found
}
