package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkInfiniteLoops is spec.md §4.3 pass 3: a repetition operator whose
// body can match the empty string never advances the input position, so
// the repetition never terminates. This walks every zero_or_more,
// one_or_more, and unbounded repeated (a repeated with an explicit max
// always terminates regardless of emptiness) against the emptiness
// fixed point computeEmptiness already produced.
func checkInfiniteLoops(ctx *context, report func(Problem)) {
	visitor := &ast.GenericVisitor{F: func(x interface{}) bool {
		switch n := x.(type) {
		case ast.ZeroOrMore:
			reportIfEmpty(ctx, n.Expr, "zero_or_more", n.Loc(), report)
		case ast.OneOrMore:
			reportIfEmpty(ctx, n.Expr, "one_or_more", n.Loc(), report)
		case ast.Repeated:
			if n.Max == nil {
				reportIfEmpty(ctx, n.Expr, "repeated", n.Loc(), report)
			}
		}
		return false
	}}
	for _, r := range ctx.Grammar.Rules {
		ast.Walk(visitor, r)
	}
}

func reportIfEmpty(ctx *context, body ast.Expression, kind string, loc ast.Location, report func(Problem)) {
	if exprEmpty(body, ctx.Empty) {
		report(Problem{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s's body can match the empty string, which would loop forever", kind),
			Location: loc,
		})
	}
}
