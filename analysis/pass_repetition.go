package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkRepetitionBounds is spec.md §4.3 pass 11: a repeated expression's
// boundaries only make sense as non-negative integers with max >= min,
// and a max of exactly zero can never match anything a plain `""`
// wouldn't, so it's rejected as almost certainly a mistake rather than
// silently compiled into a no-op.
func checkRepetitionBounds(ctx *context, report func(Problem)) {
	visitor := &ast.GenericVisitor{F: func(x interface{}) bool {
		if rep, ok := x.(ast.Repeated); ok {
			checkOneRepetition(rep, report)
		}
		return false
	}}
	for _, r := range ctx.Grammar.Rules {
		ast.Walk(visitor, r)
	}
}

func checkOneRepetition(rep ast.Repeated, report func(Problem)) {
	min, minKnown := constantBoundary(rep.Min)
	max, maxKnown := constantBoundary(rep.Max)

	if minKnown && min < 0 {
		report(Problem{
			Severity: SeverityError,
			Message:  fmt.Sprintf("repetition minimum %d is negative", min),
			Location: rep.Min.Loc(),
		})
	}
	if maxKnown && max < 0 {
		report(Problem{
			Severity: SeverityError,
			Message:  fmt.Sprintf("repetition maximum %d is negative", max),
			Location: rep.Max.Loc(),
		})
	}
	if maxKnown && max == 0 {
		report(Problem{
			Severity: SeverityError,
			Message:  "repetition maximum of 0 never matches more than the empty case",
			Location: rep.Max.Loc(),
		})
	}
	if minKnown && maxKnown && max < min {
		report(Problem{
			Severity: SeverityError,
			Message:  fmt.Sprintf("repetition maximum %d is less than minimum %d", max, min),
			Location: rep.Loc(),
		})
	}
}

func constantBoundary(b ast.Boundary) (int, bool) {
	if c, ok := b.(ast.ConstantBoundary); ok {
		return c.Value, true
	}
	return 0, false
}
