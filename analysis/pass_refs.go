package analysis

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/hildjj/peggy/ast"
)

// checkUndefinedRules is spec.md §4.3 pass 1: every rule_ref must name a
// rule declared somewhere in the grammar. library_ref is exempt — it
// resolves against an imported module, not this grammar's own rule
// table, and import-binding validity isn't this pass's concern.
func checkUndefinedRules(ctx *context, report func(Problem)) {
	ast.WalkRuleRefs(ctx.Grammar, func(name string, isLibrary bool) {
		if isLibrary {
			return
		}
		if _, ok := ctx.Rules[name]; ok {
			return
		}
		msg := fmt.Sprintf("rule %q is not defined", name)
		if suggestion := suggestRuleName(name, ctx.Rules); suggestion != "" {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
		}
		report(Problem{
			Severity: SeverityError,
			Pass:     "undefined-rules",
			Message:  msg,
			Location: refLocation(ctx.Grammar, name),
		})
	})
}

// suggestRuleName returns the declared rule name closest to name by
// Levenshtein edit distance, within a distance proportional to name's
// length, or "" if nothing is close enough to be worth suggesting.
func suggestRuleName(name string, rules ruleIndex) string {
	best := ""
	bestDist := len(name)/2 + 2
	for candidate := range rules {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best
}

// refLocation finds the location of the first rule_ref named name, for attaching a Problem to a useful span. It re-walks the
// grammar rather than threading a location through WalkRuleRefs because
// this is only called on the (rare) undefined-reference path.
func refLocation(g *ast.Grammar, name string) ast.Location {
	var loc ast.Location
	found := false
	ast.Walk(&ast.GenericVisitor{F: func(x interface{}) bool {
		if found {
			return true
		}
		if r, ok := x.(ast.RuleRef); ok && r.Name == name {
			loc = r.Location
			found = true
		}
		return false
	}}, g)
	return loc
}
