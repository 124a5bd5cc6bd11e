package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkUnusedRules is spec.md §4.3 pass 7: a rule that's neither a start
// rule nor reachable from one by any chain of rule_refs is dead code —
// a warning, not an error, since it doesn't affect what the grammar
// accepts.
func checkUnusedRules(ctx *context, report func(Problem)) {
	reachable := make(map[string]bool, len(ctx.Rules))
	var visit func(name string)
	visit = func(name string) {
		if reachable[name] {
			return
		}
		r, ok := ctx.Rules[name]
		if !ok {
			return
		}
		reachable[name] = true
		ast.WalkRuleRefs(r, func(next string, isLibrary bool) {
			if !isLibrary {
				visit(next)
			}
		})
	}
	for _, start := range ctx.StartRules {
		visit(start)
	}

	for _, r := range ctx.Grammar.Rules {
		if !reachable[r.Name] {
			report(Problem{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("rule %q is never used", r.Name),
				Location: r.NameLocation,
			})
		}
	}
}
