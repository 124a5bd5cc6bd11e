package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkDuplicates is spec.md §4.3 pass 2: no two rules may share a
// name, and no two import bindings (across all imports, since they all
// land in the same grammar-level namespace) may share a local name —
// the binding's alias if it has one, else its Name. Duplicate labels
// within one sequence/action scope are pass 6, checkDuplicateLabels,
// since that's a narrower, per-scope namespace rather than this
// grammar-wide one.
func checkDuplicates(ctx *context, report func(Problem)) {
	seenRules := make(map[string]ast.Location)
	for _, r := range ctx.Grammar.Rules {
		if prev, ok := seenRules[r.Name]; ok {
			report(Problem{
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %q is already defined at %s", r.Name, prev),
				Location: r.NameLocation,
			})
			continue
		}
		seenRules[r.Name] = r.NameLocation
	}

	seenBindings := make(map[string]ast.Location)
	for _, imp := range ctx.Grammar.Imports {
		for _, b := range imp.Bindings {
			local := b.Alias
			if local == "" {
				local = b.Name
			}
			if prev, ok := seenBindings[local]; ok {
				report(Problem{
					Severity: SeverityError,
					Message:  fmt.Sprintf("import binding %q is already defined at %s", local, prev),
					Location: b.Location,
				})
				continue
			}
			seenBindings[local] = b.Location
		}
	}
}
