package analysis

import "github.com/hildjj/peggy/ast"

// ruleIndex maps rule names to their declarations, built once per Run
// and threaded through every pass that needs to resolve a rule_ref.
type ruleIndex map[string]*ast.Rule

func indexRules(g *ast.Grammar) ruleIndex {
	idx := make(ruleIndex, len(g.Rules))
	for _, r := range g.Rules {
		if _, dup := idx[r.Name]; !dup {
			idx[r.Name] = r
		}
	}
	return idx
}

// expandStartRules resolves the allowedStartRules option against g: "*"
// expands to every declared rule name (spec.md §4.3 pass 8), while an
// empty list defaults to just the first declared rule (spec.md §6:
// "allowedStartRules: ... default = first rule").
func expandStartRules(g *ast.Grammar, allowed []string) []string {
	if len(allowed) == 0 {
		if len(g.Rules) == 0 {
			return nil
		}
		return []string{g.Rules[0].Name}
	}
	for _, name := range allowed {
		if name == "*" {
			all := make([]string, len(g.Rules))
			for i, r := range g.Rules {
				all[i] = r.Name
			}
			return all
		}
	}
	return allowed
}
