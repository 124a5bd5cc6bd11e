package analysis

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
)

// checkAllowedStartRules is spec.md §4.3 pass 8: every name in the
// allowedStartRules option must resolve to a declared rule ("*" has
// already been expanded to the full rule list by expandStartRules by
// the time this runs, so it never reaches here literally).
func checkAllowedStartRules(ctx *context, report func(Problem)) {
	for _, name := range ctx.StartRules {
		if _, ok := ctx.Rules[name]; !ok {
			report(Problem{
				Severity: SeverityError,
				Message:  fmt.Sprintf("allowed start rule %q is not defined", name),
				Location: ctx.Grammar.Location,
			})
		}
	}
}

// checkReservedWords is spec.md §4.3 pass 10. dslparser already rejects
// a reserved rule name or label at parse time (see lex.go's
// isReservedHere), so in practice this only fires for a grammar built
// or rewritten programmatically after parsing (e.g. by a Transform
// pass) rather than for anything dslparser.Parse itself could produce.
func checkReservedWords(ctx *context, report func(Problem)) {
	for _, r := range ctx.Grammar.Rules {
		if reservedWords[r.Name] {
			report(Problem{
				Severity: SeverityError,
				Message:  fmt.Sprintf("%q is a reserved word and can't be used as a rule name", r.Name),
				Location: r.NameLocation,
			})
		}
		ast.Walk(&ast.GenericVisitor{F: func(x interface{}) bool {
			if l, ok := x.(ast.Labeled); ok && l.Label != "" && reservedWords[l.Label] {
				report(Problem{
					Severity: SeverityError,
					Message:  fmt.Sprintf("%q is a reserved word and can't be used as a label", l.Label),
					Location: l.LabelLocation,
				})
			}
			return false
		}}, r)
	}
}

// reservedWords mirrors dslparser's own list (lex.go) so a
// programmatically-built grammar is held to the same rule dslparser.Parse
// enforces on the DSL's surface syntax. The two lists are kept
// independently: a name could need quoting in the DSL's lexer for an
// entirely different reason than it needs to be disallowed here, so
// this isn't meant to be a shared constant, just an equivalent one.
var reservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true,
	"select": true, "case": true, "defer": true, "go": true, "map": true,
	"struct": true, "chan": true, "else": true, "goto": true, "package": true,
	"switch": true, "const": true, "fallthrough": true, "if": true,
	"range": true, "type": true, "continue": true, "for": true,
	"import": true, "return": true, "var": true,
}
