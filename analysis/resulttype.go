package analysis

import "github.com/hildjj/peggy/ast"

// ResultType is an advisory, best-effort guess at what shape a rule's
// or expression's match result takes — spec.md §4.3 pass 9 describes
// this as optional/advisory, used only as an emitter hint (e.g. for a
// doc comment on a generated Go function, or to pick `interface{}` vs a
// narrower type), never to reject a grammar. A wrong guess just loses a
// hint; the VM's own runtime values are untyped regardless.
type ResultType int

const (
	// TypeUnknown means no useful guess could be made (e.g. for a
	// library_ref, or when a choice's alternatives disagree).
	TypeUnknown ResultType = iota
	TypeString
	TypeNull
	TypeArray
	TypeCustom // an action's return value: shape is whatever the user code returns.
)

func (t ResultType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNull:
		return "null"
	case TypeArray:
		return "array"
	case TypeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// InferResultTypes computes a best-effort ResultType for every rule in
// g, via the same kind of fixed-point iteration computeEmptiness uses
// for emptiness, since a rule's type can depend on another rule's type
// through rule_ref.
func InferResultTypes(g *ast.Grammar) map[string]ResultType {
	types := make(map[string]ResultType, len(g.Rules))
	for {
		changed := false
		for _, r := range g.Rules {
			v := exprResultType(r.Expr, types)
			if types[r.Name] != v {
				types[r.Name] = v
				changed = true
			}
		}
		if !changed {
			return types
		}
	}
}

func exprResultType(x ast.Expression, types map[string]ResultType) ResultType {
	switch n := x.(type) {
	case ast.Literal:
		return TypeString
	case ast.CharClass, ast.Any:
		return TypeString
	case ast.RuleRef:
		return types[n.Name]
	case ast.LibraryRef:
		return TypeUnknown
	case ast.Text:
		return TypeString
	case ast.Sequence:
		return sequenceResultType(n, types)
	case ast.Choice:
		return unionResultType(n.Alternatives, types)
	case ast.Optional:
		if inner := exprResultType(n.Expr, types); inner != TypeUnknown {
			return inner
		}
		return TypeNull
	case ast.ZeroOrMore, ast.OneOrMore, ast.Repeated:
		return TypeArray
	case ast.Group:
		return exprResultType(n.Expr, types)
	case ast.Labeled:
		return exprResultType(n.Expr, types)
	case ast.SimpleAnd, ast.SimpleNot, ast.SemanticAnd, ast.SemanticNot:
		return TypeNull
	case ast.Action:
		return TypeCustom
	case ast.Named:
		return exprResultType(n.Expr, types)
	default:
		return TypeUnknown
	}
}

func sequenceResultType(seq ast.Sequence, types map[string]ResultType) ResultType {
	var picks []ast.Expression
	for _, el := range seq.Elements {
		if l, ok := el.(ast.Labeled); ok && l.Pick {
			picks = append(picks, l.Expr)
		}
	}
	switch len(picks) {
	case 0:
		return TypeArray
	case 1:
		return exprResultType(picks[0], types)
	default:
		return TypeArray
	}
}

func unionResultType(alts []ast.Expression, types map[string]ResultType) ResultType {
	if len(alts) == 0 {
		return TypeUnknown
	}
	first := exprResultType(alts[0], types)
	for _, alt := range alts[1:] {
		if exprResultType(alt, types) != first {
			return TypeUnknown
		}
	}
	return first
}
