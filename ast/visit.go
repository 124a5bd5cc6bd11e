package ast

import "fmt"

// Visitor defines the interface for iterating AST nodes. Visit is
// called on x before its children are visited; if it returns nil, the
// children are skipped. If it returns a different Visitor w, w is used
// for the rest of the subtree rooted at x.
type Visitor interface {
	Visit(x interface{}) (w Visitor)
}

// Walk calls v.Visit on x, then recurses into x's children using the
// Visitor it returns. A node kind reaching Walk with no case below —
// childless leaves get an explicit no-recursion case, not a missing
// one — is a programming error: either a new Expression kind was added
// without a matching case, or a caller passed something that isn't
// part of this AST. Either way it panics rather than silently skipping
// the subtree.
func Walk(v Visitor, x interface{}) {
	w := v.Visit(x)
	if w == nil {
		return
	}
	switch x := x.(type) {
	case *Grammar:
		if x.TopLevelInitializer != nil {
			Walk(w, x.TopLevelInitializer)
		}
		if x.PerParseInitializer != nil {
			Walk(w, x.PerParseInitializer)
		}
		for _, imp := range x.Imports {
			Walk(w, imp)
		}
		for _, r := range x.Rules {
			Walk(w, r)
		}

	case *Rule:
		Walk(w, x.Expr)

	case *Initializer:
		// leaf: Code is opaque user text, not a subtree.

	case *Import:
		// leaf: Bindings are plain name/alias pairs, not expressions.

	case Literal:
		// leaf

	case CharClass:
		// leaf

	case Any:
		// leaf

	case RuleRef:
		// leaf

	case LibraryRef:
		// leaf

	case SemanticAnd:
		// leaf: Code is opaque user text.

	case SemanticNot:
		// leaf: Code is opaque user text.

	case ConstantBoundary:
		// leaf

	case VariableBoundary:
		// leaf

	case CodeBoundary:
		// leaf: Code is opaque user text.

	case Sequence:
		for _, e := range x.Elements {
			Walk(w, e)
		}

	case Choice:
		for _, e := range x.Alternatives {
			Walk(w, e)
		}

	case Optional:
		Walk(w, x.Expr)

	case ZeroOrMore:
		Walk(w, x.Expr)

	case OneOrMore:
		Walk(w, x.Expr)

	case Repeated:
		if x.Min != nil {
			Walk(w, x.Min)
		}
		if x.Max != nil {
			Walk(w, x.Max)
		}
		if x.Delim != nil {
			Walk(w, x.Delim)
		}
		Walk(w, x.Expr)

	case Group:
		Walk(w, x.Expr)

	case Labeled:
		Walk(w, x.Expr)

	case Text:
		Walk(w, x.Expr)

	case SimpleAnd:
		Walk(w, x.Expr)

	case SimpleNot:
		Walk(w, x.Expr)

	case Action:
		Walk(w, x.Expr)

	case Named:
		Walk(w, x.Expr)

	default:
		panic(fmt.Sprintf("ast.Walk: unknown node type %T", x))
	}
}

// GenericVisitor adapts a closure into a Visitor: f is called on every
// node, and Walk stops descending into that node's children iff f
// returns true; it recurses iff f returns false.
type GenericVisitor struct {
	F func(x interface{}) bool
}

func (vis *GenericVisitor) Visit(x interface{}) Visitor {
	if vis.F(x) {
		return nil
	}
	return vis
}

// WalkRules calls f on every rule in g.
func WalkRules(g *Grammar, f func(*Rule)) {
	Walk(&GenericVisitor{func(x interface{}) bool {
		if r, ok := x.(*Rule); ok {
			f(r)
		}
		return false
	}}, g)
}

// WalkRuleRefs calls f on every rule_ref and library_ref reachable from
// x, the pattern analysis passes 1 and 7 (undefined/unused-rule checks)
// build on.
func WalkRuleRefs(x interface{}, f func(name string, isLibrary bool)) {
	Walk(&GenericVisitor{func(x interface{}) bool {
		switch n := x.(type) {
		case RuleRef:
			f(n.Name, false)
		case LibraryRef:
			f(n.Name, true)
		}
		return false
	}}, x)
}
