package ast

// Grammar is the root node of a parsed DSL source: an ordered list of
// rules plus the optional initializers and imports that scope them.
type Grammar struct {
	TopLevelInitializer *Initializer
	PerParseInitializer *Initializer
	Imports             []*Import
	Rules               []*Rule
	Location            Location
}

// Initializer is a block of user code that runs once, either at module
// load (TopLevelInitializer) or at the start of each parse
// (PerParseInitializer).
type Initializer struct {
	Code         string
	CodeLocation Location
	Location     Location
}

// ImportBinding names one rule pulled in from an imported module,
// optionally under a local alias.
type ImportBinding struct {
	Name     string
	Alias    string
	Location Location
}

// Import binds a module path to a set of rule names usable from
// library_ref expressions as `binding.RuleName`.
type Import struct {
	Module   string
	Bindings []ImportBinding
	Location Location
}

// Rule is a named expression. Name uniqueness across a Grammar is an
// invariant enforced by analysis, not by this type.
type Rule struct {
	Name         string
	NameLocation Location
	DisplayName  string
	Expr         Expression
	Location     Location
}
