package ast

// Expression is the closed sum of parsing-expression node kinds. Every
// concrete type below implements it; Loc returns the node's full span
// and Kind returns a name used by visitors instead of a type switch
// over the unexported tag.
type Expression interface {
	Loc() Location
	Kind() string
}

// Boundary is a repetition boundary (§3): a constant integer, a named
// variable resolved against the enclosing label scope at parse time, or
// an inline code block evaluated at parse time. A nil Boundary means
// "unspecified" (min defaults to 0, max to unbounded).
type Boundary interface {
	boundaryNode()
	Loc() Location
}

// ConstantBoundary is a literal non-negative integer boundary.
type ConstantBoundary struct {
	Value    int
	Location Location
}

func (ConstantBoundary) boundaryNode()    {}
func (b ConstantBoundary) Loc() Location  { return b.Location }

// VariableBoundary is a named label evaluated at parse time.
type VariableBoundary struct {
	Name     string
	Location Location
}

func (VariableBoundary) boundaryNode()   {}
func (b VariableBoundary) Loc() Location { return b.Location }

// CodeBoundary is an inline code block evaluated as a zero-arg function
// at parse time.
type CodeBoundary struct {
	Code     string
	Location Location
}

func (CodeBoundary) boundaryNode()   {}
func (b CodeBoundary) Loc() Location { return b.Location }

// ClassPart is one element of a character class: either a single code
// point (Lo == Hi) or an inclusive range.
type ClassPart struct {
	Lo, Hi rune
}

// Literal matches an exact substring.
type Literal struct {
	Value           string
	CaseInsensitive bool
	Location        Location
}

func (Literal) Kind() string    { return "literal" }
func (e Literal) Loc() Location { return e.Location }

// ClassProperty is a `\p{Name}` or `\P{Name}` member of a character
// class, resolved against unicode.Categories/Scripts/Properties by the
// bytecode generator.
type ClassProperty struct {
	Name    string
	Negated bool
}

// CharClass matches one code point against a set of parts.
type CharClass struct {
	Parts           []ClassPart
	Properties      []ClassProperty
	Inverted        bool
	CaseInsensitive bool
	Unicode         bool
	Location        Location
}

func (CharClass) Kind() string    { return "class" }
func (e CharClass) Loc() Location { return e.Location }

// Any matches one code unit, or one code point when Unicode is set.
type Any struct {
	Unicode  bool
	Location Location
}

func (Any) Kind() string    { return "any" }
func (e Any) Loc() Location { return e.Location }

// RuleRef invokes a named rule declared in the same grammar.
type RuleRef struct {
	Name         string
	NameLocation Location
	Location     Location
}

func (RuleRef) Kind() string    { return "rule_ref" }
func (e RuleRef) Loc() Location { return e.Location }

// LibraryRef invokes a rule imported under Binding.
type LibraryRef struct {
	Binding      string
	Name         string
	NameLocation Location
	Location     Location
}

func (LibraryRef) Kind() string    { return "library_ref" }
func (e LibraryRef) Loc() Location { return e.Location }

// Sequence requires every element to match in order.
type Sequence struct {
	Elements []Expression
	Location Location
}

func (Sequence) Kind() string    { return "sequence" }
func (e Sequence) Loc() Location { return e.Location }

// Choice tries alternatives left-to-right; the first match wins.
type Choice struct {
	Alternatives []Expression
	Location     Location
}

func (Choice) Kind() string    { return "choice" }
func (e Choice) Loc() Location { return e.Location }

// Optional matches Expr or succeeds with a null result.
type Optional struct {
	Expr     Expression
	Location Location
}

func (Optional) Kind() string    { return "optional" }
func (e Optional) Loc() Location { return e.Location }

// ZeroOrMore is greedy `*` repetition.
type ZeroOrMore struct {
	Expr     Expression
	Location Location
}

func (ZeroOrMore) Kind() string    { return "zero_or_more" }
func (e ZeroOrMore) Loc() Location { return e.Location }

// OneOrMore is greedy `+` repetition.
type OneOrMore struct {
	Expr     Expression
	Location Location
}

func (OneOrMore) Kind() string    { return "one_or_more" }
func (e OneOrMore) Loc() Location { return e.Location }

// Repeated is bounded repetition `|min..max, delim|`.
type Repeated struct {
	Expr     Expression
	Min      Boundary
	Max      Boundary
	Delim    Expression
	Location Location
}

func (Repeated) Kind() string    { return "repeated" }
func (e Repeated) Loc() Location { return e.Location }

// Group is pure scoping: `( expr )` with no other effect.
type Group struct {
	Expr     Expression
	Location Location
}

func (Group) Kind() string    { return "group" }
func (e Group) Loc() Location { return e.Location }

// Labeled binds Expr's result to Label in the active scope. Pick marks
// this element as (one of) the sequence's yielded value(s) (`@`).
type Labeled struct {
	Label         string
	LabelLocation Location
	Pick          bool
	Expr          Expression
	Location      Location
}

func (Labeled) Kind() string    { return "labeled" }
func (e Labeled) Loc() Location { return e.Location }

// Text discards Expr's structured result and yields the matched
// substring instead.
type Text struct {
	Expr     Expression
	Location Location
}

func (Text) Kind() string    { return "text" }
func (e Text) Loc() Location { return e.Location }

// SimpleAnd is syntactic lookahead `&e`: consumes nothing.
type SimpleAnd struct {
	Expr     Expression
	Location Location
}

func (SimpleAnd) Kind() string    { return "simple_and" }
func (e SimpleAnd) Loc() Location { return e.Location }

// SimpleNot is syntactic negative lookahead `!e`: consumes nothing.
type SimpleNot struct {
	Expr     Expression
	Location Location
}

func (SimpleNot) Kind() string    { return "simple_not" }
func (e SimpleNot) Loc() Location { return e.Location }

// SemanticAnd runs a user predicate; its truthiness gates the match.
type SemanticAnd struct {
	Code         string
	CodeLocation Location
	Location     Location
}

func (SemanticAnd) Kind() string    { return "semantic_and" }
func (e SemanticAnd) Loc() Location { return e.Location }

// SemanticNot runs a user predicate; its falsiness gates the match.
type SemanticNot struct {
	Code         string
	CodeLocation Location
	Location     Location
}

func (SemanticNot) Kind() string    { return "semantic_not" }
func (e SemanticNot) Loc() Location { return e.Location }

// Action runs user code after Expr matches; the code's return value
// becomes the node's result.
type Action struct {
	Expr         Expression
	Code         string
	CodeLocation Location
	Location     Location
}

func (Action) Kind() string    { return "action" }
func (e Action) Loc() Location { return e.Location }

// Named replaces Expr's expected-set contribution with a single
// human-readable description on failure.
type Named struct {
	Name     string
	Expr     Expression
	Location Location
}

func (Named) Kind() string    { return "named" }
func (e Named) Loc() Location { return e.Location }
