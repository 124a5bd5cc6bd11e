package codegen

import (
	"fmt"

	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/pegvm"
)

// lowerRuleRef calls another rule in the same grammar. No local CHOICE
// is needed: a CALL frame isn't a choice frame, so a failure inside the
// callee is found and handled by whichever CHOICE is already active at
// this call site.
func (c *ctx) lowerRuleRef(n ast.RuleRef) {
	label, ok := c.ruleLabel[n.Name]
	if !ok {
		panic(fmt.Sprintf("codegen: reference to undeclared rule %q", n.Name))
	}
	c.emitOp(pegvm.OpCALL, c.jumpTarget(label), nil, nil)
}

// lowerLibraryRef calls a rule merged in from an imported grammar.
// Resolution is delegated to Options.ResolveLibraryRef, which the
// compiler package supplies once it has merged every import's rules
// into a single bytecode program.
func (c *ctx) lowerLibraryRef(n ast.LibraryRef) {
	if c.opts.ResolveLibraryRef == nil {
		panic(fmt.Sprintf("codegen: grammar uses library_ref %s.%s but no ResolveLibraryRef was supplied", n.Binding, n.Name))
	}
	label, ok := c.opts.ResolveLibraryRef(n.Binding, n.Name)
	if !ok {
		panic(fmt.Sprintf("codegen: library_ref %s.%s did not resolve to a known rule", n.Binding, n.Name))
	}
	c.emitOp(pegvm.OpCALL, c.jumpTarget(label), nil, nil)
}
