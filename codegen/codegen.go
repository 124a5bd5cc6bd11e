// Package codegen lowers a grammar's AST into pegvm bytecode.
//
// Every lowering function for an ast.Expression kind follows one
// contract: on success it leaves exactly one new value on top of the
// value stack and falls through to the next instruction; on failure it
// calls pegvm.OpFAIL (directly, or after running whatever DROP/LEPOP
// cleanup its own scope obligates) and never returns control to its
// caller. Because pegvm's own FAIL instruction rewinds DP/XP/KS to
// whichever CHOICE frame is nearest on the call stack regardless of
// which ancestor pushed it, no lowering function needs an explicit
// "on failure, jump here" parameter threaded through it — a function
// needs a CHOICE of its own only for backtracking it performs itself or
// for cleanup it owns: an LEPOP for a label-environment frame it opened
// (Sequence, Action, Text, and the rule-body fallback wrapper), or a
// DROP of values or a marker it already pushed, so that a deep failure
// has somewhere to land and run that cleanup before propagating further
// out.
package codegen

import (
	"fmt"

	"github.com/hildjj/peggy/analysis"
	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/pegvm"
)

// Options controls how Compile lowers a grammar.
type Options struct {
	// Cache enables per-rule memoization: a rule whose body contains no
	// action, predicate, or library_ref, and calls no rule that is itself
	// non-cacheable, is wrapped in CACHECHK / CACHEPUT / CACHEDROP.
	Cache bool

	// ResolveLibraryRef maps a library_ref's (binding, name) pair to the
	// entry label of an already-merged rule. A nil value means the
	// grammar may not use library_ref; Compile panics the first time it
	// encounters one.
	ResolveLibraryRef func(binding, name string) (label string, ok bool)
}

// ActionSite describes one action, semantic-and, or semantic-not's user
// code, in the order its slot index was declared on the assembler.
// codegen never interprets Code; it's emit's job to render it as a real
// Go function. Builtin is non-empty only for the synthetic text-capture
// action codegen declares itself, never for user code.
type ActionSite struct {
	Builtin      string
	Labels       []string
	Code         string
	CodeLocation ast.Location
}

// Result is Compile's output.
type Result struct {
	Program    *pegvm.Program
	Actions    []ActionSite
	Predicates []ActionSite
	Warnings   []string
}

type ctx struct {
	asm         *pegvm.Assembler
	opts        Options
	grammar     *ast.Grammar
	ruleIdx     map[string]uint64
	ruleLabel   map[string]string
	cacheable   map[string]bool
	labelSlots  map[string]int
	labelOrder  []string
	seq         int
	textAction  uint64
	eofExpected uint64
	actions     []ActionSite
	predicates  []ActionSite
	warnings    []string
}

// Compile lowers g to bytecode.
func Compile(g *ast.Grammar, opts Options) (*Result, error) {
	if len(g.Rules) == 0 {
		return nil, fmt.Errorf("codegen: grammar has no rules")
	}

	c := &ctx{
		asm:       pegvm.NewAssembler(),
		opts:      opts,
		grammar:   g,
		ruleIdx:   make(map[string]uint64, len(g.Rules)),
		ruleLabel: make(map[string]string, len(g.Rules)),
		cacheable: computeCacheable(g),
	}

	idx := c.asm.DeclareAction(nil)
	c.textAction = idx
	c.actions = append(c.actions, ActionSite{Builtin: "text"})
	c.eofExpected = c.asm.DeclareExpected("end of input")

	for _, r := range g.Rules {
		label := fmt.Sprintf("rule.%s", r.Name)
		c.ruleLabel[r.Name] = label
		ruleIdx := c.asm.DeclareRule(r.Name, label, c.opts.Cache && c.cacheable[r.Name])
		c.ruleIdx[r.Name] = ruleIdx
	}

	// Every rule gets a small entry trampoline ahead of any rule body:
	// CALL, then an end-of-input check, then END, so that a rule's own
	// trailing RET always has a CALL frame to return to (whether the VM
	// starts at the default (first-declared) rule via Exec's fixed XP=0
	// or at an arbitrary rule that a caller looked up by its public
	// "start.<name>" label), and so a rule match that leaves unconsumed
	// input behind is reported as the furthest failure it actually is,
	// rather than a success that silently drops the remainder: a
	// successfully parsed input must be consumed in full.
	for _, r := range g.Rules {
		c.label(fmt.Sprintf("start.%s", r.Name))
		c.emitOp(pegvm.OpCALL, c.jumpTarget(c.ruleLabel[r.Name]), nil, nil)
		c.emitOp(pegvm.OpEOFCHK, c.eofExpected, nil, nil)
		c.emitOp(pegvm.OpEND, nil, nil, nil)
	}

	for _, r := range g.Rules {
		c.compileRule(r)
	}

	c.emitOp(pegvm.OpEND, nil, nil, nil)

	prog, err := c.asm.Finish()
	if err != nil {
		return nil, err
	}

	return &Result{
		Program:    prog,
		Actions:    c.actions,
		Predicates: c.predicates,
		Warnings:   c.warnings,
	}, nil
}

func (c *ctx) warnf(loc ast.Location, format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf("%s: %s", loc, fmt.Sprintf(format, args...)))
}

func (c *ctx) emitOp(code pegvm.OpCode, imm0, imm1, imm2 interface{}) {
	c.asm.EmitOp(code.Meta(), imm0, imm1, imm2)
}

func (c *ctx) newLabel(prefix string) string {
	c.seq++
	return fmt.Sprintf(".%s.%d", prefix, c.seq)
}

func (c *ctx) jumpTarget(name string) *pegvm.AsmItem {
	return c.asm.GrabLabel(name)
}

func (c *ctx) label(name string) {
	c.asm.EmitLabel(name)
}

func (c *ctx) choice(target string) {
	c.emitOp(pegvm.OpCHOICE, c.jumpTarget(target), nil, nil)
}

func (c *ctx) commit(target string) {
	c.emitOp(pegvm.OpCOMMIT, c.jumpTarget(target), nil, nil)
}

func (c *ctx) jmp(target string) {
	c.emitOp(pegvm.OpJMP, c.jumpTarget(target), nil, nil)
}

func (c *ctx) fail() {
	c.emitOp(pegvm.OpFAIL, nil, nil, nil)
}

func (c *ctx) withLabelScope(names []string, body func()) {
	slots := make(map[string]int, len(names))
	for i, n := range names {
		slots[n] = i
	}
	savedSlots, savedOrder := c.labelSlots, c.labelOrder
	c.labelSlots, c.labelOrder = slots, names
	body()
	c.labelSlots, c.labelOrder = savedSlots, savedOrder
}

func (c *ctx) slotOf(label string) int {
	idx, ok := c.labelSlots[label]
	if !ok {
		panic(fmt.Sprintf("codegen: label %q is not bound in the current scope", label))
	}
	return idx
}

func (c *ctx) currentFrameSize() int {
	return len(c.labelOrder)
}

// lowerScope opens a label-environment frame of the given size, runs
// body inside it with names bound to slots 0..N-1, and calls onOK in
// place of the frame's default close (LEPOP) on the success path. A
// CHOICE guards the frame so that any failure inside body has somewhere
// local to land and LEPOP before re-propagating.
func (c *ctx) lowerScope(names []string, body func(), onOK func()) {
	c.emitOp(pegvm.OpLEPUSH, uint64(len(names)), nil, nil)
	failLbl := c.newLabel("scopefail")
	okLbl := c.newLabel("scopeok")
	c.choice(failLbl)
	c.withLabelScope(names, body)
	c.commit(okLbl)
	c.label(failLbl)
	c.emitOp(pegvm.OpLEPOP, nil, nil, nil)
	c.fail()
	c.label(okLbl)
	onOK()
}

func (c *ctx) compileRule(r *ast.Rule) {
	idx := c.ruleIdx[r.Name]
	cacheable := c.opts.Cache && c.cacheable[r.Name]

	c.label(c.ruleLabel[r.Name])

	skipLbl := ""
	if cacheable {
		skipLbl = c.newLabel("cachehit")
		c.emitOp(pegvm.OpCACHECHK, idx, c.jumpTarget(skipLbl), nil)
	}

	bodyFail := c.newLabel("rulefail")
	doneLbl := c.newLabel("ruleok")
	fallback := needsRuleLevelFrame(r.Expr)

	c.choice(bodyFail)
	if fallback {
		names := analysis.DirectLabels(r.Expr)
		c.emitOp(pegvm.OpLEPUSH, uint64(len(names)), nil, nil)
		c.withLabelScope(names, func() { c.lowerExpr(r.Expr) })
	} else {
		c.lowerExpr(r.Expr)
	}
	c.commit(doneLbl)

	c.label(bodyFail)
	if fallback {
		c.emitOp(pegvm.OpLEPOP, nil, nil, nil)
	}
	if cacheable {
		c.emitOp(pegvm.OpCACHEDROP, idx, nil, nil)
	} else {
		c.fail()
	}

	c.label(doneLbl)
	if cacheable {
		c.emitOp(pegvm.OpCACHEPUT, idx, nil, nil)
	}
	if skipLbl != "" {
		c.label(skipLbl)
	}
	c.emitOp(pegvm.OpRET, nil, nil, nil)
}

// needsRuleLevelFrame reports whether a rule whose body is x needs the
// fallback LEPUSH/LEPOP wrapper compileRule provides: Sequence and
// Action always open their own scope, so they never need it; anything
// else might contain a bare label or a semantic predicate that peeks
// the enclosing frame, so it always gets one (possibly size zero).
func needsRuleLevelFrame(x ast.Expression) bool {
	switch x.(type) {
	case ast.Sequence, ast.Action:
		return false
	default:
		return true
	}
}

// BuiltinTextAction implements the synthetic action declared once per
// grammar to back every `text` expression: it ignores labels entirely
// and returns the matched bytes as a string. Exported so emit and
// compiler can attach it at ActionSite.Builtin == "text"'s index
// without re-deriving it; Compile itself only records the site, since
// it never attaches live functions (see ActionSite's doc comment).
func BuiltinTextAction(text []byte, _ []interface{}) (interface{}, error) {
	return string(text), nil
}

// computeCacheable runs a fixed-point over the grammar: a rule is
// cacheable unless its own body contains an action or semantic
// predicate (both opaque, possibly side-effecting user code), a
// library_ref (an imported grammar's side effects aren't visible
// here), or a call to a rule that already lost its own cacheable
// status.
func computeCacheable(g *ast.Grammar) map[string]bool {
	cacheable := make(map[string]bool, len(g.Rules))
	for _, r := range g.Rules {
		cacheable[r.Name] = true
	}
	for changed := true; changed; {
		changed = false
		for _, r := range g.Rules {
			if cacheable[r.Name] && !exprCacheable(r.Expr, cacheable) {
				cacheable[r.Name] = false
				changed = true
			}
		}
	}
	return cacheable
}

func exprCacheable(x ast.Expression, cacheable map[string]bool) bool {
	switch n := x.(type) {
	case ast.Action, ast.SemanticAnd, ast.SemanticNot, ast.LibraryRef:
		return false
	case ast.RuleRef:
		return cacheable[n.Name]
	case ast.Sequence:
		for _, e := range n.Elements {
			if !exprCacheable(e, cacheable) {
				return false
			}
		}
		return true
	case ast.Choice:
		for _, e := range n.Alternatives {
			if !exprCacheable(e, cacheable) {
				return false
			}
		}
		return true
	case ast.Optional:
		return exprCacheable(n.Expr, cacheable)
	case ast.ZeroOrMore:
		return exprCacheable(n.Expr, cacheable)
	case ast.OneOrMore:
		return exprCacheable(n.Expr, cacheable)
	case ast.Repeated:
		return exprCacheable(n.Expr, cacheable)
	case ast.Group:
		return exprCacheable(n.Expr, cacheable)
	case ast.Labeled:
		return exprCacheable(n.Expr, cacheable)
	case ast.Text:
		return exprCacheable(n.Expr, cacheable)
	case ast.SimpleAnd:
		return exprCacheable(n.Expr, cacheable)
	case ast.SimpleNot:
		return exprCacheable(n.Expr, cacheable)
	case ast.Named:
		return exprCacheable(n.Expr, cacheable)
	default:
		return true
	}
}
