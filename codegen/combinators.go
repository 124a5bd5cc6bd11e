package codegen

import (
	"fmt"

	"github.com/hildjj/peggy/analysis"
	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/pegvm"
)

func (c *ctx) lowerExpr(x ast.Expression) {
	switch n := x.(type) {
	case ast.Literal:
		c.lowerLiteral(n)
	case ast.CharClass:
		c.lowerCharClass(n)
	case ast.Any:
		c.lowerAny(n)
	case ast.RuleRef:
		c.lowerRuleRef(n)
	case ast.LibraryRef:
		c.lowerLibraryRef(n)
	case ast.Sequence:
		c.lowerScope(analysis.DirectLabels(n), func() { c.lowerSequenceBody(n) },
			func() { c.emitOp(pegvm.OpLEPOP, nil, nil, nil) })
	case ast.Choice:
		c.lowerChoice(n)
	case ast.Optional:
		c.lowerOptional(n)
	case ast.ZeroOrMore:
		c.lowerZeroOrMore(n)
	case ast.OneOrMore:
		c.lowerOneOrMore(n)
	case ast.Repeated:
		c.lowerRepeated(n)
	case ast.Group:
		c.lowerExpr(n.Expr)
	case ast.Labeled:
		c.lowerExpr(n.Expr)
		if n.Label != "" {
			c.emitOp(pegvm.OpBIND, uint64(c.slotOf(n.Label)), nil, nil)
		}
	case ast.Text:
		c.lowerText(n)
	case ast.SimpleAnd:
		c.lowerSimpleAnd(n)
	case ast.SimpleNot:
		c.lowerSimpleNot(n)
	case ast.SemanticAnd:
		c.lowerSemanticPred(n.Code, n.CodeLocation, false)
	case ast.SemanticNot:
		c.lowerSemanticPred(n.Code, n.CodeLocation, true)
	case ast.Action:
		c.lowerAction(n)
	case ast.Named:
		c.lowerNamed(n)
	default:
		panic(fmt.Sprintf("codegen: unhandled expression type %T", x))
	}
}

// lowerSequenceBody emits a sequence's elements. It assumes its caller
// (lowerScope, via the Sequence case in lowerExpr) has already opened
// the sequence's own label-environment frame and pushed the CHOICE that
// will catch a deep failure and run LEPOP.
//
// Every element gets its own CHOICE/COMMIT wrapper: elements that are a
// bare rule_ref or library_ref propagate failure "transparently" (CALL
// never returns to code at the call site on failure), so without a
// local CHOICE a failing element would have no landing point at which
// to run the position-specific DROP cleanup this function owns.
func (c *ctx) lowerSequenceBody(seq ast.Sequence) {
	n := len(seq.Elements)
	var pickIdx []int
	for i, el := range seq.Elements {
		if lab, ok := el.(ast.Labeled); ok && lab.Pick {
			pickIdx = append(pickIdx, i)
		}
	}

	kept := make([]bool, n)
	markBefore := -1
	useCollect := false
	switch len(pickIdx) {
	case 0:
		markBefore = 0
		for i := range kept {
			kept[i] = true
		}
		useCollect = true
	case 1:
		kept[pickIdx[0]] = true
	default:
		markBefore = pickIdx[0]
		for _, i := range pickIdx {
			kept[i] = true
		}
		useCollect = true
	}

	keptSoFar := 0
	for i, el := range seq.Elements {
		if markBefore == i {
			c.emitOp(pegvm.OpMARK, nil, nil, nil)
		}

		failLbl := c.newLabel("seq_elfail")
		okLbl := c.newLabel("seq_elok")
		c.choice(failLbl)
		c.lowerExpr(el)
		c.commit(okLbl)

		c.label(failLbl)
		dropCount := keptSoFar
		if markBefore >= 0 && markBefore <= i {
			dropCount++
		}
		if dropCount > 0 {
			c.emitOp(pegvm.OpDROP, uint64(dropCount), nil, nil)
		}
		c.fail()

		c.label(okLbl)
		if kept[i] {
			keptSoFar++
		} else {
			c.emitOp(pegvm.OpDROP, 1, nil, nil)
		}
	}

	if useCollect {
		c.emitOp(pegvm.OpCOLLECT, nil, nil, nil)
	}
}

func (c *ctx) lowerChoice(n ast.Choice) {
	doneLbl := c.newLabel("choicedone")
	for i, alt := range n.Alternatives {
		if i == len(n.Alternatives)-1 {
			c.lowerExpr(alt)
			continue
		}
		nextLbl := c.newLabel("choicenext")
		c.choice(nextLbl)
		c.lowerExpr(alt)
		c.commit(doneLbl)
		c.label(nextLbl)
	}
	c.label(doneLbl)
}

func (c *ctx) lowerOptional(n ast.Optional) {
	skipLbl := c.newLabel("optskip")
	doneLbl := c.newLabel("optdone")
	c.choice(skipLbl)
	c.lowerExpr(n.Expr)
	c.commit(doneLbl)
	c.label(skipLbl)
	c.emitOp(pegvm.OpPUSHNULL, nil, nil, nil)
	c.label(doneLbl)
}

func (c *ctx) lowerZeroOrMore(n ast.ZeroOrMore) {
	c.emitOp(pegvm.OpMARK, nil, nil, nil)
	top := c.newLabel("zom_top")
	exit := c.newLabel("zom_exit")
	c.choice(exit)
	c.label(top)
	c.lowerExpr(n.Expr)
	c.emitOp(pegvm.OpPCOMMIT, c.jumpTarget(exit), nil, nil)
	c.jmp(top)
	c.label(exit)
	c.emitOp(pegvm.OpCOLLECT, nil, nil, nil)
}

// lowerOneOrMore requires one mandatory iteration before falling into
// the same partial-commit loop lowerZeroOrMore uses for the rest: the
// mandatory iteration gets its own CHOICE so a first-attempt failure
// can drop the marker it already pushed before propagating, instead of
// silently collecting a (wrong) empty result.
func (c *ctx) lowerOneOrMore(n ast.OneOrMore) {
	c.emitOp(pegvm.OpMARK, nil, nil, nil)
	firstFail := c.newLabel("oom_firstfail")
	loopStart := c.newLabel("oom_loopstart")
	top := c.newLabel("oom_top")
	exit := c.newLabel("oom_exit")

	c.choice(firstFail)
	c.lowerExpr(n.Expr)
	c.commit(loopStart)

	c.label(firstFail)
	c.emitOp(pegvm.OpDROP, 1, nil, nil)
	c.fail()

	c.label(loopStart)
	c.choice(exit)
	c.label(top)
	c.lowerExpr(n.Expr)
	c.emitOp(pegvm.OpPCOMMIT, c.jumpTarget(exit), nil, nil)
	c.jmp(top)
	c.label(exit)
	c.emitOp(pegvm.OpCOLLECT, nil, nil, nil)
}

func constBoundary(b ast.Boundary, def int) int {
	if cb, ok := b.(ast.ConstantBoundary); ok {
		return cb.Value
	}
	return def
}

func boundaryIsConstOrNil(b ast.Boundary) bool {
	if b == nil {
		return true
	}
	_, ok := b.(ast.ConstantBoundary)
	return ok
}

func constBoundaryPtr(b ast.Boundary) (int, bool) {
	if cb, ok := b.(ast.ConstantBoundary); ok {
		return cb.Value, true
	}
	return 0, false
}

// lowerRepeated lowers a repetition. When both Min and Max are
// constant or absent, the bound is known at compile time and compiles
// to the unrolled choice/commit ladder lowerRepeatedConst builds; a
// VariableBoundary or CodeBoundary operand instead drives a runtime
// counted loop via lowerRepeatedDynamic, since that bound isn't known
// until the label environment (or a zero-arg action) is evaluated
// during the match itself (spec.md §3/§4.4).
func (c *ctx) lowerRepeated(n ast.Repeated) {
	if boundaryIsConstOrNil(n.Min) && boundaryIsConstOrNil(n.Max) {
		c.lowerRepeatedConst(n)
		return
	}
	c.lowerRepeatedDynamic(n)
}

func (c *ctx) lowerRepeatedConst(n ast.Repeated) {
	minN := constBoundary(n.Min, 0)
	maxN, hasMax := constBoundaryPtr(n.Max)

	haveDelim := n.Delim != nil
	stopLbl := c.newLabel("rep_stop")

	c.emitOp(pegvm.OpMARK, nil, nil, nil)

	for j := 0; j < minN; j++ {
		failLbl := c.newLabel("rep_reqfail")
		okLbl := c.newLabel("rep_reqok")
		c.choice(failLbl)
		if haveDelim && j > 0 {
			c.lowerExpr(n.Delim)
			c.emitOp(pegvm.OpDROP, 1, nil, nil)
		}
		c.lowerExpr(n.Expr)
		c.commit(okLbl)
		c.label(failLbl)
		c.emitOp(pegvm.OpDROP, uint64(j+1), nil, nil)
		c.fail()
		c.label(okLbl)
	}

	if hasMax {
		extra := maxN - minN
		for j := 0; j < extra; j++ {
			localFail := c.newLabel("rep_optfail")
			okLbl := c.newLabel("rep_optok")
			c.choice(localFail)
			if haveDelim && (minN+j) > 0 {
				c.lowerExpr(n.Delim)
				c.emitOp(pegvm.OpDROP, 1, nil, nil)
			}
			c.lowerExpr(n.Expr)
			c.commit(okLbl)
			c.label(localFail)
			c.jmp(stopLbl)
			c.label(okLbl)
		}
	} else {
		firstSkip := c.newLabel("rep_firstskip")
		loopStart := c.newLabel("rep_loopstart")
		top := c.newLabel("rep_top")

		c.choice(firstSkip)
		if haveDelim && minN > 0 {
			c.lowerExpr(n.Delim)
			c.emitOp(pegvm.OpDROP, 1, nil, nil)
		}
		c.lowerExpr(n.Expr)
		c.commit(loopStart)

		c.label(firstSkip)
		c.jmp(stopLbl)

		c.label(loopStart)
		c.choice(stopLbl)
		c.label(top)
		if haveDelim {
			c.lowerExpr(n.Delim)
			c.emitOp(pegvm.OpDROP, 1, nil, nil)
		}
		c.lowerExpr(n.Expr)
		c.emitOp(pegvm.OpPCOMMIT, c.jumpTarget(stopLbl), nil, nil)
		c.jmp(top)
	}

	c.label(stopLbl)
	c.emitOp(pegvm.OpCOLLECT, nil, nil, nil)
}

// pushBoundaryCount evaluates b — absent, a compile-time constant, a
// label-bound value, or a zero-arg code block — and pushes the result
// onto pegvm's RC (which == 0) or XC (which == 1) counter stack.
// VariableBoundary reads the named label out of the currently open
// scope the same way a semantic predicate peeks it; CodeBoundary runs
// its code as a genuine zero-arg action (an LEPUSH(0)/ACTION pair with
// no labels bound), per spec.md §4.4's "code boundaries run as
// zero-arg functions".
func (c *ctx) pushBoundaryCount(b ast.Boundary, which uint64, def int) {
	switch bnd := b.(type) {
	case nil:
		c.emitOp(pegvm.OpCNTPUSHK, which, uint64(def), nil)
	case ast.ConstantBoundary:
		c.emitOp(pegvm.OpCNTPUSHK, which, uint64(bnd.Value), nil)
	case ast.VariableBoundary:
		c.emitOp(pegvm.OpPUSHLABEL, uint64(c.slotOf(bnd.Name)), nil, nil)
		c.emitOp(pegvm.OpCNTPUSHVS, which, nil, nil)
	case ast.CodeBoundary:
		idx := c.asm.DeclareAction(nil)
		c.actions = append(c.actions, ActionSite{
			Code:         bnd.Code,
			CodeLocation: bnd.Location,
		})
		c.emitOp(pegvm.OpLEPUSH, uint64(0), nil, nil)
		c.emitOp(pegvm.OpACTION, idx, uint64(0), nil)
		c.emitOp(pegvm.OpCNTPUSHVS, which, nil, nil)
	default:
		panic(fmt.Sprintf("codegen: unhandled boundary type %T", b))
	}
}

// lowerRepeatedElement lowers one delimiter-then-element iteration,
// wrapped in a single CHOICE so either half's failure lands at onFail
// with the iteration's attempted position/captures already rewound.
// ATMARK decides at runtime whether this is the first item collected
// so far (skip the delimiter) regardless of whether earlier items came
// from the required or the optional phase — unlike lowerRepeatedConst,
// the dynamic path has no compile-time iteration index to check
// instead.
func (c *ctx) lowerRepeatedElement(n ast.Repeated, haveDelim bool, onFail func()) {
	failLbl := c.newLabel("repdyn_elfail")
	okLbl := c.newLabel("repdyn_elok")

	c.choice(failLbl)
	if haveDelim {
		delimSkip := c.newLabel("repdyn_elskipdelim")
		c.emitOp(pegvm.OpATMARK, c.jumpTarget(delimSkip), nil, nil)
		c.lowerExpr(n.Delim)
		c.emitOp(pegvm.OpDROP, 1, nil, nil)
		c.label(delimSkip)
	}
	c.lowerExpr(n.Expr)
	c.commit(okLbl)
	c.label(failLbl)
	onFail()
	c.label(okLbl)
}

// lowerRepeatedDynamic lowers a repetition whose minimum and/or
// maximum is a VariableBoundary or CodeBoundary. It drives the
// required iterations down RC and, when a maximum is present, the
// remaining optional budget down XC (see pegvm's CNTDECJZ), failing
// the whole construct if the maximum is exhausted before the minimum
// is satisfied — an unsatisfiable bound pair simply can't match,
// exactly as a constant min > max is rejected at compile time by
// analysis's checkRepetitionBounds. With no maximum, the optional tail
// falls back to the same persistent-CHOICE/PCOMMIT loop
// lowerRepeatedConst uses for its own unbounded case.
func (c *ctx) lowerRepeatedDynamic(n ast.Repeated) {
	haveDelim := n.Delim != nil
	hasMax := n.Max != nil

	stopLbl := c.newLabel("repdyn_stop")
	afterReq := c.newLabel("repdyn_afterreq")
	maxExhausted := c.newLabel("repdyn_maxexhausted")

	c.emitOp(pegvm.OpMARK, nil, nil, nil)
	c.pushBoundaryCount(n.Min, 0, 0)
	if hasMax {
		c.pushBoundaryCount(n.Max, 1, 0)
	}

	reqTop := c.newLabel("repdyn_reqtop")
	c.label(reqTop)
	c.emitOp(pegvm.OpCNTDECJZ, uint64(0), c.jumpTarget(afterReq), nil)
	if hasMax {
		c.emitOp(pegvm.OpCNTDECJZ, uint64(1), c.jumpTarget(maxExhausted), nil)
	}
	c.lowerRepeatedElement(n, haveDelim, func() {
		c.emitOp(pegvm.OpCNTPOP, uint64(0), nil, nil)
		if hasMax {
			c.emitOp(pegvm.OpCNTPOP, uint64(1), nil, nil)
		}
		c.emitOp(pegvm.OpDROPTOMARK, nil, nil, nil)
		c.fail()
	})
	c.jmp(reqTop)

	if hasMax {
		c.label(maxExhausted)
		c.emitOp(pegvm.OpCNTPOP, uint64(0), nil, nil)
		c.emitOp(pegvm.OpDROPTOMARK, nil, nil, nil)
		c.fail()
	}

	c.label(afterReq)
	if hasMax {
		optTop := c.newLabel("repdyn_opttop")
		optExit := c.newLabel("repdyn_optexit")
		c.label(optTop)
		c.emitOp(pegvm.OpCNTDECJZ, uint64(1), c.jumpTarget(optExit), nil)
		c.lowerRepeatedElement(n, haveDelim, func() {
			c.emitOp(pegvm.OpCNTPOP, uint64(1), nil, nil)
			c.jmp(optExit)
		})
		c.jmp(optTop)
		c.label(optExit)
	} else {
		top := c.newLabel("repdyn_opttop")
		c.choice(stopLbl)
		c.label(top)
		if haveDelim {
			delimSkip := c.newLabel("repdyn_delimskip")
			c.emitOp(pegvm.OpATMARK, c.jumpTarget(delimSkip), nil, nil)
			c.lowerExpr(n.Delim)
			c.emitOp(pegvm.OpDROP, 1, nil, nil)
			c.label(delimSkip)
		}
		c.lowerExpr(n.Expr)
		c.emitOp(pegvm.OpPCOMMIT, c.jumpTarget(stopLbl), nil, nil)
		c.jmp(top)
	}

	c.label(stopLbl)
	c.emitOp(pegvm.OpCOLLECT, nil, nil, nil)
}

// lowerSimpleAnd implements positive lookahead: the body must match,
// but nothing it consumed or pushed survives — BCOMMIT restores DP/KS
// as if the body never ran, and the DROP discards its value.
func (c *ctx) lowerSimpleAnd(n ast.SimpleAnd) {
	failLbl := c.newLabel("and_fail")
	okLbl := c.newLabel("and_ok")
	c.choice(failLbl)
	c.lowerExpr(n.Expr)
	c.emitOp(pegvm.OpBCOMMIT, c.jumpTarget(okLbl), nil, nil)
	c.label(failLbl)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpDROP, 1, nil, nil)
	c.emitOp(pegvm.OpPUSHNULL, nil, nil, nil)
}

// lowerSimpleNot implements negative lookahead: if the body matches,
// BCOMMIT rewinds to before it ran and the construct itself fails; if
// the body fails, the CHOICE catches it and the construct succeeds
// with a null value.
func (c *ctx) lowerSimpleNot(n ast.SimpleNot) {
	innerFail := c.newLabel("not_innerfail")
	bodyOk := c.newLabel("not_bodyok")
	c.choice(innerFail)
	c.lowerExpr(n.Expr)
	c.emitOp(pegvm.OpBCOMMIT, c.jumpTarget(bodyOk), nil, nil)
	c.label(bodyOk)
	c.emitOp(pegvm.OpDROP, 1, nil, nil)
	c.fail()
	c.label(innerFail)
	c.emitOp(pegvm.OpPUSHNULL, nil, nil, nil)
}

// lowerText replaces the body's own value with the slice of input it
// matched. It opens its own zero-slot label frame purely so the
// built-in text action can read StartDP; it never binds anything.
func (c *ctx) lowerText(n ast.Text) {
	c.emitOp(pegvm.OpLEPUSH, 0, nil, nil)
	failLbl := c.newLabel("text_fail")
	okLbl := c.newLabel("text_ok")
	c.choice(failLbl)
	c.lowerExpr(n.Expr)
	c.commit(okLbl)
	c.label(failLbl)
	c.emitOp(pegvm.OpLEPOP, nil, nil, nil)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpDROP, 1, nil, nil)
	c.emitOp(pegvm.OpACTION, c.textAction, uint64(0), nil)
}

// lowerSemanticPred lowers semantic_and/semantic_not. Unlike Action,
// it never opens its own frame: a predicate is a zero-width element of
// whatever sequence or rule body it appears in, so it peeks the
// already-open enclosing frame (see pegvm's PRED handler).
func (c *ctx) lowerSemanticPred(code string, loc ast.Location, negate bool) {
	idx := c.asm.DeclarePredicate(nil)
	c.predicates = append(c.predicates, ActionSite{
		Labels:       append([]string(nil), c.labelOrder...),
		Code:         code,
		CodeLocation: loc,
	})
	var flag uint64
	if negate {
		flag = 1
	}
	c.emitOp(pegvm.OpPRED, idx, uint64(c.currentFrameSize()), flag)
}

// lowerAction lowers an action. When its operand is a Sequence, the
// sequence's own scope (already opened by lowerScope) is reused
// directly rather than layering a second frame: the action's labels
// are exactly the sequence's direct labels either way.
func (c *ctx) lowerAction(n ast.Action) {
	idx := c.asm.DeclareAction(nil)
	labels := analysis.DirectLabels(n.Expr)
	c.actions = append(c.actions, ActionSite{
		Labels:       labels,
		Code:         n.Code,
		CodeLocation: n.CodeLocation,
	})

	closeOK := func() {
		c.emitOp(pegvm.OpACTION, idx, uint64(len(labels)), nil)
	}
	if seq, ok := n.Expr.(ast.Sequence); ok {
		c.lowerScope(labels, func() { c.lowerSequenceBody(seq) }, closeOK)
	} else {
		c.lowerScope(labels, func() { c.lowerExpr(n.Expr) }, closeOK)
	}
}

// lowerNamed wraps the body in a silent-failure region so nested
// expected-descriptions don't surface, then records its own
// expected-description if the body fails outright.
func (c *ctx) lowerNamed(n ast.Named) {
	idx := c.asm.DeclareExpected(n.Name)
	failLbl := c.newLabel("named_fail")
	okLbl := c.newLabel("named_ok")
	c.emitOp(pegvm.OpSILENCE, uint64(1), nil, nil)
	c.choice(failLbl)
	c.lowerExpr(n.Expr)
	c.commit(okLbl)
	c.label(failLbl)
	c.emitOp(pegvm.OpSILENCE, uint64(0), nil, nil)
	c.emitOp(pegvm.OpEXPECT, idx, nil, nil)
	c.fail()
	c.label(okLbl)
	c.emitOp(pegvm.OpSILENCE, uint64(0), nil, nil)
}
