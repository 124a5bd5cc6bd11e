package pegvm

import (
	"io"

	"github.com/hildjj/peggy/byteset"
)

type RunState uint8

const (
	RunningState RunState = iota
	SuccessState
	FailureState
	ErrorState
)

// Execution is the context of a match-in-progress.
type Execution struct {
	// P is the program to run.
	P *Program

	// I is the input bytestring on which the match is executing.
	I []byte

	// DP (Data Pointer) is the index into I of the current byte.
	DP uint64

	// XP (eXecution Pointer) is the index into P.Bytes of the Op to decode
	// and execute *next*, i.e. after the current Op completes.
	XP uint64

	// KS is the current stack of capture assignments.
	//
	// - KS is append-only. It grows when one of the FCAP, BCAP, or ECAP
	//   instructions executes, pushing one (BCAP/ECAP) or two (FCAP) items
	//   on the stack. While KS is never popped, it may be restored to an
	//   earlier (shorter) version by the FAIL or BCOMMIT instructions.
	//
	// - For multiple assignments to the same (Index, IsEnd) tuple, the
	//   assignment closest to the top of the stack takes precedence.
	//
	KS []Assignment

	// CS is the current stack of CALL/RET and CHOICE/FAIL frames.
	//
	// - CALL pushes a CALL/RET frame.
	//
	// - RET pops a CALL/RET frame and restores it. It is an error to RET
	//   when a CHOICE/FAIL frame is pending.
	//
	// - CHOICE pushes a CHOICE/FAIL frame.
	//
	// - COMMIT pops a CHOICE/FAIL frame. It is an error to COMMIT when a
	//   CALL/RET frame is pending.
	//
	// - FAIL pops zero or more CALL/RET frames, ignoring them, then pops
	//   at most one CHOICE/FAIL frame and restores it. If no CHOICE/FAIL
	//   frame is pending, then FAIL is equivalent to GIVEUP.
	//
	// - Many other instructions have behaviors similar to COMMIT, FAIL, or
	//   a combination of the two.
	//
	CS []Frame

	// VS is the value stack used by PUSHNULL, DROP, MARK, COLLECT,
	// BIND, and ACTION to thread semantic-action results through
	// a match, mirroring KS/CS's append-then-truncate discipline.
	VS []interface{}

	// LE is the label-environment stack. LEPUSH/LEPOP bracket the
	// scope of a rule or labeled subexpression; BIND/ACTION/PRED
	// address the frame currently on top.
	LE []labelFrame

	// CacheStack tracks in-flight cacheable rule calls between
	// CACHECHK (miss) and the matching CACHEPUT.
	CacheStack []cacheFrame

	// Cache memoizes successful (rule, position) outcomes. Nil when
	// the program declares no rules.
	Cache map[cacheKey]cacheEntry

	// PM is the mark stack used by PMARK/DROPMARK/PUSHTEXT to recover
	// the data position a terminal match started from, so its matched
	// bytes can be pushed onto VS instead of a bare PUSHNULL.
	PM []uint64

	// RC and XC are the counter stacks CNTPUSHK/CNTPUSHVS/CNTDECJZ/
	// CNTPOP use to drive a repetition with a dynamic (label- or
	// code-boundary) minimum (RC) or maximum (XC) count. Like VS and
	// LE, they're balanced by the emitted code itself rather than
	// snapshotted into CHOICE/FAIL frames.
	RC []int64
	XC []int64

	// SilentDepth is incremented/decremented by SILENCE. While
	// positive, EXPECT does not contribute to furthest-failure
	// tracking, matching how lookahead predicates should not pollute
	// the reported expected-set.
	SilentDepth int

	// MaxFailPos and MaxFailSet implement furthest-failure error
	// reporting: the position of the rightmost failed match attempt,
	// and the set of EXPECT descriptions recorded there.
	MaxFailPos uint64
	MaxFailSet []uint64

	// Err carries an error returned by a user-supplied Action or
	// Predicate, set alongside R == ErrorState.
	Err error

	R RunState

	// Trace, when non-nil, receives a TraceEvent for every rule-entry
	// CALL, its matching RET, and any CALL frame fail() discards while
	// unwinding to an outer CHOICE. Nil by default: tracing has a real
	// per-step cost and most parses don't want it.
	Trace TraceFunc
}

func (x *Execution) popCS() (Frame, bool) {
	if len(x.CS) == 0 {
		return Frame{}, false
	}
	i := len(x.CS) - 1
	fr := x.CS[i]
	x.CS = x.CS[:i]
	return fr, true
}

func (x *Execution) availableBytes() uint64 {
	assert(x.DP <= uint64(len(x.I)), "DP out of range")
	return uint64(len(x.I)) - x.DP
}

func (x *Execution) end() {
	x.R = SuccessState
}

// recordExpect is EXPECT's and EOFCHK's shared furthest-failure
// bookkeeping: while not inside a SILENCE region, idx is recorded as a
// candidate for the reported expected-set if DP is at or beyond the
// deepest failure seen so far.
func (x *Execution) recordExpect(idx uint64) {
	if x.SilentDepth != 0 {
		return
	}
	if x.DP > x.MaxFailPos {
		x.MaxFailPos = x.DP
		x.MaxFailSet = x.MaxFailSet[:0]
	}
	if x.DP == x.MaxFailPos {
		x.MaxFailSet = append(x.MaxFailSet, idx)
	}
}

func (x *Execution) giveUp() {
	x.R = FailureState
	x.KS = nil
}

func (x *Execution) fail() {
	for {
		fr, ok := x.popCS()
		if !ok {
			x.giveUp()
			return
		}
		if fr.IsChoice {
			x.DP = fr.DP
			x.XP = fr.XP
			x.KS = fr.KS
			return
		}
		if fr.HasRule && x.Trace != nil {
			x.Trace(TraceEvent{Type: TraceFail, RuleIdx: fr.RuleIdx, DP: x.DP})
		}
	}
}

func (x *Execution) matchN(m byteset.Matcher, n uint64) bool {
	if x.availableBytes() < n {
		return false
	}
	for i := uint64(0); i < n; i++ {
		if !m.Match(x.I[x.DP+i]) {
			return false
		}
	}
	return true
}

func (x *Execution) matchLit(l []byte) (uint64, bool) {
	n := uint64(len(l))
	if x.availableBytes() < n {
		return 0, false
	}
	for i := uint64(0); i < n; i++ {
		if x.I[x.DP+i] != l[i] {
			return 0, false
		}
	}
	return n, true
}

func (x *Execution) Step() error {
	if x.R != RunningState {
		return ErrExecutionHalted
	}

	var op Op
	err := op.Decode(x.P.Bytes, x.XP)
	if err == io.EOF {
		x.end()
		return nil
	}
	if err != nil {
		x.R = ErrorState
		x.KS = nil
		return err
	}

	x.XP += uint64(op.Len)
	switch op.Code {
	case OpNOP:
		// pass

	case OpCHOICE:
		x.CS = append(x.CS, Frame{
			IsChoice: true,
			DP:       x.DP,
			XP:       addOffset(x.XP, u2s(op.Imm0)),
			KS:       x.KS,
		})

	case OpCOMMIT:
		fr, ok := x.popCS()
		assert(ok, "COMMIT on empty stack")
		assert(fr.IsChoice, "COMMIT on CALL/RET frame")
		x.XP = addOffset(x.XP, u2s(op.Imm0))

	case OpFAIL:
		x.fail()

	case OpANYB:
		if x.availableBytes() >= op.Imm0 {
			x.DP += op.Imm0
		} else {
			x.fail()
		}

	case OpSAMEB:
		if x.matchN(byteset.Exactly(byte(op.Imm0)), op.Imm1) {
			x.DP += op.Imm1
		} else {
			x.fail()
		}

	case OpLITB:
		assert(op.Imm0 < uint64(len(x.P.Literals)), "LITB literal index out of range")
		if n, good := x.matchLit(x.P.Literals[op.Imm0]); good {
			x.DP += n
		} else {
			x.fail()
		}

	case OpMATCHB:
		assert(op.Imm0 < uint64(len(x.P.ByteSets)), "MATCHB byteset index out of range")
		if x.matchN(x.P.ByteSets[op.Imm0], op.Imm1) {
			x.DP += op.Imm1
		} else {
			x.fail()
		}

	case OpJMP:
		x.XP = addOffset(x.XP, u2s(op.Imm0))

	case OpCALL:
		target := addOffset(x.XP, u2s(op.Imm0))
		fr := Frame{
			IsChoice: false,
			XP:       x.XP,
		}
		if idx, ok := x.P.ruleIndexAt(target); ok {
			fr.HasRule = true
			fr.RuleIdx = idx
			if x.Trace != nil {
				x.Trace(TraceEvent{Type: TraceEnter, RuleIdx: idx, DP: x.DP})
			}
		}
		x.CS = append(x.CS, fr)
		x.XP = target

	case OpRET:
		fr, ok := x.popCS()
		assert(ok, "RET on empty stack")
		assert(!fr.IsChoice, "RET on CHOICE/FAIL frame")
		x.XP = fr.XP
		if fr.HasRule && x.Trace != nil {
			x.Trace(TraceEvent{Type: TraceMatch, RuleIdx: fr.RuleIdx, DP: x.DP})
		}

	case OpTANYB:
		if x.availableBytes() >= op.Imm1 {
			x.DP += op.Imm1
		} else {
			x.XP = addOffset(x.XP, u2s(op.Imm0))
		}

	case OpTSAMEB:
		if x.matchN(byteset.Exactly(byte(op.Imm1)), op.Imm2) {
			x.DP += op.Imm2
		} else {
			x.XP = addOffset(x.XP, u2s(op.Imm0))
		}

	case OpTLITB:
		assert(op.Imm1 < uint64(len(x.P.Literals)), "TLITB literal index out of range")
		if n, good := x.matchLit(x.P.Literals[op.Imm1]); good {
			x.DP += n
		} else {
			x.XP = addOffset(x.XP, u2s(op.Imm0))
		}

	case OpTMATCHB:
		assert(op.Imm1 < uint64(len(x.P.ByteSets)), "TMATCHB byteset index out of range")
		if x.matchN(x.P.ByteSets[op.Imm1], op.Imm2) {
			x.DP += op.Imm2
		} else {
			x.XP = addOffset(x.XP, u2s(op.Imm0))
		}

	case OpPCOMMIT:
		fr, ok := x.popCS()
		assert(ok, "PCOMMIT on empty stack")
		assert(fr.IsChoice, "PCOMMIT on CALL/RET frame")
		fr.DP = x.DP
		fr.XP = addOffset(x.XP, u2s(op.Imm0))
		fr.KS = x.KS
		x.CS = append(x.CS, fr)

	case OpBCOMMIT:
		fr, ok := x.popCS()
		assert(ok, "BCOMMIT on empty stack")
		assert(fr.IsChoice, "BCOMMIT on CALL/RET frame")
		x.DP = fr.DP
		x.KS = fr.KS
		x.XP = addOffset(x.XP, u2s(op.Imm0))

	case OpSPANB:
		assert(op.Imm0 < uint64(len(x.P.ByteSets)), "SPANB byteset index out of range")
		for m, n := x.P.ByteSets[op.Imm0], uint64(len(x.I)); x.DP < n && m.Match(x.I[x.DP]); x.DP += 1 {
			// pass
		}

	case OpFAIL2X:
		fr, ok := x.popCS()
		assert(ok, "FAIL2X on empty stack")
		assert(fr.IsChoice, "FAIL2X on CALL/RET frame")
		x.fail()

	case OpRWNDB:
		assert(x.DP >= op.Imm0, "RWNDB byte count out of range")
		x.DP -= op.Imm0

	case OpFCAP:
		assert(x.DP >= op.Imm1, "FCAP byte count out of range")
		x.KS = append(x.KS, Assignment{
			Index: op.Imm0,
			IsEnd: false,
			DP:    x.DP - op.Imm1,
		})
		x.KS = append(x.KS, Assignment{
			Index: op.Imm0,
			IsEnd: true,
			DP:    x.DP,
		})

	case OpBCAP:
		x.KS = append(x.KS, Assignment{
			Index: op.Imm0,
			IsEnd: false,
			DP:    x.DP,
		})

	case OpECAP:
		x.KS = append(x.KS, Assignment{
			Index: op.Imm0,
			IsEnd: true,
			DP:    x.DP,
		})

	case OpPUSHNULL:
		x.VS = append(x.VS, nil)

	case OpDROP:
		n := op.Imm0
		assert(uint64(len(x.VS)) >= n, "DROP count out of range")
		x.VS = x.VS[:uint64(len(x.VS))-n]

	case OpMARK:
		x.VS = append(x.VS, marker{})

	case OpCOLLECT:
		i := len(x.VS) - 1
		for i >= 0 {
			if _, isMarker := x.VS[i].(marker); isMarker {
				break
			}
			i--
		}
		assert(i >= 0, "COLLECT with no matching MARK")
		items := append([]interface{}(nil), x.VS[i+1:]...)
		x.VS = append(x.VS[:i], items)

	case OpBIND:
		// BIND copies rather than pops: the bound value must stay on
		// the value stack so it can still contribute to its enclosing
		// sequence's positional result, since there is no separate
		// DUP instruction to make a copy available both places.
		assert(len(x.VS) > 0, "BIND on empty value stack")
		val := x.VS[len(x.VS)-1]
		fr, ok := x.peekLE()
		assert(ok, "BIND on empty label stack")
		assert(op.Imm0 < uint64(len(fr.Slots)), "BIND slot out of range")
		fr.Slots[op.Imm0] = val

	case OpLEPUSH:
		x.LE = append(x.LE, labelFrame{
			Slots:   make([]interface{}, op.Imm0),
			StartDP: x.DP,
		})

	case OpLEPOP:
		_, ok := x.popLE()
		assert(ok, "LEPOP on empty label stack")

	case OpACTION:
		fr, ok := x.popLE()
		assert(ok, "ACTION on empty label stack")
		var val interface{}
		if idx := op.Imm0; x.P.Actions != nil && idx < uint64(len(x.P.Actions)) && x.P.Actions[idx] != nil {
			text := x.I[fr.StartDP:x.DP]
			v, err := x.P.Actions[idx](text, fr.Slots)
			if err != nil {
				x.Err = err
				x.R = ErrorState
				return nil
			}
			val = v
		}
		x.VS = append(x.VS, val)

	case OpPRED:
		// PRED peeks rather than pops: a semantic predicate is a
		// zero-width sequence element, not a scope boundary, so the
		// label frame it reads belongs to its enclosing sequence (or
		// rule body) and must still be there for whatever comes after
		// it — the LEPUSH that opened it is the only thing allowed to
		// close it, via a later LEPOP or ACTION.
		fr, ok := x.peekLE()
		assert(ok, "PRED on empty label stack")
		held := true
		if idx := op.Imm0; x.P.Predicates != nil && idx < uint64(len(x.P.Predicates)) && x.P.Predicates[idx] != nil {
			text := x.I[fr.StartDP:x.DP]
			r, err := x.P.Predicates[idx](text, fr.Slots)
			if err != nil {
				x.Err = err
				x.R = ErrorState
				return nil
			}
			held = r
		}
		if op.Imm2 != 0 {
			held = !held
		}
		// No DP reset here: a predicate consumes nothing of its own, so
		// DP is already exactly where it was before this instruction
		// ran. Resetting it to fr.StartDP would rewind past whatever
		// earlier elements of the enclosing sequence already matched.
		if !held {
			x.fail()
		}

	case OpEXPECT:
		x.recordExpect(op.Imm0)

	case OpSILENCE:
		if op.Imm0 != 0 {
			x.SilentDepth++
		} else if x.SilentDepth > 0 {
			x.SilentDepth--
		}

	case OpCACHECHK:
		ruleIdx := op.Imm0
		key := cacheKey{Rule: ruleIdx, Pos: x.DP}
		if x.Cache != nil {
			if ent, hit := x.Cache[key]; hit {
				if ent.Success {
					// Skip the rule body and its CACHEPUT: the
					// cached value already stands in for both.
					x.DP = ent.EndDP
					x.VS = append(x.VS, ent.Value)
					x.XP = addOffset(x.XP, u2s(op.Imm1))
				} else {
					// Fail exactly as if the body had failed: let
					// fail() pick the continuation, don't also
					// apply the hit-skip jump on top of it.
					x.fail()
				}
				return nil
			}
		}
		x.CacheStack = append(x.CacheStack, cacheFrame{Rule: ruleIdx, Pos: x.DP})

	case OpCACHEPUT:
		n := len(x.CacheStack)
		assert(n > 0, "CACHEPUT on empty cache stack")
		fr := x.CacheStack[n-1]
		x.CacheStack = x.CacheStack[:n-1]
		assert(fr.Rule == op.Imm0, "CACHEPUT rule mismatch")
		if x.Cache != nil {
			var val interface{}
			if len(x.VS) > 0 {
				val = x.VS[len(x.VS)-1]
			}
			x.Cache[cacheKey{Rule: fr.Rule, Pos: fr.Pos}] = cacheEntry{
				Success: true,
				EndDP:   x.DP,
				Value:   val,
			}
		}

	case OpCACHEDROP:
		n := len(x.CacheStack)
		assert(n > 0, "CACHEDROP on empty cache stack")
		fr := x.CacheStack[n-1]
		x.CacheStack = x.CacheStack[:n-1]
		assert(fr.Rule == op.Imm0, "CACHEDROP rule mismatch")
		x.fail()

	case OpEOFCHK:
		if x.DP != uint64(len(x.I)) {
			x.recordExpect(op.Imm0)
			x.fail()
		}

	case OpPMARK:
		x.PM = append(x.PM, x.DP)

	case OpDROPMARK:
		n := len(x.PM)
		assert(n > 0, "DROPMARK on empty mark stack")
		x.PM = x.PM[:n-1]

	case OpPUSHTEXT:
		n := len(x.PM)
		assert(n > 0, "PUSHTEXT on empty mark stack")
		start := x.PM[n-1]
		x.PM = x.PM[:n-1]
		x.VS = append(x.VS, string(x.I[start:x.DP]))

	case OpPUSHLABEL:
		fr, ok := x.peekLE()
		assert(ok, "PUSHLABEL on empty label stack")
		assert(op.Imm0 < uint64(len(fr.Slots)), "PUSHLABEL slot out of range")
		x.VS = append(x.VS, fr.Slots[op.Imm0])

	case OpCNTPUSHK:
		if op.Imm0 == 0 {
			x.RC = append(x.RC, int64(op.Imm1))
		} else {
			x.XC = append(x.XC, int64(op.Imm1))
		}

	case OpCNTPUSHVS:
		assert(len(x.VS) > 0, "CNTPUSHVS on empty value stack")
		val := x.VS[len(x.VS)-1]
		x.VS = x.VS[:len(x.VS)-1]
		n, err := toRepeatCount(val)
		if err != nil {
			x.Err = err
			x.R = ErrorState
			return nil
		}
		if op.Imm0 == 0 {
			x.RC = append(x.RC, n)
		} else {
			x.XC = append(x.XC, n)
		}

	case OpCNTDECJZ:
		stack := &x.RC
		if op.Imm0 != 0 {
			stack = &x.XC
		}
		n := len(*stack)
		assert(n > 0, "CNTDECJZ on empty counter stack")
		top := (*stack)[n-1]
		if top <= 0 {
			*stack = (*stack)[:n-1]
			x.XP = addOffset(x.XP, u2s(op.Imm1))
		} else {
			(*stack)[n-1] = top - 1
		}

	case OpCNTPOP:
		stack := &x.RC
		if op.Imm0 != 0 {
			stack = &x.XC
		}
		n := len(*stack)
		assert(n > 0, "CNTPOP on empty counter stack")
		*stack = (*stack)[:n-1]

	case OpDROPTOMARK:
		i := len(x.VS) - 1
		for i >= 0 {
			if _, isMarker := x.VS[i].(marker); isMarker {
				break
			}
			i--
		}
		assert(i >= 0, "DROPTOMARK with no matching MARK")
		x.VS = x.VS[:i]

	case OpATMARK:
		assert(len(x.VS) > 0, "ATMARK on empty value stack")
		if _, isMarker := x.VS[len(x.VS)-1].(marker); isMarker {
			x.XP = addOffset(x.XP, u2s(op.Imm0))
		}

	case OpGIVEUP:
		x.giveUp()

	case OpEND:
		x.end()
	}
	return nil
}

func (x *Execution) Run() error {
	for x.R == RunningState {
		err := x.Step()
		if err != nil {
			return err
		}
	}
	return nil
}
