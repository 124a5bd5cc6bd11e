package pegvm

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/hildjj/peggy/byteset"
)

// Program is a PEG pattern that has been compiled to bytecode.
type Program struct {
	// Bytes is the bytecode to execute.
	Bytes []byte

	// Literals is a list of byte literals, referenced by the LITB / TLITB
	// family of instructions.
	Literals [][]byte

	// ByteSets is a list of matchers for byte sets, referenced by the
	// MATCHB / TMATCHB / SPANB family of instructions.
	ByteSets []byteset.Matcher

	// Captures is the list of all captures.
	//
	// - The whole match is always capture index 0.
	//
	// - The N user-specified captures are capture indices 1 .. N.
	//
	Captures []CaptureMeta

	// NamedCaptures is a map from capture names to capture indices.
	NamedCaptures map[string]uint64

	// Labels is an auxiliary list of program labels.
	Labels []*Label

	// LabelsByName is an index from Label.Name to Label.
	LabelsByName map[string]*Label

	// Actions is the list of semantic actions referenced by ACTION,
	// indexed by ImmActionIdx.
	Actions []Action

	// Predicates is the list of semantic predicates referenced by PRED,
	// indexed by ImmPredIdx.
	Predicates []Predicate

	// Expected is the list of human-readable expected-descriptions
	// referenced by EXPECT, indexed by ImmExpectedIdx.
	Expected []string

	// Rules is the list of rule metadata, indexed by ImmRuleIdx. It
	// backs tracing's rule lookup (ruleIndexAt) and the CACHECHK/CACHEPUT
	// memoization opcodes.
	Rules []RuleMeta

	ruleOffsetOnce sync.Once
	ruleByOffset   map[uint64]uint64
}

// ruleIndexAt reports the index into Rules of the rule whose body
// begins at the given code offset, i.e. a CALL instruction's target.
// Used only for tracing: every RuleRef and start-rule trampoline CALL
// targets a rule body's entry offset exactly, so a hit here means
// "this CALL is a rule invocation" rather than some other internal
// jump.
func (p *Program) ruleIndexAt(offset uint64) (uint64, bool) {
	p.ruleOffsetOnce.Do(func() {
		p.ruleByOffset = make(map[uint64]uint64, len(p.Rules))
		for i, r := range p.Rules {
			p.ruleByOffset[r.Offset] = uint64(i)
		}
	})
	idx, ok := p.ruleByOffset[offset]
	return idx, ok
}

// Action is a user-supplied semantic action: given the matched text and
// the bound label values (in declaration order), it returns a value to
// push onto the value stack, or an error to fail the match.
type Action func(text []byte, labels []interface{}) (interface{}, error)

// Predicate is a user-supplied semantic predicate: given the matched
// text and the bound label values, it reports whether the predicate
// holds.
type Predicate func(text []byte, labels []interface{}) (bool, error)

// RuleMeta describes one named rule, used for start-rule lookup and
// memoization bookkeeping.
type RuleMeta struct {
	Name     string
	Offset   uint64
	Cacheable bool
}

// FindLabel returns the best available label for the given code address. If no
// labels are defined for that code address, then a synthetic local label is
// returned.
func (p *Program) FindLabel(xp uint64) *Label {
	i := sort.Search(len(p.Labels), func(i int) bool {
		return p.Labels[i].Offset >= xp
	})
	if i < len(p.Labels) && p.Labels[i].Offset == xp {
		return p.Labels[i]
	}
	return &Label{
		Offset: xp,
		Public: false,
		Name:   fmt.Sprintf(".ANON@%x", xp),
	}
}

// Disassemble converts the program's bytecode into assembly instructions,
// writing the result to the provided buffer.
//
func (p *Program) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	for _, literal := range p.Literals {
		buf.WriteString("%literal ")
		if utf8.Valid(literal) {
			fmt.Fprintf(&buf, "%q", literal)
		} else {
			first := true
			for _, b := range literal {
				if !first {
					buf.WriteByte(',')
					buf.WriteByte(' ')
				}
				fmt.Fprintf(&buf, "0x%02x", b)
				first = false
			}
		}
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}

	for _, matcher := range p.ByteSets {
		buf.WriteString("%matcher ")
		buf.WriteString(matcher.String())
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}

	fmt.Fprintf(&buf, "%%captures %d\n", len(p.Captures))
	if err := flush(); err != nil {
		return total, err
	}
	for i, capture := range p.Captures {
		if capture.Name != "" {
			fmt.Fprintf(&buf, "%%namedcapture %d %q\n", i, capture.Name)
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	buf.WriteByte('\n')
	if err := flush(); err != nil {
		return total, err
	}

	var op Op
	var xp uint64

	// First pass: identify code offsets that need labels
	var labelNeeded = make(map[uint64]struct{})
	for {
		err := op.Decode(p.Bytes, xp)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}

		meta := op.Meta
		if meta == nil {
			meta = op.Code.Meta()
		}

		xp += uint64(op.Len)
		if meta.Imm0.Type == ImmCodeOffset {
			target := addOffset(xp, u2s(op.Imm0))
			labelNeeded[target] = struct{}{}
		}
		if meta.Imm1.Type == ImmCodeOffset {
			target := addOffset(xp, u2s(op.Imm1))
			labelNeeded[target] = struct{}{}
		}
		if meta.Imm2.Type == ImmCodeOffset {
			target := addOffset(xp, u2s(op.Imm2))
			labelNeeded[target] = struct{}{}
		}
	}

	// Second pass: generate actual disassembly listing
	xp = 0
	for {
		err := op.Decode(p.Bytes, xp)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}

		if _, yes := labelNeeded[xp]; yes {
			label := p.FindLabel(xp)
			if label != nil {
				buf.WriteString(label.Name)
				buf.WriteByte(':')
				buf.WriteByte('\n')
				if err := flush(); err != nil {
					return total, err
				}
			}
		}

		xp += uint64(op.Len)
		buf.WriteByte('\t')
		p.writeOp(&buf, &op, xp)
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) writeOp(buf *bytes.Buffer, op *Op, xp uint64) {
	meta := op.Meta
	if meta == nil {
		meta = op.Code.Meta()
	}

	first := true
	f := func(m ImmMeta, v uint64) {
		if !m.IsPresent(v) {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.WriteByte(' ')
		first = false
		switch m.Type {
		case ImmUint, ImmCount:
			fmt.Fprintf(buf, "%d", v)

		case ImmSint:
			fmt.Fprintf(buf, "%d", u2s(v))

		case ImmByte:
			writeByteLiteral(buf, byte(v))

		case ImmRune:
			writeRuneLiteral(buf, rune(v))

		case ImmCodeOffset:
			s := u2s(v)
			label := p.FindLabel(addOffset(xp, s))
			fmt.Fprintf(buf, "%s <.%+d>", label.Name, s)

		case ImmLiteralIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Literals)) {
				buf.WriteString(" <bad-literal>")
			}

		case ImmMatcherIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.ByteSets)) {
				buf.WriteString(" <bad-matcher>")
			}

		case ImmCaptureIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Captures)) {
				buf.WriteString(" <bad-capture>")
			}

		case ImmActionIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Actions)) {
				buf.WriteString(" <bad-action>")
			}

		case ImmPredIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Predicates)) {
				buf.WriteString(" <bad-predicate>")
			}

		case ImmExpectedIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Expected)) {
				buf.WriteString(" <bad-expected>")
			}

		case ImmRuleIdx:
			fmt.Fprintf(buf, "%d", v)
			if v >= uint64(len(p.Rules)) {
				buf.WriteString(" <bad-rule>")
			}

		case ImmLabelSlot, ImmFrameSize, ImmFlag:
			fmt.Fprintf(buf, "%d", v)

		default:
			fmt.Fprintf(buf, "%d", v)
		}
	}

	buf.WriteString(meta.Name)
	f(meta.Imm0, op.Imm0)
	f(meta.Imm1, op.Imm1)
	f(meta.Imm2, op.Imm2)
}

func (p *Program) Exec(input []byte) *Execution {
	ks := make([]Assignment, 0, 2*len(p.Captures))
	cs := make([]Frame, 0, 16)
	x := &Execution{
		P:  p,
		I:  input,
		DP: 0,
		XP: 0,
		KS: ks,
		CS: cs,
	}
	if len(p.Rules) > 0 {
		x.Cache = make(map[cacheKey]cacheEntry)
	}
	return x
}

// Match runs the program from its default entry point (code offset 0,
// conventionally the first-declared rule's start trampoline).
func (p *Program) Match(input []byte) Result {
	return p.MatchFrom(input, 0, nil)
}

// MatchFrom runs the program starting at an arbitrary code offset
// (typically the Offset of a "start.<rule>" Label, for selecting among
// several allowed start rules) with an optional Tracer hook. Used by
// the runtime package to implement per-parse start-rule selection and
// tracing on top of this single-entry-point VM.
func (p *Program) MatchFrom(input []byte, startXP uint64, trace TraceFunc) Result {
	x := p.Exec(input)
	x.XP = startXP
	x.Trace = trace
	if err := x.Run(); err != nil {
		panic(err)
	}
	return p.buildResult(x)
}

func (p *Program) buildResult(x *Execution) Result {
	var r Result
	r.Success = (x.R == SuccessState)
	r.Err = x.Err
	r.ErrPos = x.DP
	r.FailPos = x.MaxFailPos
	r.Expected = make([]string, 0, len(x.MaxFailSet))
	for _, idx := range x.MaxFailSet {
		if idx < uint64(len(p.Expected)) {
			r.Expected = append(r.Expected, p.Expected[idx])
		}
	}
	if !r.Success {
		return r
	}
	if len(x.VS) > 0 {
		r.Value = x.VS[len(x.VS)-1]
	}
	r.Captures = make([]Capture, len(p.Captures))
	pending := make([]uint64, len(p.Captures))
	for _, a := range x.KS {
		if a.Index >= uint64(len(r.Captures)) {
			panic("capture out of range")
		}
		if a.IsEnd {
			var pair CapturePair
			pair.S = pending[a.Index]
			pair.E = a.DP
			ptr := &r.Captures[a.Index]
			ptr.Exists = true
			ptr.Solo = pair
			ptr.Multi = append(ptr.Multi, pair)
			pending[a.Index] = 0
		} else {
			pending[a.Index] = a.DP
		}
	}
	return r
}
