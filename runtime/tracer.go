package pegc

import (
	"github.com/sirupsen/logrus"

	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/pegvm"
)

// Tracer receives Events as a parse runs. It is the only way to
// observe rule entry/match/fail without instrumenting generated
// actions by hand.
type Tracer interface {
	Trace(Event)
}

// EventType names which of the three rule-level transitions an Event
// reports.
type EventType uint8

const (
	EventRuleEnter EventType = iota
	EventRuleMatch
	EventRuleFail
)

func (t EventType) String() string {
	switch t {
	case EventRuleEnter:
		return "rule.enter"
	case EventRuleMatch:
		return "rule.match"
	case EventRuleFail:
		return "rule.fail"
	default:
		return "rule.unknown"
	}
}

// Event reports one rule invocation's entry, match, or failure. Start
// and End are equal: pegvm reports a single data position per
// transition rather than a matched span, since a rule.enter event by
// construction precedes any text being consumed.
type Event struct {
	Type  EventType
	Rule  string
	Start ast.Position
	End   ast.Position
}

// traceEvent converts a pegvm.TraceEvent (which knows only a rule
// index and a byte offset) into the named, located Event a Tracer
// expects, by looking up the rule's name and scanning input for the
// offset's line/column.
func (p *Parser) traceEvent(e pegvm.TraceEvent, input []byte) Event {
	name := ""
	if e.RuleIdx < uint64(len(p.Program.Rules)) {
		name = p.Program.Rules[e.RuleIdx].Name
	}
	pos := locateOffset(input, e.DP)
	var typ EventType
	switch e.Type {
	case pegvm.TraceEnter:
		typ = EventRuleEnter
	case pegvm.TraceMatch:
		typ = EventRuleMatch
	case pegvm.TraceFail:
		typ = EventRuleFail
	}
	return Event{Type: typ, Rule: name, Start: pos, End: pos}
}

// locateOffset converts a byte offset into input to a 1-based
// line/column ast.Position, scanning from the start each call. Tracing
// is opt-in and off the hot path of a plain Parse, so this isn't
// memoized the way dslparser's own position tracking is.
func locateOffset(input []byte, offset uint64) ast.Position {
	line := 1
	col := 1
	limit := offset
	if limit > uint64(len(input)) {
		limit = uint64(len(input))
	}
	for i := uint64(0); i < limit; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return ast.Position{Offset: int(offset), Line: line, Column: col}
}

// DefaultTracer logs each Event at Debug level via a logrus.Logger,
// the ambient choice matching the rest of this module's diagnostics.
type DefaultTracer struct {
	Logger *logrus.Logger
}

func (t DefaultTracer) Trace(e Event) {
	l := t.Logger
	if l == nil {
		l = defaultLogger()
	}
	l.WithFields(logrus.Fields{
		"rule": e.Rule,
		"pos":  e.Start.Offset,
	}).Debug(e.Type.String())
}
