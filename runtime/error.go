package pegc

import (
	"bytes"
	"fmt"
	"sort"
)

// SourceText names one fragment of grammar or input source a
// *ParseError's location may refer to, mirroring dslparser.Fragment
// for the parse-time (rather than grammar-compile-time) error path.
type SourceText struct {
	Source string
	Text   string
}

// ParseError is the syntax error a Parser raises when a match reaches
// the end of input, or backtracks out of every ordered-choice branch,
// without matching. Expected is already deduplicated and sorted, matching the
// "did you mean one of: ..." style a human reads most easily.
type ParseError struct {
	Message  string
	Source   string
	Pos      int
	Line     int
	Column   int
	Expected []string
	Found    string
}

func (e *ParseError) Error() string {
	var buf bytes.Buffer
	if e.Source != "" {
		fmt.Fprintf(&buf, "%s:", e.Source)
	}
	fmt.Fprintf(&buf, "%d:%d: %s", e.Line, e.Column, e.Message)
	return buf.String()
}

// syntaxError builds a *ParseError from a failed match's
// furthest-failure position and expected-set, formatting Message the
// way dslparser.ParseError does: "expected X but found Y".
func (p *Parser) syntaxError(input []byte, pos uint64, expected []string) error {
	loc := locateOffset(input, pos)
	found := "end of input"
	if int(pos) < len(input) {
		found = fmt.Sprintf("%q", input[pos])
	}
	want := "something else"
	if len(expected) > 0 {
		want = joinExpected(expected)
	}
	return &ParseError{
		Message:  fmt.Sprintf("expected %s but found %s", want, found),
		Source:   p.GrammarSource,
		Pos:      loc.Offset,
		Line:     loc.Line,
		Column:   loc.Column,
		Expected: expected,
		Found:    found,
	}
}

func joinExpected(expected []string) string {
	switch len(expected) {
	case 0:
		return "something else"
	case 1:
		return expected[0]
	default:
		var buf bytes.Buffer
		for i, e := range expected {
			if i > 0 {
				if i == len(expected)-1 {
					buf.WriteString(" or ")
				} else {
					buf.WriteString(", ")
				}
			}
			buf.WriteString(e)
		}
		return buf.String()
	}
}

// dedupSortStrings returns a sorted copy of ss with duplicates removed.
// pegvm's MaxFailSet can record the same EXPECT description more than
// once, e.g. when two different rules both fail expecting a literal at
// the same furthest position.
func dedupSortStrings(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// ActionError is the error type an action or predicate's code
// constructs by calling Fail or Expected, distinguishing a deliberate semantic
// rejection from a Go panic or an unrelated error value bubbling up
// through pegvm.Result.Err.
type ActionError struct {
	Message string
	Pos     uint64
}

func (e *ActionError) Error() string { return e.Message }

// Fail constructs an ActionError reporting an arbitrary message,
// for an action's call to error(message).
func Fail(pos uint64, format string, args ...interface{}) error {
	return &ActionError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Expected constructs an ActionError in the same "expected X but
// found Y" style as a syntax error, for an action's call to
// expected(description).
func Expected(pos uint64, found string, descriptions ...string) error {
	return &ActionError{
		Message: fmt.Sprintf("expected %s but found %s", joinExpected(descriptions), found),
		Pos:     pos,
	}
}
