package dslparser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hildjj/peggy/ast"
)

// ParseError is a structured DSL syntax failure: the furthest position
// the parser reached and the set of things it was looking for there,
// per spec.md §4.1 "Failures".
type ParseError struct {
	Position ast.Position
	Source   string
	Expected []string
	Found    string
}

func (e *ParseError) Error() string {
	exp := "something else"
	if len(e.Expected) > 0 {
		exp = strings.Join(e.Expected, ", ")
	}
	found := e.Found
	if found == "" {
		found = "end of input"
	}
	return fmt.Sprintf("%s:%s: expected %s but found %s", e.Source, e.Position, exp, found)
}

// failureTracker accumulates the furthest-reached set of expected
// descriptions during a parse attempt, mirroring the MaxFailPos/
// MaxFailSet furthest-failure tracking pegvm's EXPECT opcode performs
// at the bytecode level (see pegvm/execution.go): whichever position is
// reached last wins, and expectations at that exact position
// accumulate instead of replacing one another.
type failureTracker struct {
	pos      ast.Position
	expected map[string]bool
	found    string
}

func (ft *failureTracker) record(pos ast.Position, expected string, found string) {
	switch {
	case ft.expected == nil || pos.Offset > ft.pos.Offset:
		ft.pos = pos
		ft.found = found
		ft.expected = map[string]bool{expected: true}
	case pos.Offset == ft.pos.Offset:
		ft.expected[expected] = true
	}
}

func (ft *failureTracker) asError(source string) *ParseError {
	names := make([]string, 0, len(ft.expected))
	for e := range ft.expected {
		names = append(names, e)
	}
	sort.Strings(names)
	return &ParseError{
		Position: ft.pos,
		Source:   source,
		Expected: names,
		Found:    ft.found,
	}
}
