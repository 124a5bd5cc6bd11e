// Package analysis runs the semantic passes that a parsed grammar must
// survive before a bytecode generator can trust it: reference
// resolution, emptiness and left-recursion analysis, label scoping, and
// the other checks of the compile-time contract.
package analysis

import (
	"fmt"
	"strings"

	"github.com/hildjj/peggy/ast"
)

// Severity classifies a Problem as blocking (Error) or advisory
// (Warning). Errors abort subsequent passes; warnings don't.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Problem is one diagnostic produced by a pass.
type Problem struct {
	Severity Severity
	Pass     string
	Message  string
	Location ast.Location
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %s: %s", p.Location, p.Severity, p.Message)
}

// Problems is a batch of diagnostics from one or more passes.
type Problems []Problem

func (ps Problems) Error() string {
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.Error()
	}
	return strings.Join(lines, "\n")
}

// HasErrors reports whether ps contains at least one Problem at
// SeverityError.
func (ps Problems) HasErrors() bool {
	for _, p := range ps {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the subset of ps at SeverityError.
func (ps Problems) Errors() Problems {
	return ps.filter(SeverityError)
}

// Warnings returns the subset of ps at SeverityWarning.
func (ps Problems) Warnings() Problems {
	return ps.filter(SeverityWarning)
}

func (ps Problems) filter(sev Severity) Problems {
	var out Problems
	for _, p := range ps {
		if p.Severity == sev {
			out = append(out, p)
		}
	}
	return out
}
