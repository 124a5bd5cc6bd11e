package pegvm

import (
	"bytes"
	"fmt"
)

// Result is the outcome of an Execution.
type Result struct {
	Success  bool
	Captures []Capture

	// Value is the top of the value stack on success, typically the
	// return value of the outermost rule's semantic action, if any.
	Value interface{}

	// FailPos and Expected report the furthest-failure position reached
	// and the (possibly empty, possibly duplicate-containing) set of
	// EXPECT descriptions recorded there, regardless of Success: a
	// successful match may still have backtracked past a deeper failure
	// along an abandoned ordered-choice branch.
	FailPos  uint64
	Expected []string

	// Err, when non-nil, is an error returned by a user-supplied Action
	// or Predicate that aborted the match. ErrPos is the data position
	// at the time Err was returned, for callers that want to report it
	// as a location rather than just a message.
	Err    error
	ErrPos uint64
}

// String provides a programmer-friendly debugging string for the Result.
func (r Result) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, "%v", r.Success)
	if r.Success {
		buf.WriteByte(' ')
		buf.WriteByte('[')
		first := true
		for i, c := range r.Captures {
			if !first {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%d:%s", i, c)
			first = false
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.String()
}
