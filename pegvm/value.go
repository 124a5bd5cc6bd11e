package pegvm

import "fmt"

// marker is pushed onto the value stack by MARK and sought by COLLECT.
type marker struct{}

// toRepeatCount converts a dynamic repetition bound (a label's bound
// value, or a code-boundary action's return value) into a count. Any
// Go integer or float type is accepted, a float being truncated toward
// zero; any other value is reported as an error.
func toRepeatCount(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("repetition boundary value %v (%T) is not a number", v, v)
	}
}

// labelFrame is one level of the label-environment stack, used by BIND,
// ACTION, and PRED to gather the values bound to a rule's or
// subexpression's labeled operands.
type labelFrame struct {
	Slots   []interface{}
	StartDP uint64
}

// cacheKey identifies one memoized rule application.
type cacheKey struct {
	Rule uint64
	Pos  uint64
}

// cacheEntry is a memoized rule outcome. Only successful applications
// are memoized; a failed application is simply re-attempted, which
// keeps the cache small and avoids having to thread failure-set
// bookkeeping through negative entries.
type cacheEntry struct {
	Success bool
	EndDP   uint64
	Value   interface{}
}

// cacheFrame tracks an in-flight cacheable rule call, so CACHEPUT can
// recover the position the call started at.
type cacheFrame struct {
	Rule uint64
	Pos  uint64
}

func (x *Execution) popLE() (labelFrame, bool) {
	n := len(x.LE)
	if n == 0 {
		return labelFrame{}, false
	}
	fr := x.LE[n-1]
	x.LE = x.LE[:n-1]
	return fr, true
}

func (x *Execution) peekLE() (*labelFrame, bool) {
	n := len(x.LE)
	if n == 0 {
		return nil, false
	}
	return &x.LE[n-1], true
}
