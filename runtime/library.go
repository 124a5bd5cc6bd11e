package pegc

// LibraryResult is the partial-result descriptor a library-mode parse
// returns: a
// caller can inspect how far a parse got without the Parser raising.
type LibraryResult struct {
	// Result is the matched value on success, nil otherwise.
	Result interface{}

	// CurrPos is the position the parse reached: the end of the
	// matched input on success, or MaxFailPos on failure.
	CurrPos uint64

	// Success reports whether the match succeeded outright.
	Success bool

	// MaxFailExpected and MaxFailPos report the furthest-failure
	// position and its deduplicated, sorted expected-set, regardless
	// of Success (an ordered-choice branch that ultimately succeeded
	// may still have backtracked past a deeper failure).
	MaxFailExpected []string
	MaxFailPos      uint64

	// Throw formats the furthest-failure position and expected-set as
	// a *ParseError, for a caller that decides after the fact to
	// escalate a partial result into a real error.
	Throw func() error
}
