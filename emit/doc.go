// Package emit renders a compiled grammar (a *pegvm.Program plus the
// codegen.ActionSite metadata describing every action/predicate's user
// code) as a standalone Go source file.
//
// The host language for generated parsers is Go itself, so an action's
// code is dropped into the generated function body verbatim and later
// compiled by the caller's own toolchain — this package never parses,
// type-checks, or otherwise interprets it; that would cross the same
// line the core itself never crosses at parse time.
//
// Two formats are meaningful here: Bare, a minimal single file with a
// package-level Program and a constructor function, and Embed, the
// same shape with a go:generate-friendly header for vendoring a
// generated parser into another module. FormatLibrary exists only so
// callers can name the in-process "parser" output mode through the
// same enum; Generate rejects it, since building a *pegc.Parser
// directly is the compiler package's job, not this one's.
package emit
