// Package pegc implements the operational contract a compiled grammar
// must honor at parse time : ordered-choice backtracking
// and furthest-failure tracking are the VM's job (github.com/hildjj/
// peggy/pegvm); this package adds the bits the VM itself doesn't carry
// because they're per-compile or per-parse configuration rather than
// recognition semantics — allowed start rules, tracer wiring, the
// library (partial-result) parse mode, and formatted syntax errors.
//
// A Parser is deliberately small: it's what both compiler.Generate's
// "parser" output mode and every emitted Go source file construct and
// hand back to a caller, so its surface is the one described in
// and nothing
// more.
package pegc
