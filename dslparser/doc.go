// Package dslparser implements a hand-written recursive-descent parser
// for the grammar DSL: it turns one or more named source fragments into
// a single *ast.Grammar, or a *ParseError carrying the furthest offset
// reached and a deduplicated list of expected descriptions.
//
// There is no separate lexer stage; the parser scans runes directly off
// the source string and tracks line/column itself, the same
// hand-rolled-scanner shape used throughout the retrieval pack for
// small hand-written recognizers (see DESIGN.md).
package dslparser
