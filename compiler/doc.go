// Package compiler is the pass-manager entry point tying the rest of
// this module together: parse the grammar DSL, run it through the
// semantic passes, lower it to bytecode, and produce whichever of the
// four output shapes the caller asked for (an in-process parser, Go
// source text with or without a source map, or the annotated AST
// itself).
package compiler
