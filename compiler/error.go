package compiler

import (
	"bytes"
	"fmt"

	"github.com/hildjj/peggy/analysis"
)

// CompileError wraps the error-severity diagnostics that aborted
// Generate, following pegvm.DisassembleError's shape: a dedicated
// struct with an Error() built over a bytes.Buffer, rather than
// wrapping each Problem individually.
type CompileError struct {
	Problems analysis.Problems
}

func (e *CompileError) Error() string {
	var buf bytes.Buffer
	buf.WriteString("compiler: grammar has errors:\n")
	for _, p := range e.Problems {
		fmt.Fprintf(&buf, "  %s\n", p.Error())
	}
	return buf.String()
}

// ConfigurationError reports an invalid Options value: an unknown
// output mode or a non-empty Dependencies map. An unknown Format is
// reported by emit as a plain error instead.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return "compiler: " + e.Message }

// PluginError wraps an error a Plugin's Use method returned, naming
// which plugin failed.
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("compiler: plugin %q: %s", e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }
