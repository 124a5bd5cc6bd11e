package compiler

import (
	"github.com/sirupsen/logrus"

	"github.com/hildjj/peggy/analysis"
	"github.com/hildjj/peggy/emit"
	"github.com/hildjj/peggy/pegvm"
)

// Output selects the shape Generate returns, per spec.md §6.
type Output string

const (
	// OutputParser builds and returns a callable *pegc.Parser directly,
	// with no Go source text produced.
	OutputParser Output = "parser"

	// OutputSource returns rendered Go source text.
	OutputSource Output = "source"

	// OutputSourceAndMap returns both source text and a SourceMap.
	OutputSourceAndMap Output = "source-and-map"

	// OutputAST returns the grammar AST after analysis, with no
	// bytecode generation or emission performed at all.
	OutputAST Output = "ast"
)

// Compiler is the facade a Plugin's Use method is given: just enough
// surface to append/prepend analysis passes before compilation
// proceeds, per spec.md §4.7. Plugins never see the grammar or the
// in-progress Options directly — a plugin that needs to read the
// grammar does so from within the PluginPass it registers.
type Compiler struct {
	manager *analysis.Manager
}

// AppendPass adds p to the end of the pass list, running after every
// built-in pass and any previously appended plugin pass.
func (c *Compiler) AppendPass(p analysis.PluginPass) { c.manager.AppendPass(p) }

// PrependPass adds p to the front of the pass list, running before
// every built-in pass.
func (c *Compiler) PrependPass(p analysis.PluginPass) { c.manager.PrependPass(p) }

// Plugin is the extension point spec.md §4.7 describes: a plugin's Use
// method receives the compiler façade and the in-progress Options, and
// may register additional passes or validate/consume options of its
// own before compilation begins. Loading a Plugin whose Use method is
// nil is itself a PluginError (spec.md §4.7: "if absent, loading the
// plugin fails with a clear message").
type Plugin interface {
	Use(c *Compiler, opts *Options) error
}

// Options controls Generate end to end: DSL parsing is unaffected by
// it (multi-fragment concatenation is controlled purely by how many
// Fragments are passed to Generate), but analysis, bytecode generation,
// and emission all read from it. Field names mirror spec.md §6's
// recognized-option list.
type Options struct {
	// Output selects which of Generate's four return shapes is built.
	// Defaults to OutputSource.
	Output Output

	// AllowedStartRules restricts which rule names a compiled parser
	// will accept as its start rule. Empty defaults to just the first
	// declared rule, per spec.md §6 ("default = first rule"); ["*"]
	// expands to every declared rule (spec.md §4.3 pass 8 /
	// analysis.expandStartRules).
	AllowedStartRules []string

	// Cache enables per-rule memoization in the generated bytecode
	// (codegen.Options.Cache).
	Cache bool

	// Trace has no effect on what Generate builds: every compiled
	// parser can always be traced by passing a Tracer in ParseOptions
	// (runtime.ParseOptions.Tracer), since the CALL/RET trace hooks
	// cost nothing when no tracer is attached. Trace exists only so a
	// caller can express the option spec.md §6 names; it is accepted
	// and ignored rather than rejected.
	Trace bool

	// Format selects the emitted module-wrapper shape for
	// OutputSource/OutputSourceAndMap. Ignored (but harmless) for
	// OutputParser/OutputAST. Defaults to emit.FormatBare.
	Format emit.Format

	// Dependencies has no Go analogue (Go has no runtime module
	// loader to inject named variables from); a non-empty value is a
	// ConfigurationError, per spec.md §6 ("valid only with module
	// formats that support dependencies" — no Go format does).
	Dependencies map[string]string

	// ExportVar names the emitted Program variable / NewXxxParser
	// constructor (emit.Options.ExportVar). Defaults to "Grammar".
	ExportVar string

	// PackageName is the emitted file's package clause. Defaults to
	// "main".
	PackageName string

	// RuntimeImportPath overrides the pegc runtime import path in
	// emitted source, for a caller vendoring it elsewhere.
	RuntimeImportPath string

	// GrammarSource is an opaque tag attached to every location this
	// compile's errors and the compiled parser's own runtime errors
	// report.
	GrammarSource string

	// Plugins are loaded in order (stable ordering per spec.md §4.7)
	// before the pass manager runs.
	Plugins []Plugin

	// Actions and Predicates supply the real Go functions to attach to
	// a Result.Parser built under OutputParser, indexed the same way
	// codegen.Result.Actions/Predicates are (declaration order,
	// including the synthetic `text` builtin slot). This core never
	// interprets the action/predicate source text embedded in the
	// grammar (spec.md §1 Non-goals) — OutputSource instead renders
	// that text verbatim as real Go functions for the host Go
	// toolchain to compile, which is how OutputSource gets working
	// actions without this core ever running a Go source text
	// interpreter. OutputParser has no such compilation step, so its
	// actions must be supplied directly here; a nil entry at a
	// non-builtin index leaves that action/predicate absent, and
	// pegvm then pushes nil for the action and treats the predicate as
	// holding (see ACTION and PRED in pegvm/doc.go).
	Actions    []pegvm.Action
	Predicates []pegvm.Predicate

	// ResultCacheSize, when > 0, wraps the OutputParser Result.Parser
	// in runtime.WithResultCache(ResultCacheSize) — a cross-parse
	// cache, not the per-rule Cache above.
	ResultCacheSize int

	// Info and Warning are diagnostic sinks keyed by pass name
	// (spec.md §6). When a pass named in Warning reports a warning, that
	// sink is called with the problem's message; the warning is still
	// collected into Result.Warnings as well. Info is consulted only
	// under the key "dslparser", which receives a one-line count of the
	// parsed fragments and rules. Errors always abort regardless of
	// whether a sink is registered for that pass.
	Info    map[string]func(message string)
	Warning map[string]func(message string)

	// Logger receives pass-manager debug/warn entries (analysis.Manager's
	// Logger) for this compile. Nil uses a package-level default logger
	// silent above Warn, matching OPA's logging package default.
	Logger *logrus.Logger
}
