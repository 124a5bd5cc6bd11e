package compiler

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hildjj/peggy/analysis"
	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/codegen"
	"github.com/hildjj/peggy/dslparser"
	"github.com/hildjj/peggy/emit"
	"github.com/hildjj/peggy/pegvm"
	pegc "github.com/hildjj/peggy/runtime"
)

// defaultLogger is used whenever Options.Logger is nil: silent above
// Warn, matching OPA's logging package default.
var defaultLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}()

// Result is Generate's return value. Only the fields relevant to the
// requested Options.Output are populated; the rest are left at their
// zero value.
type Result struct {
	// AST is the grammar after every analysis pass has run, populated
	// for every Output value (not just OutputAST) since it's cheap to
	// keep and callers inspecting a CompileError often want it too.
	AST *ast.Grammar

	// Source and SourceMap are populated for OutputSource /
	// OutputSourceAndMap.
	Source    string
	SourceMap *emit.SourceMap

	// Parser is populated for OutputParser: an in-process parser with
	// Options.Actions/Predicates already attached.
	Parser *pegc.Parser

	// Warnings carries every SeverityWarning diagnostic the pass
	// manager collected, regardless of whether a Options.Warning sink
	// also consumed it.
	Warnings analysis.Problems
}

// Generate runs the full pipeline spec.md §2 describes: parse each
// source fragment, concatenate them into one grammar, run the fixed
// pass-manager analyses (with any plugin-contributed passes spliced
// in), lower to bytecode, and render whichever Output shape opts asks
// for. It is the package's one entry point, matching spec.md §6's
// `generate(sources, options) → parser | source-text | AST |
// (source-text + source-map)`.
func Generate(sources []dslparser.Fragment, opts Options) (*Result, error) {
	if opts.Output == "" {
		opts.Output = OutputSource
	}
	if len(opts.Dependencies) > 0 {
		return nil, &ConfigurationError{Message: fmt.Sprintf("dependencies option set (%d entries) but no Go output format supports dependency injection", len(opts.Dependencies))}
	}

	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger
	}

	g, err := dslparser.ParseFragments(sources)
	if err != nil {
		return nil, err
	}

	manager := analysis.NewManager()
	manager.SetLogger(logger)
	facade := &Compiler{manager: manager}
	for _, plugin := range opts.Plugins {
		if plugin == nil {
			return nil, &PluginError{Plugin: "<nil>", Err: fmt.Errorf("plugin has no Use method")}
		}
		if err := plugin.Use(facade, &opts); err != nil {
			return nil, &PluginError{Plugin: fmt.Sprintf("%T", plugin), Err: err}
		}
	}

	logger.WithFields(logrus.Fields{"fragments": len(sources), "rules": len(g.Rules)}).Debug("grammar parsed")
	if fn := opts.Info["dslparser"]; fn != nil {
		fn(fmt.Sprintf("parsed %d fragment(s) into %d rule(s)", len(sources), len(g.Rules)))
	}

	problems := manager.Run(g, opts.AllowedStartRules)
	dispatchDiagnostics(problems, opts)
	if problems.HasErrors() {
		return &Result{AST: g, Warnings: problems.Warnings()}, &CompileError{Problems: problems.Errors()}
	}

	res := &Result{AST: g, Warnings: problems.Warnings()}
	if opts.Output == OutputAST {
		return res, nil
	}

	bcRes, err := codegen.Compile(g, codegen.Options{Cache: opts.Cache})
	if err != nil {
		return res, err
	}

	// Expand the option as the passes did; pegc reads an empty list as "any rule".
	startRules := opts.AllowedStartRules
	if len(startRules) == 0 && len(g.Rules) > 0 {
		startRules = []string{g.Rules[0].Name}
	}
	for _, name := range startRules {
		if name == "*" {
			startRules = nil
		}
	}

	switch opts.Output {
	case OutputParser:
		prog := bcRes.Program
		prog.Actions = attachActions(bcRes.Actions, opts.Actions)
		prog.Predicates = attachPredicates(bcRes.Predicates, opts.Predicates)
		var parserOpts []pegc.Option
		if opts.ResultCacheSize > 0 {
			parserOpts = append(parserOpts, pegc.WithResultCache(opts.ResultCacheSize))
		}
		res.Parser = pegc.NewParser(prog, startRules, opts.GrammarSource, parserOpts...)
		return res, nil

	case OutputSource, OutputSourceAndMap:
		source, sm, err := emit.Generate(bcRes, g, emit.Options{
			PackageName:       opts.PackageName,
			Format:            opts.Format,
			ExportVar:         opts.ExportVar,
			RuntimeImportPath: opts.RuntimeImportPath,
			AllowedStartRules: startRules,
			GrammarSource:     opts.GrammarSource,
			SourceMap:         opts.Output == OutputSourceAndMap,
		})
		if err != nil {
			return res, err
		}
		res.Source = source
		res.SourceMap = sm
		return res, nil

	default:
		return nil, &ConfigurationError{Message: fmt.Sprintf("unknown output mode %q", opts.Output)}
	}
}

// dispatchDiagnostics routes each problem to its pass's registered
// sink, if opts named one for that severity; every problem is also
// left in Result.Warnings/wrapped into the CompileError regardless, so
// a caller that never registers a sink still sees everything through
// the return value alone.
func dispatchDiagnostics(problems analysis.Problems, opts Options) {
	for _, p := range problems {
		if p.Severity == analysis.SeverityWarning {
			if fn := opts.Warning[p.Pass]; fn != nil {
				fn(p.Message)
			}
		}
	}
}

// attachActions fills a pegvm.Program.Actions-shaped slice from
// codegen's declared ActionSite list: the synthetic "text" builtin is
// always wired to codegen.BuiltinTextAction regardless of what the
// caller supplied at that index (OutputParser never lets a caller
// override the built-in text()-capture action, since it isn't user
// code to begin with), and every other site takes whatever the caller
// supplied at the matching index, or nil (pegvm's documented no-op)
// if the caller's slice is short or left a hole.
func attachActions(sites []codegen.ActionSite, supplied []pegvm.Action) []pegvm.Action {
	out := make([]pegvm.Action, len(sites))
	for i, s := range sites {
		if s.Builtin == "text" {
			out[i] = codegen.BuiltinTextAction
			continue
		}
		if i < len(supplied) {
			out[i] = supplied[i]
		}
	}
	return out
}

// attachPredicates is attachActions' Predicate-shaped counterpart.
// codegen never declares a builtin predicate site, so every slot is
// simply whatever the caller supplied (or nil).
func attachPredicates(sites []codegen.ActionSite, supplied []pegvm.Predicate) []pegvm.Predicate {
	out := make([]pegvm.Predicate, len(sites))
	for i := range sites {
		if i < len(supplied) {
			out[i] = supplied[i]
		}
	}
	return out
}
