package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/hildjj/peggy/ast"
)

// context bundles the facts most passes need so each fact (rule index,
// emptiness, the resolved start-rule set) is computed once per Run
// instead of once per pass.
type context struct {
	Grammar    *ast.Grammar
	Rules      ruleIndex
	Empty      emptiness
	StartRules []string
}

type namedPass struct {
	Name string
	Run  func(ctx *context, report func(Problem))
}

// Manager runs the ordered sequence of semantic passes spec.md §4.3
// names against a parsed grammar.
type Manager struct {
	passes []namedPass

	// Logger receives a Debug entry per pass start, a Warn entry per
	// problem a pass reports, and one more Warn entry when a pass's error
	// aborts the run, when non-nil. Left nil by NewManager;
	// compiler.Generate wires opts.Logger through SetLogger.
	Logger *logrus.Logger
}

// SetLogger attaches l as m's pass-manager logger.
func (m *Manager) SetLogger(l *logrus.Logger) { m.Logger = l }

// NewManager builds a Manager with the standard 10 passes in the order
// spec.md §4.3 enumerates them. The advisory result-type inference
// (pass 9) is InferResultTypes and is not part of this list.
func NewManager() *Manager {
	return &Manager{passes: []namedPass{
		{"undefined-rules", checkUndefinedRules},
		{"duplicates", checkDuplicates},
		{"infinite-loops", checkInfiniteLoops},
		{"left-recursion", checkLeftRecursion},
		{"plucks", checkPlucks},
		{"duplicate-labels", checkDuplicateLabels},
		{"unused-rules", checkUnusedRules},
		{"allowed-start-rules", checkAllowedStartRules},
		{"reserved-words", checkReservedWords},
		{"repetition-bounds", checkRepetitionBounds},
	}}
}

// PluginPass is an analysis pass contributed by a plugin (spec.md
// §4.7): plugins only see the grammar itself, not the core passes'
// precomputed facts (rule index, emptiness, start-rule set), since
// those are an implementation detail of the standard 10 passes.
type PluginPass struct {
	Name string
	Run  func(g *ast.Grammar, report func(Problem))
}

// AppendPass adds p to the end of m's pass list, so it runs after every
// standard pass (and after any previously appended plugin pass) and
// can assume their invariants hold.
func (m *Manager) AppendPass(p PluginPass) {
	m.passes = append(m.passes, namedPass{
		Name: p.Name,
		Run:  func(ctx *context, report func(Problem)) { p.Run(ctx.Grammar, report) },
	})
}

// PrependPass adds p to the front of m's pass list, so it runs before
// every standard pass. Plugin ordering among multiple PrependPass calls
// is stable: each new prepend lands immediately before whatever was
// there before it, so the net order matches call order.
func (m *Manager) PrependPass(p PluginPass) {
	m.passes = append([]namedPass{{
		Name: p.Name,
		Run:  func(ctx *context, report func(Problem)) { p.Run(ctx.Grammar, report) },
	}}, m.passes...)
}

// Run executes every pass in order against g, given the allowedStartRules
// option ("*", empty, or an explicit list — see spec.md §6). Each pass's
// diagnostics are appended to the result before the abort check, so a
// failing pass's own findings are always visible to the caller even
// though later passes don't run. Passes report only Problems; a pass
// that errors out of its own logic (a programming bug, not a grammar
// bug) is not part of this contract and panics instead.
func (m *Manager) Run(g *ast.Grammar, allowedStartRules []string) Problems {
	rules := indexRules(g)
	ctx := &context{
		Grammar:    g,
		Rules:      rules,
		Empty:      computeEmptiness(g, rules),
		StartRules: expandStartRules(g, allowedStartRules),
	}

	var all Problems
	for _, p := range m.passes {
		if m.Logger != nil {
			m.Logger.WithField("pass", p.Name).Debug("analysis pass starting")
		}
		var found Problems
		p.Run(ctx, func(pr Problem) {
			pr.Pass = p.Name
			found = append(found, pr)
		})
		all = append(all, found...)
		if m.Logger != nil {
			for _, pr := range found {
				m.Logger.WithFields(logrus.Fields{"pass": p.Name, "severity": pr.Severity}).Warn(pr.Message)
			}
		}
		if found.HasErrors() {
			if m.Logger != nil {
				m.Logger.WithField("pass", p.Name).Warn("analysis aborting after pass with error")
			}
			break
		}
	}
	return all
}
