package pegc

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/hildjj/peggy/pegvm"
)

// Parser is a compiled grammar, ready to run against input text.
type Parser struct {
	// Program is the compiled bytecode (codegen.Result.Program, with
	// Actions/Predicates attached by whoever builds this Parser — the
	// compiler package for in-process "parser" output, or an emitted
	// generated file's own init code).
	Program *pegvm.Program

	// AllowedStartRules restricts which rule names StartRule may name,
	//. Empty means "*": any declared rule is allowed.
	AllowedStartRules []string

	// GrammarSource is an opaque tag attached to locations this Parser
	// reports.
	GrammarSource string

	// Logger receives pass/parse diagnostics. Defaults to a silent
	// (Warn-and-above) logrus.Logger, matching OPA's logging package
	// default, when left nil.
	Logger *logrus.Logger

	resultCache *lru.Cache[resultCacheKey, cachedResult]
}

type resultCacheKey struct {
	startRule string
	text      string
}

type cachedResult struct {
	result LibraryResult
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithResultCache bounds Parser.Parse/ParseLibrary to at most size
// distinct (start rule, input) outcomes, evicting least-recently-used
// entries beyond that — a cross-parse cache, unlike pegvm's own
// per-Execution (rule, position) memoization, which is scoped to a
// single parse and discarded at its end. Useful
// when the same small set of inputs (e.g. config snippets) is parsed
// repeatedly by a long-lived process.
func WithResultCache(size int) Option {
	return func(p *Parser) {
		if size <= 0 {
			return
		}
		c, err := lru.New[resultCacheKey, cachedResult](size)
		if err == nil {
			p.resultCache = c
		}
	}
}

// WithLogger sets the Logger used for diagnostics and trace output.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Parser) { p.Logger = l }
}

// NewParser builds a Parser around an already-compiled Program.
func NewParser(prog *pegvm.Program, allowedStartRules []string, grammarSource string, opts ...Option) *Parser {
	p := &Parser{
		Program:           prog,
		AllowedStartRules: allowedStartRules,
		GrammarSource:     grammarSource,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.Logger == nil {
		p.Logger = defaultLogger()
	}
	return p
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// ParseOptions are the parse-time options a generated parser exposes, minus the
// dependency-injection and module-wrapper concerns that only apply at
// compile time.
type ParseOptions struct {
	// StartRule names the rule to begin matching from. Empty selects
	// the default: the first entry of AllowedStartRules, or the
	// grammar's first-declared rule if AllowedStartRules is empty.
	StartRule string

	// Tracer, when non-nil, receives rule.enter/rule.match/rule.fail
	// events as the parse runs.
	Tracer Tracer

	// Extra carries caller-supplied options this Parser doesn't
	// recognize itself. By convention,
	// unknown options are passed through to actions (via
	// context-carrying closures set up by the caller) rather than
	// rejected; Parser itself never inspects Extra.
	Extra map[string]interface{}
}

// ConfigError reports an invalid parse-time configuration: an unknown
// or disallowed start rule.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func (p *Parser) resolveStartRule(name string) (string, error) {
	if name == "" {
		if len(p.AllowedStartRules) > 0 {
			name = p.AllowedStartRules[0]
		} else if len(p.Program.Rules) > 0 {
			name = p.Program.Rules[0].Name
		} else {
			return "", &ConfigError{Message: "pegc: grammar has no rules"}
		}
	}
	if len(p.AllowedStartRules) > 0 && !containsString(p.AllowedStartRules, name) {
		return "", &ConfigError{Message: fmt.Sprintf("pegc: start rule %q is not one of the allowed start rules %v", name, p.AllowedStartRules)}
	}
	return name, nil
}

func (p *Parser) startOffset(name string) (uint64, error) {
	label, ok := p.Program.LabelsByName["start."+name]
	if !ok {
		return 0, &ConfigError{Message: fmt.Sprintf("pegc: unknown start rule %q", name)}
	}
	return label.Offset, nil
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Parse matches input against StartRule (or the default start rule)
// and returns the matched value, or a *ParseError describing the
// furthest-failure position on a syntax error. An action/predicate
// error is returned as-is, unwrapped.
func (p *Parser) Parse(input []byte, opts ParseOptions) (interface{}, error) {
	lib, err := p.parseInternal(input, opts)
	if err != nil {
		return nil, err
	}
	if !lib.Success {
		return nil, lib.Throw()
	}
	return lib.Result, nil
}

// ParseLibrary runs in "library mode": it never raises
// on a syntax error, instead returning a LibraryResult the caller can
// inspect or escalate via LibraryResult.Throw. It still returns a
// non-nil error for configuration problems (unknown start rule) and
// for action/predicate errors, since those aren't syntax errors at
// all and library mode doesn't claim to suppress them.
func (p *Parser) ParseLibrary(input []byte, opts ParseOptions) (*LibraryResult, error) {
	lib, err := p.parseInternal(input, opts)
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

func (p *Parser) parseInternal(input []byte, opts ParseOptions) (LibraryResult, error) {
	startRule, err := p.resolveStartRule(opts.StartRule)
	if err != nil {
		return LibraryResult{}, err
	}
	offset, err := p.startOffset(startRule)
	if err != nil {
		return LibraryResult{}, err
	}

	key := resultCacheKey{startRule: startRule, text: string(input)}
	if p.resultCache != nil {
		if cached, ok := p.resultCache.Get(key); ok {
			return cached.result, nil
		}
	}

	var trace pegvm.TraceFunc
	if opts.Tracer != nil {
		trace = func(e pegvm.TraceEvent) {
			opts.Tracer.Trace(p.traceEvent(e, input))
		}
	}

	res := p.Program.MatchFrom(input, offset, trace)
	if res.Err != nil {
		return LibraryResult{}, res.Err
	}

	lib := LibraryResult{
		Result:          res.Value,
		CurrPos:         res.FailPos,
		Success:         res.Success,
		MaxFailExpected: dedupSortStrings(res.Expected),
		MaxFailPos:      res.FailPos,
	}
	if res.Success {
		lib.CurrPos = uint64(len(input))
	}
	lib.Throw = func() error {
		return p.syntaxError(input, lib.MaxFailPos, lib.MaxFailExpected)
	}

	if p.resultCache != nil {
		p.resultCache.Add(key, cachedResult{result: lib})
	}
	return lib, nil
}
