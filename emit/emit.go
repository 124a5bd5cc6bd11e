package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"github.com/hildjj/peggy/analysis"
	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/byteset"
	"github.com/hildjj/peggy/codegen"
	"github.com/hildjj/peggy/pegvm"
)

// Format selects among the module-wrapper equivalents available to a
// Go target. Dependency-injection / AMD / UMD / bare-global formats
// have no Go analogue, since Go has no runtime module loader.
type Format string

const (
	// FormatBare is a minimal single file: a package-level *pegvm.Program
	// plus a New<ExportVar>Parser constructor.
	FormatBare Format = "bare"

	// FormatEmbed is the same shape as Bare, with a go:generate-friendly
	// header comment for vendoring the generated file into another
	// module with no further build step.
	FormatEmbed Format = "embed"

	// FormatLibrary corresponds to output:"parser" mode: a *pegc.Parser
	// is built directly in-process and returned, with no Go source text
	// produced at all. Generate rejects this value; it exists only so
	// callers can name all three formats through one type.
	FormatLibrary Format = "library"
)

// SourceMap is the minimal offset mapping emitted alongside
// source-and-map output: one entry per action/predicate site, mapping
// its position in the rendered Go source to its position in the
// original grammar source.
type SourceMap struct {
	Entries []SourceMapEntry
}

// SourceMapEntry associates one rendered-source byte offset with the
// ast.Location of the grammar code it came from.
type SourceMapEntry struct {
	GoOffset int
	Grammar  ast.Location
}

// Options controls how Generate renders a compiled grammar.
type Options struct {
	// PackageName is the generated file's package clause.
	PackageName string

	// Format selects the wrapper shape; see the Format constants.
	Format Format

	// ExportVar names the exported Program variable and the
	// NewXxxParser constructor function ("Xxx" substituted for
	// ExportVar, defaulting to "Grammar" when empty).
	ExportVar string

	// RuntimeImportPath overrides the import path used for the pegc
	// runtime package, for a caller vendoring it under another module
	// path. Defaults to "github.com/hildjj/peggy/runtime".
	RuntimeImportPath string

	// AllowedStartRules restricts the generated parser's start rule,
	// mirroring compiler.Options.AllowedStartRules. Empty means any
	// declared rule is allowed.
	AllowedStartRules []string

	// GrammarSource is copied into the generated NewXxxParser call as
	// the grammarSource tag on error locations.
	GrammarSource string

	// SourceMap requests a SourceMap be returned alongside the source
	// text (the "source-and-map" output mode); nil otherwise.
	SourceMap bool
}

// Generate renders res as Go source implementing g's grammar.
func Generate(res *codegen.Result, g *ast.Grammar, opts Options) (string, *SourceMap, error) {
	if opts.Format == FormatLibrary {
		return "", nil, fmt.Errorf("emit: format %q produces a *pegc.Parser directly and has no source text; build it via compiler.Generate with Output: \"parser\" instead", FormatLibrary)
	}
	if opts.Format == "" {
		opts.Format = FormatBare
	}
	if opts.Format != FormatBare && opts.Format != FormatEmbed {
		return "", nil, fmt.Errorf("emit: unknown format %q", opts.Format)
	}
	pkg := opts.PackageName
	if pkg == "" {
		pkg = "main"
	}
	export := opts.ExportVar
	if export == "" {
		export = "Grammar"
	}
	runtimeImport := opts.RuntimeImportPath
	if runtimeImport == "" {
		runtimeImport = "github.com/hildjj/peggy/runtime"
	}

	data := &templateData{
		Package:           pkg,
		Export:            export,
		RuntimeImportPath: runtimeImport,
		Embed:             opts.Format == FormatEmbed,
		AllowedStartRules: opts.AllowedStartRules,
		GrammarSource:     opts.GrammarSource,
		TopLevelCode:      strings.TrimSpace(initCode(g.TopLevelInitializer)),
		PerParseCode:      initCode(g.PerParseInitializer),
		Bytecode:          renderBytes(res.Program.Bytes),
		Literals:          renderLiterals(res.Program.Literals),
		ByteSets:          renderByteSets(res.Program.ByteSets),
		Captures:          renderCaptures(res.Program.Captures),
		NamedCaptures:     renderNamedCaptures(res.Program.NamedCaptures),
		Expected:          renderStringSlice(res.Program.Expected),
		Rules:             renderRules(res.Program.Rules),
		RuleTypeComments:  renderRuleTypeComments(res.Program.Rules, analysis.InferResultTypes(g)),
		Labels:            renderLabels(res.Program.Labels),
		Actions:           renderSites(res.Actions, "interface{}, error"),
		Predicates:        renderSites(res.Predicates, "bool, error"),
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return "", nil, fmt.Errorf("emit: rendering template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Surfacing the unformatted source alongside the error makes the
		// template bug that produced invalid Go visible instead of just
		// the gofmt complaint.
		return buf.String(), nil, fmt.Errorf("emit: generated source does not gofmt: %w", err)
	}

	var sm *SourceMap
	if opts.SourceMap {
		sm = buildSourceMap(string(formatted), res)
	}
	return string(formatted), sm, nil
}

func initCode(init *ast.Initializer) string {
	if init == nil {
		return ""
	}
	return init.Code
}

type renderedSite struct {
	Index  int
	Labels []string
	Code   string
	Sig    string
}

func renderSites(sites []codegen.ActionSite, sig string) []renderedSite {
	out := make([]renderedSite, len(sites))
	for i, s := range sites {
		if s.Builtin == "text" {
			out[i] = renderedSite{Index: i, Sig: sig}
			continue
		}
		out[i] = renderedSite{Index: i, Labels: s.Labels, Code: s.Code, Sig: sig}
	}
	return out
}

func renderBytes(b []byte) string {
	var buf strings.Builder
	for i, v := range b {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "0x%02x", v)
	}
	return buf.String()
}

func renderLiterals(lits [][]byte) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = fmt.Sprintf("{%s}", renderBytes(l))
	}
	return out
}

// renderByteSets always serializes via byteset.DenseSet, enumerating a
// matcher's members through its own ForEach: correct for any concrete
// Matcher implementation, even if not maximally compact for every one
// of them.
func renderByteSets(sets []byteset.Matcher) []string {
	out := make([]string, len(sets))
	for i, m := range sets {
		var bs []byte
		m.ForEach(func(b byte) { bs = append(bs, b) })
		sort.Slice(bs, func(a, c int) bool { return bs[a] < bs[c] })
		out[i] = fmt.Sprintf("byteset.DenseSet(%s)", renderBytes(bs))
	}
	return out
}

func renderCaptures(caps []pegvm.CaptureMeta) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = fmt.Sprintf("{Name: %q, Repeat: %v}", c.Name, c.Repeat)
	}
	return out
}

func renderNamedCaptures(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%q: %d", k, m[k])
	}
	return out
}

func renderStringSlice(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func renderRules(rules []pegvm.RuleMeta) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = fmt.Sprintf("{Name: %q, Offset: %d, Cacheable: %v}", r.Name, r.Offset, r.Cacheable)
	}
	return out
}

// renderRuleTypeComments renders one "// name: type" line per rule, in
// Rules order, from the pass 9 advisory result-type inference
// (analysis.InferResultTypes). It is purely a doc-comment hint on the
// generated Rules table; a TypeUnknown guess is rendered the same as
// any other and never changes what gets emitted elsewhere.
func renderRuleTypeComments(rules []pegvm.RuleMeta, types map[string]analysis.ResultType) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = fmt.Sprintf("// %s: %s", r.Name, types[r.Name])
	}
	return out
}

func renderLabels(labels []*pegvm.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = fmt.Sprintf("{Offset: %d, Public: %v, Name: %q}", l.Offset, l.Public, l.Name)
	}
	return out
}

func buildSourceMap(source string, res *codegen.Result) *SourceMap {
	sm := &SourceMap{}
	addAll := func(sites []codegen.ActionSite) {
		for _, s := range sites {
			if s.Builtin != "" {
				continue
			}
			off := strings.Index(source, s.Code)
			if off < 0 {
				continue
			}
			sm.Entries = append(sm.Entries, SourceMapEntry{GoOffset: off, Grammar: s.CodeLocation})
		}
	}
	addAll(res.Actions)
	addAll(res.Predicates)
	return sm
}

type templateData struct {
	Package           string
	Export            string
	RuntimeImportPath string
	Embed             bool
	AllowedStartRules []string
	GrammarSource     string
	TopLevelCode      string
	PerParseCode      string
	Bytecode          string
	Literals          []string
	ByteSets          []string
	Captures          []string
	NamedCaptures     []string
	Expected          []string
	Rules             []string
	RuleTypeComments  []string
	Labels            []string
	Actions           []renderedSite
	Predicates        []renderedSite
}

var fileTemplate = template.Must(template.New("parser").Funcs(template.FuncMap{
	"quoteList": func(ss []string) string {
		out := make([]string, len(ss))
		for i, s := range ss {
			out[i] = fmt.Sprintf("%q", s)
		}
		return strings.Join(out, ", ")
	},
}).Parse(fileTemplateSrc))
