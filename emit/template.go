package emit

// fileTemplateSrc is the single text/template driving every emitted
// parser file. It always produces the same shape regardless of
// Format: the go:generate header is the only thing Embed adds over
// Bare.
const fileTemplateSrc = `// Code generated by pegc. DO NOT EDIT.
{{if .Embed}}//go:generate pegc generate -o {{.Package}}.go -format embed
{{end}}
package {{.Package}}

import (
	"github.com/hildjj/peggy/byteset"
	pegc "{{.RuntimeImportPath}}"
	"github.com/hildjj/peggy/pegvm"
)

{{if .TopLevelCode}}{{.TopLevelCode}}
{{end}}
var {{.Export}}Program = &pegvm.Program{
	Bytes: []byte{ {{.Bytecode}} },
	Literals: [][]byte{
{{range .Literals}}		{{.}},
{{end}}	},
	ByteSets: []byteset.Matcher{
{{range .ByteSets}}		{{.}},
{{end}}	},
	Captures: []pegvm.CaptureMeta{
{{range .Captures}}		{{.}},
{{end}}	},
	NamedCaptures: map[string]uint64{
{{range .NamedCaptures}}		{{.}},
{{end}}	},
	Expected: []string{
{{range .Expected}}		{{.}},
{{end}}	},
	// Advisory result-type hints, in rule order (best-effort; a rule
	// ending in an action is "custom", one whose choice alternatives
	// disagree is "unknown"):
{{range .RuleTypeComments}}	{{.}}
{{end}}	Rules: []pegvm.RuleMeta{
{{range .Rules}}		{{.}},
{{end}}	},
	Labels: []*pegvm.Label{
{{range .Labels}}		{{.}},
{{end}}	},
	LabelsByName: map[string]*pegvm.Label{},
}

func init() {
	for _, l := range {{.Export}}Program.Labels {
		{{.Export}}Program.LabelsByName[l.Name] = l
	}
}

func new{{.Export}}Actions() []pegvm.Action {
{{.PerParseCode}}
	return []pegvm.Action{
{{range .Actions}}		{{.Index}}: func(text []byte, labels []interface{}) ({{.Sig}}) {
{{if eq .Code ""}}			return string(text), nil
{{else}}{{range $i, $l := .Labels}}			{{$l}} := labels[{{$i}}]
			_ = {{$l}}
{{end}}{{.Code}}
{{end}}		},
{{end}}	}
}

func new{{.Export}}Predicates() []pegvm.Predicate {
	return []pegvm.Predicate{
{{range .Predicates}}		{{.Index}}: func(text []byte, labels []interface{}) ({{.Sig}}) {
{{range $i, $l := .Labels}}			{{$l}} := labels[{{$i}}]
			_ = {{$l}}
{{end}}{{.Code}}
		},
{{end}}	}
}

// New{{.Export}}Parser builds a fresh *pegc.Parser. Actions and
// predicates are rebuilt on every call so a per-parse initializer's
// variables are genuinely scoped to the parser returned, not shared
// across every parser this package ever constructs.
func New{{.Export}}Parser(opts ...pegc.Option) *pegc.Parser {
	prog := *{{.Export}}Program
	prog.Actions = new{{.Export}}Actions()
	prog.Predicates = new{{.Export}}Predicates()
	return pegc.NewParser(&prog, []string{ {{quoteList .AllowedStartRules}} }, {{printf "%q" .GrammarSource}}, opts...)
}
`
