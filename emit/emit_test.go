package emit

import (
	"strings"
	"testing"

	"github.com/hildjj/peggy/ast"
	"github.com/hildjj/peggy/codegen"
)

func compileLiteralRule(t *testing.T) (*codegen.Result, *ast.Grammar) {
	t.Helper()
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{Name: "start", Expr: ast.Literal{Value: "hi"}},
		},
	}
	res, err := codegen.Compile(g, codegen.Options{})
	if err != nil {
		t.Fatalf("codegen.Compile: %v", err)
	}
	return res, g
}

func TestGenerateBareFormat(t *testing.T) {
	res, g := compileLiteralRule(t)
	source, sm, err := Generate(res, g, Options{PackageName: "grammar"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sm != nil {
		t.Fatal("expected a nil SourceMap when SourceMap option is unset")
	}
	for _, want := range []string{
		"package grammar",
		"var GrammarProgram = &pegvm.Program{",
		"func NewGrammarParser(",
		"github.com/hildjj/peggy/runtime",
	} {
		if !strings.Contains(source, want) {
			t.Errorf("generated source missing %q:\n%s", want, source)
		}
	}
}

func TestGenerateEmbedFormatAddsGoGenerateHeader(t *testing.T) {
	res, g := compileLiteralRule(t)
	source, _, err := Generate(res, g, Options{PackageName: "grammar", Format: FormatEmbed})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(source, "//go:generate pegc generate") {
		t.Fatalf("embed format missing go:generate header:\n%s", source)
	}
}

func TestGenerateRejectsLibraryFormat(t *testing.T) {
	res, g := compileLiteralRule(t)
	if _, _, err := Generate(res, g, Options{Format: FormatLibrary}); err == nil {
		t.Fatal("expected an error for FormatLibrary")
	}
}

func TestGenerateDefaultsPackageToMain(t *testing.T) {
	res, g := compileLiteralRule(t)
	source, _, err := Generate(res, g, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(source, "package main") {
		t.Fatalf("expected default package main:\n%s", source)
	}
}

func TestGenerateWithActionRendersLabeledCode(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "pair",
				Expr: ast.Action{
					Expr: ast.Sequence{
						Elements: []ast.Expression{
							ast.Labeled{Label: "a", Expr: ast.Literal{Value: "a"}},
							ast.Literal{Value: ","},
							ast.Labeled{Label: "b", Expr: ast.Literal{Value: "b"}},
						},
					},
					Code: "return []interface{}{a, b}, nil",
				},
			},
		},
	}
	res, err := codegen.Compile(g, codegen.Options{})
	if err != nil {
		t.Fatalf("codegen.Compile: %v", err)
	}
	source, _, err := Generate(res, g, Options{PackageName: "grammar"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(source, "a := labels[0]") || !strings.Contains(source, "b := labels[1]") {
		t.Fatalf("generated source missing label bindings:\n%s", source)
	}
	if !strings.Contains(source, "return []interface{}{a, b}, nil") {
		t.Fatalf("generated source missing action code:\n%s", source)
	}
}

func TestGenerateSourceAndMapPopulatesEntries(t *testing.T) {
	g := &ast.Grammar{
		Rules: []*ast.Rule{
			{
				Name: "start",
				Expr: ast.Action{
					Expr: ast.Literal{Value: "hi"},
					Code: "return text(), nil",
				},
			},
		},
	}
	res, err := codegen.Compile(g, codegen.Options{})
	if err != nil {
		t.Fatalf("codegen.Compile: %v", err)
	}
	_, sm, err := Generate(res, g, Options{SourceMap: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sm == nil || len(sm.Entries) == 0 {
		t.Fatal("expected at least one SourceMap entry for the action site")
	}
}
