package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hildjj/peggy/compiler"
	"github.com/hildjj/peggy/dslparser"
	"github.com/hildjj/peggy/emit"
)

type generateParams struct {
	output            string
	packageName       string
	format            string
	startRules        []string
	cache             bool
	exportVar         string
	runtimeImportPath string
	grammarSource     string
	sourceMap         bool
}

var configuredGenerateParams = generateParams{
	format: string(emit.FormatBare),
}

var generateCommand = &cobra.Command{
	Use:   "generate <grammar.peggy> [more.peggy ...]",
	Short: "Compile one or more grammar files into a Go parser",
	Long: `Generate parses the given grammar file(s) (concatenated in the order
given, per spec.md §4.1's multi-fragment semantics), runs the grammar
through every analysis pass, lowers it to bytecode, and renders the
result as Go source text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runGenerate(args, &configuredGenerateParams, os.Stdout)
	},
}

func init() {
	flags := generateCommand.Flags()
	flags.StringVarP(&configuredGenerateParams.output, "output", "o", "", "output file (default: stdout)")
	flags.StringVar(&configuredGenerateParams.packageName, "package", "main", "generated file's package clause")
	flags.StringVar(&configuredGenerateParams.format, "format", string(emit.FormatBare), "module wrapper: bare, embed")
	flags.StringSliceVar(&configuredGenerateParams.startRules, "start", nil, "comma-separated list of allowed start rules (default: the first declared rule)")
	flags.BoolVar(&configuredGenerateParams.cache, "cache", false, "enable per-rule memoization in the generated bytecode")
	flags.StringVar(&configuredGenerateParams.exportVar, "export-var", "Grammar", "name of the exported Program variable / NewXxxParser constructor")
	flags.StringVar(&configuredGenerateParams.runtimeImportPath, "runtime-import-path", "", "override the pegc runtime import path")
	flags.StringVar(&configuredGenerateParams.grammarSource, "grammar-source", "", "opaque tag attached to error locations (default: first grammar file's path)")
	flags.BoolVar(&configuredGenerateParams.sourceMap, "source-map", false, "also render a .map alongside the output file")
	rootCommand.AddCommand(generateCommand)
}

func runGenerate(paths []string, p *generateParams, stdout *os.File) error {
	fragments := make([]dslparser.Fragment, len(paths))
	for i, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("pegc generate: %w", err)
		}
		fragments[i] = dslparser.Fragment{Source: path, Text: string(text)}
	}

	grammarSource := p.grammarSource
	if grammarSource == "" {
		grammarSource = paths[0]
	}

	outputMode := compiler.OutputSource
	if p.sourceMap {
		outputMode = compiler.OutputSourceAndMap
	}

	res, err := compiler.Generate(fragments, compiler.Options{
		Output:            outputMode,
		AllowedStartRules: p.startRules,
		Cache:             p.cache,
		Format:            emit.Format(p.format),
		ExportVar:         p.exportVar,
		PackageName:       p.packageName,
		RuntimeImportPath: p.runtimeImportPath,
		GrammarSource:     grammarSource,
		Logger:            rootLogger,
		Warning: map[string]func(string){
			"unused-rules": func(msg string) { fmt.Fprintf(os.Stderr, "pegc: warning: %s\n", msg) },
		},
	})
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			return fmt.Errorf("pegc generate: %s", ce.Error())
		}
		return fmt.Errorf("pegc generate: %w", err)
	}

	if p.output == "" {
		_, err = fmt.Fprint(stdout, res.Source)
		return err
	}
	if err := os.WriteFile(p.output, []byte(res.Source), 0o644); err != nil {
		return fmt.Errorf("pegc generate: writing %s: %w", p.output, err)
	}
	if res.SourceMap != nil {
		mapPath := p.output + ".map"
		if err := writeSourceMap(mapPath, res.SourceMap); err != nil {
			return err
		}
	}
	return nil
}

// writeSourceMap renders a SourceMap as a minimal line-oriented text
// format (one "goOffset source:start-end" entry per line): the core's
// source-map *toolchain* (readers, viewers, stack-trace remapping) is
// out of scope per spec.md §1, so this is just enough to persist the
// mapping table Generate already computed.
func writeSourceMap(path string, sm *emit.SourceMap) error {
	var b strings.Builder
	for _, e := range sm.Entries {
		fmt.Fprintf(&b, "%d %s\n", e.GoOffset, e.Grammar)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
