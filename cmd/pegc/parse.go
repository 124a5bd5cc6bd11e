package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hildjj/peggy/compiler"
	"github.com/hildjj/peggy/dslparser"
	pegc "github.com/hildjj/peggy/runtime"
)

type parseParams struct {
	startRule string
	trace     bool
	ast       bool
	library   bool
}

var configuredParseParams = parseParams{}

var parseCommand = &cobra.Command{
	Use:   "parse <grammar.peggy> [input-file]",
	Short: "Compile a grammar and run it against an input file",
	Long: `Parse compiles the given grammar in-process and matches it against
input-file (or stdin, if omitted), printing the matched result as JSON.

Since this core never interprets the Go code embedded in a grammar's
actions and predicates (spec.md §1 Non-goals), any action or predicate
site in the grammar evaluates to pegvm's documented no-op (nil / true)
rather than running the grammar author's code; "pegc generate" is the
way to get a parser that actually runs real Go actions. This makes
"parse" most useful for grammars that lean on "text"-captured results,
or for exercising the grammar's recognition/error-reporting behavior
(furthest-failure position, expected-set) independent of its actions.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		return runParse(args, &configuredParseParams, os.Stdout)
	},
}

func init() {
	flags := parseCommand.Flags()
	flags.StringVar(&configuredParseParams.startRule, "start", "", "start rule (default: first allowed rule)")
	flags.BoolVar(&configuredParseParams.trace, "trace", false, "log rule.enter/rule.match/rule.fail events to stderr")
	flags.BoolVar(&configuredParseParams.ast, "ast", false, "print the grammar's AST instead of parsing an input file")
	flags.BoolVar(&configuredParseParams.library, "library", false, "library mode: never raise on a syntax error, print the partial-result descriptor instead")
	rootCommand.AddCommand(parseCommand)
}

func runParse(args []string, p *parseParams, stdout *os.File) error {
	grammarPath := args[0]
	grammarText, err := os.ReadFile(grammarPath)
	if err != nil {
		return fmt.Errorf("pegc parse: %w", err)
	}
	fragments := []dslparser.Fragment{{Source: grammarPath, Text: string(grammarText)}}

	if p.ast {
		res, err := compiler.Generate(fragments, compiler.Options{Output: compiler.OutputAST, Logger: rootLogger})
		if err != nil {
			return compileFailure(err)
		}
		return printJSON(stdout, res.AST)
	}

	res, err := compiler.Generate(fragments, compiler.Options{
		Output:        compiler.OutputParser,
		GrammarSource: grammarPath,
		Logger:        rootLogger,
	})
	if err != nil {
		return compileFailure(err)
	}

	var input []byte
	if len(args) == 2 {
		input, err = os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("pegc parse: %w", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("pegc parse: reading stdin: %w", err)
		}
	}

	var tracer pegc.Tracer
	if p.trace {
		tracer = pegc.DefaultTracer{}
	}
	opts := pegc.ParseOptions{StartRule: p.startRule, Tracer: tracer}

	if p.library {
		lib, err := res.Parser.ParseLibrary(input, opts)
		if err != nil {
			return fmt.Errorf("pegc parse: %w", err)
		}
		return printJSON(stdout, libraryResultView(lib))
	}

	value, err := res.Parser.Parse(input, opts)
	if err != nil {
		return fmt.Errorf("pegc parse: %w", err)
	}
	return printJSON(stdout, value)
}

// libraryResultView drops LibraryResult.Throw (a func value, which
// encoding/json can't marshal) in favor of the formatted error message
// it would produce, so library-mode output stays inspectable as plain
// JSON without forcing a caller to invoke Throw themselves.
func libraryResultView(lib *pegc.LibraryResult) map[string]interface{} {
	view := map[string]interface{}{
		"result":          lib.Result,
		"currPos":         lib.CurrPos,
		"success":         lib.Success,
		"maxFailExpected": lib.MaxFailExpected,
		"maxFailPos":      lib.MaxFailPos,
	}
	if !lib.Success && lib.Throw != nil {
		view["error"] = lib.Throw().Error()
	}
	return view
}

func compileFailure(err error) error {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return fmt.Errorf("pegc parse: %s", ce.Error())
	}
	return fmt.Errorf("pegc parse: %w", err)
}

func printJSON(stdout *os.File, v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
