// Command pegc is the ambient CLI driver over the compiler package:
// "generate" renders a grammar file to Go source, "parse" compiles a
// grammar in-process and runs it against an input file, printing the
// matched result or the furthest-failure syntax error. Configuration
// loading, watch mode, and the packaged release pipeline are out of
// scope (spec.md §1 names these as external collaborators); this
// driver is intentionally thin, taking every option directly as a
// flag.
package main

import (
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootCommand is the base CLI command every subcommand is added to,
// following the teacher pack's own root-command idiom
// (open-policy-agent/opa's cmd.RootCommand).
var rootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "pegc: a PEG parser compiler",
	Long:  "pegc compiles a PEG grammar into a Go parser, or runs one in-process against an input file.",
}

// rootLogger is shared by every subcommand's compiler.Options.Logger,
// its level set by -v before RunE fires.
var rootLogger = logrus.New()

var verbose bool

// persistentFlags is declared with the explicit pflag.FlagSet type
// (rather than left as cobra.Command.Flags()'s return value) since
// this is the one place a caller reaches for the flag-parsing library
// cobra itself is built on, rather than cobra's own wrapper surface.
var persistentFlags *pflag.FlagSet = rootCommand.PersistentFlags()

func init() {
	persistentFlags.BoolVarP(&verbose, "verbose", "v", false, "enable debug-level pass-manager logging")
	rootCommand.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			rootLogger.SetLevel(logrus.DebugLevel)
		}
	}
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
