// lintfix detects, fixes and reports ESLint issues in a TypeScript project.
//
// Usage:
//
//	lintfix                      # run the full pipeline in the current directory
//	lintfix run ./web --ci       # plain progress, no colour
//	npx eslint . | lintfix parse # analyze saved or piped lint output
//	lintfix report .lintfix/logs/summary-20250101-120000.log
//
// Output modes (auto-detected):
//
//	terminal  styled output (default when stdout is a TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON for automation
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitCode carries a non-zero status out of a command that already
// reported its outcome.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()

	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintf(stderr, "lintfix: %v\n", err)
		return 1
	}
}

// app holds the streams and persistent flags shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	format     string
	theme      string
	noColor    bool
	ci         bool
	debug      bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	run := newRunCmd(a)
	root := &cobra.Command{
		Use:   "lintfix [dir]",
		Short: "Detect, fix and report ESLint issues",
		Long: `lintfix runs the project's formatter and linter, patches unused bindings
and unused caught errors the linter's autofix leaves behind, re-runs the
linter and reports what remains.`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run.RunE,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: .lintfix.yaml, .lintfix.yml or .lintfix.toml)")
	pf.StringVar(&a.format, "format", "", "output format: auto, terminal, llm, json")
	pf.StringVar(&a.theme, "theme", "", "terminal theme: default, orca, mono")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colour")
	pf.BoolVar(&a.ci, "ci", false, "CI mode: no colour, no TUI")
	pf.BoolVar(&a.debug, "debug", false, "log debug events to stderr")

	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(newParseCmd(a))
	root.AddCommand(newPatchCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}
