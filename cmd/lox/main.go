// Command lox is the command-line driver for the tree-walking
// interpreter: the external collaborator spec.md §6 describes. Bare
// invocation starts a REPL; a path argument executes that file. These
// two entry points are also reachable as explicit `repl`/`run`
// subcommands, which additionally accept --verbose and --debug.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kristofer/lox/pkg/debug"
	"github.com/kristofer/lox/pkg/interpreter"
	"github.com/kristofer/lox/pkg/natives"
	"github.com/kristofer/lox/pkg/parser"
	"github.com/kristofer/lox/pkg/scanner"
)

const version = "0.1.0"

// Exit codes from spec §6.
const (
	exitSuccess  = 0
	exitDataErr  = 65
	exitSoftware = 70
)

var (
	verbose    bool
	debugFlag  bool
	log        = logrus.New()
	errColor   = color.New(color.FgRed)
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "lox [path]",
		Short:   "A tree-walking interpreter for a small scripting language",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		Long: heredoc.Doc(`
			lox scans, parses, and evaluates source text for a small
			dynamically-typed scripting language.

			Invoked with no arguments it starts an interactive REPL.
			Invoked with a file path it executes that file and exits.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging()
			if len(args) == 0 {
				runREPL()
				return nil
			}
			runFile(args[0])
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log scanning/parsing/evaluation trace to stderr")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "attach the interactive line debugger before running")

	root.AddCommand(newRunCmd(), newReplCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Execute a source file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			configureLogging()
			runFile(args[0])
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			configureLogging()
			runREPL()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the interpreter version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("lox version " + version)
		},
	}
}

func configureLogging() {
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// runFile executes a source file start to finish, exiting with the
// contracted exit code for whichever error kind (if any) occurred.
func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lox: %v\n", err)
		os.Exit(1)
	}

	interp := interpreter.New()
	natives.Install(interp)
	attachDebuggerIfRequested(interp)

	if code := runSource(interp, string(source)); code != exitSuccess {
		os.Exit(code)
	}
}

// attachDebuggerIfRequested wires an interactive debugger onto interp
// when --debug was passed, reading debugger commands from stdin and
// pausing before every statement (SPEC_FULL.md §12).
func attachDebuggerIfRequested(interp *interpreter.Interpreter) {
	if !debugFlag {
		return
	}
	d := debug.New(interp, os.Stdin, os.Stdout)
	d.Enable()
	d.SetStepMode(true)
}

// runSource scans, parses, and interprets one complete program,
// printing diagnostics to stderr (optionally colorized) and returning
// the process exit code the outcome maps to (spec §6).
func runSource(interp *interpreter.Interpreter, source string) int {
	log.Debug("scanning")
	toks, err := scanner.New(source).ScanTokens()
	if err != nil {
		printDiagnostic(err)
		return exitDataErr
	}

	log.Debug("parsing")
	stmts, err := parser.New(toks).Parse()
	if err != nil {
		printDiagnostic(err)
		return exitDataErr
	}

	log.Debug("evaluating")
	if err := interp.Interpret(stmts); err != nil {
		printDiagnostic(err)
		return exitSoftware
	}
	return exitSuccess
}

// printDiagnostic writes err's exact contracted message (spec §6) to
// stderr, colorized when stderr is a terminal. Colorization never
// alters the text itself — only its surrounding ANSI codes — so
// package-level tests asserting on Error() strings are unaffected.
func printDiagnostic(err error) {
	if color.NoColor {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	errColor.Fprintln(os.Stderr, err)
}

// runREPL implements spec §6's REPL contract: a "> " prompt per line,
// each line evaluated as a complete program, diagnostics to stderr,
// continuing after an error, EOF exits successfully.
func runREPL() {
	interp := interpreter.New()
	natives.Install(interp)
	attachDebuggerIfRequested(interp)

	rl, err := readline.NewEx(&readline.Config{Prompt: "> "})
	if err != nil {
		// readline needs a real terminal; fall back to plain line
		// reading so piped input (tests, CI) still works.
		runREPLPlain(interp, os.Stdin)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return
		}
		runSource(interp, line)
	}
}

// runREPLPlain is the non-interactive fallback REPL loop, used when
// stdin isn't a terminal readline can attach to.
func runREPLPlain(interp *interpreter.Interpreter, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		runSource(interp, scanner.Text())
	}
}
