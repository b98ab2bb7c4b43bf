// Package repl wires the pipeline — scanner → parser → resolver →
// interpreter, one failure category mapped to one outcome — into both an
// interactive read-eval-print loop and a one-shot whole-file runner. The
// interactive loop is built on github.com/chzyer/readline for line editing
// and history.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/aromano272/loxwalk/interpreter"
	"github.com/aromano272/loxwalk/parser"
	"github.com/aromano272/loxwalk/resolver"
	"github.com/aromano272/loxwalk/scanner"
)

const prompt = "> "

// Outcome classifies how a run of source ended, so the CLI driver can map
// it to a process exit code without repl needing to know about os.Exit.
type Outcome int

const (
	OK Outcome = iota
	StaticError
	RuntimeErr
)

// Run scans, parses, resolves, and interprets source against interp,
// reporting every diagnostic to stderr as one line per error. Static errors
// (scan/parse/resolve) short-circuit before any statement executes; a
// runtime error aborts execution of the remaining statements.
func Run(interp *interpreter.Interpreter, source string, stderr io.Writer) Outcome {
	toks, scanErrs := scanner.New(source).ScanTokens()
	if len(scanErrs) > 0 {
		for _, e := range scanErrs {
			fmt.Fprintln(stderr, e.Error())
		}
		return StaticError
	}

	stmts, parseErrs := parser.Parse(toks)
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			fmt.Fprintln(stderr, e.Error())
		}
		return StaticError
	}

	if resolveErrs := resolver.Resolve(stmts); len(resolveErrs) > 0 {
		for _, e := range resolveErrs {
			fmt.Fprintln(stderr, e.Error())
		}
		return StaticError
	}

	if err := interp.Interpret(stmts); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return RuntimeErr
	}
	return OK
}

// StartInteractive runs a read-eval-print loop until end-of-input,
// persisting one interpreter (and hence one global environment) across
// lines.
func StartInteractive(stdout io.Writer) error {
	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Println("loxwalk — Ctrl+D to quit")

	interp := interpreter.New(stdout)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl+D, readline.ErrInterrupt on Ctrl+C
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		Run(interp, line, &ptermStderr{})
	}
}

// ptermStderr adapts pterm's colored error printer to the io.Writer Run
// expects, so interactive diagnostics come out styled while file-mode
// diagnostics (driven straight from cmd/loxwalk) stay byte-for-byte plain.
type ptermStderr struct{}

func (ptermStderr) Write(p []byte) (int, error) {
	pterm.Error.Println(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// RunSource runs one full program (a whole file's contents) against a fresh
// interpreter and reports diagnostics in plain, unstyled form to stderr.
func RunSource(source string, stdout, stderr io.Writer) Outcome {
	interp := interpreter.New(stdout)
	return Run(interp, source, stderr)
}
