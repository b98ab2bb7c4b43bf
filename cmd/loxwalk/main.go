// Command loxwalk sequences scanner → parser → resolver → interpreter and
// maps pipeline failures to process exit codes. It exposes a flag-parsed
// trace level, a pterm welcome banner, and a readline-backed interactive
// mode.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"

	"github.com/aromano272/loxwalk/repl"
)

const (
	exitOK      = 0
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
)

func tracer() tracing.Trace {
	return tracing.Select("loxwalk")
}

// initDisplay styles pterm's info/error prefixes used for CLI output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " loxwalk ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " error ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()

	fs := flag.NewFlagSet("loxwalk", flag.ContinueOnError)
	traceLevel := fs.String("trace", "Error", "Trace level [Debug|Info|Error]")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*traceLevel))

	rest := fs.Args()
	switch len(rest) {
	case 0:
		pterm.Info.Println("loxwalk — a tree-walking Lox interpreter")
		if err := repl.StartInteractive(os.Stdout); err != nil {
			tracer().Errorf("repl: %v", err)
			return exitRuntime
		}
		return exitOK

	case 1:
		return runFile(rest[0])

	default:
		fmt.Println("Usage: loxwalk [script]")
		return exitUsage
	}
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	switch repl.RunSource(string(source), os.Stdout, os.Stderr) {
	case repl.StaticError:
		return exitStatic
	case repl.RuntimeErr:
		return exitRuntime
	default:
		return exitOK
	}
}
