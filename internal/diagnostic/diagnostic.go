// Package diagnostic collects the error taxonomy shared by every pass of the
// pipeline (scanner, parser, resolver, interpreter) and formats each error
// into the line-and-message text the CLI writes to stderr.
package diagnostic

import (
	"errors"
	"fmt"

	"github.com/aromano272/loxwalk/token"
)

// Sentinel categories. Use errors.Is against these to classify a failure
// without inspecting its concrete type.
var (
	ErrScan    = errors.New("scan error")
	ErrParse   = errors.New("parse error")
	ErrResolve = errors.New("resolve error")
	ErrRuntime = errors.New("runtime error")
)

// ScanError is a single lexical error. Scanning never aborts on one; the
// scanner accumulates a slice of these and returns them alongside the token
// list it managed to produce.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

func (e *ScanError) Unwrap() error { return ErrScan }

// ParseError carries the token the parser was looking at when it gave up on
// the current declaration.
type ParseError struct {
	Token   token.Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Token.Line, where(e.Token), e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ResolveError carries the token that failed a static scope check (a
// malformed return, a self-referencing initializer, this/super misuse, ...).
type ResolveError struct {
	Token   token.Token
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Token.Line, where(e.Token), e.Message)
}

func (e *ResolveError) Unwrap() error { return ErrResolve }

// RuntimeError aborts the interpreter and is reported as a bare message,
// without the "[line N] Error..." wrapper the static-error types use.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func (e *RuntimeError) Unwrap() error { return ErrRuntime }

func where(t token.Token) string {
	if t.Type == token.EOF {
		return " at end"
	}
	return " at '" + t.Lexeme + "'"
}
