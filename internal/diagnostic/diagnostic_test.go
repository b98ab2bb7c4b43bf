package diagnostic

import (
	"errors"
	"testing"

	"github.com/aromano272/loxwalk/token"
)

func TestParseErrorFormatsWithLexemeLocation(t *testing.T) {
	err := &ParseError{
		Token:   token.New(token.SEMICOLON, ";", nil, 3),
		Message: "Expect expression.",
	}
	want := "[line 3] Error at ';': Expect expression."
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ParseError to unwrap to ErrParse")
	}
}

func TestParseErrorFormatsAtEndOfInput(t *testing.T) {
	err := &ParseError{
		Token:   token.New(token.EOF, "", nil, 1),
		Message: "Expect '}' after block.",
	}
	want := "[line 1] Error at end: Expect '}' after block."
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRuntimeErrorHasNoLinePrefix(t *testing.T) {
	err := &RuntimeError{
		Token:   token.New(token.PLUS, "+", nil, 1),
		Message: "Operands must be two numbers or two strings.",
	}
	if got := err.Error(); got != "Operands must be two numbers or two strings." {
		t.Fatalf("got %q, want a bare message with no [line N] prefix", got)
	}
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected RuntimeError to unwrap to ErrRuntime")
	}
}
