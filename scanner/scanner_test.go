package scanner

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/aromano272/loxwalk/token"
)

func TestScanPunctuationAndOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "loxwalk.scanner")
	defer teardown()

	toks, errs := New("(){},.-+;*!= <= >= ==").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.BANG_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL, token.EQUAL_EQUAL,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("token count mismatch: got %d, want %d (%v)", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestScanStringAndNumberLiterals(t *testing.T) {
	toks, errs := New(`"hello" 3.14 42`).ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Type != token.STRING || toks[0].Literal != "hello" {
		t.Fatalf("string literal mismatch: %+v", toks[0])
	}
	if toks[1].Type != token.NUMBER || toks[1].Literal != 3.14 {
		t.Fatalf("float literal mismatch: %+v", toks[1])
	}
	if toks[2].Type != token.NUMBER || toks[2].Literal != float64(42) {
		t.Fatalf("int literal mismatch: %+v", toks[2])
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, errs := New("var x = orbit and class").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{token.VAR, token.IDENTIFIER, token.EQUAL, token.IDENTIFIER, token.AND, token.CLASS, token.EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestScanSkipsLineComments(t *testing.T) {
	toks, errs := New("1 // a comment\n2").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 3 { // NUMBER, NUMBER, EOF
		t.Fatalf("expected 3 tokens, got %d (%v)", len(toks), toks)
	}
	if toks[1].Line != 2 {
		t.Fatalf("expected second number on line 2, got line %d", toks[1].Line)
	}
}

func TestScanAccumulatesMultipleErrors(t *testing.T) {
	_, errs := New("@ 1 # 2").ScanTokens()
	if len(errs) != 2 {
		t.Fatalf("expected 2 scan errors, got %d: %v", len(errs), errs)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, errs := New(`"never closed`).ScanTokens()
	if len(errs) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(errs))
	}
}
