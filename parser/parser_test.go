package parser

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/aromano272/loxwalk/ast"
	"github.com/aromano272/loxwalk/scanner"
)

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	toks, scanErrs := scanner.New(source).ScanTokens()
	if len(scanErrs) != 0 {
		t.Fatalf("scan errors: %v", scanErrs)
	}
	stmts, parseErrs := Parse(toks)
	if len(parseErrs) != 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	return stmts
}

func TestParseArithmeticPrecedence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "loxwalk.parser")
	defer teardown()

	stmts := parse(t, "1 + 2 * 3;")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	exprStmt, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", stmts[0])
	}
	binary, ok := exprStmt.Expression.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level Binary (the '+'), got %T", exprStmt.Expression)
	}
	if _, ok := binary.Right.(*ast.Binary); !ok {
		t.Fatalf("expected '2 * 3' to bind tighter, right side was %T", binary.Right)
	}
}

func TestParseVarDeclarationWithoutInitializer(t *testing.T) {
	stmts := parse(t, "var x;")
	v, ok := stmts[0].(*ast.Var)
	if !ok {
		t.Fatalf("expected Var, got %T", stmts[0])
	}
	if v.Initializer != nil {
		t.Fatalf("expected nil initializer, got %v", v.Initializer)
	}
}

func TestParseForDesugarsToWhile(t *testing.T) {
	stmts := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	outer, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected desugared for to wrap in a Block, got %T", stmts[0])
	}
	if len(outer.Statements) != 2 {
		t.Fatalf("expected initializer + while, got %d statements", len(outer.Statements))
	}
	if _, ok := outer.Statements[0].(*ast.Var); !ok {
		t.Fatalf("expected first statement to be the initializer Var, got %T", outer.Statements[0])
	}
	whileStmt, ok := outer.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("expected second statement to be a While, got %T", outer.Statements[1])
	}
	body, ok := whileStmt.Body.(*ast.Block)
	if !ok {
		t.Fatalf("expected while body to be a Block wrapping body+increment, got %T", whileStmt.Body)
	}
	if len(body.Statements) != 2 {
		t.Fatalf("expected body + increment, got %d statements", len(body.Statements))
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	stmts := parse(t, "class Cake < Pastry { bake() { print 1; } }")
	class, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("expected Class, got %T", stmts[0])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "Pastry" {
		t.Fatalf("expected superclass Pastry, got %v", class.Superclass)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name.Lexeme != "bake" {
		t.Fatalf("expected one method 'bake', got %v", class.Methods)
	}
}

func TestParseInvalidAssignmentTargetReportsWithoutPanicking(t *testing.T) {
	toks, _ := scanner.New("1 + 2 = 3;").ScanTokens()
	_, errs := Parse(toks)
	if len(errs) == 0 {
		t.Fatalf("expected an error for assigning to a non-lvalue")
	}
}

func TestParseSynchronizeRecoversAndParsesNextDeclaration(t *testing.T) {
	toks, _ := scanner.New("var ; var y = 2;").ScanTokens()
	stmts, errs := Parse(toks)
	if len(errs) == 0 {
		t.Fatalf("expected at least one parse error")
	}
	found := false
	for _, s := range stmts {
		if v, ok := s.(*ast.Var); ok && v.Name.Lexeme == "y" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected synchronize to recover and still parse 'var y = 2;', got %v", stmts)
	}
}
