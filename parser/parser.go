// Package parser is a recursive-descent, panic-mode-recovering parser for
// Lox. A struct holds the token stream and a current cursor; an Errors()
// accessor exposes every diagnostic collected along the way; an expect-style
// helper consumes mandatory tokens or panics. Precedence is climbed through
// an explicit chain of grammar functions (one per precedence level) rather
// than a Pratt-style prefix/infix table.
package parser

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/aromano272/loxwalk/ast"
	"github.com/aromano272/loxwalk/internal/diagnostic"
	"github.com/aromano272/loxwalk/token"
)

func tracer() tracing.Trace {
	return tracing.Select("loxwalk.parser")
}

const maxArgs = 255

// parseError unwinds the current declaration back to Parse's synchronise
// point. It is always also recorded in Parser.errors before being raised,
// so recovering from it never loses the diagnostic.
type parseError struct {
	tok     token.Token
	message string
}

func (e parseError) Error() string { return e.message }

type Parser struct {
	tokens  []token.Token
	current int
	errors  []*diagnostic.ParseError
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes every token and returns the statements it produced plus
// every parse error found along the way. Synchronise-and-resume recovery
// lets more than one error surface per run, even though callers generally
// treat the first one as fatal.
func Parse(tokens []token.Token) ([]ast.Stmt, []*diagnostic.ParseError) {
	p := New(tokens)
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declarationRecover(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	tracer().Debugf("parsed %d statement(s), %d error(s)", len(stmts), len(p.errors))
	return stmts, p.errors
}

func (p *Parser) Errors() []*diagnostic.ParseError { return p.errors }

// declarationRecover calls declaration and, if it panicked with a
// parseError, synchronises and reports no statement for this round.
func (p *Parser) declarationRecover() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); ok {
				p.synchronize()
				stmt = nil
				return
			}
			panic(r)
		}
	}()
	return p.declaration()
}

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.VAR):
		return p.varDeclaration()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.CLASS):
		return p.classDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.expect(token.IDENTIFIER, "Expect variable name.")
	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.expect(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: init}
}

func (p *Parser) function(kind string) *ast.Function {
	name := p.expect(token.IDENTIFIER, "Expect "+kind+" name.")
	p.expect(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")
	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.reportError(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.expect(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.expect(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.block()
	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) classDeclaration() ast.Stmt {
	name := p.expect(token.IDENTIFIER, "Expect class name.")
	var superclass *ast.Variable
	if p.match(token.LESS) {
		superName := p.expect(token.IDENTIFIER, "Expect superclass name.")
		superclass = &ast.Variable{Name: superName}
	}
	p.expect(token.LEFT_BRACE, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		methods = append(methods, p.function("method"))
	}
	p.expect(token.RIGHT_BRACE, "Expect '}' after class body.")
	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Statements: p.block()}
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) printStatement() ast.Stmt {
	value := p.expression()
	p.expect(token.SEMICOLON, "Expect ';' after value.")
	return &ast.Print{Expression: value}
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.expect(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.ExprStmt{Expression: expr}
}

func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

func (p *Parser) ifStatement() ast.Stmt {
	p.expect(token.LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.expect(token.RIGHT_PAREN, "Expect ')' after if condition.")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.If{Condition: cond, Then: then, Else: els}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.expect(token.LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.expect(token.RIGHT_PAREN, "Expect ')' after condition.")
	body := p.statement()
	return &ast.While{Condition: cond, Body: body}
}

// forStatement desugars into a while loop: the increment is appended to the
// body, the condition defaults to true when omitted, and the initializer
// wraps the whole thing in an outer block so its binding stays scoped to the
// loop.
func (p *Parser) forStatement() ast.Stmt {
	p.expect(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.expect(token.SEMICOLON, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		incr = p.expression()
	}
	p.expect(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if incr != nil {
		body = &ast.Block{Statements: []ast.Stmt{body, &ast.ExprStmt{Expression: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	body = &ast.While{Condition: cond, Body: body}

	if init != nil {
		body = &ast.Block{Statements: []ast.Stmt{init, body}}
	}
	return body
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.expect(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

// --- expressions, lowest precedence first --------------------------------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses the left side as an ordinary expression first; if a '='
// follows, the already-parsed left side must be a Variable or a Get —
// anything else is a parse error, not a panic, since the rest of the
// expression was already validly parsed.
func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.reportError(equals, "Cannot assign to this left side of equals")
			return expr
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.MINUS, token.PLUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.SLASH, token.STAR) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.expect(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.reportError(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.expect(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Value: false}
	case p.match(token.TRUE):
		return &ast.Literal{Value: true}
	case p.match(token.NIL):
		return &ast.Literal{Value: nil}
	case p.match(token.NUMBER):
		return &ast.Literal{Value: p.previous().Literal.(float64)}
	case p.match(token.STRING):
		return &ast.Literal{Value: p.previous().Literal.(string)}
	case p.match(token.THIS):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.SUPER):
		keyword := p.previous()
		p.expect(token.DOT, "Expect '.' after 'super'.")
		method := p.expect(token.IDENTIFIER, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.expect(token.RIGHT_PAREN, "Expect ')' after expression.")
		return &ast.Grouping{Expression: expr}
	}
	panic(p.error(p.peek(), "Expect expression."))
}

// --- token-stream helpers -------------------------------------------------

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

// expect consumes the current token if it matches t, else raises a
// parseError that unwinds to the nearest declarationRecover.
func (p *Parser) expect(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.error(p.peek(), message))
}

func (p *Parser) error(tok token.Token, message string) parseError {
	p.reportError(tok, message)
	return parseError{tok: tok, message: message}
}

func (p *Parser) reportError(tok token.Token, message string) {
	p.errors = append(p.errors, &diagnostic.ParseError{Token: tok, Message: message})
}

// synchronize discards tokens until it finds a likely statement boundary: a
// ';' just consumed, or the next token starts a new declaration/statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
