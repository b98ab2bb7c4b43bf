// Package resolver implements a static scope-analysis pass: a single
// pre-execution walk over the parsed statements that annotates every
// Variable/Assign/This/Super node with its lexical depth and rejects
// malformed return/this/super/self-inheritance/shadowing constructs. Its
// shape matches the other struct-with-accumulated-errors passes in this
// module (parser, scanner).
package resolver

import (
	"github.com/emirpasic/gods/stacks/linkedliststack"
	"github.com/npillmayer/schuko/tracing"

	"github.com/aromano272/loxwalk/ast"
	"github.com/aromano272/loxwalk/internal/diagnostic"
	"github.com/aromano272/loxwalk/token"
)

func tracer() tracing.Trace {
	return tracing.Select("loxwalk.resolver")
}

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classBase
	classSubclass
)

// Resolver walks a parsed program exactly once, writing depth annotations
// back onto the AST nodes it visits.
type Resolver struct {
	// scopes is a stack of block scopes; each scope maps a name to whether
	// it has finished being defined. The global scope is never pushed here;
	// the stack is empty at the top level.
	scopes *linkedliststack.Stack

	currentFunction functionKind
	currentClass    classKind

	errors []*diagnostic.ResolveError
}

func New() *Resolver {
	return &Resolver{scopes: linkedliststack.New()}
}

// Resolve runs the pass over a whole program and returns every resolution
// error found. A non-empty result is fatal at the pipeline level.
func Resolve(stmts []ast.Stmt) []*diagnostic.ResolveError {
	r := New()
	r.resolveStmts(stmts)
	tracer().Debugf("resolved %d top-level statement(s), %d error(s)", len(stmts), len(r.errors))
	return r.errors
}

func (r *Resolver) error(tok token.Token, message string) {
	r.errors = append(r.errors, &diagnostic.ResolveError{Token: tok, Message: message})
}

func (r *Resolver) beginScope() {
	r.scopes.Push(make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes.Pop()
}

func (r *Resolver) peekScope() map[string]bool {
	top, ok := r.scopes.Peek()
	if !ok {
		return nil
	}
	return top.(map[string]bool)
}

func (r *Resolver) declare(name token.Token) {
	scope := r.peekScope()
	if scope == nil {
		return
	}
	if _, ok := scope[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	scope := r.peekScope()
	if scope == nil {
		return
	}
	scope[name.Lexeme] = true
}

// resolveLocal searches scopes from innermost outward; the first scope that
// declares name fixes setDepth at that scope's distance from the top. If no
// scope declares it, the annotation is left unset — a global lookup at
// runtime.
func (r *Resolver) resolveLocal(name token.Token, setDepth func(int)) {
	for i, raw := range r.scopes.Values() {
		scope := raw.(map[string]bool)
		if _, ok := scope[name.Lexeme]; ok {
			setDepth(i)
			return
		}
	}
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expression)
	case *ast.Print:
		r.resolveExpr(s.Expression)
	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.While:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)
	case *ast.Return:
		if r.currentFunction == fnNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Class:
		r.resolveClass(s)
	}
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveClass(s *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classBase
	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.error(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)
		r.beginScope()
		r.peekScope()["super"] = true
	}

	r.beginScope()
	r.peekScope()["this"] = true

	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope() // "this" scope
	if s.Superclass != nil {
		r.endScope() // "super" scope
	}
	r.currentClass = enclosingClass
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// no children
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Variable:
		if scope := r.peekScope(); scope != nil {
			if defined, ok := scope[e.Name.Lexeme]; ok && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e.Name, func(d int) { e.Depth = &d })
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.Name, func(d int) { e.Depth = &d })
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Object)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.This:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e.Keyword, func(d int) { e.Depth = &d })
	case *ast.Super:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != classSubclass {
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e.Keyword, func(d int) { e.Depth = &d })
	}
}
