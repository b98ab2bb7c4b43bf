// Package interpreter tree-walks the resolved AST, executing statements
// against a chain of value.Environments with closure capture. Dispatch is a
// switch on the node's concrete type; every expression and statement
// evaluates its children first and short-circuits on the first error.
// Statements and expressions are handled separately, since statements
// produce no value and expressions always do; functions, classes, and
// `return` are handled through mutable environments and a panic-based
// unwind rather than a single uniform eval-returns-a-value model.
package interpreter

import (
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/aromano272/loxwalk/ast"
	"github.com/aromano272/loxwalk/internal/diagnostic"
	"github.com/aromano272/loxwalk/token"
	"github.com/aromano272/loxwalk/value"
)

func tracer() tracing.Trace {
	return tracing.Select("loxwalk.interp")
}

// returnSignal is panicked by a Return statement and recovered by
// callFunction — control flow, not an error.
type returnSignal struct {
	value value.Value
}

// Interpreter holds the fixed global environment and the environment
// currently in scope.
type Interpreter struct {
	globals     *value.Environment
	environment *value.Environment
	stdout      io.Writer
}

func New(stdout io.Writer) *Interpreter {
	globals := value.NewEnvironment(nil)
	defineNatives(globals)
	return &Interpreter{globals: globals, environment: globals, stdout: stdout}
}

// Interpret executes a resolved program top to bottom, stopping at the
// first runtime error and aborting execution of the remaining statements.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := i.execute(stmt); err != nil {
			tracer().Errorf("runtime error: %v", err)
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evaluate(s.Expression)
		return err

	case *ast.Print:
		v, err := i.evaluate(s.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, value.Stringify(v))
		return nil

	case *ast.Var:
		var v value.Value
		if s.Initializer != nil {
			var err error
			v, err = i.evaluate(s.Initializer)
			if err != nil {
				return err
			}
		}
		i.environment.Define(s.Name.Lexeme, v)
		return nil

	case *ast.Block:
		return i.executeBlock(s.Statements, value.NewEnvironment(i.environment))

	case *ast.If:
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if value.IsTruthy(cond) {
			return i.execute(s.Then)
		} else if s.Else != nil {
			return i.execute(s.Else)
		}
		return nil

	case *ast.While:
		for {
			cond, err := i.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !value.IsTruthy(cond) {
				return nil
			}
			if err := i.execute(s.Body); err != nil {
				return err
			}
		}

	case *ast.Function:
		fn := &value.Function{Declaration: s, Closure: i.environment}
		i.environment.Define(s.Name.Lexeme, fn)
		return nil

	case *ast.Return:
		var v value.Value
		if s.Value != nil {
			var err error
			v, err = i.evaluate(s.Value)
			if err != nil {
				return err
			}
		}
		panic(returnSignal{value: v})

	case *ast.Class:
		return i.executeClass(s)
	}
	return nil
}

// executeBlock runs stmts in a fresh child environment and restores the
// previous environment on every exit path — normal return, a return-unwind
// panic, or an error — via defer.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *value.Environment) (err error) {
	previous := i.environment
	i.environment = env
	defer func() { i.environment = previous }()

	for _, stmt := range stmts {
		if err = i.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeClass(s *ast.Class) error {
	var superclass *value.Class
	if s.Superclass != nil {
		superVal, err := i.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := superVal.(*value.Class)
		if !ok {
			return &diagnostic.RuntimeError{Token: s.Superclass.Name, Message: "Superclass must be a class."}
		}
		superclass = sc
	}

	i.environment.Define(s.Name.Lexeme, nil)

	methodEnv := i.environment
	if s.Superclass != nil {
		methodEnv = value.NewEnvironment(i.environment)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*value.Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &value.Function{
			Declaration:   m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &value.Class{Name: s.Name.Lexeme, Methods: methods, Superclass: superclass}
	return i.environment.Assign(s.Name, class)
}

// callFunction runs fn's body in a fresh child of its closure, catching a
// return-unwind and applying the initializer special case: an init method
// always returns the instance it initialized, ignoring any explicit return.
func (i *Interpreter) callFunction(fn *value.Function, args []value.Value) (result value.Value, err error) {
	env := value.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[idx])
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				if rs, ok := r.(returnSignal); ok {
					result = rs.value
					return
				}
				panic(r)
			}
		}()
		err = i.executeBlock(fn.Declaration.Body, env)
	}()
	if err != nil {
		return nil, err
	}

	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this"), nil
	}
	return result, nil
}

func (i *Interpreter) instantiate(class *value.Class, args []value.Value) (value.Value, error) {
	instance := value.NewInstance(class)
	if init, ok := class.FindMethod("init"); ok {
		if _, err := i.callFunction(value.Bind(init, instance), args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (i *Interpreter) evaluate(expr ast.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Grouping:
		return i.evaluate(e.Expression)

	case *ast.Unary:
		return i.evalUnary(e)

	case *ast.Binary:
		return i.evalBinary(e)

	case *ast.Logical:
		return i.evalLogical(e)

	case *ast.Variable:
		if e.Depth != nil {
			return i.environment.GetAt(*e.Depth, e.Name.Lexeme), nil
		}
		return i.globals.Get(e.Name)

	case *ast.Assign:
		v, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if e.Depth != nil {
			i.environment.AssignAt(*e.Depth, e.Name, v)
		} else if err := i.globals.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Call:
		return i.evalCall(e)

	case *ast.Get:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*value.Instance)
		if !ok {
			return nil, &diagnostic.RuntimeError{Token: e.Name, Message: "Only instances have properties."}
		}
		return inst.Get(e.Name)

	case *ast.Set:
		obj, err := i.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*value.Instance)
		if !ok {
			return nil, &diagnostic.RuntimeError{Token: e.Name, Message: "Only instances have fields."}
		}
		v, err := i.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name, v)
		return v, nil

	case *ast.This:
		return i.environment.GetAt(*e.Depth, "this"), nil

	case *ast.Super:
		return i.evalSuper(e)
	}
	return nil, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary) (value.Value, error) {
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.MINUS:
		num, ok := right.(float64)
		if !ok {
			return nil, &diagnostic.RuntimeError{Token: e.Operator, Message: "Operand must be a number."}
		}
		return -num, nil
	case token.BANG:
		return !value.IsTruthy(right), nil
	}
	return nil, &diagnostic.RuntimeError{Token: e.Operator, Message: "Unknown unary operator."}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (value.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.MINUS:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a - b })
	case token.SLASH:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a / b })
	case token.STAR:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a * b })
	case token.PLUS:
		return i.evalPlus(e.Operator, left, right)
	case token.GREATER:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a > b })
	case token.GREATER_EQUAL:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a >= b })
	case token.LESS:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a < b })
	case token.LESS_EQUAL:
		return numberOp(e.Operator, left, right, func(a, b float64) value.Value { return a <= b })
	case token.BANG_EQUAL:
		return !value.Equals(left, right), nil
	case token.EQUAL_EQUAL:
		return value.Equals(left, right), nil
	}
	return nil, &diagnostic.RuntimeError{Token: e.Operator, Message: "Unknown binary operator."}
}

func (i *Interpreter) evalPlus(op token.Token, left, right value.Value) (value.Value, error) {
	if lf, ok := left.(float64); ok {
		if rf, ok := right.(float64); ok {
			return lf + rf, nil
		}
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return ls + rs, nil
		}
	}
	return nil, &diagnostic.RuntimeError{Token: op, Message: "Operands must be two numbers or two strings."}
}

// numberOp implements the "* / - < <= > >=" family: both operands must be
// numbers, else a runtime error naming the offending token.
func numberOp(op token.Token, left, right value.Value, f func(a, b float64) value.Value) (value.Value, error) {
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return nil, &diagnostic.RuntimeError{Token: op, Message: "Operands must be numbers."}
	}
	return f(lf, rf), nil
}

func (i *Interpreter) evalLogical(e *ast.Logical) (value.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Operator.Type == token.OR {
		if value.IsTruthy(left) {
			return left, nil
		}
	} else {
		if !value.IsTruthy(left) {
			return left, nil
		}
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evalCall(e *ast.Call) (value.Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		av, err := i.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, av)
	}

	callable, ok := callee.(value.Callable)
	if !ok {
		return nil, &diagnostic.RuntimeError{Token: e.Paren, Message: "Can only call functions and classes."}
	}
	if len(args) != callable.Arity() {
		return nil, &diagnostic.RuntimeError{
			Token:   e.Paren,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", callable.Arity(), len(args)),
		}
	}

	switch fn := callee.(type) {
	case *value.Function:
		return i.callFunction(fn, args)
	case *value.NativeFunction:
		return fn.Fn(args)
	case *value.Class:
		return i.instantiate(fn, args)
	default:
		return nil, &diagnostic.RuntimeError{Token: e.Paren, Message: "Can only call functions and classes."}
	}
}

// evalSuper reads super at its resolved depth and this one level closer to
// the current environment, relying on the resolver's invariant that super
// always resolves at this.depth+1.
func (i *Interpreter) evalSuper(e *ast.Super) (value.Value, error) {
	depth := *e.Depth
	superclass := i.environment.GetAt(depth, "super").(*value.Class)
	instance := i.environment.GetAt(depth-1, "this").(*value.Instance)

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, &diagnostic.RuntimeError{Token: e.Method, Message: "Undefined property '" + e.Method.Lexeme + "'."}
	}
	return value.Bind(method, instance), nil
}
