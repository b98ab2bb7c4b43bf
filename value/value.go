// Package value defines the runtime value variants and the Environment that
// binds names to them. The value set is Nil/Boolean/Number/String/Function/
// Class/Instance/NativeFunction; the Environment is addressable both by name
// (dynamic lookup) and by (depth, name) so the resolver's static analysis
// can replace a name search up the environment chain with a fixed number of
// parent hops.
package value

import (
	"strconv"
	"strings"

	"github.com/aromano272/loxwalk/ast"
	"github.com/aromano272/loxwalk/internal/diagnostic"
	"github.com/aromano272/loxwalk/token"
)

// Value is a Lox runtime value. Nil is represented by Go's untyped nil,
// Boolean by bool, Number by float64, String by string; Function, Class,
// Instance, and NativeFunction are represented by the pointer types below.
// Go's own bool/float64/string already behave as a closed tagged union once
// stored in an interface, so no wrapper structs are needed for the scalar
// cases.
type Value = interface{}

// Callable is implemented by every value that can appear as the callee of a
// Call expression.
type Callable interface {
	Arity() int
}

// Function is a user-defined function or method. It captures the
// environment active at its declaration (Closure); IsInitializer marks it
// as a class's `init` method so the interpreter can special-case its return
// value (an initializer always returns the instance, regardless of what its
// body returns).
type Function struct {
	Declaration   *ast.Function
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Arity() int { return len(f.Declaration.Params) }

// Name returns the declared function name, used for display.
func (f *Function) Name() string { return f.Declaration.Name.Lexeme }

// Bind returns a copy of f whose closure is a fresh child environment
// defining "this" as instance — used on every Get that resolves to a method
// and on every Super method lookup.
func Bind(f *Function, instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// NativeFunction wraps a Go closure as a Lox-callable builtin, e.g. clock.
type NativeFunction struct {
	NameStr string
	ArityN  int
	Fn      func(args []Value) (Value, error)
}

func (n *NativeFunction) Arity() int { return n.ArityN }

// Class is a Lox class: a name, its own methods, and an optional
// superclass. Method lookup walks the superclass chain.
type Class struct {
	Name       string
	Methods    map[string]*Function
	Superclass *Class
}

func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// FindMethod looks up name on c, then on its superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Instance is a live object of some Class, with mutable per-instance fields.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

// Get looks up a field first, then a bound method.
func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m, ok := i.Class.FindMethod(name.Lexeme); ok {
		return Bind(m, i), nil
	}
	return nil, &diagnostic.RuntimeError{
		Token:   name,
		Message: "Undefined property '" + name.Lexeme + "'.",
	}
}

// Set stores a value in the instance's field map, overwriting any prior
// value.
func (i *Instance) Set(name token.Token, v Value) {
	i.Fields[name.Lexeme] = v
}

// Environment is a name→value map plus an optional parent, forming the tree
// of lexical scopes. Lookup by (depth, name) — GetAt/AssignAt — is what the
// resolver's static analysis makes possible; the dynamic Get/Assign pair
// below is used for names the resolver left unresolved, i.e. global
// references, where a nil depth means "look in the global environment", and
// by the interpreter to bind a class declaration's name to its class value.
type Environment struct {
	enclosing *Environment
	values    map[string]Value
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, values: make(map[string]Value)}
}

// Define binds name in this environment, overwriting any existing binding —
// Lox allows redeclaring a global or redefining a var in the same block at
// runtime; it's only the resolver that rejects same-scope redeclaration.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

func (e *Environment) Get(name token.Token) (Value, error) {
	if v, ok := e.values[name.Lexeme]; ok {
		return v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, &diagnostic.RuntimeError{
		Token:   name,
		Message: "Undefined variable '" + name.Lexeme + "'.",
	}
}

func (e *Environment) Assign(name token.Token, v Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = v
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, v)
	}
	return &diagnostic.RuntimeError{
		Token:   name,
		Message: "Undefined variable '" + name.Lexeme + "'.",
	}
}

// GetAt reads name from the environment depth levels above e.
func (e *Environment) GetAt(depth int, name string) Value {
	return e.ancestor(depth).values[name]
}

// AssignAt assigns name in the environment depth levels above e.
func (e *Environment) AssignAt(depth int, name token.Token, v Value) {
	e.ancestor(depth).values[name.Lexeme] = v
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		env = env.enclosing
	}
	return env
}

// IsTruthy implements Lox's truthiness rule: Nil and false are falsy,
// everything else is truthy.
func IsTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Equals implements Lox's == semantics: Nil equals only Nil, numbers/
// strings/booleans compare by value, everything else (functions, classes,
// instances) compares by identity.
func Equals(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return a == b
	}
}

// Stringify formats a value the way `print` writes it. The REPL does not
// echo expression values; it only shows what `print` writes.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		text := strconv.FormatFloat(val, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return text
	case string:
		return val
	case *Function:
		return "<fn " + val.Name() + ">"
	case *NativeFunction:
		return "<native fn " + val.NameStr + ">"
	case *Class:
		return "<class " + val.Name + ">"
	case *Instance:
		return "<instance of " + val.Class.Name + ">"
	default:
		return ""
	}
}

// TypeName names a value's runtime kind for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Function:
		return "function"
	case *NativeFunction:
		return "native function"
	case *Class:
		return "class"
	case *Instance:
		return "instance"
	default:
		return "value"
	}
}
