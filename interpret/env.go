package interpret

import (
	"fmt"

	"github.com/lox-lang/lox/ast"
)

// Environment holds a map of name-value bindings as well
// as a reference to an enclosing environment
type Environment struct {
	Enclosing *Environment
	values    map[string]interface{}
}

// Define stores a binding in this environment. Re-declaring
// a name silently overwrites the current frame's binding.
func (e *Environment) Define(name string, value interface{}) {
	if e.values == nil {
		e.values = make(map[string]interface{})
	}
	e.values[name] = value
}

// Get returns the value bound to the name in this environment or the
// nearest enclosing environment that defines it. If no environment in
// the chain defines the name, it returns a runtime error.
func (e *Environment) Get(name ast.Token) (interface{}, error) {
	if val, ok := e.values[name.Lexeme]; ok {
		return val, nil
	}
	if e.Enclosing != nil {
		return e.Enclosing.Get(name)
	}
	return nil, runtimeError{name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// Assign re-binds the name in the nearest environment that already defines
// it, walking outward from this one. Assignment never creates a binding: if
// no environment in the chain defines the name, it returns a runtime error.
func (e *Environment) Assign(name ast.Token, value interface{}) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.Enclosing != nil {
		return e.Enclosing.Assign(name, value)
	}
	return runtimeError{name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}
