// Package environment implements the lexically-nested scope chain that
// variable lookup, assignment, and closures all share.
package environment

import (
	"fmt"

	"github.com/josharian/intern"
	"github.com/kristofer/lox/pkg/token"
)

// Environment is one node of the scope chain: a binding map plus a
// link to the enclosing scope. Environments are always handled by
// pointer, so sharing one node across several holders — a block's
// scope and every closure captured inside it — is just sharing a Go
// pointer. Go's garbage collector reclaims the reference cycles this
// produces (a closure's Closure field pointing at a scope whose
// values map in turn holds that same closure by name) on its own; see
// SPEC_FULL.md §14 and DESIGN.md for why that retires the
// Rc/arena-handle design question spec.md §9 poses for
// non-tracing-GC languages.
type Environment struct {
	values    map[string]token.Value
	enclosing *Environment
}

// New creates a root environment with no enclosing scope.
func New() *Environment {
	return &Environment{values: make(map[string]token.Value)}
}

// NewChild creates a new scope enclosed by parent.
func NewChild(parent *Environment) *Environment {
	return &Environment{values: make(map[string]token.Value), enclosing: parent}
}

// Define unconditionally binds name to value in this scope.
// Redefinition in the same scope silently overwrites, matching a
// bare `var` redeclaration.
func (e *Environment) Define(name string, value token.Value) {
	e.values[intern.String(name)] = value
}

// Bindings returns a copy of the names defined directly in this
// scope, excluding its enclosing scopes. Intended for introspection
// (see pkg/debug); callers must not assume any iteration order.
func (e *Environment) Bindings() map[string]token.Value {
	out := make(map[string]token.Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Enclosing returns the scope that encloses e, or nil at the root.
func (e *Environment) Enclosing() *Environment { return e.enclosing }

// RuntimeUndefinedError reports a read or assignment to a name that no
// scope in the chain defines. It is returned as a plain error; the
// interpreter package wraps it with source-location context to form a
// full RuntimeError.
type RuntimeUndefinedError struct {
	Name string
}

func (e *RuntimeUndefinedError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'.", e.Name)
}

// Get resolves name by searching this scope then every enclosing
// scope in turn.
func (e *Environment) Get(name token.Token) (token.Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return token.Nil, &RuntimeUndefinedError{Name: name.Lexeme}
}

// Assign updates an existing binding, searching this scope then its
// enclosing scopes, mutating in the scope that owns the binding
// rather than shadowing it in the current one.
func (e *Environment) Assign(name token.Token, value token.Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return &RuntimeUndefinedError{Name: name.Lexeme}
}
