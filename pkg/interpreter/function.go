package interpreter

import (
	"fmt"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/environment"
	"github.com/kristofer/lox/pkg/token"
)

// Function is a user-defined, first-class closure: a `fun` declaration
// paired with the environment active at the point it executed (spec
// §3, §4.4 "Function"). It is immutable after construction.
type Function struct {
	name    string
	params  []token.Token
	body    []ast.Stmt
	closure *environment.Environment
}

// NewFunction constructs a Function, capturing closure as its defining
// scope.
func NewFunction(decl *ast.Function, closure *environment.Environment) *Function {
	return &Function{name: decl.Name.Lexeme, params: decl.Params, body: decl.Body, closure: closure}
}

// Arity is the number of declared parameters.
func (f *Function) Arity() int { return len(f.params) }

// String is the implementation-defined Callable tag (spec §6).
func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.name) }

// NativeFunction wraps a host-provided function (spec §4.5): a name,
// an arity, and an implementation that receives the interpreter
// handle and the evaluated argument list.
type NativeFunction struct {
	Name   string
	ArityN int
	Impl   func(interp *Interpreter, args []token.Value) (token.Value, error)
}

// Arity is the native function's declared argument count.
func (n *NativeFunction) Arity() int { return n.ArityN }

// String is the implementation-defined Callable tag (spec §6).
func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// call dispatches a call expression's already-evaluated callee and
// arguments to either a user Function or a NativeFunction (spec
// §4.4 "Call semantics").
func (i *Interpreter) call(callee token.Value, paren token.Token, args []token.Value) (token.Value, error) {
	if callee.Kind != token.KindCallable {
		return token.Nil, runtimeError(paren, "Can only call functions and classes.")
	}

	switch fn := callee.Callable.(type) {
	case *Function:
		if len(args) != fn.Arity() {
			return token.Nil, arityError(paren, fn.Arity(), len(args))
		}
		return i.callFunction(fn, args)
	case *NativeFunction:
		if len(args) != fn.Arity() {
			return token.Nil, arityError(paren, fn.Arity(), len(args))
		}
		return fn.Impl(i, args)
	default:
		return token.Nil, runtimeError(paren, "Can only call functions and classes.")
	}
}

func arityError(paren token.Token, want, got int) *RuntimeError {
	return runtimeError(paren, fmt.Sprintf("Expected %d arguments but got %d.", want, got))
}

// callFunction invokes a user Function: a new scope enclosing its
// captured closure, parameters bound to the evaluated arguments, the
// body executed in that scope, and a Return signal (if any) converted
// into the call's result. The pre-call environment is restored on
// every exit path — normal completion, a Return signal, or a
// propagating error — per spec §4.6's call-frame state machine.
func (i *Interpreter) callFunction(fn *Function, args []token.Value) (token.Value, error) {
	callEnv := environment.NewChild(fn.closure)
	for idx, param := range fn.params {
		callEnv.Define(param.Lexeme, args[idx])
	}

	previous := i.env
	i.env = callEnv
	i.frames = append(i.frames, Frame{Name: fn.name})
	defer func() {
		i.env = previous
		i.frames = i.frames[:len(i.frames)-1]
	}()

	for _, stmt := range fn.body {
		if err := i.execute(stmt); err != nil {
			if rs, ok := asReturn(err); ok {
				return rs.Value, nil
			}
			return token.Nil, err
		}
	}
	return token.Nil, nil
}
