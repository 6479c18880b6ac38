// Package natives installs the host-provided native function bindings
// (spec §4.5) into an interpreter's global scope: the mandatory
// `clock`, plus the supplemented `str`, `type`, and `len` bindings
// (SPEC_FULL.md §12).
package natives

import (
	"time"

	"github.com/kristofer/lox/pkg/interpreter"
	"github.com/kristofer/lox/pkg/token"
)

// Install registers every native binding into interp's global scope.
func Install(interp *interpreter.Interpreter) {
	globals := interp.Globals()
	for _, fn := range all() {
		globals.Define(fn.Name, token.Call(fn))
	}
}

func all() []*interpreter.NativeFunction {
	return []*interpreter.NativeFunction{
		clockFn(),
		strFn(),
		typeFn(),
		lenFn(),
	}
}

// clockFn is the canonical example of the host-extension interface
// (spec §4.5): arity 0, returns seconds since the Unix epoch as a
// Number with sub-second precision.
func clockFn() *interpreter.NativeFunction {
	return &interpreter.NativeFunction{
		Name:   "clock",
		ArityN: 0,
		Impl: func(_ *interpreter.Interpreter, _ []token.Value) (token.Value, error) {
			return token.Num(float64(time.Now().UnixNano()) / 1e9), nil
		},
	}
}

// strFn converts any Value to its print representation (spec §6
// formatting rules), as a String.
func strFn() *interpreter.NativeFunction {
	return &interpreter.NativeFunction{
		Name:   "str",
		ArityN: 1,
		Impl: func(_ *interpreter.Interpreter, args []token.Value) (token.Value, error) {
			return token.Str(args[0].String()), nil
		},
	}
}

// typeFn returns the name of a Value's runtime kind, useful for
// diagnosing dynamic-typing errors interactively from a REPL.
func typeFn() *interpreter.NativeFunction {
	return &interpreter.NativeFunction{
		Name:   "type",
		ArityN: 1,
		Impl: func(_ *interpreter.Interpreter, args []token.Value) (token.Value, error) {
			switch args[0].Kind {
			case token.KindNil:
				return token.Str("nil"), nil
			case token.KindBool:
				return token.Str("boolean"), nil
			case token.KindNumber:
				return token.Str("number"), nil
			case token.KindString:
				return token.Str("string"), nil
			case token.KindCallable:
				return token.Str("function"), nil
			default:
				return token.Str("unknown"), nil
			}
		},
	}
}

// lenFn returns a String value's length in runes as a Number. Any
// other argument kind is a RuntimeError, since the language has no
// other sized value.
func lenFn() *interpreter.NativeFunction {
	return &interpreter.NativeFunction{
		Name:   "len",
		ArityN: 1,
		Impl: func(_ *interpreter.Interpreter, args []token.Value) (token.Value, error) {
			if args[0].Kind != token.KindString {
				return token.Nil, interpreter.NativeError("len: argument must be a string.")
			}
			return token.Num(float64(len([]rune(args[0].Str)))), nil
		},
	}
}
