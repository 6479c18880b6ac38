// Package interpreter implements the tree-walking evaluator: the
// final stage of the source -> Scanner -> Parser -> Evaluator
// pipeline. It executes statements sequentially and evaluates
// expressions bottom-up over a lexically-nested Environment chain
// (spec §4.4).
package interpreter

import (
	"fmt"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/environment"
	"github.com/kristofer/lox/pkg/token"
)

// Interpreter holds the mutable state of one evaluation session: the
// root (global) environment and the environment currently active.
// Both a file run and a REPL session reuse the same Interpreter across
// top-level statements, so `var`/`fun` declarations persist.
type Interpreter struct {
	globals *environment.Environment
	env     *environment.Environment

	// Print is where `print` statements write their output. New sets
	// it to write each line to standard output with fmt.Println;
	// callers may replace it to capture output elsewhere.
	Print func(line string)

	// BeforeStatement, when non-nil, is invoked immediately before
	// every statement executes, naming the source line reached and
	// the scope active at that point. A debugger (see pkg/debug) uses
	// this as its sole instrumentation hook rather than threading
	// breakpoint checks through every statement case.
	BeforeStatement func(line int, env *environment.Environment)

	frames []Frame
}

// Frame describes one live user-function call, innermost last.
type Frame struct {
	Name string
	Line int
}

// CallStack returns the current call frames, innermost last. It is
// empty at top level.
func (i *Interpreter) CallStack() []Frame {
	return append([]Frame(nil), i.frames...)
}

// Env returns the environment currently active, the scope a debugger
// or REPL introspection command should read bindings from.
func (i *Interpreter) Env() *environment.Environment { return i.env }

// New creates an Interpreter with an empty global scope. Native
// bindings are installed separately (see pkg/natives) so this package
// has no dependency on any particular host-extension set.
func New() *Interpreter {
	globals := environment.New()
	return &Interpreter{
		globals: globals,
		env:     globals,
		Print:   func(line string) { fmt.Println(line) },
	}
}

// Globals returns the root environment, the scope native bindings are
// installed into.
func (i *Interpreter) Globals() *environment.Environment { return i.globals }

// Interpret executes a full program (a sequence of top-level
// statements), stopping at the first RuntimeError. The parser rejects
// `return` outside a function body, so a returnSignal should never
// reach this boundary; if one does, it is treated like any other
// propagating error rather than silently swallowed.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := i.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(stmt ast.Stmt) error {
	if i.BeforeStatement != nil {
		i.BeforeStatement(stmtLine(stmt), i.env)
	}
	switch s := stmt.(type) {
	case *ast.Block:
		return i.executeBlock(s.Stmts, environment.NewChild(i.env))
	case *ast.Expression:
		_, err := i.evaluate(s.Expr)
		return err
	case *ast.Function:
		fn := NewFunction(s, i.env)
		i.env.Define(s.Name.Lexeme, token.Call(fn))
		return nil
	case *ast.If:
		cond, err := i.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return i.execute(s.Then)
		} else if s.Else != nil {
			return i.execute(s.Else)
		}
		return nil
	case *ast.Print:
		v, err := i.evaluate(s.Expr)
		if err != nil {
			return err
		}
		i.Print(v.String())
		return nil
	case *ast.Return:
		value := token.Nil
		if s.Value != nil {
			v, err := i.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return &returnSignal{Value: value}
	case *ast.Var:
		value := token.Nil
		if s.Init != nil {
			v, err := i.evaluate(s.Init)
			if err != nil {
				return err
			}
			value = v
		}
		i.env.Define(s.Name.Lexeme, value)
		return nil
	case *ast.While:
		for {
			cond, err := i.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				return nil
			}
			if err := i.execute(s.Body); err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement type %T", stmt))
	}
}

// stmtLine finds a representative source line for a statement, for
// the debugger's line-oriented breakpoints. Compound statements
// (Block, If, While) have no token of their own: If and While take
// the line of their condition expression, and a Block takes the line
// of its first statement (0 when the block is empty).
func stmtLine(stmt ast.Stmt) int {
	switch s := stmt.(type) {
	case *ast.Var:
		return s.Name.Line
	case *ast.Function:
		return s.Name.Line
	case *ast.Return:
		return s.Keyword.Line
	case *ast.Print:
		return exprLine(s.Expr)
	case *ast.Expression:
		return exprLine(s.Expr)
	case *ast.While:
		return exprLine(s.Condition)
	case *ast.If:
		return exprLine(s.Condition)
	case *ast.Block:
		if len(s.Stmts) > 0 {
			return stmtLine(s.Stmts[0])
		}
		return 0
	default:
		return 0
	}
}

func exprLine(expr ast.Expr) int {
	switch e := expr.(type) {
	case *ast.Assign:
		return e.Name.Line
	case *ast.Binary:
		return e.Operator.Line
	case *ast.Call:
		return e.Paren.Line
	case *ast.Grouping:
		return exprLine(e.Inner)
	case *ast.Logical:
		return e.Operator.Line
	case *ast.Unary:
		return e.Operator.Line
	case *ast.Variable:
		return e.Name.Line
	default:
		return 0
	}
}

// executeBlock runs stmts in blockEnv, restoring the pre-block
// environment on every exit path (spec §4.3 "Scope entry/exit").
func (i *Interpreter) executeBlock(stmts []ast.Stmt, blockEnv *environment.Environment) error {
	previous := i.env
	i.env = blockEnv
	defer func() { i.env = previous }()

	for _, stmt := range stmts {
		if err := i.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluate(expr ast.Expr) (token.Value, error) {
	switch e := expr.(type) {
	case *ast.Assign:
		value, err := i.evaluate(e.Value)
		if err != nil {
			return token.Nil, err
		}
		if err := i.env.Assign(e.Name, value); err != nil {
			return token.Nil, runtimeError(e.Name, err.Error())
		}
		return value, nil

	case *ast.Binary:
		return i.evaluateBinary(e)

	case *ast.Call:
		callee, err := i.evaluate(e.Callee)
		if err != nil {
			return token.Nil, err
		}
		args := make([]token.Value, len(e.Args))
		for idx, a := range e.Args {
			v, err := i.evaluate(a)
			if err != nil {
				return token.Nil, err
			}
			args[idx] = v
		}
		return i.call(callee, e.Paren, args)

	case *ast.Grouping:
		return i.evaluate(e.Inner)

	case *ast.Literal:
		return e.Value, nil

	case *ast.Logical:
		left, err := i.evaluate(e.Left)
		if err != nil {
			return token.Nil, err
		}
		if e.Operator.Kind == token.Or {
			if left.Truthy() {
				return left, nil
			}
		} else {
			if !left.Truthy() {
				return left, nil
			}
		}
		return i.evaluate(e.Right)

	case *ast.Unary:
		right, err := i.evaluate(e.Right)
		if err != nil {
			return token.Nil, err
		}
		switch e.Operator.Kind {
		case token.Minus:
			if right.Kind != token.KindNumber {
				return token.Nil, runtimeError(e.Operator, "Operand must be a number.")
			}
			return token.Num(-right.Number), nil
		case token.Bang:
			return token.Bool(!right.Truthy()), nil
		default:
			panic(fmt.Sprintf("interpreter: unhandled unary operator %s", e.Operator.Kind))
		}

	case *ast.Variable:
		v, err := i.env.Get(e.Name)
		if err != nil {
			return token.Nil, runtimeError(e.Name, err.Error())
		}
		return v, nil

	default:
		panic(fmt.Sprintf("interpreter: unhandled expression type %T", expr))
	}
}

func (i *Interpreter) evaluateBinary(e *ast.Binary) (token.Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return token.Nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return token.Nil, err
	}

	switch e.Operator.Kind {
	case token.Minus:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Num(a - b) })
	case token.Slash:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Num(a / b) })
	case token.Star:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Num(a * b) })
	case token.Greater:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Bool(a > b) })
	case token.GreaterEqual:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Bool(a >= b) })
	case token.Less:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Bool(a < b) })
	case token.LessEqual:
		return numberOp(e.Operator, left, right, func(a, b float64) token.Value { return token.Bool(a <= b) })
	case token.Plus:
		return evaluatePlus(e.Operator, left, right)
	case token.BangEqual:
		return token.Bool(!left.Equals(right)), nil
	case token.EqualEqual:
		return token.Bool(left.Equals(right)), nil
	default:
		panic(fmt.Sprintf("interpreter: unhandled binary operator %s", e.Operator.Kind))
	}
}

func numberOp(op token.Token, left, right token.Value, f func(a, b float64) token.Value) (token.Value, error) {
	if left.Kind != token.KindNumber || right.Kind != token.KindNumber {
		return token.Nil, runtimeError(op, "Operands must be numbers.")
	}
	return f(left.Number, right.Number), nil
}

func evaluatePlus(op token.Token, left, right token.Value) (token.Value, error) {
	if left.Kind == token.KindNumber && right.Kind == token.KindNumber {
		return token.Num(left.Number + right.Number), nil
	}
	if left.Kind == token.KindString && right.Kind == token.KindString {
		return token.Str(left.Str + right.Str), nil
	}
	return token.Nil, runtimeError(op, "Operands must be two numbers or two strings.")
}
