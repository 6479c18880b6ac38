package parser

import (
	"testing"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/token"
)

// exprOf unwraps a single expression-statement program down to its
// root Expr, failing the test if the shape doesn't match.
func exprOf(t *testing.T, source string) ast.Expr {
	t.Helper()
	stmts, err := parse(t, source)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", source, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	switch s := stmts[0].(type) {
	case *ast.Expression:
		return s.Expr
	case *ast.Print:
		return s.Expr
	default:
		t.Fatalf("expected an expression-bearing statement, got %T", stmts[0])
		return nil
	}
}

func TestUnaryBindsTighterThanFactor(t *testing.T) {
	// -a * b must parse as (-a) * b, not -(a * b).
	expr := exprOf(t, `-a * b;`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Operator.Kind != token.Star {
		t.Fatalf("expected top-level '*' binary, got %#v", expr)
	}
	if _, ok := bin.Left.(*ast.Unary); !ok {
		t.Errorf("expected left operand to be the unary '-a', got %T", bin.Left)
	}
}

func TestFactorBindsTighterThanTerm(t *testing.T) {
	// a + b * c must parse as a + (b * c).
	expr := exprOf(t, `a + b * c;`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Operator.Kind != token.Plus {
		t.Fatalf("expected top-level '+' binary, got %#v", expr)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Operator.Kind != token.Star {
		t.Errorf("expected right operand to be 'b * c', got %#v", bin.Right)
	}
}

func TestTermBindsTighterThanComparison(t *testing.T) {
	// a + b < c + d must parse as (a + b) < (c + d).
	expr := exprOf(t, `a + b < c + d;`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Operator.Kind != token.Less {
		t.Fatalf("expected top-level '<' binary, got %#v", expr)
	}
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Errorf("expected left operand to be 'a + b', got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Errorf("expected right operand to be 'c + d', got %T", bin.Right)
	}
}

func TestComparisonBindsTighterThanEquality(t *testing.T) {
	// a < b == c < d must parse as (a < b) == (c < d).
	expr := exprOf(t, `a < b == c < d;`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Operator.Kind != token.EqualEqual {
		t.Fatalf("expected top-level '==' binary, got %#v", expr)
	}
}

func TestEqualityBindsTighterThanLogicAnd(t *testing.T) {
	// a == b and c == d must parse as (a == b) and (c == d).
	expr := exprOf(t, `a == b and c == d;`)
	logical, ok := expr.(*ast.Logical)
	if !ok || logical.Operator.Kind != token.And {
		t.Fatalf("expected top-level 'and', got %#v", expr)
	}
	if _, ok := logical.Left.(*ast.Binary); !ok {
		t.Errorf("expected left operand to be the '==' comparison, got %T", logical.Left)
	}
}

func TestLogicAndBindsTighterThanLogicOr(t *testing.T) {
	// a or b and c must parse as a or (b and c).
	expr := exprOf(t, `a or b and c;`)
	logical, ok := expr.(*ast.Logical)
	if !ok || logical.Operator.Kind != token.Or {
		t.Fatalf("expected top-level 'or', got %#v", expr)
	}
	if right, ok := logical.Right.(*ast.Logical); !ok || right.Operator.Kind != token.And {
		t.Errorf("expected right operand to be 'b and c', got %#v", logical.Right)
	}
}

func TestLogicOrBindsLooserThanAssignment(t *testing.T) {
	// a = b or c must parse as a = (b or c), with '=' at the root.
	expr := exprOf(t, `a = b or c;`)
	assign, ok := expr.(*ast.Assign)
	if !ok {
		t.Fatalf("expected top-level *ast.Assign, got %#v", expr)
	}
	if _, ok := assign.Value.(*ast.Logical); !ok {
		t.Errorf("expected assignment value to be 'b or c', got %T", assign.Value)
	}
}

func TestCallBindsTighterThanUnary(t *testing.T) {
	// !f() must parse as !(f()), not (!f)().
	expr := exprOf(t, `!f();`)
	unary, ok := expr.(*ast.Unary)
	if !ok || unary.Operator.Kind != token.Bang {
		t.Fatalf("expected top-level unary '!', got %#v", expr)
	}
	if _, ok := unary.Right.(*ast.Call); !ok {
		t.Errorf("expected unary operand to be a call, got %T", unary.Right)
	}
}

func TestChainedCallsParseLeftToRight(t *testing.T) {
	// f()() must parse as Call{Callee: Call{Callee: f}}.
	expr := exprOf(t, `f()();`)
	outer, ok := expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %#v", expr)
	}
	if _, ok := outer.Callee.(*ast.Call); !ok {
		t.Errorf("expected callee to itself be a call, got %T", outer.Callee)
	}
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	// (a + b) * c must parse with '*' at the root.
	expr := exprOf(t, `(a + b) * c;`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Operator.Kind != token.Star {
		t.Fatalf("expected top-level '*' binary, got %#v", expr)
	}
	if _, ok := bin.Left.(*ast.Grouping); !ok {
		t.Errorf("expected left operand to be a grouping, got %T", bin.Left)
	}
}
