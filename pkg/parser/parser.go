// Package parser implements the language's recursive-descent,
// Pratt-style parser: it converts a token stream into an AST,
// desugars `for` loops at parse time, and accumulates syntax errors
// across the whole input rather than stopping at the first one.
//
// Parser Architecture:
//
// The parser holds a single forward cursor over the token slice and
// one rule-function per grammar production, each calling down into
// the next tighter-binding rule. Binary/logical operator rules are
// left-associative precedence climbs; `assignment` is the one
// right-associative rule, implemented by parsing the left-hand side
// as an ordinary expression and only then checking whether it was a
// valid assignment target.
//
// Error Handling:
//
// Parser errors are accumulated via github.com/hashicorp/go-multierror
// rather than returned on the first failure, so a single call to
// Parse reports every statement-level syntax error found in one pass
// (spec §4.2 "Error recovery"). After a ParserError the parser enters
// synchronize mode, discarding tokens until a likely statement
// boundary, then resumes at the top of declaration.
package parser

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/token"
)

// errorFormat renders an accumulated multierror as one ParserError
// line per error (spec §4.2: "Recovered input yields ParserErrors
// reported individually"), rather than go-multierror's default
// "N errors occurred:" wrapper.
func errorFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

const maxArgs = 255

// Error is a single syntax error (spec §6 "ParserError"), formatted
// either "[line L] Error at end: <msg>" or "[line L] Error at
// '<lexeme>': <msg>" depending on whether the offending token was Eof.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Kind == token.Eof {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

// Parser holds the token slice, a single forward cursor into it, and
// the function-nesting depth (used only to resolve the top-level
// `return` Open Question — spec §9). errs accumulates diagnostics
// that must not interrupt the current parse (the arity-limit checks
// in function/finishCall): unlike a returned error, pushing onto errs
// doesn't unwind the call stack into Parse's synchronize path, so
// parsing continues past the 256th parameter or argument.
type Parser struct {
	tokens  []token.Token
	current int
	fnDepth int
	errs    []error
}

// New constructs a Parser over a complete token stream (normally the
// output of a Scanner, always ending in Eof).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the parser to completion, returning every top-level
// statement. If any ParserError occurred, no AST is returned (spec
// §4.2): the return value is nil and err is the accumulated
// *multierror.Error joining every ParserError found.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	var errs *multierror.Error

	for !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			errs = multierror.Append(errs, err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}

	errs = multierror.Append(errs, p.errs...)

	if errs.ErrorOrNil() != nil {
		errs.ErrorFormat = errorFormat
		return nil, errs.ErrorOrNil()
	}
	return stmts, nil
}

// --- declarations -----------------------------------------------------

func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) function(kind string) (*ast.Function, error) {
	name, err := p.consume(token.Identifier, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftParen, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, err
	}

	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.reportError(p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs)))
			}
			param, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, err
	}

	p.fnDepth++
	body, err := p.block()
	p.fnDepth--
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.match(token.Equal) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Init: init}, nil
}

// --- statements --------------------------------------------------------

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.LeftBrace):
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars `for (init; cond; inc) body` into
// `{ init; while (cond ?? true) { body; inc; } }` at parse time (spec
// §4.2 "for desugaring"), so the evaluator never sees a For node.
func (p *Parser) forStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var inc ast.Expr
	if !p.check(token.RightParen) {
		inc, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if inc != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: inc}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: token.Bool(true)}
	}
	body = &ast.While{Condition: cond, Body: body}

	if init != nil {
		body = &ast.Block{Stmts: []ast.Stmt{init, body}}
	}
	return body, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Stmt
	if p.match(token.Else) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: elseBranch}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: value}, nil
}

// returnStatement implements the resolved Open Question (spec §9):
// `return` outside a function body is a ParserError, not a lenient
// escaping signal.
func (p *Parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if p.fnDepth == 0 {
		return nil, p.errorAt(keyword, "Can't return from top-level code.")
	}

	var value ast.Expr
	var err error
	if !p.check(token.Semicolon) {
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.Return{Keyword: keyword, Value: value}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body}, nil
}

func (p *Parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{Expr: expr}, nil
}

// --- expressions ---------------------------------------------------------

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}

	if p.match(token.Equal) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		return nil, p.errorAt(equals, "Invalid assignment target.")
	}
	return expr, nil
}

func (p *Parser) logicOr() (ast.Expr, error) {
	expr, err := p.logicAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.Or) {
		op := p.previous()
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) logicAnd() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.And) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binaryLevel(p.factor, token.Minus, token.Plus)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binaryLevel(p.unary, token.Slash, token.Star)
}

// binaryLevel is shared by the four strictly-binary precedence
// levels: parse one operand via next, then repeatedly consume any of
// kinds followed by another operand, left-associating.
func (p *Parser) binaryLevel(next func() (ast.Expr, error), kinds ...token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.matchAny(kinds...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.matchAny(token.Bang, token.Minus) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Right: right}, nil
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.match(token.LeftParen) {
		expr, err = p.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.reportError(p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs)))
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: token.Bool(false)}, nil
	case p.match(token.True):
		return &ast.Literal{Value: token.Bool(true)}, nil
	case p.match(token.Nil):
		return &ast.Literal{Value: token.Nil}, nil
	case p.match(token.Number), p.match(token.String):
		return &ast.Literal{Value: p.previous().Literal}, nil
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: expr}, nil
	default:
		return nil, p.errorAt(p.peek(), "Expect expression.")
	}
}

// --- cursor primitives ---------------------------------------------------

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.match(k) {
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.Eof
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok token.Token, message string) error {
	return &Error{Token: tok, Message: message}
}

// reportError accumulates a diagnostic without unwinding the current
// parse (spec §4.2 "Arity limits": parsing continues past the
// offending token rather than entering synchronize mode).
func (p *Parser) reportError(err error) {
	p.errs = append(p.errs, err)
}

// synchronize discards tokens until a likely statement boundary (spec
// §4.2 "Error recovery" / §4.6 "Panic → Parsing"): just past a `;`, or
// just before a token that starts a new statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.Print, token.Return, token.While:
			return
		}
		p.advance()
	}
}
