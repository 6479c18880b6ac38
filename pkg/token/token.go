// Package token defines the lexical tokens produced by the scanner and
// the runtime Value union that both token literals and the evaluator
// traffic in.
package token

import (
	"fmt"
	"math"
	"strconv"

	"github.com/josharian/intern"
)

// Kind is the closed tag set of lexical token kinds.
type Kind int

const (
	// Single-character punctuation.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One-or-two character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Eof
)

var kindNames = map[Kind]string{
	LeftParen: "LEFT_PAREN", RightParen: "RIGHT_PAREN",
	LeftBrace: "LEFT_BRACE", RightBrace: "RIGHT_BRACE",
	Comma: "COMMA", Dot: "DOT", Minus: "MINUS", Plus: "PLUS",
	Semicolon: "SEMICOLON", Slash: "SLASH", Star: "STAR",
	Bang: "BANG", BangEqual: "BANG_EQUAL",
	Equal: "EQUAL", EqualEqual: "EQUAL_EQUAL",
	Greater: "GREATER", GreaterEqual: "GREATER_EQUAL",
	Less: "LESS", LessEqual: "LESS_EQUAL",
	Identifier: "IDENTIFIER", String: "STRING", Number: "NUMBER",
	And: "AND", Class: "CLASS", Else: "ELSE", False: "FALSE",
	Fun: "FUN", For: "FOR", If: "IF", Nil: "NIL", Or: "OR",
	Print: "PRINT", Return: "RETURN", Super: "SUPER", This: "THIS",
	True: "TRUE", Var: "VAR", While: "WHILE", Eof: "EOF",
}

// String renders the kind's canonical name, e.g. "BANG_EQUAL".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Keywords maps reserved lexemes to their keyword Kind. The scanner
// consults this table after collecting an identifier-shaped lexeme.
var Keywords = map[string]Kind{
	"and": And, "class": Class, "else": Else, "false": False,
	"for": For, "fun": Fun, "if": If, "nil": Nil, "or": Or,
	"print": Print, "return": Return, "super": Super, "this": This,
	"true": True, "var": Var, "while": While,
}

// ValueKind tags the variant of a runtime Value.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindCallable
)

// Callable is the minimal surface a callable runtime value must expose.
// The interpreter package supplies the concrete Function and
// NativeFunction implementations; keeping this interface here (rather
// than importing the interpreter package) avoids an import cycle
// between token, ast, and interpreter.
type Callable interface {
	Arity() int
	String() string
}

// Value is the runtime's tagged union: Nil, Bool, Number, String, or
// Callable. It is also what a Token's Literal field carries for String
// and Number tokens.
type Value struct {
	Kind     ValueKind
	Bool     bool
	Number   float64
	Str      string
	Callable Callable
}

// Nil is the language's nil value.
var Nil = Value{Kind: KindNil}

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Num wraps a float64 as a Value.
func Num(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// Str wraps a string as a Value, interning its backing storage since
// string values are frequently re-derived from identifier lexemes.
func Str(s string) Value { return Value{Kind: KindString, Str: intern.String(s)} }

// Call wraps a Callable as a Value.
func Call(c Callable) Value { return Value{Kind: KindCallable, Callable: c} }

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// Truthy implements the language's truthiness rule: Nil and false are
// falsy, everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equals implements the language's structural == semantics. Callables
// compare equal only when they share the exact same underlying value,
// i.e. identity equality.
func (v Value) Equals(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindNumber:
		return v.Number == other.Number
	case KindString:
		return v.Str == other.Str
	case KindCallable:
		return v.Callable == other.Callable
	default:
		return false
	}
}

// String formats v the way print and diagnostics do (spec §6): Nil ->
// "nil", Bool -> "true"/"false", Number -> Go's default float
// formatting (no forced trailing ".0"), String -> raw characters,
// Callable -> whatever the Callable's own String method reports
// (e.g. "<fn name>").
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindString:
		return v.Str
	case KindCallable:
		return v.Callable.String()
	default:
		return "<invalid value>"
	}
}

// formatNumber renders a float64 the way host default double
// formatting does for this language: integer-valued doubles print
// without a trailing ".0", and the IEEE-754 special values print in
// their lowercase C-family spellings rather than Go's "+Inf"/"NaN".
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// Token is a single lexical token: its kind, the exact source
// substring that produced it, an optional literal payload (populated
// only for String and Number kinds), and the 1-based source line it
// started on.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal Value
	Line    int
}

// New constructs a Token, interning its lexeme.
func New(kind Kind, lexeme string, literal Value, line int) Token {
	return Token{Kind: kind, Lexeme: intern.String(lexeme), Literal: literal, Line: line}
}

// String renders a token for debugging, e.g. "IDENTIFIER foo nil".
func (t Token) String() string {
	return fmt.Sprintf("%s %s %s", t.Kind, t.Lexeme, t.Literal)
}
