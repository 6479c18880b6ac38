package scanner

import (
	"testing"

	"github.com/kristofer/lox/pkg/token"
)

func TestScanTokens_Punctuation(t *testing.T) {
	input := "(){},.-+;*"

	tests := []struct {
		expectedKind   token.Kind
		expectedLexeme string
	}{
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.Comma, ","},
		{token.Dot, "."},
		{token.Minus, "-"},
		{token.Plus, "+"},
		{token.Semicolon, ";"},
		{token.Star, "*"},
		{token.Eof, ""},
	}

	tokens, err := New(input).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if len(tokens) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(tests))
	}
	for i, tt := range tests {
		if tokens[i].Kind != tt.expectedKind {
			t.Errorf("tokens[%d].Kind = %s, want %s", i, tokens[i].Kind, tt.expectedKind)
		}
		if tokens[i].Lexeme != tt.expectedLexeme {
			t.Errorf("tokens[%d].Lexeme = %q, want %q", i, tokens[i].Lexeme, tt.expectedLexeme)
		}
	}
}

func TestScanTokens_OneOrTwoCharOperators(t *testing.T) {
	input := "! != = == < <= > >="

	tests := []token.Kind{
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Eof,
	}

	tokens, err := New(input).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	for i, want := range tests {
		if tokens[i].Kind != want {
			t.Errorf("tokens[%d].Kind = %s, want %s", i, tokens[i].Kind, want)
		}
	}
}

func TestScanTokens_LineComment(t *testing.T) {
	tokens, err := New("1 // a comment\n2").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3 (two numbers + EOF)", len(tokens))
	}
	if tokens[0].Literal.Number != 1 || tokens[1].Literal.Number != 2 {
		t.Errorf("unexpected literals: %v, %v", tokens[0].Literal, tokens[1].Literal)
	}
	if tokens[1].Line != 2 {
		t.Errorf("second number line = %d, want 2", tokens[1].Line)
	}
}

func TestScanTokens_String(t *testing.T) {
	tokens, err := New(`"hello world"`).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if tokens[0].Kind != token.String || tokens[0].Literal.Str != "hello world" {
		t.Errorf("got %+v", tokens[0])
	}
}

func TestScanTokens_MultilineString(t *testing.T) {
	tokens, err := New("\"a\nb\" 1").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if tokens[1].Line != 2 {
		t.Errorf("number after multiline string on line %d, want 2", tokens[1].Line)
	}
}

func TestScanTokens_UnterminatedString(t *testing.T) {
	_, err := New(`"unterminated`).ScanTokens()
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if err.Error() != "[line 1] Error: Unterminated string." {
		t.Errorf("got %q", err.Error())
	}
}

func TestScanTokens_Number(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"123", 123},
		{"123.456", 123.456},
		{"0.5", 0.5},
	}
	for _, tt := range tests {
		tokens, err := New(tt.input).ScanTokens()
		if err != nil {
			t.Fatalf("ScanTokens(%q) returned error: %v", tt.input, err)
		}
		if tokens[0].Kind != token.Number || tokens[0].Literal.Number != tt.want {
			t.Errorf("ScanTokens(%q) = %+v, want Number %v", tt.input, tokens[0], tt.want)
		}
	}
}

func TestScanTokens_NumberTrailingDotIsNotConsumed(t *testing.T) {
	// "123." is a number followed by a dot, not a trailing-decimal number,
	// since a decimal point must be followed by at least one digit.
	tokens, err := New("123.").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if tokens[0].Literal.Number != 123 {
		t.Errorf("number = %v, want 123", tokens[0].Literal.Number)
	}
	if tokens[1].Kind != token.Dot {
		t.Errorf("tokens[1].Kind = %s, want DOT", tokens[1].Kind)
	}
}

func TestScanTokens_IdentifiersAndKeywords(t *testing.T) {
	tokens, err := New("orchid or x and fun").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	wantKinds := []token.Kind{token.Identifier, token.Or, token.Identifier, token.And, token.Fun, token.Eof}
	for i, want := range wantKinds {
		if tokens[i].Kind != want {
			t.Errorf("tokens[%d].Kind = %s, want %s", i, tokens[i].Kind, want)
		}
	}
}

func TestScanTokens_UnexpectedCharacter(t *testing.T) {
	_, err := New("@").ScanTokens()
	if err == nil {
		t.Fatal("expected an error for an unexpected character")
	}
	if err.Error() != "[line 1] Error: Unexpected character." {
		t.Errorf("got %q", err.Error())
	}
}

func TestScanTokens_LineTrackingMonotonic(t *testing.T) {
	tokens, err := New("1\n2\n\n3").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	prevLine := 0
	for _, tok := range tokens {
		if tok.Line < prevLine {
			t.Fatalf("line numbers not monotonic: %d after %d", tok.Line, prevLine)
		}
		prevLine = tok.Line
	}
	if tokens[len(tokens)-1].Kind != token.Eof {
		t.Errorf("last token kind = %s, want EOF", tokens[len(tokens)-1].Kind)
	}
}

func TestScanTokens_EmptyInputYieldsOnlyEof(t *testing.T) {
	tokens, err := New("").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens returned error: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Kind != token.Eof {
		t.Errorf("got %v, want a single EOF token", tokens)
	}
}
