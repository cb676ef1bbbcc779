package lexer

import (
	"testing"

	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

func TestNextToken(t *testing.T) {
	input := `((element*-12)>(3-element))`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedColumn  int
	}{
		{LPAREN, "(", 1},
		{LPAREN, "(", 2},
		{ELEMENT, "element", 3},
		{ASTERISK, "*", 10},
		{INT, "-12", 11},
		{RPAREN, ")", 14},
		{GT, ">", 15},
		{LPAREN, "(", 16},
		{INT, "3", 17},
		{MINUS, "-", 18},
		{ELEMENT, "element", 19},
		{RPAREN, ")", 26},
		{RPAREN, ")", 27},
		{EOF, "", 28},
	}

	l := New(input)

	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Column != tt.expectedColumn {
			t.Fatalf("tests[%d] - column wrong. expected=%d, got=%d", i, tt.expectedColumn, tok.Column)
		}
		if l.CurrentToken() != tok {
			t.Fatalf("tests[%d] - CurrentToken() = %+v, want %+v", i, l.CurrentToken(), tok)
		}
	}
}

func TestIntegerValues(t *testing.T) {
	tests := []struct {
		input string
		want  int32
	}{
		{"0", 0},
		{"42", 42},
		{"-42", -42},
		{"2147483647", 2147483647},
		{"-2147483648", -2147483648},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if tok.Type != INT || tok.Value != tt.want {
			t.Errorf("%q: got %v %d, want INT %d", tt.input, tok.Type, tok.Value, tt.want)
		}
		if tok, err = l.NextToken(); err != nil || tok.Type != EOF {
			t.Errorf("%q: expected EOF after literal, got %v (%v)", tt.input, tok.Type, err)
		}
	}
}

func TestBarePrimitives(t *testing.T) {
	for _, input := range []string{"element", "7", "-7"} {
		l := New(input)
		if _, err := l.NextToken(); err != nil {
			t.Errorf("%q: unexpected error: %v", input, err)
		}
		if tok, err := l.NextToken(); err != nil || tok.Type != EOF {
			t.Errorf("%q: expected EOF, got %v (%v)", input, tok.Type, err)
		}
	}
}

// drain reads tokens until EOF or the first error.
func drain(l *Lexer) error {
	for i := 0; i < 1000; i++ {
		tok, err := l.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == EOF {
			return nil
		}
	}
	return nil
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		column int
	}{
		{"empty", "", "SYNTAX-0002", 1},
		{"empty group", "()", "SYNTAX-0002", 2},
		{"single operand group", "(1)", "SYNTAX-0003", 3},
		{"unary group", "(-1)", "SYNTAX-0003", 4},
		{"wrapped element", "(element)", "SYNTAX-0003", 9},
		{"three operands", "(1+1+1)", "SYNTAX-0003", 7},
		{"nested three operands", "(1+(1+1+1))", "SYNTAX-0003", 10},
		{"extra close", "(1+1))", "SYNTAX-0003", 5},
		{"missing close", "((1+1)", "SYNTAX-0004", 7},
		{"double wrapped", "((1+1))", "SYNTAX-0003", 7},
		{"adjacent groups", "(1+1)(1+1)", "SYNTAX-0003", 5},
		{"no parentheses", "1+1", "SYNTAX-0003", 1},
		{"leading operator", "+1", "SYNTAX-0002", 1},
		{"dangling operator", "(1+)", "SYNTAX-0002", 4},
		{"double operator", "(1++1)", "SYNTAX-0002", 4},
		{"unary minus without digit", "-element", "SYNTAX-0006", 1},
		{"trailing unary minus", "(1+-", "SYNTAX-0006", 4},
		{"trailing operator", "(1-", "SYNTAX-0002", 4},
		{"bad identifier", "(1+elem)", "SYNTAX-0008", 4},
		{"illegal character", "(1+ele$ent)", "SYNTAX-0008", 4},
		{"dollar", "$", "SYNTAX-0008", 1},
		{"overflow", "(99999999999999999999+1)", "SYNTAX-0007", 2},
		{"overflow past int32", "(2147483648+1)", "SYNTAX-0007", 2},
		{"negative overflow past int32", "(1+-2147483649)", "SYNTAX-0007", 4},
		{"bare overflow", "2147483648", "SYNTAX-0007", 1},
		{"two operands", "(1 2)", "SYNTAX-0008", 3},
		{"operand after group", "((1+1)1)", "SYNTAX-0001", 7},
		{"group after operand", "(1(1+1))", "SYNTAX-0001", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := drain(New(tt.input))
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			ce, ok := err.(*perrors.ChainError)
			if !ok {
				t.Fatalf("error type = %T, want *ChainError", err)
			}
			if ce.Class != perrors.ClassSyntax {
				t.Errorf("Class = %q, want syntax", ce.Class)
			}
			if ce.Code != tt.code {
				t.Errorf("Code = %q, want %q (%s)", ce.Code, tt.code, ce.Message)
			}
			if ce.Column != tt.column {
				t.Errorf("Column = %d, want %d", ce.Column, tt.column)
			}
		})
	}
}

func TestOffsetColumns(t *testing.T) {
	l := NewWithOffset("(x+1)", 4)
	err := drain(l)
	ce, ok := err.(*perrors.ChainError)
	if !ok {
		t.Fatalf("error type = %T, want *ChainError", err)
	}
	if ce.Column != 6 {
		t.Errorf("Column = %d, want 6", ce.Column)
	}
}

func TestIdentifierSuggestion(t *testing.T) {
	err := drain(New("(elemnt+1)"))
	ce, ok := err.(*perrors.ChainError)
	if !ok {
		t.Fatalf("error type = %T, want *ChainError", err)
	}
	if len(ce.Hints) != 1 || ce.Hints[0] != "Did you mean `element`?" {
		t.Errorf("Hints = %v", ce.Hints)
	}
}
