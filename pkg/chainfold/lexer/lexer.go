// Package lexer turns the body of one call (the text between '{' and '}')
// into a strict token stream.
//
// The lexer enforces the grammar rule that every binary expression sits in
// its own pair of parentheses with exactly two operands, so the parser never
// sees an operator chain like (a+b+c).
package lexer

import (
	"strconv"
	"strings"

	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	BEGIN             // before the first token
	EOF

	// Operands
	INT     // 1343456, -7
	ELEMENT // element

	// Arithmetic operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *

	// Comparison operators
	GT // >
	LT // <
	EQ // =

	// Connectives
	AND // &
	OR  // |

	// Delimiters
	LPAREN // (
	RPAREN // )
)

// Identifier is the only identifier of the language.
const Identifier = "element"

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Value   int32 // set for INT
	Column  int   // 1-based column within the whole chain
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case BEGIN:
		return "BEGIN"
	case EOF:
		return "EOF"
	case INT:
		return "INT"
	case ELEMENT:
		return "ELEMENT"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case ASTERISK:
		return "*"
	case GT:
		return ">"
	case LT:
		return "<"
	case EQ:
		return "="
	case AND:
		return "&"
	case OR:
		return "|"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// IsOperator reports whether the token type is a binary operator.
func (tt TokenType) IsOperator() bool {
	return tt >= PLUS && tt <= OR
}

// IsOperand reports whether the token type completes an operand.
func (tt TokenType) IsOperand() bool {
	return tt == INT || tt == ELEMENT || tt == RPAREN
}

var operators = map[byte]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': ASTERISK,
	'>': GT,
	'<': LT,
	'=': EQ,
	'&': AND,
	'|': OR,
}

// Lexer represents the lexical analyzer for one call expression.
type Lexer struct {
	input  string
	offset int // column offset of input within the chain
	pos    int // next byte to read
	cur    Token

	depth    int   // open parentheses
	operands []int // operand count per open parenthesis
	binary   bool  // input is more than a single primitive
}

// New creates a new lexer for input.
func New(input string) *Lexer {
	return NewWithOffset(input, 0)
}

// NewWithOffset creates a lexer for input that starts at the given 0-based
// offset inside a larger chain, so token columns refer to the chain.
func NewWithOffset(input string, offset int) *Lexer {
	return &Lexer{
		input:  input,
		offset: offset,
		cur:    Token{Type: BEGIN, Column: offset + 1},
		binary: !isPrimitive(input),
	}
}

// isPrimitive reports whether the whole input is a bare operand, the only
// form allowed outside parentheses.
func isPrimitive(input string) bool {
	if input == Identifier {
		return true
	}
	digits := strings.TrimPrefix(input, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return false
		}
	}
	return true
}

// CurrentToken returns the current token without advancing.
func (l *Lexer) CurrentToken() Token {
	return l.cur
}

// NextToken advances to the next token and returns it.
func (l *Lexer) NextToken() (Token, error) {
	if l.pos >= len(l.input) {
		if err := l.expectPrimitive("end of input"); err != nil {
			return l.illegal(""), err
		}
		if l.depth != 0 {
			return l.illegal(""), l.errorAt("SYNTAX-0004", l.pos, map[string]any{"Missing": l.depth})
		}
		l.cur = Token{Type: EOF, Column: l.column(l.pos)}
		return l.cur, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '(':
		if err := l.expectOperation("("); err != nil {
			return l.illegal("("), err
		}
		l.pos++
		l.depth++
		if len(l.operands) > 0 {
			l.operands[len(l.operands)-1]++
		}
		l.operands = append(l.operands, 0)
		l.cur = Token{Type: LPAREN, Literal: "(", Column: l.column(start)}

	case ch == ')':
		if err := l.expectPrimitive(")"); err != nil {
			return l.illegal(")"), err
		}
		l.pos++
		l.depth--
		if l.depth < 0 {
			return l.illegal(")"), l.errorAt("SYNTAX-0005", start, nil)
		}
		count := l.operands[len(l.operands)-1]
		l.operands = l.operands[:len(l.operands)-1]
		if (len(l.operands) == 0 && l.pos < len(l.input)) || count != 2 {
			return l.illegal(")"), l.errorAt("SYNTAX-0003", start, nil)
		}
		l.cur = Token{Type: RPAREN, Literal: ")", Column: l.column(start)}

	case ch == '-' && !l.cur.Type.IsOperand():
		l.pos++
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return l.illegal("-"), l.errorAt("SYNTAX-0006", start, nil)
		}
		if err := l.readNumber(start); err != nil {
			return l.illegal(l.input[start:l.pos]), err
		}

	case operators[ch] != ILLEGAL:
		if err := l.expectPrimitive(string(ch)); err != nil {
			return l.illegal(string(ch)), err
		}
		l.pos++
		l.cur = Token{Type: operators[ch], Literal: string(ch), Column: l.column(start)}

	case isDigit(ch):
		if err := l.expectOperation(string(ch)); err != nil {
			return l.illegal(string(ch)), err
		}
		if err := l.readNumber(start); err != nil {
			return l.illegal(l.input[start:l.pos]), err
		}

	case isLetter(ch):
		for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
			l.pos++
		}
		word := l.input[start:l.pos]
		if word != Identifier {
			return l.illegal(word), l.errorAt("SYNTAX-0008", start, map[string]any{"Symbol": word}).
				WithSuggestion(word, []string{Identifier})
		}
		if err := l.expectOperation(word); err != nil {
			return l.illegal(word), err
		}
		l.cur = Token{Type: ELEMENT, Literal: word, Column: l.column(start)}
		if err := l.countOperand(start); err != nil {
			return l.illegal(word), err
		}

	default:
		return l.illegal(string(ch)), l.errorAt("SYNTAX-0008", start, map[string]any{"Symbol": string(ch)})
	}

	return l.cur, nil
}

// readNumber reads the digits following l.pos; start points at the first
// byte of the literal, which may be a unary minus.
func (l *Lexer) readNumber(start int) error {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	literal := l.input[start:l.pos]
	value, err := strconv.ParseInt(literal, 10, 32)
	if err != nil {
		return l.errorAt("SYNTAX-0007", start, map[string]any{"Literal": literal})
	}
	l.cur = Token{Type: INT, Literal: literal, Value: int32(value), Column: l.column(start)}
	return l.countOperand(start)
}

// countOperand records a primitive operand in the innermost open group.
func (l *Lexer) countOperand(start int) error {
	if !l.binary {
		return nil
	}
	if len(l.operands) == 0 {
		return l.errorAt("SYNTAX-0003", start, nil)
	}
	l.operands[len(l.operands)-1]++
	return nil
}

// expectOperation fails when an operand was just read, i.e. another operand
// cannot follow without an operator in between.
func (l *Lexer) expectOperation(got string) error {
	if l.cur.Type.IsOperand() {
		return l.errorAt("SYNTAX-0001", l.pos, map[string]any{"Got": got})
	}
	return nil
}

// expectPrimitive fails when an operand is still required.
func (l *Lexer) expectPrimitive(got string) error {
	switch {
	case l.cur.Type == BEGIN, l.cur.Type == LPAREN, l.cur.Type.IsOperator():
		return l.errorAt("SYNTAX-0002", l.pos, map[string]any{"Got": got})
	}
	return nil
}

func (l *Lexer) illegal(literal string) Token {
	l.cur = Token{Type: ILLEGAL, Literal: literal, Column: l.column(l.pos)}
	return l.cur
}

func (l *Lexer) column(pos int) int {
	return l.offset + pos + 1
}

func (l *Lexer) errorAt(code string, pos int, data map[string]any) *perrors.ChainError {
	return perrors.NewWithColumn(code, l.column(pos), data)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}
