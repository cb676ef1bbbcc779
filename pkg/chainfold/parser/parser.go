// Package parser builds typed expression trees from the token stream of the
// lexer and splits call chains into calls.
//
// Every binary node is type checked as it is built: arithmetic and
// comparison operators need arithmetic operands, connectives need logical
// ones. The first syntax or type error aborts the parse.
package parser

import (
	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
	"github.com/sambeau/chainfold/pkg/chainfold/lexer"
)

// Parser is a recursive descent parser over one call expression.
type Parser struct {
	l *lexer.Lexer
}

// New creates a parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse parses a standalone expression.
func Parse(input string) (ast.Expression, error) {
	return ParseAt(input, 0)
}

// ParseAt parses an expression that starts at the given 0-based offset of a
// larger chain; error columns refer to the chain.
func ParseAt(input string, offset int) (ast.Expression, error) {
	return New(lexer.NewWithOffset(input, offset)).ParseExpression()
}

// ParseExpression parses the whole token stream.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	expr, err := p.parseBinary()
	if err != nil {
		return nil, err
	}
	if tok := p.l.CurrentToken(); tok.Type != lexer.EOF {
		return nil, perrors.NewWithColumn("SYNTAX-0001", tok.Column, map[string]any{"Got": tok.Literal})
	}
	return expr, nil
}

// parsePrimitive reads the next operand: element, an integer or a
// parenthesized binary expression. On return the current token is the one
// following the operand.
func (p *Parser) parsePrimitive() (ast.Expression, error) {
	tok, err := p.l.NextToken()
	if err != nil {
		return nil, err
	}

	var result ast.Expression
	switch tok.Type {
	case lexer.ELEMENT:
		result = ast.NewElement()
	case lexer.INT:
		result = ast.NewConst(tok.Value)
	case lexer.LPAREN:
		if result, err = p.parseBinary(); err != nil {
			return nil, err
		}
	default:
		return nil, perrors.NewWithColumn("SYNTAX-0002", tok.Column, map[string]any{"Got": tok.Literal})
	}

	if _, err := p.l.NextToken(); err != nil {
		return nil, err
	}
	return result, nil
}

// parseBinary parses a primitive followed by any number of operator and
// primitive pairs, folding them left to right.
func (p *Parser) parseBinary() (ast.Expression, error) {
	left, err := p.parsePrimitive()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.l.CurrentToken()
		if !tok.Type.IsOperator() {
			return left, nil
		}

		right, err := p.parsePrimitive()
		if err != nil {
			return nil, err
		}

		if left, err = build(tok, left, right); err != nil {
			return nil, err
		}
	}
}

// build constructs the node for the operator token after checking that both
// operands carry the capability the operator requires.
func build(tok lexer.Token, left, right ast.Expression) (ast.Expression, error) {
	switch tok.Type {
	case lexer.PLUS, lexer.MINUS, lexer.ASTERISK:
		l, r, err := arithmeticOperands(tok, left, right)
		if err != nil {
			return nil, err
		}
		return ast.NewArithmetic(arithmeticOps[tok.Type], l, r), nil

	case lexer.GT, lexer.LT, lexer.EQ:
		l, r, err := arithmeticOperands(tok, left, right)
		if err != nil {
			return nil, err
		}
		return ast.NewComparison(comparisonOps[tok.Type], l, r), nil

	default:
		l, r, err := logicalOperands(tok, left, right)
		if err != nil {
			return nil, err
		}
		return ast.NewConnective(connectiveOps[tok.Type], l, r), nil
	}
}

var arithmeticOps = map[lexer.TokenType]ast.ArithmeticOp{
	lexer.PLUS:     ast.OpAdd,
	lexer.MINUS:    ast.OpSubtract,
	lexer.ASTERISK: ast.OpMultiply,
}

var comparisonOps = map[lexer.TokenType]ast.ComparisonOp{
	lexer.LT: ast.OpLess,
	lexer.GT: ast.OpGreater,
	lexer.EQ: ast.OpEquals,
}

var connectiveOps = map[lexer.TokenType]ast.ConnectiveOp{
	lexer.AND: ast.OpAnd,
	lexer.OR:  ast.OpOr,
}

func arithmeticOperands(tok lexer.Token, left, right ast.Expression) (ast.Arithmetic, ast.Arithmetic, error) {
	l, ok := left.(ast.Arithmetic)
	if !ok {
		return nil, nil, operandError(tok, left, ast.CapArithmetic)
	}
	r, ok := right.(ast.Arithmetic)
	if !ok {
		return nil, nil, operandError(tok, right, ast.CapArithmetic)
	}
	return l, r, nil
}

func logicalOperands(tok lexer.Token, left, right ast.Expression) (ast.Logical, ast.Logical, error) {
	l, ok := left.(ast.Logical)
	if !ok {
		return nil, nil, operandError(tok, left, ast.CapLogical)
	}
	r, ok := right.(ast.Logical)
	if !ok {
		return nil, nil, operandError(tok, right, ast.CapLogical)
	}
	return l, r, nil
}

func operandError(tok lexer.Token, operand ast.Expression, expected ast.Capability) *perrors.ChainError {
	return perrors.NewWithColumn("TYPE-0001", tok.Column, map[string]any{
		"Operand":  operand.String(),
		"Operator": tok.Literal,
		"Expected": expected.String(),
		"Actual":   operand.Capability().String(),
	})
}
