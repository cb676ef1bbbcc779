// Package ast defines the expression tree of the chain language.
//
// Expressions form a closed set of variants split by capability: Element,
// Const and BinaryArithmetic are Arithmetic; Bool, Comparison and Connective
// are Logical. Nodes are immutable once constructed; rewrites build new
// nodes instead of changing children in place.
package ast

import (
	"strconv"
	"strings"
)

// Capability tags an expression as arithmetic or logical.
type Capability int

const (
	CapArithmetic Capability = iota
	CapLogical
)

func (c Capability) String() string {
	if c == CapLogical {
		return "logical"
	}
	return "arithmetic"
}

// Expression represents any node of the expression tree
type Expression interface {
	String() string
	Capability() Capability
}

// Arithmetic represents expressions that evaluate to an integer
type Arithmetic interface {
	Expression
	arithmeticNode()
}

// Logical represents expressions that evaluate to a boolean
type Logical interface {
	Expression
	logicalNode()
}

// ============================================================================
// Operators
// ============================================================================

// ArithmeticOp is the operator of a BinaryArithmetic node.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
)

// Symbol returns the operator as written in source.
func (op ArithmeticOp) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	default:
		return "*"
	}
}

// Apply evaluates the operator. Overflow wraps around.
func (op ArithmeticOp) Apply(a, b int32) int32 {
	switch op {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	default:
		return a * b
	}
}

// ComparisonOp is the operator of a Comparison node.
type ComparisonOp int

const (
	OpLess ComparisonOp = iota
	OpGreater
	OpEquals
)

// Symbol returns the operator as written in source.
func (op ComparisonOp) Symbol() string {
	switch op {
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	default:
		return "="
	}
}

// Apply evaluates the comparison.
func (op ComparisonOp) Apply(a, b int32) bool {
	switch op {
	case OpLess:
		return a < b
	case OpGreater:
		return a > b
	default:
		return a == b
	}
}

// ConnectiveOp is the operator of a Connective node.
type ConnectiveOp int

const (
	OpAnd ConnectiveOp = iota
	OpOr
)

// Symbol returns the operator as written in source.
func (op ConnectiveOp) Symbol() string {
	if op == OpOr {
		return "|"
	}
	return "&"
}

// Apply evaluates the connective.
func (op ConnectiveOp) Apply(a, b bool) bool {
	if op == OpOr {
		return a || b
	}
	return a && b
}

// ============================================================================
// Arithmetic nodes
// ============================================================================

// Element is the running value of the chain raised to Pow.
type Element struct {
	Pow int
}

// NewElement returns the bare running value.
func NewElement() *Element { return &Element{Pow: 1} }

// NewPower returns the running value raised to pow.
func NewPower(pow int) *Element { return &Element{Pow: pow} }

func (e *Element) arithmeticNode()        {}
func (e *Element) Capability() Capability { return CapArithmetic }

// String renders powers above one as a left-nested product.
func (e *Element) String() string {
	if e.Pow <= 0 {
		return "1"
	}
	var out strings.Builder
	out.WriteString(strings.Repeat("(", e.Pow-1))
	out.WriteString("element")
	for i := 1; i < e.Pow; i++ {
		out.WriteString("*element)")
	}
	return out.String()
}

// Const is an integer literal
type Const struct {
	Value int32
}

func NewConst(value int32) *Const { return &Const{Value: value} }

func (c *Const) arithmeticNode()        {}
func (c *Const) Capability() Capability { return CapArithmetic }
func (c *Const) String() string         { return strconv.FormatInt(int64(c.Value), 10) }

// BinaryArithmetic is an addition, subtraction or multiplication.
type BinaryArithmetic struct {
	Op    ArithmeticOp
	Left  Arithmetic
	Right Arithmetic
}

// NewArithmetic builds the arithmetic node for op.
func NewArithmetic(op ArithmeticOp, left, right Arithmetic) *BinaryArithmetic {
	return &BinaryArithmetic{Op: op, Left: left, Right: right}
}

func NewAdd(left, right Arithmetic) *BinaryArithmetic {
	return NewArithmetic(OpAdd, left, right)
}

func NewSubtract(left, right Arithmetic) *BinaryArithmetic {
	return NewArithmetic(OpSubtract, left, right)
}

func NewMultiply(left, right Arithmetic) *BinaryArithmetic {
	return NewArithmetic(OpMultiply, left, right)
}

func (b *BinaryArithmetic) arithmeticNode()        {}
func (b *BinaryArithmetic) Capability() Capability { return CapArithmetic }
func (b *BinaryArithmetic) String() string {
	return binaryString(b.Left, b.Op.Symbol(), b.Right)
}

// ============================================================================
// Logical nodes
// ============================================================================

// Bool is a literal predicate.
type Bool struct {
	Value bool
}

func NewBool(value bool) *Bool { return &Bool{Value: value} }

func (b *Bool) logicalNode()           {}
func (b *Bool) Capability() Capability { return CapLogical }

// String renders the literal as a comparison the grammar accepts.
func (b *Bool) String() string {
	if b.Value {
		return "(0=0)"
	}
	return "(1=0)"
}

// Comparison compares two arithmetic expressions.
type Comparison struct {
	Op    ComparisonOp
	Left  Arithmetic
	Right Arithmetic
}

// NewComparison builds the comparison node for op.
func NewComparison(op ComparisonOp, left, right Arithmetic) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func NewLess(left, right Arithmetic) *Comparison {
	return NewComparison(OpLess, left, right)
}

func NewGreater(left, right Arithmetic) *Comparison {
	return NewComparison(OpGreater, left, right)
}

func NewEquals(left, right Arithmetic) *Comparison {
	return NewComparison(OpEquals, left, right)
}

func (c *Comparison) logicalNode()           {}
func (c *Comparison) Capability() Capability { return CapLogical }
func (c *Comparison) String() string {
	return binaryString(c.Left, c.Op.Symbol(), c.Right)
}

// Connective joins two logical expressions with & or |.
type Connective struct {
	Op    ConnectiveOp
	Left  Logical
	Right Logical
}

// NewConnective builds the connective node for op.
func NewConnective(op ConnectiveOp, left, right Logical) *Connective {
	return &Connective{Op: op, Left: left, Right: right}
}

func NewAnd(left, right Logical) *Connective {
	return NewConnective(OpAnd, left, right)
}

func NewOr(left, right Logical) *Connective {
	return NewConnective(OpOr, left, right)
}

func (c *Connective) logicalNode()           {}
func (c *Connective) Capability() Capability { return CapLogical }
func (c *Connective) String() string {
	return binaryString(c.Left, c.Op.Symbol(), c.Right)
}

func binaryString(left Expression, symbol string, right Expression) string {
	var out strings.Builder

	out.WriteString("(")
	out.WriteString(left.String())
	out.WriteString(symbol)
	out.WriteString(right.String())
	out.WriteString(")")

	return out.String()
}
