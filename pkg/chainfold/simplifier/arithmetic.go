package simplifier

import "github.com/sambeau/chainfold/pkg/chainfold/ast"

// variant distinguishes arithmetic nodes for associative regrouping.
type variant int

const (
	variantElement variant = iota
	variantConst
	variantAdd
	variantSubtract
	variantMultiply
)

func variantOf(e ast.Arithmetic) variant {
	switch n := e.(type) {
	case *ast.Element:
		return variantElement
	case *ast.Const:
		return variantConst
	case *ast.BinaryArithmetic:
		switch n.Op {
		case ast.OpAdd:
			return variantAdd
		case ast.OpSubtract:
			return variantSubtract
		}
	}
	return variantMultiply
}

// reduce rewrites n bottom-up: children first, then constant folding, then
// the rules of n's operator. The result is a sum of products in which every
// product is Const*Element, Element*Const or a fully combined Element power.
func reduce(n *ast.BinaryArithmetic) ast.Arithmetic {
	left, right := n.Left, n.Right
	if l, ok := left.(*ast.BinaryArithmetic); ok {
		left = reduce(l)
	}
	if r, ok := right.(*ast.BinaryArithmetic); ok {
		right = reduce(r)
	}

	lc, lok := left.(*ast.Const)
	rc, rok := right.(*ast.Const)
	if lok && rok {
		return ast.NewConst(n.Op.Apply(lc.Value, rc.Value))
	}

	switch n.Op {
	case ast.OpAdd:
		if isConst(left, 0) {
			return right
		}
		if isConst(right, 0) {
			return left
		}
	case ast.OpSubtract:
		if isConst(right, 0) {
			return left
		}
	case ast.OpMultiply:
		return multiply(left, right)
	}
	return ast.NewArithmetic(n.Op, left, right)
}

// multiply applies the product rules to already reduced operands.
func multiply(left, right ast.Arithmetic) ast.Arithmetic {
	if isConst(right, 1) {
		return left
	}
	if isConst(left, 1) {
		return right
	}

	for _, op := range []ast.ArithmeticOp{ast.OpAdd, ast.OpSubtract} {
		if r := distribute(op, right, left); r != nil {
			return r
		}
		if r := distribute(op, left, right); r != nil {
			return r
		}
	}

	le, lok := left.(*ast.Element)
	re, rok := right.(*ast.Element)
	if lok && rok {
		return ast.NewPower(le.Pow + re.Pow)
	}

	if r := regroup(right, left); r != nil {
		return r
	}
	if r := regroup(left, right); r != nil {
		return r
	}

	return ast.NewMultiply(left, right)
}

// distribute expands factor*(a op b) into (factor*a) op (factor*b) when sum
// is an op node.
func distribute(op ast.ArithmeticOp, factor, sum ast.Arithmetic) ast.Arithmetic {
	s, ok := sum.(*ast.BinaryArithmetic)
	if !ok || s.Op != op {
		return nil
	}
	return reduce(ast.NewArithmetic(op,
		ast.NewMultiply(factor, s.Left),
		ast.NewMultiply(factor, s.Right),
	))
}

// regroup moves factor next to the operand of product that has the same
// variant, so that a later pass can combine them.
func regroup(factor, product ast.Arithmetic) ast.Arithmetic {
	p, ok := product.(*ast.BinaryArithmetic)
	if !ok || p.Op != ast.OpMultiply {
		return nil
	}
	if variantOf(p.Left) == variantOf(factor) {
		return reduce(ast.NewMultiply(ast.NewMultiply(p.Left, factor), p.Right))
	}
	return reduce(ast.NewMultiply(ast.NewMultiply(p.Right, factor), p.Left))
}

func isConst(e ast.Arithmetic, value int32) bool {
	c, ok := e.(*ast.Const)
	return ok && c.Value == value
}
