package simplifier

import "github.com/sambeau/chainfold/pkg/chainfold/ast"

// comparison moves everything to the left side and the constant term to
// the right: (l cmp r) becomes (poly cmp k) with poly free of a constant.
func comparison(n *ast.Comparison) ast.Logical {
	left := Arithmetic(ast.NewSubtract(n.Left, n.Right))
	var right ast.Arithmetic = ast.NewConst(0)

	if op, ok := left.(*ast.BinaryArithmetic); ok {
		k := Collect(op).Constant()
		left = Arithmetic(ast.NewSubtract(op, ast.NewConst(k)))
		right = ast.NewConst(-k)
	}

	lc, lok := left.(*ast.Const)
	rc, rok := right.(*ast.Const)
	if lok && rok {
		return ast.NewBool(n.Op.Apply(lc.Value, rc.Value))
	}
	return ast.NewComparison(n.Op, left, right)
}

func connective(n *ast.Connective) ast.Logical {
	left := Logical(n.Left)
	right := Logical(n.Right)

	lb, lok := left.(*ast.Bool)
	rb, rok := right.(*ast.Bool)
	if lok && rok {
		return ast.NewBool(n.Op.Apply(lb.Value, rb.Value))
	}

	if r := absorb(n.Op, left, right); r != nil {
		return r
	}

	if n.Op == ast.OpAnd {
		if r := distributeAnd(right, left); r != nil {
			return r
		}
		if r := distributeAnd(left, right); r != nil {
			return r
		}
	}

	lc, lok := left.(*ast.Comparison)
	rc, rok := right.(*ast.Comparison)
	if lok && rok && ast.Equal(lc.Left, rc.Left) {
		a, aok := lc.Right.(*ast.Const)
		b, bok := rc.Right.(*ast.Const)
		if aok && bok {
			if r := mergeIntervals(n.Op, lc, rc, a.Value, b.Value); r != nil {
				return r
			}
		}
	}

	return ast.NewConnective(n.Op, left, right)
}

// absorb removes a literal operand: true&x is x, false&x is false,
// true|x is true and false|x is x, in either position.
func absorb(op ast.ConnectiveOp, left, right ast.Logical) ast.Logical {
	if b, ok := left.(*ast.Bool); ok {
		if b.Value == (op == ast.OpAnd) {
			return right
		}
		return left
	}
	if b, ok := right.(*ast.Bool); ok {
		if b.Value == (op == ast.OpAnd) {
			return left
		}
		return right
	}
	return nil
}

// distributeAnd rewrites a&(b|c) as (a&b)|(a&c) when or is an Or node.
func distributeAnd(a, or ast.Logical) ast.Logical {
	o, ok := or.(*ast.Connective)
	if !ok || o.Op != ast.OpOr {
		return nil
	}
	return Logical(ast.NewOr(ast.NewAnd(a, o.Left), ast.NewAnd(a, o.Right)))
}

// mergeIntervals combines (exp cmp1 a) op (exp cmp2 b) into a single
// comparison or literal. It returns nil when the pair has no merged form.
func mergeIntervals(op ast.ConnectiveOp, left, right *ast.Comparison, a, b int32) ast.Logical {
	exp := left.Left
	less, greater, equals := ast.OpLess, ast.OpGreater, ast.OpEquals
	pair := [2]ast.ComparisonOp{left.Op, right.Op}

	if op == ast.OpAnd {
		switch pair {
		case [2]ast.ComparisonOp{less, less}:
			return ast.NewLess(exp, ast.NewConst(min(a, b)))
		case [2]ast.ComparisonOp{greater, greater}:
			return ast.NewGreater(exp, ast.NewConst(max(a, b)))
		case [2]ast.ComparisonOp{less, greater}:
			if b >= a {
				return ast.NewBool(false)
			}
		case [2]ast.ComparisonOp{greater, less}:
			if a >= b {
				return ast.NewBool(false)
			}
		case [2]ast.ComparisonOp{equals, equals}:
			return pick(a == b, left)
		case [2]ast.ComparisonOp{less, equals}:
			return pick(a > b, right)
		case [2]ast.ComparisonOp{equals, less}:
			return pick(b > a, left)
		case [2]ast.ComparisonOp{greater, equals}:
			return pick(b > a, right)
		case [2]ast.ComparisonOp{equals, greater}:
			return pick(a > b, left)
		}
		return nil
	}

	switch pair {
	case [2]ast.ComparisonOp{less, less}:
		return ast.NewLess(exp, ast.NewConst(max(a, b)))
	case [2]ast.ComparisonOp{greater, greater}:
		return ast.NewGreater(exp, ast.NewConst(min(a, b)))
	case [2]ast.ComparisonOp{less, greater}:
		if b < a {
			return ast.NewBool(true)
		}
	case [2]ast.ComparisonOp{greater, less}:
		if a < b {
			return ast.NewBool(true)
		}
	case [2]ast.ComparisonOp{equals, equals}:
		if a == b {
			return left
		}
	case [2]ast.ComparisonOp{less, equals}:
		if b < a {
			return left
		}
	case [2]ast.ComparisonOp{equals, less}:
		if a < b {
			return right
		}
	case [2]ast.ComparisonOp{greater, equals}:
		if b > a {
			return left
		}
	case [2]ast.ComparisonOp{equals, greater}:
		if a > b {
			return right
		}
	}
	return nil
}

// pick returns c when ok holds and false otherwise.
func pick(ok bool, c *ast.Comparison) ast.Logical {
	if ok {
		return c
	}
	return ast.NewBool(false)
}
