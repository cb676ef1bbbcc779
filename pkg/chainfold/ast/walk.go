package ast

import "fmt"

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expression) bool {
	switch x := a.(type) {
	case *Element:
		y, ok := b.(*Element)
		return ok && x.Pow == y.Pow
	case *Const:
		y, ok := b.(*Const)
		return ok && x.Value == y.Value
	case *BinaryArithmetic:
		y, ok := b.(*BinaryArithmetic)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *Comparison:
		y, ok := b.(*Comparison)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Connective:
		y, ok := b.(*Connective)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", a))
	}
}

// SubstituteArithmetic returns a copy of e in which every Element leaf is
// replaced by a copy of value. An Element of power p becomes the product of
// p copies. A nil value copies the tree unchanged.
func SubstituteArithmetic(e Arithmetic, value Arithmetic) Arithmetic {
	switch n := e.(type) {
	case *Element:
		if value == nil {
			return NewPower(n.Pow)
		}
		return power(value, n.Pow)
	case *Const:
		return NewConst(n.Value)
	case *BinaryArithmetic:
		return NewArithmetic(n.Op, SubstituteArithmetic(n.Left, value), SubstituteArithmetic(n.Right, value))
	default:
		panic(fmt.Sprintf("ast: unexpected arithmetic node %T", e))
	}
}

// SubstituteLogical is SubstituteArithmetic for logical trees.
func SubstituteLogical(e Logical, value Arithmetic) Logical {
	switch n := e.(type) {
	case *Bool:
		return NewBool(n.Value)
	case *Comparison:
		return NewComparison(n.Op, SubstituteArithmetic(n.Left, value), SubstituteArithmetic(n.Right, value))
	case *Connective:
		return NewConnective(n.Op, SubstituteLogical(n.Left, value), SubstituteLogical(n.Right, value))
	default:
		panic(fmt.Sprintf("ast: unexpected logical node %T", e))
	}
}

// Substitute dispatches to SubstituteArithmetic or SubstituteLogical.
func Substitute(e Expression, value Arithmetic) Expression {
	switch n := e.(type) {
	case Arithmetic:
		return SubstituteArithmetic(n, value)
	case Logical:
		return SubstituteLogical(n, value)
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", e))
	}
}

// power builds the left-nested product of pow copies of value.
func power(value Arithmetic, pow int) Arithmetic {
	if pow <= 0 {
		return NewConst(1)
	}
	result := SubstituteArithmetic(value, nil)
	for i := 1; i < pow; i++ {
		result = NewMultiply(result, SubstituteArithmetic(value, nil))
	}
	return result
}
