package simplifier

import (
	"sort"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
)

// Polynomial maps powers of element to their coefficients. Power 0 holds
// the constant term. Collect never stores zero coefficients.
type Polynomial map[int]int32

// Collect sums the coefficients of every power in a reduced arithmetic
// tree. Products other than Const*Element and Element*Const contribute
// nothing.
func Collect(e ast.Arithmetic) Polynomial {
	p := Polynomial{}
	p.add(e, 1)
	for pow, coef := range p {
		if coef == 0 {
			delete(p, pow)
		}
	}
	return p
}

func (p Polynomial) add(e ast.Arithmetic, sign int32) {
	switch n := e.(type) {
	case *ast.Element:
		p[n.Pow] += sign
	case *ast.Const:
		p[0] += sign * n.Value
	case *ast.BinaryArithmetic:
		switch n.Op {
		case ast.OpAdd:
			p.add(n.Left, sign)
			p.add(n.Right, sign)
		case ast.OpSubtract:
			p.add(n.Left, sign)
			p.add(n.Right, -sign)
		case ast.OpMultiply:
			if c, ok := n.Left.(*ast.Const); ok {
				if el, ok := n.Right.(*ast.Element); ok {
					p[el.Pow] += sign * c.Value
				}
			}
			if c, ok := n.Right.(*ast.Const); ok {
				if el, ok := n.Left.(*ast.Element); ok {
					p[el.Pow] += sign * c.Value
				}
			}
		}
	}
}

// Constant returns the coefficient of power 0.
func (p Polynomial) Constant() int32 {
	return p[0]
}

// Powers returns the powers with a nonzero coefficient in ascending order.
func (p Polynomial) Powers() []int {
	powers := make([]int, 0, len(p))
	for pow, coef := range p {
		if coef != 0 {
			powers = append(powers, pow)
		}
	}
	sort.Ints(powers)
	return powers
}

// Expression rebuilds the polynomial as a left-folded sum in ascending
// power order. The first term keeps its sign; later terms are attached with
// + or - and their absolute value.
func (p Polynomial) Expression() ast.Arithmetic {
	var result ast.Arithmetic
	for _, pow := range p.Powers() {
		coef := p[pow]
		if result == nil {
			result = term(pow, coef)
			continue
		}
		if coef > 0 {
			result = ast.NewAdd(result, term(pow, coef))
		} else {
			result = ast.NewSubtract(result, term(pow, -coef))
		}
	}
	if result == nil {
		return ast.NewConst(0)
	}
	return result
}

func term(pow int, coef int32) ast.Arithmetic {
	switch {
	case pow == 0:
		return ast.NewConst(coef)
	case coef == 1:
		return ast.NewPower(pow)
	default:
		return ast.NewMultiply(ast.NewConst(coef), ast.NewPower(pow))
	}
}
