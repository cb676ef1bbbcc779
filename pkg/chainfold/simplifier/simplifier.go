// Package simplifier rewrites expression trees into canonical form.
//
// Arithmetic trees become polynomials in element written as a left-folded
// sum ordered by ascending power. Comparisons are moved to the form
// (polynomial cmp constant). Connectives fold literals, distribute & over |
// and merge pairs of comparisons on the same polynomial into one interval.
//
// All functions are pure: they never modify their input and return new
// nodes wherever a rewrite happens.
package simplifier

import (
	"fmt"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
)

// Simplify returns the canonical form of e. The result has the same
// capability as e.
func Simplify(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case ast.Arithmetic:
		return Arithmetic(n)
	case ast.Logical:
		return Logical(n)
	default:
		panic(fmt.Sprintf("simplifier: unexpected node %T", e))
	}
}

// Arithmetic returns the canonical polynomial form of e.
func Arithmetic(e ast.Arithmetic) ast.Arithmetic {
	switch n := e.(type) {
	case *ast.Element, *ast.Const:
		return n
	case *ast.BinaryArithmetic:
		reduced := reduce(n)
		if op, ok := reduced.(*ast.BinaryArithmetic); ok {
			return Collect(op).Expression()
		}
		return reduced
	default:
		panic(fmt.Sprintf("simplifier: unexpected arithmetic node %T", e))
	}
}

// Logical returns the canonical form of e.
func Logical(e ast.Logical) ast.Logical {
	switch n := e.(type) {
	case *ast.Bool:
		return n
	case *ast.Comparison:
		return comparison(n)
	case *ast.Connective:
		return connective(n)
	default:
		panic(fmt.Sprintf("simplifier: unexpected logical node %T", e))
	}
}
