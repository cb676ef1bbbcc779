// Package composer folds a sequence of calls into one predicate and one
// mapping over the original element.
package composer

import (
	"fmt"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	"github.com/sambeau/chainfold/pkg/chainfold/simplifier"
)

// Composer holds the running state of a chain. The zero value is not
// ready for use; call New.
type Composer struct {
	mapping ast.Arithmetic
	filter  ast.Logical
	calls   []ast.Call
}

// New returns a composer for the empty chain: keep everything and map
// element to itself.
func New() *Composer {
	return &Composer{
		mapping: ast.NewElement(),
		filter:  ast.NewBool(true),
	}
}

// Apply folds call into the running state. The running mapping is
// substituted for element in the call's expression, so the stored filter
// and mapping always refer to the original element.
func (c *Composer) Apply(call ast.Call) error {
	switch call.Kind {
	case ast.Filter:
		expr, ok := call.Expr.(ast.Logical)
		if !ok {
			return fmt.Errorf("composer: filter call with %s expression %s", call.Expr.Capability(), call.Expr)
		}
		c.filter = ast.NewAnd(c.filter, ast.SubstituteLogical(expr, c.mapping))
	case ast.Map:
		expr, ok := call.Expr.(ast.Arithmetic)
		if !ok {
			return fmt.Errorf("composer: map call with %s expression %s", call.Expr.Capability(), call.Expr)
		}
		c.mapping = ast.SubstituteArithmetic(expr, c.mapping)
	default:
		return fmt.Errorf("composer: unknown call kind %d", call.Kind)
	}
	c.calls = append(c.calls, call)
	return nil
}

// Filter returns the folded predicate before simplification.
func (c *Composer) Filter() ast.Logical { return c.filter }

// Mapping returns the folded mapping before simplification.
func (c *Composer) Mapping() ast.Arithmetic { return c.mapping }

// Calls returns the calls applied so far.
func (c *Composer) Calls() []ast.Call {
	out := make([]ast.Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Result simplifies the running state into the final filter and map calls.
// When the filter can never hold the mapping is irrelevant and collapses
// to element.
func (c *Composer) Result() (filter, mapping ast.Call) {
	f := simplifier.Logical(c.filter)
	var m ast.Arithmetic = ast.NewElement()
	if b, ok := f.(*ast.Bool); !ok || b.Value {
		m = simplifier.Arithmetic(c.mapping)
	}
	return ast.Call{Kind: ast.Filter, Expr: f}, ast.Call{Kind: ast.Map, Expr: m}
}

// Compose applies every call and returns the rendered canonical pair.
func Compose(calls []ast.Call) (string, error) {
	c := New()
	for _, call := range calls {
		if err := c.Apply(call); err != nil {
			return "", err
		}
	}
	f, m := c.Result()
	return ast.JoinCalls(f, m), nil
}
