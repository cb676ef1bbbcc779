package ast

import "strings"

// Separator joins calls in a chain.
const Separator = "%>%"

// CallKind is the keyword of a call.
type CallKind int

const (
	Filter CallKind = iota
	Map
)

func (k CallKind) String() string {
	if k == Map {
		return "map"
	}
	return "filter"
}

// Requires returns the capability a call of this kind accepts.
func (k CallKind) Requires() Capability {
	if k == Map {
		return CapArithmetic
	}
	return CapLogical
}

// Call is one filter{...} or map{...} unit of a chain. Expr is Logical for
// Filter calls and Arithmetic for Map calls.
type Call struct {
	Kind CallKind
	Expr Expression
}

func (c Call) String() string {
	return c.Kind.String() + "{" + c.Expr.String() + "}"
}

// JoinCalls renders calls as a chain.
func JoinCalls(calls ...Call) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = c.String()
	}
	return strings.Join(parts, Separator)
}
