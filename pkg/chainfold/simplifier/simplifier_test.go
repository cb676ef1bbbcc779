package simplifier

import (
	"testing"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	"github.com/sambeau/chainfold/pkg/chainfold/parser"
)

func mustParse(t *testing.T, input string) ast.Expression {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return expr
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"element", "element"},
		{"7", "7"},
		{"(element+1)", "(1+element)"},
		{"(element+-1)", "(-1+element)"},
		{"(element-1)", "(-1+element)"},
		{"(element--1)", "(1+element)"},
		{"(0*element)", "0"},
		{"(element*0)", "0"},
		{"(1*element)", "element"},
		{"(element*1)", "element"},
		{"(0+element)", "element"},
		{"(element-0)", "element"},
		{"(0-element)", "(-1*element)"},
		{"((1+element)+4)", "(5+element)"},
		{"(5*(1+element))", "(5+(5*element))"},
		{"((1+element)+element)", "(1+(2*element))"},
		{"((1+element)-element)", "1"},
		{"((2+element)*element)", "((2*element)+(element*element))"},
		{"((2+element)*(5+element))", "((10+(7*element))+(element*element))"},
		{"((2+element)*(5-element))", "((10+(3*element))-(element*element))"},
		{"((element*element)*((1+element)-element))", "(element*element)"},
		{"(2*(2*element))", "(4*element)"},
		{"((element*2)*3)", "(6*element)"},
		{"(element*(2*element))", "(2*(element*element))"},
		{"((7*3)+(-1--10))", "30"},
		{"(element-element)", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Simplify(mustParse(t, tt.input))
			if got.String() != tt.want {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestComparison(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(element>1)", "(element>1)"},
		{"((element+5)>10)", "(element>5)"},
		{"((element+1)=7)", "(element=6)"},
		{"(5=5)", "(0=0)"},
		{"(5>30)", "(1=0)"},
		{"(-5>-2)", "(1=0)"},
		{"(2>-5)", "(0=0)"},
		{"((0-element)>0)", "((-1*element)>0)"},
		{"(((element*element)+1)>1)", "((element*element)>0)"},
		{"((element*element)>-1)", "((element*element)>-1)"},
		{"(3<element)", "((-1*element)<-3)"},
		{"(element=element)", "(0=0)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Simplify(mustParse(t, tt.input))
			if got.String() != tt.want {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestConnectives(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// absorption
		{"((element>1)&(1=1))", "(element>1)"},
		{"((1=1)&(element<1))", "(element<1)"},
		{"((7=0)&(element=1))", "(1=0)"},
		{"((element=1)&(-5>-2))", "(1=0)"},
		{"((7=0)|(element>-3))", "(element>-3)"},
		{"((element>10)|(2>-5))", "(0=0)"},
		{"((1=1)|(2=3))", "(0=0)"},

		// And interval table
		{"((element<3)&(element<5))", "(element<3)"},
		{"((element>3)&(element>5))", "(element>5)"},
		{"((element<3)&(element>5))", "(1=0)"},
		{"((element<5)&(element>3))", "((element<5)&(element>3))"},
		{"((element>5)&(element<3))", "(1=0)"},
		{"((element=2)&(element=2))", "(element=2)"},
		{"((element=2)&(element=3))", "(1=0)"},
		{"((element<5)&(element=2))", "(element=2)"},
		{"((element<1)&(element=2))", "(1=0)"},
		{"((element=2)&(element<5))", "(element=2)"},
		{"((element=7)&(element<5))", "(1=0)"},
		{"((element>0)&(element=2))", "(element=2)"},
		{"((element>3)&(element=2))", "(1=0)"},
		{"((element=2)&(element>0))", "(element=2)"},
		{"((element=-1)&(element>0))", "(1=0)"},

		// Or interval table
		{"((element<3)|(element<5))", "(element<5)"},
		{"((element>3)|(element>5))", "(element>3)"},
		{"((element<5)|(element>3))", "(0=0)"},
		{"((element<3)|(element>5))", "((element<3)|(element>5))"},
		{"((element>3)|(element<5))", "(0=0)"},
		{"((element>5)|(element<-5))", "((element>5)|(element<-5))"},
		{"((element=2)|(element=2))", "(element=2)"},
		{"((element=2)|(element=3))", "((element=2)|(element=3))"},
		{"((element<5)|(element=2))", "(element<5)"},
		{"((element=2)|(element<5))", "(element<5)"},
		{"((element>0)|(element=2))", "(element>0)"},
		{"((element=2)|(element>0))", "(element>0)"},
		{"((element=-2)|(element>0))", "((element=-2)|(element>0))"},

		// different left sides are left alone
		{"((element>0)&((element*element)=0))", "((element>0)&((element*element)=0))"},

		// distribution of & over |
		{"((element>-10)&((element>5)|(element<-5)))", "((element>5)|((element>-10)&(element<-5)))"},
		{"(((element<0)|(element>0))&(element>0))", "(element>0)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Simplify(mustParse(t, tt.input))
			if got.String() != tt.want {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"((2+element)*(5-element))",
		"(((element+1)*(element+1))*(element+1))",
		"((0-element)>0)",
		"((element>-10)&((element>5)|(element<-5)))",
		"(((element*element)+(2*element))<(element-7))",
		"((element=1)|((element*element)>4))",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := Simplify(mustParse(t, input))
			twice := Simplify(once)
			if !ast.Equal(once, twice) {
				t.Errorf("Simplify not idempotent: %s then %s", once, twice)
			}
		})
	}
}

func TestSimplifyDoesNotModifyInput(t *testing.T) {
	expr := mustParse(t, "((2+element)*(5+element))")
	before := expr.String()
	Simplify(expr)
	if expr.String() != before {
		t.Errorf("input changed from %s to %s", before, expr.String())
	}
}

func TestPolynomial(t *testing.T) {
	expr := ast.NewSubtract(
		ast.NewAdd(ast.NewMultiply(ast.NewConst(3), ast.NewPower(2)), ast.NewConst(4)),
		ast.NewAdd(ast.NewMultiply(ast.NewPower(2), ast.NewConst(3)), ast.NewElement()),
	)

	p := Collect(expr)
	if len(p) != 2 {
		t.Fatalf("Collect() = %v, want two terms", p)
	}
	if p.Constant() != 4 || p[1] != -1 {
		t.Errorf("Collect() = %v, want {0:4 1:-1}", p)
	}
	if got := p.Expression().String(); got != "(4-element)" {
		t.Errorf("Expression() = %q, want %q", got, "(4-element)")
	}

	if got := (Polynomial{}).Expression().String(); got != "0" {
		t.Errorf("empty Expression() = %q, want 0", got)
	}

	p = Polynomial{3: -2, 1: 5, 0: -1}
	if got := p.Expression().String(); got != "((-1+(5*element))-(2*((element*element)*element)))" {
		t.Errorf("Expression() = %q", got)
	}
}
