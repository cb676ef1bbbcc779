package composer

import (
	"testing"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	"github.com/sambeau/chainfold/pkg/chainfold/parser"
)

func TestNewIsIdentity(t *testing.T) {
	c := New()
	if got := c.Filter().String(); got != "(0=0)" {
		t.Errorf("Filter() = %q, want %q", got, "(0=0)")
	}
	if got := c.Mapping().String(); got != "element" {
		t.Errorf("Mapping() = %q, want %q", got, "element")
	}
	f, m := c.Result()
	if got := ast.JoinCalls(f, m); got != "filter{(0=0)}%>%map{element}" {
		t.Errorf("Result() = %q", got)
	}
}

func TestApplySubstitutesRunningMap(t *testing.T) {
	calls, err := parser.ParseChain("map{(element+5)}%>%filter{(element>10)}%>%map{(element*2)}")
	if err != nil {
		t.Fatalf("ParseChain() error: %v", err)
	}

	c := New()
	for _, call := range calls {
		if err := c.Apply(call); err != nil {
			t.Fatalf("Apply(%s) error: %v", call, err)
		}
	}

	if got, want := c.Filter().String(), "((0=0)&((element+5)>10))"; got != want {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
	if got, want := c.Mapping().String(), "((element+5)*2)"; got != want {
		t.Errorf("Mapping() = %q, want %q", got, want)
	}
	if got := len(c.Calls()); got != 3 {
		t.Errorf("len(Calls()) = %d, want 3", got)
	}

	f, m := c.Result()
	if got, want := ast.JoinCalls(f, m), "filter{(element>5)}%>%map{(10+(2*element))}"; got != want {
		t.Errorf("Result() = %q, want %q", got, want)
	}
}

func TestApplyDoesNotModifyCall(t *testing.T) {
	calls, err := parser.ParseChain("map{(element*element)}%>%map{(element+1)}")
	if err != nil {
		t.Fatalf("ParseChain() error: %v", err)
	}
	before := calls[1].String()

	c := New()
	for _, call := range calls {
		if err := c.Apply(call); err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
	}
	if calls[1].String() != before {
		t.Errorf("call changed from %s to %s", before, calls[1])
	}
	if got, want := c.Mapping().String(), "((element*element)+1)"; got != want {
		t.Errorf("Mapping() = %q, want %q", got, want)
	}
}

func TestFalseFilterDropsMapping(t *testing.T) {
	got, err := Compose([]ast.Call{
		{Kind: ast.Map, Expr: ast.NewAdd(ast.NewElement(), ast.NewConst(100))},
		{Kind: ast.Filter, Expr: ast.NewEquals(ast.NewConst(1), ast.NewConst(2))},
	})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if want := "filter{(1=0)}%>%map{element}"; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestApplyRejectsMismatchedCall(t *testing.T) {
	c := New()
	if err := c.Apply(ast.Call{Kind: ast.Filter, Expr: ast.NewElement()}); err == nil {
		t.Error("Apply(filter{element}) expected error")
	}
	if err := c.Apply(ast.Call{Kind: ast.Map, Expr: ast.NewBool(true)}); err == nil {
		t.Error("Apply(map{(0=0)}) expected error")
	}
	if len(c.Calls()) != 0 {
		t.Errorf("rejected calls were recorded: %v", c.Calls())
	}
}
