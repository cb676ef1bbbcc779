package parser

import (
	"strings"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

const (
	exprStart = "{"
	exprEnd   = "}"
)

var callKinds = []ast.CallKind{ast.Filter, ast.Map}

// ChainParser splits a call chain into typed calls, one at a time.
type ChainParser struct {
	input string
	pos   int
}

// NewChainParser creates a parser for a whole chain.
func NewChainParser(input string) *ChainParser {
	return &ChainParser{input: input}
}

// ParseChain parses every call of the chain.
func ParseChain(input string) ([]ast.Call, error) {
	cp := NewChainParser(input)
	var calls []ast.Call
	for cp.More() {
		call, err := cp.Next()
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// More reports whether input remains.
func (cp *ChainParser) More() bool {
	return cp.pos < len(cp.input)
}

// Next parses the next call and consumes the separator that follows it.
func (cp *ChainParser) Next() (ast.Call, error) {
	start := cp.pos
	if !cp.More() {
		return ast.Call{}, perrors.NewWithColumn("SYNTAX-0105", start+1, nil)
	}

	kind, ok := cp.keyword()
	if !ok {
		name := cp.word()
		if name == "" {
			name = cp.input[start : start+1]
		}
		err := perrors.NewWithColumn("SYNTAX-0101", start+1, map[string]any{"Name": name})
		return ast.Call{}, err.WithSuggestion(name, []string{ast.Filter.String(), ast.Map.String()})
	}

	body, offset, err := cp.body(kind)
	if err != nil {
		return ast.Call{}, err
	}

	expr, err := ParseAt(body, offset)
	if err != nil {
		return ast.Call{}, err
	}

	if expr.Capability() != kind.Requires() {
		return ast.Call{}, perrors.NewWithColumn("TYPE-0002", start+1, map[string]any{
			"Call":     kind.String(),
			"Expected": kind.Requires().String(),
			"Actual":   expr.Capability().String(),
			"Expr":     expr.String(),
		})
	}

	if err := cp.separator(); err != nil {
		return ast.Call{}, err
	}

	return ast.Call{Kind: kind, Expr: expr}, nil
}

// keyword consumes a call keyword.
func (cp *ChainParser) keyword() (ast.CallKind, bool) {
	for _, kind := range callKinds {
		if strings.HasPrefix(cp.input[cp.pos:], kind.String()) {
			cp.pos += len(kind.String())
			return kind, true
		}
	}
	return 0, false
}

// body consumes "{...}" and returns the text between the braces together
// with its offset in the chain.
func (cp *ChainParser) body(kind ast.CallKind) (string, int, error) {
	if !strings.HasPrefix(cp.input[cp.pos:], exprStart) {
		return "", 0, perrors.NewWithColumn("SYNTAX-0102", cp.pos+1, map[string]any{"Call": kind.String()})
	}
	cp.pos++

	begin := cp.pos
	end := strings.Index(cp.input[begin:], exprEnd)
	if end < 0 {
		cp.pos = len(cp.input)
		return "", 0, perrors.NewWithColumn("SYNTAX-0103", cp.pos+1, map[string]any{"Call": kind.String()})
	}

	cp.pos = begin + end + len(exprEnd)
	return cp.input[begin : begin+end], begin, nil
}

// separator consumes "%>%" between two calls. At the end of input there is
// nothing to consume; a separator must be followed by another call.
func (cp *ChainParser) separator() error {
	if !cp.More() {
		return nil
	}
	rest := cp.input[cp.pos:]
	if !strings.HasPrefix(rest, ast.Separator) {
		got := rest
		if len(got) > len(ast.Separator) {
			got = got[:len(ast.Separator)]
		}
		return perrors.NewWithColumn("SYNTAX-0104", cp.pos+1, map[string]any{"Got": got})
	}
	cp.pos += len(ast.Separator)
	if !cp.More() {
		return perrors.NewWithColumn("SYNTAX-0105", cp.pos+1, nil)
	}
	return nil
}

// word consumes a run of letters.
func (cp *ChainParser) word() string {
	start := cp.pos
	for cp.pos < len(cp.input) && isLetter(cp.input[cp.pos]) {
		cp.pos++
	}
	return cp.input[start:cp.pos]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}
