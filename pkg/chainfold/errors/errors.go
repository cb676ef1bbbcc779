// Package errors provides structured error types for the chain language.
//
// Every failure of a conversion is a ChainError of exactly one class:
// ClassSyntax for malformed input and ClassType for well-formed input whose
// operands have the wrong capability. Messages come from a catalog of codes
// so that drivers can filter, template and serialize them.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassSyntax ErrorClass = "syntax" // Malformed chain or expression
	ClassType   ErrorClass = "type"   // Capability mismatch
)

// ChainError represents any error raised while converting a call chain.
type ChainError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "TYPE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Column  int            `json:"column"`          // 1-based column in the chain (0 if unknown)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface. The result is always a single line.
func (e *ChainError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("column %d: %s", e.Column, e.Message)
	}
	return e.Message
}

// String returns the error with its hints, one per indented line.
func (e *ChainError) String() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *ChainError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassType:
		sb.WriteString("Type error")
	default:
		sb.WriteString("Syntax error")
	}

	if e.Column > 0 {
		sb.WriteString(fmt.Sprintf(": column %d\n  ", e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Hint: ")
		} else {
			sb.WriteString("  or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *ChainError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ClassOf returns the class of the first ChainError in err's chain, or ""
// when err carries none.
func ClassOf(err error) ErrorClass {
	var ce *ChainError
	if stderrors.As(err, &ce) {
		return ce.Class
	}
	return ""
}

// IsSyntax reports whether err is (or wraps) a syntax error.
func IsSyntax(err error) bool {
	return ClassOf(err) == ClassSyntax
}

// IsType reports whether err is (or wraps) a type error.
func IsType(err error) bool {
	return ClassOf(err) == ClassType
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Expression syntax errors (SYNTAX-00xx)
	// ========================================
	"SYNTAX-0001": {
		Class:    ClassSyntax,
		Template: "operation was expected before '{{.Got}}'",
		Hints:    []string{"join operands with one of + - * > < = & |"},
	},
	"SYNTAX-0002": {
		Class:    ClassSyntax,
		Template: "primitive was expected before '{{.Got}}'",
		Hints:    []string{"an operand is `element`, an integer or a parenthesized expression"},
	},
	"SYNTAX-0003": {
		Class:    ClassSyntax,
		Template: "every binary expression must be wrapped in its own parentheses",
		Hints:    []string{"write (a+b) or ((a+b)+c), never a+b or (a+b+c)"},
	},
	"SYNTAX-0004": {
		Class:    ClassSyntax,
		Template: "unbalanced parentheses: {{.Missing}} ')' missing at end of expression",
	},
	"SYNTAX-0005": {
		Class:    ClassSyntax,
		Template: "unexpected ')' with no matching '('",
	},
	"SYNTAX-0006": {
		Class:    ClassSyntax,
		Template: "unary '-' must be followed by a number",
	},
	"SYNTAX-0007": {
		Class:    ClassSyntax,
		Template: "integer literal {{.Literal}} is out of range",
	},
	"SYNTAX-0008": {
		Class:    ClassSyntax,
		Template: "illegal symbol '{{.Symbol}}'",
	},

	// ========================================
	// Call chain syntax errors (SYNTAX-01xx)
	// ========================================
	"SYNTAX-0101": {
		Class:    ClassSyntax,
		Template: "unknown call '{{.Name}}': expected 'filter' or 'map'",
	},
	"SYNTAX-0102": {
		Class:    ClassSyntax,
		Template: "expected '{' after '{{.Call}}'",
		Hints:    []string{"{{.Call}}{<expression>}"},
	},
	"SYNTAX-0103": {
		Class:    ClassSyntax,
		Template: "expression of '{{.Call}}' must end with '}'",
	},
	"SYNTAX-0104": {
		Class:    ClassSyntax,
		Template: "expected '%>%' between calls, got '{{.Got}}'",
	},
	"SYNTAX-0105": {
		Class:    ClassSyntax,
		Template: "a call was expected after '%>%'",
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Class:    ClassType,
		Template: "operand {{.Operand}} of '{{.Operator}}' must be {{.Expected}}, got {{.Actual}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "{{.Call}} expects {{.Expected}} expression, got {{.Actual}} expression {{.Expr}}",
		Hints: []string{
			"{{if eq .Call \"filter\"}}filter takes a comparison such as (element>0){{else}}map takes arithmetic such as (element+1){{end}}",
		},
	},
}

// New creates a ChainError from the catalog.
// If the code is not found, creates a syntax error with the code as message.
func New(code string, data map[string]any) *ChainError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &ChainError{
			Class:   ClassSyntax,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &ChainError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithColumn creates a ChainError with position information.
func NewWithColumn(code string, column int, data map[string]any) *ChainError {
	err := New(code, data)
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *ChainError {
	return &ChainError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within a length-dependent
// threshold, otherwise an empty string. Exact matches are never suggested.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// 1-3 chars: 1 edit, 4-6 chars: 2 edits, 7+: 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// WithSuggestion appends a "Did you mean" hint when name is close to one of
// the candidates. The error is modified in place and returned.
func (e *ChainError) WithSuggestion(name string, candidates []string) *ChainError {
	if suggestion := FindClosestMatch(name, candidates); suggestion != "" {
		e.Hints = append(e.Hints, "Did you mean `"+suggestion+"`?")
	}
	return e
}
