package batch

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

// Summary counts the results of one run.
type Summary struct {
	RunID        string        `json:"run_id"`
	Lines        int           `json:"lines"`
	Converted    int           `json:"converted"`
	SyntaxErrors int           `json:"syntax_errors"`
	TypeErrors   int           `json:"type_errors"`
	Cached       int           `json:"cached"`
	Elapsed      time.Duration `json:"elapsed"`
}

func (s *Summary) add(line Line) {
	s.Lines++
	if line.Cached {
		s.Cached++
	}
	switch {
	case line.Err == nil:
		s.Converted++
	case perrors.IsType(line.Err):
		s.TypeErrors++
	default:
		s.SyntaxErrors++
	}
}

// Merge adds the counts of o to s. The run ID of s is kept.
func (s *Summary) Merge(o Summary) {
	s.Lines += o.Lines
	s.Converted += o.Converted
	s.SyntaxErrors += o.SyntaxErrors
	s.TypeErrors += o.TypeErrors
	s.Cached += o.Cached
	s.Elapsed += o.Elapsed
}

// Failed returns the number of lines that did not convert.
func (s Summary) Failed() int {
	return s.SyntaxErrors + s.TypeErrors
}

// String formats the summary in English.
func (s Summary) String() string {
	return s.Format(language.English)
}

// Format formats the summary with the number conventions of tag.
func (s Summary) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%v lines: %v converted, %v syntax errors, %v type errors, %v cached (%v)",
		number.Decimal(s.Lines),
		number.Decimal(s.Converted),
		number.Decimal(s.SyntaxErrors),
		number.Decimal(s.TypeErrors),
		number.Decimal(s.Cached),
		s.Elapsed.Round(time.Millisecond),
	)
}
