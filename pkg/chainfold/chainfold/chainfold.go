// Package chainfold converts a chain of filter and map calls into the
// equivalent single filter followed by a single map.
//
//	out, err := chainfold.Convert("map{(element+5)}%>%filter{(element>10)}")
//	// out == "filter{(element>5)}%>%map{(5+element)}"
//
// Errors are *errors.ChainError values from package
// github.com/sambeau/chainfold/pkg/chainfold/errors; use errors.IsSyntax and
// errors.IsType to classify them.
package chainfold

import (
	"context"
	"time"

	"github.com/sambeau/chainfold/pkg/chainfold/ast"
	"github.com/sambeau/chainfold/pkg/chainfold/composer"
	"github.com/sambeau/chainfold/pkg/chainfold/parser"
)

// Result describes one conversion step by step.
type Result struct {
	Input     string   `json:"input"`
	Calls     []string `json:"calls"`
	RawFilter string   `json:"raw_filter"`
	RawMap    string   `json:"raw_map"`
	Filter    string   `json:"filter"`
	Map       string   `json:"map"`
	Output    string   `json:"output"`
}

// Outcome is reported to an Observer when a conversion ends.
type Outcome struct {
	Input    string
	Output   string
	Calls    int
	Err      error
	Duration time.Duration
}

// Observer is notified around every conversion. ConversionStarted may
// return a derived context, which is passed to ConversionFinished.
type Observer interface {
	ConversionStarted(ctx context.Context, input string) context.Context
	ConversionFinished(ctx context.Context, outcome Outcome)
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger traces parsed calls and intermediate forms to l.
func WithLogger(l Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithObserver reports every conversion to o.
func WithObserver(o Observer) Option {
	return func(c *Converter) { c.observers = append(c.observers, o) }
}

// Converter converts call chains. It holds no per-conversion state and is
// safe for concurrent use.
type Converter struct {
	logger    Logger
	observers []Observer
}

// NewConverter returns a converter configured by opts.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{logger: NopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = NewConverter()

// Convert converts text with a default converter.
func Convert(text string) (string, error) {
	return defaultConverter.Convert(context.Background(), text)
}

// Explain explains text with a default converter.
func Explain(text string) (*Result, error) {
	return defaultConverter.Explain(context.Background(), text)
}

// Convert returns the canonical filter{P}%>%map{M} form of text.
func (c *Converter) Convert(ctx context.Context, text string) (string, error) {
	res, err := c.Explain(ctx, text)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Explain converts text and keeps the intermediate forms.
func (c *Converter) Explain(ctx context.Context, text string) (res *Result, err error) {
	for _, o := range c.observers {
		ctx = o.ConversionStarted(ctx, text)
	}
	start := time.Now()
	calls := 0
	defer func() {
		outcome := Outcome{Input: text, Calls: calls, Err: err, Duration: time.Since(start)}
		if res != nil {
			outcome.Output = res.Output
		}
		for _, o := range c.observers {
			o.ConversionFinished(ctx, outcome)
		}
	}()

	cp := parser.NewChainParser(text)
	comp := composer.New()
	for cp.More() {
		call, err := cp.Next()
		if err != nil {
			c.logger.LogLine("error:", err)
			return nil, err
		}
		c.logger.LogLine("call:", call)
		if err := comp.Apply(call); err != nil {
			return nil, err
		}
		calls++
	}

	c.logger.LogLine("folded filter:", comp.Filter())
	c.logger.LogLine("folded map:", comp.Mapping())

	filter, mapping := comp.Result()
	res = &Result{
		Input:     text,
		Calls:     make([]string, 0, calls),
		RawFilter: comp.Filter().String(),
		RawMap:    comp.Mapping().String(),
		Filter:    filter.Expr.String(),
		Map:       mapping.Expr.String(),
		Output:    ast.JoinCalls(filter, mapping),
	}
	for _, call := range comp.Calls() {
		res.Calls = append(res.Calls, call.String())
	}
	c.logger.LogLine("result:", res.Output)
	return res, nil
}
