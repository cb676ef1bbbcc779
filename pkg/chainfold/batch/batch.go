// Package batch converts a stream of chains, one per line, on a pool of
// workers and writes the results in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
	"github.com/sambeau/chainfold/pkg/chainfold/history"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// Options configures Run. The zero value converts with one worker per CPU
// and writes plain text.
type Options struct {
	Workers      int
	Format       Format
	SyntaxPrefix string // defaults to "SYNTAX ERROR: "
	TypePrefix   string // defaults to "TYPE ERROR: "

	Converter *chainfold.Converter // defaults to chainfold.NewConverter()
	History   *history.Store       // optional; every result is recorded
	Cache     bool                 // reuse successful results from History
	RunID     string               // defaults to history.NewRunID()

	Logger *slog.Logger
}

// Line is the result of one input line.
type Line struct {
	Number int    `json:"line"`
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Err    error  `json:"-"`
	Cached bool   `json:"cached,omitempty"`
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Format == "" {
		o.Format = FormatText
	}
	if o.SyntaxPrefix == "" {
		o.SyntaxPrefix = "SYNTAX ERROR: "
	}
	if o.TypePrefix == "" {
		o.TypePrefix = "TYPE ERROR: "
	}
	if o.Converter == nil {
		o.Converter = chainfold.NewConverter()
	}
	if o.RunID == "" {
		o.RunID = history.NewRunID()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Run reads chains from r, converts them and writes the formatted results
// to w. Conversion errors are reported per line and counted in the
// summary; the returned error is reserved for I/O, history and
// cancellation failures.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Summary, error) {
	opts.setDefaults()
	start := time.Now()
	summary := Summary{RunID: opts.RunID}

	formatter, err := newFormatter(opts.Format, w, opts)
	if err != nil {
		return summary, err
	}

	inputs, err := readLines(r)
	if err != nil {
		return summary, err
	}
	opts.Logger.Debug("batch started", "run_id", opts.RunID, "lines", len(inputs), "workers", opts.Workers)

	lines, err := convertAll(ctx, inputs, opts)
	if err != nil {
		return summary, err
	}

	for _, line := range lines {
		summary.add(line)
	}
	summary.Elapsed = time.Since(start)

	if err := formatter.write(lines); err != nil {
		return summary, fmt.Errorf("batch: write results: %w", err)
	}
	opts.Logger.Debug("batch finished",
		"run_id", opts.RunID,
		"lines", summary.Lines,
		"converted", summary.Converted,
		"syntax_errors", summary.SyntaxErrors,
		"type_errors", summary.TypeErrors,
		"cached", summary.Cached,
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("batch: read input: %w", err)
	}
	return lines, nil
}

// convertAll fans inputs out to opts.Workers goroutines. Results land in
// a slice indexed by line so output order never depends on scheduling.
func convertAll(ctx context.Context, inputs []string, opts Options) ([]Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]Line, len(inputs))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for range min(opts.Workers, max(len(inputs), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				line, err := convertLine(ctx, i+1, inputs[i], opts)
				if err != nil {
					fail(err)
				}
				results[i] = line
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			fail(ctx.Err())
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func convertLine(ctx context.Context, number int, input string, opts Options) (Line, error) {
	line := Line{Number: number, Input: input}

	if opts.History != nil && opts.Cache {
		entry, ok, err := opts.History.Lookup(ctx, input)
		if err != nil {
			return line, err
		}
		if ok {
			line.Output = entry.Output
			line.Cached = true
			return line, nil
		}
	}

	line.Output, line.Err = opts.Converter.Convert(ctx, input)

	if opts.History != nil {
		entry := history.Entry{RunID: opts.RunID, Input: input, Output: line.Output}
		if line.Err != nil {
			entry.ErrorClass = string(perrors.ClassOf(line.Err))
			entry.ErrorMessage = line.Err.Error()
		}
		if err := opts.History.Record(ctx, entry); err != nil {
			return line, err
		}
	}
	return line, nil
}
