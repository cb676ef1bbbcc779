// Package repl is the interactive chain shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
	"github.com/sambeau/chainfold/pkg/chainfold/history"
)

const DefaultPrompt = "chainfold> "

const defaultHistoryLimit = 10

const helpText = `REPL Commands:
  :help, :h, :?      Show this help
  :explain <chain>   Show the calls, the raw fold and the result
  :history [n]       Show the last n conversions (default 10)
  :quit, exit, quit  Exit the REPL

Anything else is converted as a chain, e.g.
  map{(element+5)}%>%filter{(element>10)}
`

// Words offered by tab completion.
var completionWords = []string{
	"filter{", "map{", "element",
	":help", ":explain", ":history", ":quit",
}

// Options configures a Session.
type Options struct {
	Prompt      string
	HistoryFile string // liner line history; empty disables it
	Version     string

	Converter *chainfold.Converter
	History   *history.Store // optional; backs :history and records results
}

// Session evaluates REPL input. It is separate from the terminal loop so it
// can be driven directly.
type Session struct {
	out   io.Writer
	opts  Options
	runID string
}

// NewSession returns a session writing to out.
func NewSession(out io.Writer, opts Options) *Session {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Converter == nil {
		opts.Converter = chainfold.NewConverter()
	}
	return &Session{out: out, opts: opts, runID: history.NewRunID()}
}

// Eval handles one line of input and reports whether the session should end.
func (s *Session) Eval(ctx context.Context, input string) (quit bool) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false
	case input == "exit" || input == "quit":
		return true
	case strings.HasPrefix(input, ":"):
		return s.command(ctx, input)
	}

	out, err := s.opts.Converter.Convert(ctx, input)
	s.record(ctx, input, out, err)
	if err != nil {
		s.printError(err)
		return false
	}
	fmt.Fprintln(s.out, out)
	return false
}

func (s *Session) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help", ":h", ":?":
		io.WriteString(s.out, helpText)

	case ":explain", ":e":
		s.explain(ctx, arg)

	case ":history":
		s.showHistory(ctx, arg)

	case ":quit", ":q":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", name)
	}
	return false
}

func (s *Session) explain(ctx context.Context, chain string) {
	res, err := s.opts.Converter.Explain(ctx, chain)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.out, "calls:")
	for i, call := range res.Calls {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, call)
	}
	fmt.Fprintf(s.out, "raw filter: %s\n", res.RawFilter)
	fmt.Fprintf(s.out, "raw map:    %s\n", res.RawMap)
	fmt.Fprintf(s.out, "result:     %s\n", res.Output)
}

func (s *Session) showHistory(ctx context.Context, arg string) {
	if s.opts.History == nil {
		fmt.Fprintln(s.out, "History is disabled (set history.enabled in chainfold.yaml)")
		return
	}
	limit := defaultHistoryLimit
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			fmt.Fprintf(s.out, "Invalid count: %s\n", arg)
			return
		}
		limit = n
	}

	entries, err := s.opts.History.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(s.out, "history: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "(no conversions)")
		return
	}
	// oldest first, like a shell history
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Failed() {
			fmt.Fprintf(s.out, "  %s\n    %s error: %s\n", e.Input, e.ErrorClass, e.ErrorMessage)
		} else {
			fmt.Fprintf(s.out, "  %s\n    %s\n", e.Input, e.Output)
		}
	}
}

func (s *Session) record(ctx context.Context, input, output string, err error) {
	if s.opts.History == nil {
		return
	}
	entry := history.Entry{RunID: s.runID, Input: input, Output: output}
	if err != nil {
		entry.ErrorClass = string(perrors.ClassOf(err))
		entry.ErrorMessage = err.Error()
	}
	if rerr := s.opts.History.Record(ctx, entry); rerr != nil {
		fmt.Fprintf(s.out, "history: %v\n", rerr)
	}
}

func (s *Session) printError(err error) {
	var ce *perrors.ChainError
	if errors.As(err, &ce) {
		io.WriteString(s.out, ce.PrettyString())
		io.WriteString(s.out, "\n")
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// Start runs the REPL on the terminal until the user quits or input ends.
func Start(ctx context.Context, out io.Writer, opts Options) error {
	session := NewSession(out, opts)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	historyFile := session.opts.HistoryFile
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(historyFile), 0755); err != nil {
				return
			}
			if f, err := os.Create(historyFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	if session.opts.Version != "" {
		fmt.Fprintf(out, "chainfold %s\n", session.opts.Version)
	}
	fmt.Fprintln(out, "Type a chain to convert it, :help for commands.")

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt(session.opts.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return err
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.Eval(ctx, input) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

// complete returns completions for the word under the cursor.
func complete(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	// a chain has no spaces, so split on the call boundaries instead
	start := strings.LastIndexAny(line, " {}()%>") + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	var matches []string
	for _, w := range completionWords {
		if strings.HasPrefix(w, word) && w != word {
			matches = append(matches, prefix+w)
		}
	}
	return matches
}
