package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	perrors "github.com/sambeau/chainfold/pkg/chainfold/errors"
)

// Format selects how results are written.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (must be text, json, markdown, or html)", s)
}

type formatter interface {
	write(lines []Line) error
}

func newFormatter(f Format, w io.Writer, opts Options) (formatter, error) {
	switch f {
	case FormatText:
		return &textFormatter{w: w, syntaxPrefix: opts.SyntaxPrefix, typePrefix: opts.TypePrefix}, nil
	case FormatJSON:
		return &jsonFormatter{w: w}, nil
	case FormatMarkdown:
		return &markdownFormatter{w: w}, nil
	case FormatHTML:
		return &htmlFormatter{w: w}, nil
	}
	return nil, fmt.Errorf("batch: unknown format %q", f)
}

// textFormatter writes one result per line, with error lines prefixed by
// their class.
type textFormatter struct {
	w            io.Writer
	syntaxPrefix string
	typePrefix   string
}

func (f *textFormatter) write(lines []Line) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.w, f.render(line)); err != nil {
			return err
		}
	}
	return nil
}

func (f *textFormatter) render(line Line) string {
	if line.Err == nil {
		return line.Output
	}
	if perrors.IsType(line.Err) {
		return f.typePrefix + line.Err.Error()
	}
	return f.syntaxPrefix + line.Err.Error()
}

// jsonFormatter writes one JSON object per line.
type jsonFormatter struct {
	w io.Writer
}

type jsonLine struct {
	Line
	Error *perrors.ChainError `json:"error,omitempty"`
}

func (f *jsonFormatter) write(lines []Line) error {
	enc := json.NewEncoder(f.w)
	for _, line := range lines {
		out := jsonLine{Line: line}
		if line.Err != nil {
			out.Error = asChainError(line.Err)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func asChainError(err error) *perrors.ChainError {
	if ce, ok := err.(*perrors.ChainError); ok {
		return ce
	}
	return perrors.NewSimple(perrors.ClassSyntax, err.Error())
}

// markdownFormatter writes a GitHub-flavoured table.
type markdownFormatter struct {
	w io.Writer
}

func (f *markdownFormatter) write(lines []Line) error {
	_, err := io.WriteString(f.w, markdownTable(lines))
	return err
}

func markdownTable(lines []Line) string {
	var sb strings.Builder
	sb.WriteString("| Line | Input | Result |\n")
	sb.WriteString("| ---: | --- | --- |\n")
	for _, line := range lines {
		result := line.Output
		if line.Err != nil {
			result = "**" + string(perrors.ClassOf(line.Err)) + " error:** " + line.Err.Error()
		}
		fmt.Fprintf(&sb, "| %d | %s | %s |\n", line.Number, markdownCode(line.Input), markdownCell(result, line.Err == nil))
	}
	return sb.String()
}

// markdownCode renders s as inline code safe inside a table cell.
func markdownCode(s string) string {
	if s == "" {
		return " "
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}

func markdownCell(s string, code bool) string {
	if code {
		return markdownCode(s)
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

// htmlFormatter renders the markdown table to an HTML fragment.
type htmlFormatter struct {
	w io.Writer
}

func (f *htmlFormatter) write(lines []Line) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdownTable(lines)), &buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := f.w.Write(buf.Bytes())
	return err
}
