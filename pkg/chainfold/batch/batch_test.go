package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/sambeau/chainfold/pkg/chainfold/history"
)

const sampleInput = "map{(element+5)}%>%filter{(element>10)}\n" +
	"map{(1+)}\n" +
	"filter{element}\n" +
	"filter{(element>5)}%>%filter{(element>2)}\r\n" +
	"\n"

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	summary, err := Run(context.Background(), strings.NewReader(sampleInput), &out, Options{Workers: 3})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("Run() wrote %d lines, want 5:\n%s", len(lines), out.String())
	}

	tests := []struct {
		line   int
		prefix string
		exact  bool
	}{
		{0, "filter{(element>5)}%>%map{(5+element)}", true},
		{1, "SYNTAX ERROR: column 8: ", false},
		{2, "TYPE ERROR: column 1: filter expects logical expression", false},
		{3, "filter{(element>5)}%>%map{element}", true},
		{4, "filter{(0=0)}%>%map{element}", true},
	}
	for _, tt := range tests {
		got := lines[tt.line]
		if tt.exact && got != tt.prefix {
			t.Errorf("line %d = %q, want %q", tt.line+1, got, tt.prefix)
		}
		if !tt.exact && !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("line %d = %q, want prefix %q", tt.line+1, got, tt.prefix)
		}
	}

	if summary.Lines != 5 || summary.Converted != 3 || summary.SyntaxErrors != 1 || summary.TypeErrors != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Failed() != 2 {
		t.Errorf("Failed() = %d, want 2", summary.Failed())
	}
	if summary.RunID == "" {
		t.Error("summary has no run ID")
	}
}

func TestRunPreservesOrder(t *testing.T) {
	var in strings.Builder
	var want strings.Builder
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			in.WriteString("map{(element+1)}\n")
			want.WriteString("filter{(0=0)}%>%map{(1+element)}\n")
		} else {
			in.WriteString("map{(element*element)}%>%filter{(element>0)}\n")
			want.WriteString("filter{((element*element)>0)}%>%map{(element*element)}\n")
		}
	}

	var out bytes.Buffer
	if _, err := Run(context.Background(), strings.NewReader(in.String()), &out, Options{Workers: 8}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.String() != want.String() {
		t.Error("output lines are out of input order")
	}
}

func TestRunCustomPrefixes(t *testing.T) {
	var out bytes.Buffer
	opts := Options{SyntaxPrefix: "SYSTEM ERROR: ", TypePrefix: "TYPE: "}
	if _, err := Run(context.Background(), strings.NewReader("map{}\nmap{(1=1)}\n"), &out, opts); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "SYSTEM ERROR: ") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "TYPE: ") {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	input := "map{(element+1)}\nmap{(1=1)}\n"
	if _, err := Run(context.Background(), strings.NewReader(input), &out, Options{Format: FormatJSON}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	dec := json.NewDecoder(&out)
	var first, second map[string]any
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decode line 1: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decode line 2: %v", err)
	}

	if first["line"] != float64(1) || first["output"] != "filter{(0=0)}%>%map{(1+element)}" {
		t.Errorf("line 1 = %v", first)
	}
	if _, ok := first["error"]; ok {
		t.Errorf("line 1 has an error field: %v", first)
	}

	errObj, ok := second["error"].(map[string]any)
	if !ok {
		t.Fatalf("line 2 has no error object: %v", second)
	}
	if errObj["class"] != "type" || errObj["code"] != "TYPE-0002" {
		t.Errorf("line 2 error = %v", errObj)
	}
	if _, ok := second["output"]; ok {
		t.Errorf("line 2 has an output field: %v", second)
	}
}

func TestRunMarkdown(t *testing.T) {
	var out bytes.Buffer
	input := "map{(element+1)}\nmap{(1+)}\n"
	if _, err := Run(context.Background(), strings.NewReader(input), &out, Options{Format: FormatMarkdown}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"| Line | Input | Result |",
		"| 1 | `map{(element+1)}` | `filter{(0=0)}%>%map{(1+element)}` |",
		"| 2 | `map{(1+)}` | **syntax error:** column",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown output missing %q:\n%s", want, got)
		}
	}
}

func TestRunHTML(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(context.Background(), strings.NewReader("map{(element+1)}\n"), &out, Options{Format: FormatHTML}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"<table>", "<th", "<code>map{(element+1)}</code>", "<code>filter{(0=0)}%&gt;%map{(1+element)}</code>"} {
		if !strings.Contains(got, want) {
			t.Errorf("html output missing %q:\n%s", want, got)
		}
	}
}

func TestRunWithHistory(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open() error: %v", err)
	}
	defer store.Close()

	input := "map{(element+1)}\nfilter{element}\n"
	opts := Options{History: store, Cache: true, Workers: 2}

	first, err := Run(ctx, strings.NewReader(input), &bytes.Buffer{}, opts)
	if err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	if first.Cached != 0 {
		t.Errorf("first run cached %d lines, want 0", first.Cached)
	}

	var out bytes.Buffer
	second, err := Run(ctx, strings.NewReader(input), &out, opts)
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if second.Cached != 1 {
		t.Errorf("second run cached %d lines, want 1", second.Cached)
	}
	if second.RunID == first.RunID {
		t.Error("runs share a run ID")
	}
	if !strings.HasPrefix(out.String(), "filter{(0=0)}%>%map{(1+element)}\n") {
		t.Errorf("cached output = %q", out.String())
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	// cached lines are not recorded again
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	entries, err := store.Run(ctx, first.RunID)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("first run recorded %d entries, want 2", len(entries))
	}
	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
			if e.ErrorClass != "type" {
				t.Errorf("failed entry class = %q, want type", e.ErrorClass)
			}
		}
	}
	if failed != 1 {
		t.Errorf("recorded %d failures, want 1", failed)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := strings.Repeat("map{(element+1)}\n", 50)
	_, err := Run(ctx, strings.NewReader(input), &bytes.Buffer{}, Options{Workers: 1})
	if err == nil {
		t.Fatal("Run() with a cancelled context expected error")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummaryFormat(t *testing.T) {
	s := Summary{Lines: 1234, Converted: 1200, SyntaxErrors: 30, TypeErrors: 4}

	want := "1,234 lines: 1,200 converted, 30 syntax errors, 4 type errors, 0 cached (0s)"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := s.Format(language.German); !strings.HasPrefix(got, "1.234 lines: 1.200 converted") {
		t.Errorf("Format(German) = %q", got)
	}
}

func TestSummaryMerge(t *testing.T) {
	total := Summary{RunID: "first", Lines: 2, Converted: 1, TypeErrors: 1}
	total.Merge(Summary{RunID: "second", Lines: 3, Converted: 1, SyntaxErrors: 2, Cached: 1})

	want := Summary{RunID: "first", Lines: 5, Converted: 2, SyntaxErrors: 2, TypeErrors: 1, Cached: 1}
	if total != want {
		t.Errorf("Merge() = %+v, want %+v", total, want)
	}
}
