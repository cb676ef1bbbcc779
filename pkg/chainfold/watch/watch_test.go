package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sambeau/chainfold/pkg/chainfold/batch"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitRun(t *testing.T, runs <-chan batch.Summary) batch.Summary {
	t.Helper()
	select {
	case s := <-runs:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a conversion run")
		return batch.Summary{}
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "chains.txt")
	output := filepath.Join(dir, "chains.out")
	if err := os.WriteFile(input, []byte("map{(element+1)}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan batch.Summary, 4)
	var logs syncBuffer
	w, err := New(input, Options{
		Output:   output,
		Stdout:   &logs,
		Stderr:   &logs,
		Debounce: 20 * time.Millisecond,
		OnRun: func(s batch.Summary, err error) {
			if err != nil {
				t.Errorf("run error: %v", err)
			}
			runs <- s
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	first := waitRun(t, runs)
	if first.Lines != 1 {
		t.Errorf("first run converted %d lines, want 1", first.Lines)
	}
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "filter{(0=0)}%>%map{(1+element)}\n" {
		t.Errorf("output = %q", got)
	}

	if err := os.WriteFile(input, []byte("map{(element+1)}\nfilter{element}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second := waitRun(t, runs)
	if second.Lines != 2 || second.TypeErrors != 1 {
		t.Errorf("second run = %+v", second)
	}
	got, err = os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(got), "TYPE ERROR: ") {
		t.Errorf("output after change = %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}

	if w.Runs() < 2 {
		t.Errorf("Runs() = %d, want at least 2", w.Runs())
	}
	if !strings.Contains(logs.String(), "[WATCH] watching ") {
		t.Errorf("logs = %q", logs.String())
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "chains.txt")
	if err := os.WriteFile(input, []byte("map{element}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runs := make(chan batch.Summary, 4)
	var out syncBuffer
	w, err := New(input, Options{
		Stdout:   &out,
		Stderr:   &out,
		Debounce: 20 * time.Millisecond,
		OnRun:    func(s batch.Summary, err error) { runs <- s },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitRun(t, runs)
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
		t.Error("a change to another file triggered a run")
	case <-time.After(200 * time.Millisecond):
	}
	if !strings.Contains(out.String(), "filter{(0=0)}%>%map{element}") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestNewMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.txt"), Options{}); err == nil {
		t.Error("New() on a missing file expected error")
	}
}
