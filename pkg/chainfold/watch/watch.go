// Package watch re-runs a batch conversion whenever its input file changes.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/chainfold/pkg/chainfold/batch"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Output   string    // result file; empty writes to Stdout
	Stdout   io.Writer // results (when Output is empty) and [WATCH] messages
	Stderr   io.Writer // [WATCH ERROR] messages
	Debounce time.Duration
	Batch    batch.Options

	// OnRun is called after every conversion run.
	OnRun func(batch.Summary, error)
}

// Watcher converts an input file on start and again after each change.
type Watcher struct {
	watcher *fsnotify.Watcher
	input   string
	opts    Options

	mu   sync.Mutex
	runs uint64
}

// New creates a watcher for input. The file's directory is watched so that
// editors which replace the file on save are still seen.
func New(input string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", input, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch: %w", err)
	}

	return &Watcher{watcher: fsWatcher, input: abs, opts: opts}, nil
}

// Run converts the input once, then after every change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logInfo("watching %s", w.input)
	w.convert(ctx)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.input {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// restart the quiet period on every change
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logInfo("input changed: %s", w.input)
			w.convert(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// Runs returns the number of conversion runs so far.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *Watcher) convert(ctx context.Context) {
	summary, err := w.runOnce(ctx)

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err != nil {
		w.logError("%v", err)
	} else {
		w.logInfo("%s", summary)
	}
	if w.opts.OnRun != nil {
		w.opts.OnRun(summary, err)
	}
}

func (w *Watcher) runOnce(ctx context.Context) (batch.Summary, error) {
	in, err := os.Open(w.input)
	if err != nil {
		return batch.Summary{}, err
	}
	defer in.Close()

	if w.opts.Output == "" {
		return batch.Run(ctx, in, w.opts.Stdout, w.opts.Batch)
	}

	// write the whole result at once so readers never see a partial file
	var buf bytes.Buffer
	summary, err := batch.Run(ctx, in, &buf, w.opts.Batch)
	if err != nil {
		return summary, err
	}
	if err := os.WriteFile(w.opts.Output, buf.Bytes(), 0644); err != nil {
		return summary, fmt.Errorf("write %s: %w", w.opts.Output, err)
	}
	return summary, nil
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.opts.Stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.opts.Stderr, "[WATCH ERROR] "+format+"\n", args...)
}
