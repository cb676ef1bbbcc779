package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sambeau/chainfold/pkg/chainfold/batch"
	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	"github.com/sambeau/chainfold/pkg/chainfold/history"
	"github.com/sambeau/chainfold/pkg/chainfold/telemetry"
)

type convertFlags struct {
	exprs   []string
	format  string
	workers int
	stats   bool
}

func (a *app) newConvertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Convert chains from files, -e arguments or standard input",
		Long: "Convert one chain per line. Results are written in input order; a chain that\n" +
			"fails to convert produces an error line and exit status 1.",
		Example: "  chainfold convert -e 'map{(element+5)}%>%filter{(element>10)}'\n" +
			"  chainfold convert --format markdown chains.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, flags, args)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.exprs, "expr", "e", nil, "Chain to convert (repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: text | json | markdown | html (default from config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent conversions (default from config, 0 = number of CPUs)")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "Print a summary and conversion metrics to stderr")

	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, flags convertFlags, files []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(flags.exprs) > 0 && len(files) > 0 {
		return fmt.Errorf("-e cannot be combined with input files")
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return exitError(exitFileNotFound, "file not found: %s", file)
			}
			return fmt.Errorf("reading file: %w", err)
		}
	}

	opts := a.batchOptions(nil, nil)
	if flags.format != "" {
		format, err := batch.ParseFormat(flags.format)
		if err != nil {
			return exitError(exitConfig, "%v", err)
		}
		opts.Format = format
	}
	if flags.workers < 0 {
		return exitError(exitConfig, "invalid workers: %d (must be 0 or more)", flags.workers)
	}
	if flags.workers > 0 {
		opts.Workers = flags.workers
	}

	converterOpts := a.converterOptions(cmd)
	var providers *telemetry.Providers
	if a.cfg.Telemetry.Enabled || flags.stats {
		p, err := telemetry.Setup(ctx, telemetry.Settings{
			ServiceName: a.cfg.Telemetry.ServiceName,
			Endpoint:    a.cfg.Telemetry.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			if err := p.Shutdown(context.Background()); err != nil {
				a.logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()
		observer, err := p.Observer()
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		converterOpts = append(converterOpts, chainfold.WithObserver(observer))
		providers = p
	}
	opts.Converter = chainfold.NewConverter(converterOpts...)

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts.History = store
	}

	// one run ID covers every input of this invocation
	opts.RunID = history.NewRunID()
	total := batch.Summary{RunID: opts.RunID}

	run := func(r io.Reader) error {
		summary, err := batch.Run(ctx, r, out, opts)
		total.Merge(summary)
		return err
	}

	switch {
	case len(flags.exprs) > 0:
		err = run(strings.NewReader(strings.Join(flags.exprs, "\n")))
	case len(files) > 0:
		for _, file := range files {
			if err = convertFile(file, run); err != nil {
				break
			}
		}
	default:
		err = run(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	if flags.stats {
		a.printStats(ctx, cmd.ErrOrStderr(), total, providers)
	}
	if total.Failed() > 0 {
		return exitError(exitConversion, "%d of %d chains failed to convert", total.Failed(), total.Lines)
	}
	return nil
}

func convertFile(path string, run func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return run(f)
}

func (a *app) printStats(ctx context.Context, w io.Writer, total batch.Summary, providers *telemetry.Providers) {
	fmt.Fprintln(w, total)
	if providers == nil {
		return
	}
	st, err := providers.Stats(ctx)
	if err != nil {
		a.logger.Warn("collecting metrics failed", "error", err)
		return
	}
	fmt.Fprintf(w, "converted %d chains (%d ok, %d syntax, %d type) with %d calls, mean %s\n",
		st.Total(),
		st.Outcomes[telemetry.OutcomeOK],
		st.Outcomes[telemetry.OutcomeSyntax],
		st.Outcomes[telemetry.OutcomeType],
		st.Calls,
		st.Mean(),
	)
}
