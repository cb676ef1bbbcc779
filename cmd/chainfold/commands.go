package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	"github.com/sambeau/chainfold/pkg/chainfold/history"
	"github.com/sambeau/chainfold/pkg/chainfold/repl"
	"github.com/sambeau/chainfold/pkg/chainfold/watch"
)

func (a *app) newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runREPL(cmd)
		},
	}
}

func (a *app) runREPL(cmd *cobra.Command) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	return repl.Start(cmd.Context(), cmd.OutOrStdout(), repl.Options{
		Prompt:      a.cfg.REPL.Prompt,
		HistoryFile: a.cfg.REPL.HistoryFile,
		Version:     Version,
		Converter:   chainfold.NewConverter(a.converterOptions(cmd)...),
		History:     store,
	})
}

func (a *app) newWatchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Convert a file and convert it again whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if _, err := os.Stat(input); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return exitError(exitFileNotFound, "file not found: %s", input)
				}
				return fmt.Errorf("reading file: %w", err)
			}

			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			converter := chainfold.NewConverter(a.converterOptions(cmd)...)
			w, err := watch.New(input, watch.Options{
				Output:   output,
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
				Debounce: a.cfg.Watch.Debounce,
				Batch:    a.batchOptions(converter, store),
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write results to this file instead of stdout")
	return cmd
}

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			// the store is readable even when recording is switched off
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "(no conversions)")
				return nil
			}
			for _, e := range entries {
				result := e.Output
				if e.Failed() {
					result = fmt.Sprintf("%s error: %s", e.ErrorClass, e.ErrorMessage)
				}
				fmt.Fprintf(out, "%s  %s\n  -> %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Input, result)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of conversions to show, newest first")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every recorded conversion")
	return cmd
}
