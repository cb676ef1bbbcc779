package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sambeau/chainfold/config"
	"github.com/sambeau/chainfold/pkg/chainfold/batch"
	"github.com/sambeau/chainfold/pkg/chainfold/chainfold"
	"github.com/sambeau/chainfold/pkg/chainfold/history"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	getenv  func(string) string
	cfg     *config.Config
	logger  *slog.Logger
	verbose bool
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	root := &cobra.Command{
		Use:   "chainfold",
		Short: "Fold filter/map call chains into one filter and one map",
		Long: "chainfold rewrites a chain of filter{...} and map{...} calls joined by %>%\n" +
			"into the equivalent filter{P}%>%map{M}.\n\n" +
			"With no arguments it starts a REPL on a terminal and converts standard input otherwise.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(cmd.InOrStdin()) {
				return a.runREPL(cmd)
			}
			return a.runConvert(cmd, convertFlags{}, nil)
		},
	}

	root.PersistentFlags().String("config", "", "Path to config file")
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging and trace each conversion")

	root.Version = Version
	root.SetVersionTemplate("chainfold version {{.Version}}\n")

	root.AddCommand(a.newConvertCmd())
	root.AddCommand(a.newREPLCmd())
	root.AddCommand(a.newWatchCmd())
	root.AddCommand(a.newHistoryCmd())
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	a.verbose, _ = cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath, a.getenv)
	if err != nil {
		return exitError(exitConfig, "loading config: %v", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Logging, a.verbose)
	if cfg.Path != "" {
		a.logger.Debug("config loaded", "path", cfg.Path)
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// converterOptions returns the options shared by every command that converts.
func (a *app) converterOptions(cmd *cobra.Command) []chainfold.Option {
	if !a.verbose {
		return nil
	}
	return []chainfold.Option{chainfold.WithLogger(chainfold.WriterLogger(cmd.ErrOrStderr()))}
}

// openHistory opens the history store when it is enabled in the config.
func (a *app) openHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return nil, exitError(exitRuntime, "%v", err)
	}
	return store, nil
}

// batchOptions builds batch options from the config.
func (a *app) batchOptions(converter *chainfold.Converter, store *history.Store) batch.Options {
	return batch.Options{
		Workers:      a.cfg.Batch.Workers,
		Format:       batch.Format(a.cfg.Output.Format),
		SyntaxPrefix: a.cfg.Output.SyntaxPrefix,
		TypePrefix:   a.cfg.Output.TypePrefix,
		Converter:    converter,
		History:      store,
		Cache:        a.cfg.History.Cache,
		Logger:       a.logger,
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
