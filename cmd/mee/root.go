package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/config"
	"github.com/zephyrtronium/mathexpr/internal/history"
	"github.com/zephyrtronium/mathexpr/internal/logging"
)

// app is the state shared by mee's subcommands.
type app struct {
	// Persistent flag values.
	configDir string
	logLevel  string
	prec      uint
	history   bool

	cfg   *config.Config
	log   zerolog.Logger
	store *history.Store
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "mee",
		Short: "mee evaluates arbitrary-precision math expressions",
		Long: `mee evaluates expressions with numbers, booleans, strings, and tuples,
using arbitrary-precision arithmetic. Variables assigned in an expression
persist for the rest of its input.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $MEE_CONFIG_DIR or the user config directory)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error, or disabled")
	pf.UintVarP(&a.prec, "prec", "p", mathexpr.DefaultPrec, "precision of calculations in bits")
	pf.BoolVar(&a.history, "history", false, "record evaluations in the history database")

	root.AddCommand(newEvalCmd(a))
	root.AddCommand(newReplCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the configuration and builds the logger. Flags given on the
// command line override the config file and environment.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := config.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("config directory: %w", err)
	}
	cfg, err := config.Load(dir, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log, err = logging.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log.Debug().
		Str("config_dir", dir).
		Uint("prec", cfg.Precision).
		Bool("history", cfg.HistoryEnabled).
		Msg("loaded config")
	return nil
}

// openHistory opens the history store if it isn't open yet.
func (a *app) openHistory(ctx context.Context) (*history.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := history.Open(ctx, a.cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("path", a.cfg.HistoryPath).Msg("opened history")
	a.store = s
	return s, nil
}

// recorder returns the history store when recording is enabled, or nil.
func (a *app) recorder(ctx context.Context) (*history.Store, error) {
	if !a.cfg.HistoryEnabled {
		return nil, nil
	}
	return a.openHistory(ctx)
}

// record saves an evaluation in s. Failures are logged rather than returned
// so that a broken history database doesn't stop evaluation.
func (a *app) record(ctx context.Context, s *history.Store, input string, v mathexpr.Value, err error) {
	if s == nil {
		return
	}
	e := history.Entry{Input: input, Output: mathexpr.Format(v, err), Failed: err != nil}
	if _, err := s.Record(ctx, e); err != nil {
		a.log.Warn().Err(err).Msg("couldn't record history")
	}
}

// close closes the history store if it is open.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
