// Package cli implements attendctl, the command-line front end to the
// attendance ledger. Each invocation opens the configured store, runs one
// ledger operation and exits.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-ledger/config"
	"github.com/warp/attendance-ledger/ledger"
	"github.com/warp/attendance-ledger/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	User       string
	Backend    string
	Path       string
	Format     string // "json" | "text"
	Verbose    bool

	// now overrides the wall clock in tests.
	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for attendctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendctl",
		Short: "attendctl - attendance ledger",
		Long:  "Record arrivals and departures, list recent days and maintain the attendance store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", "", "user id to act for")
	cmd.PersistentFlags().StringVar(&opts.Backend, "store", "", "store backend (csv|sqlite|postgres|memory), overrides config")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "store path, overrides config")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewInCommand(opts))
	cmd.AddCommand(NewOutCommand(opts))
	cmd.AddCommand(NewSetTimeCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewClearLogCommand(opts))
	cmd.AddCommand(NewCompactCommand(opts))
	cmd.AddCommand(NewImportLegacyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// session is an opened store plus the ledger on top of it.
type session struct {
	ledger     *ledger.Ledger
	windowDays int
	close      func() error
}

// open loads configuration, applies flag overrides and opens the store.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.Path != "" {
		cfg.Store.Path = o.Path
	}

	logCfg := cfg.Log
	logCfg.Level = "warn"
	if o.Verbose {
		logCfg.Level = "debug"
	}
	logger, err := config.NewLogger(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	st, closeStore, err := store.Open(cfg.Store.Backend, cfg.Store.Path, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	opts := []ledger.Option{ledger.WithLogger(logger)}
	if o.now != nil {
		opts = append(opts, ledger.WithClock(o.now))
	}
	return &session{
		ledger:     ledger.New(st, opts...),
		windowDays: cfg.History.WindowDays,
		close:      closeStore,
	}, nil
}

func (o *RootOptions) requireUser() (ledger.UserID, error) {
	if o.User == "" {
		return "", NewExitError(ExitCommandError, "--user is required")
	}
	return ledger.UserID(o.User), nil
}
