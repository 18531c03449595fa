package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-ledger/chat"
	"github.com/warp/attendance-ledger/ledger"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Days int
}

// LogResult is the json output of the log command.
type LogResult struct {
	UserID     ledger.UserID   `json:"user_id"`
	WindowDays int             `json:"window_days"`
	Records    []ledger.Record `json:"records"`
	Summary    ledger.Summary  `json:"summary"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recent days",
		Long: `List --user's records whose day falls within the last --days days
(default from config, normally 31), oldest stored first.

Examples:
  attendctl log --user 42
  attendctl log --user 42 --days 7 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Days, "days", "d", 0, "window size in days (0 uses the configured window)")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	user, err := opts.requireUser()
	if err != nil {
		return err
	}
	if opts.Days < 0 {
		return NewExitError(ExitCommandError, "--days must not be negative")
	}

	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	days := opts.Days
	if days == 0 {
		days = s.windowDays
	}

	records, err := s.ledger.History(context.Background(), user, days)
	if err != nil {
		return ledgerError("failed to load history", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(chat.RenderHistory(records, days), LogResult{
		UserID:     user,
		WindowDays: days,
		Records:    records,
		Summary:    ledger.Summarize(records),
	})
}
